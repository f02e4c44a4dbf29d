package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/PugTools/divinatory-agenda/pkg/types"
)

// PaymentTransactionLog records one applied status transition, written in the
// same database transaction as the status update. Used for troubleshooting.
type PaymentTransactionLog struct {
	ID            string                 `gorm:"column:id;primary_key;type:uuid;index:idx_tx_log_tx_id_id,priority:2,sort:desc"`
	TransactionID string                 `gorm:"column:transaction_id;type:uuid;not null;index:idx_tx_log_tx_id_id,priority:1"`
	FromStatus    types.PaymentStatus    `gorm:"column:from_status;type:varchar(32);not null"`
	ToStatus      types.PaymentStatus    `gorm:"column:to_status;type:varchar(32);not null"`
	Reason        types.TransitionReason `gorm:"column:reason;type:varchar(64);not null"`
	OperatorID    *string                `gorm:"column:operator_id;type:varchar(64)"`
	// Before/After snapshot the transaction row around the transition.
	Before    datatypes.JSONType[*PaymentTransaction] `gorm:"column:before;type:jsonb;default:'null'"`
	After     datatypes.JSONType[*PaymentTransaction] `gorm:"column:after;type:jsonb;default:'null'"`
	Extra     datatypes.JSONMap                       `gorm:"column:extra;type:jsonb;default:'{}'"`
	CreatedAt time.Time                               `json:"created_at"`
}

func (PaymentTransactionLog) TableName() string {
	return "payment_transaction_log"
}
