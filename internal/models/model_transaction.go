package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/PugTools/divinatory-agenda/pkg/types"
)

// PaymentTransaction is one payment attempt for an appointment.
// At most one pending attempt per appointment is enforced by a partial unique index.
type PaymentTransaction struct {
	ID             string               `gorm:"column:id;primary_key;type:uuid" json:"id"`
	AppointmentID  string               `gorm:"column:appointment_id;type:varchar(64);not null;index:idx_payment_tx_appointment_created,priority:1;uniqueIndex:uniq_payment_tx_pending_appointment,where:status = 'pending'" json:"appointment_id"`
	PriestID       string               `gorm:"column:priest_id;type:varchar(64);not null" json:"priest_id"`
	Amount         decimal.Decimal      `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Status         types.PaymentStatus  `gorm:"column:status;type:varchar(32);not null;default:'pending'" json:"status"`
	PaymentMethod  string               `gorm:"column:payment_method;type:varchar(32);not null;default:'pix'" json:"payment_method"`
	ExternalID     string               `gorm:"column:external_id;type:varchar(128);not null;uniqueIndex:uniq_payment_tx_external_id" json:"external_id"`
	ReferenceID    string               `gorm:"column:reference_id;type:varchar(64);not null;uniqueIndex:uniq_payment_tx_reference_id" json:"reference_id"`
	CodePayload    *string              `gorm:"column:code_payload;type:text" json:"code_payload"`
	CodeProvenance types.CodeProvenance `gorm:"column:code_provenance;type:varchar(32)" json:"code_provenance"`
	// PaidAt is set only by the transition into paid.
	PaidAt    *time.Time `gorm:"column:paid_at;default:null" json:"paid_at"`
	CreatedAt time.Time  `gorm:"column:created_at;index:idx_payment_tx_appointment_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}

func (t *PaymentTransaction) IsTerminal() bool {
	return t != nil && t.Status.IsTerminal()
}
