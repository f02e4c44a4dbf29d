package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/PugTools/divinatory-agenda/pkg/types"
)

type PaymentNotificationLogStatus string

const (
	PaymentNotificationLogStatusReceived     PaymentNotificationLogStatus = "received"
	PaymentNotificationLogStatusHandled      PaymentNotificationLogStatus = "handled"
	PaymentNotificationLogStatusIgnored      PaymentNotificationLogStatus = "ignored"
	PaymentNotificationLogStatusHandleFailed PaymentNotificationLogStatus = "handle_failed"
)

// PaymentNotificationLog is the audit trail of inbound gateway notifications.
type PaymentNotificationLog struct {
	ID               string                       `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ProviderID       types.PaymentProvider        `gorm:"column:provider_id;type:varchar(64);not null" json:"provider_id"`
	TraceID          string                       `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	NotificationType string                       `gorm:"column:notification_type;type:varchar(64)" json:"notification_type"`
	VendorPaymentID  string                       `gorm:"column:vendor_payment_id;type:varchar(128);index" json:"vendor_payment_id"`
	TransactionID    *string                      `gorm:"column:transaction_id;type:uuid" json:"transaction_id"`
	NotificationTime time.Time                    `gorm:"column:notification_time" json:"notification_time"`
	Data             datatypes.JSON               `gorm:"column:data;type:jsonb" json:"data"`
	Result           *datatypes.JSON              `gorm:"column:result;type:jsonb" json:"result"`
	Status           PaymentNotificationLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	Outcome          string                       `gorm:"column:outcome;type:varchar(64)" json:"outcome"`
	CreatedAt        time.Time                    `json:"created_at"`
	UpdatedAt        time.Time                    `json:"updated_at"`
}

func (PaymentNotificationLog) TableName() string { return "payment_notification_log" }
