package models

import (
	"github.com/shopspring/decimal"

	"github.com/PugTools/divinatory-agenda/pkg/types"
)

// Appointment is owned by the booking subsystem. Payment code only reads it
// and writes the payment_id/payment_status convenience flags.
type Appointment struct {
	ID            string               `gorm:"column:id;primary_key;type:varchar(64)" json:"id"`
	PriestID      string               `gorm:"column:priest_id;type:varchar(64);not null;index" json:"priest_id"`
	Valor         decimal.Decimal      `gorm:"column:valor;type:numeric(12,2)" json:"valor"`
	ClientName    string               `gorm:"column:client_name;type:varchar(255)" json:"client_name"`
	ClientEmail   *string              `gorm:"column:client_email;type:varchar(255)" json:"client_email"`
	PaymentID     *string              `gorm:"column:payment_id;type:varchar(64)" json:"payment_id"`
	PaymentStatus *types.PaymentStatus `gorm:"column:payment_status;type:varchar(32)" json:"payment_status"`
}

func (Appointment) TableName() string { return "appointments" }

// PriestConfig holds the recipient account of a priest.
type PriestConfig struct {
	PriestID string `gorm:"column:priest_id;primary_key;type:varchar(64)" json:"priest_id"`
	PixKey   string `gorm:"column:pix_key;type:varchar(128)" json:"pix_key"`
	PixLabel string `gorm:"column:pix_label;type:varchar(255)" json:"pix_label"`
}

func (PriestConfig) TableName() string { return "priest_config" }
