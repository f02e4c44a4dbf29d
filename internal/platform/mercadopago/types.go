package mercadopago

import (
	"encoding/json"
	"time"
)

// Payment statuses as reported by the gateway.
const (
	StatusApproved    = "approved"
	StatusPending     = "pending"
	StatusInProcess   = "in_process"
	StatusAuthorized  = "authorized"
	StatusCancelled   = "cancelled"
	StatusRefunded    = "refunded"
	StatusChargedBack = "charged_back"
	StatusRejected    = "rejected"
)

const PaymentMethodPix = "pix"

type Payer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
}

// CreatePaymentRequest is the body of POST /v1/payments.
type CreatePaymentRequest struct {
	TransactionAmount json.Number `json:"transaction_amount"`
	Description       string      `json:"description,omitempty"`
	PaymentMethodID   string      `json:"payment_method_id"`
	ExternalReference string      `json:"external_reference"`
	NotificationURL   string      `json:"notification_url,omitempty"`
	Payer             Payer       `json:"payer"`
}

type TransactionData struct {
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
	TicketURL    string `json:"ticket_url"`
}

type PointOfInteraction struct {
	Type            string          `json:"type"`
	TransactionData TransactionData `json:"transaction_data"`
}

type Payment struct {
	ID                 json.Number        `json:"id"`
	Status             string             `json:"status"`
	StatusDetail       string             `json:"status_detail"`
	ExternalReference  string             `json:"external_reference"`
	TransactionAmount  json.Number        `json:"transaction_amount"`
	DateApproved       string             `json:"date_approved"`
	PaymentMethodID    string             `json:"payment_method_id"`
	PointOfInteraction PointOfInteraction `json:"point_of_interaction"`
}

// ApprovedAt parses DateApproved. ok is false when absent or malformed.
func (p *Payment) ApprovedAt() (time.Time, bool) {
	if p == nil || p.DateApproved == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000-0700"} {
		if t, err := time.Parse(layout, p.DateApproved); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// QRCode returns the copy-and-paste BR Code issued for a pix payment.
func (p *Payment) QRCode() string {
	if p == nil {
		return ""
	}
	return p.PointOfInteraction.TransactionData.QRCode
}

// Notification is the webhook envelope posted by the gateway.
type Notification struct {
	ID          json.RawMessage `json:"id,omitempty"`
	Type        string          `json:"type"`
	Action      string          `json:"action"`
	APIVersion  string          `json:"api_version"`
	DateCreated string          `json:"date_created"`
	LiveMode    bool            `json:"live_mode"`
	UserID      json.RawMessage `json:"user_id,omitempty"`
	Data        struct {
		ID ID `json:"id"`
	} `json:"data"`
}

// ID accepts both JSON strings and numbers.
type ID string

func (i *ID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*i = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*i = ID(n.String())
	return nil
}

const NotificationTypePayment = "payment"
