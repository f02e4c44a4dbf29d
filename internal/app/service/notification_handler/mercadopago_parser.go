package notification_handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/PugTools/divinatory-agenda/internal/app/service/reconciliation"
	"github.com/PugTools/divinatory-agenda/internal/platform/mercadopago"
	"github.com/PugTools/divinatory-agenda/pkg/types"
)

// PaymentFetcher loads payment details from the gateway.
type PaymentFetcher interface {
	HasAccessToken() bool
	GetPayment(ctx context.Context, id string) (*mercadopago.Payment, error)
}

type MercadoPagoNotificationParser struct {
	fetcher          PaymentFetcher
	NotificationTime time.Time
	Notification     *mercadopago.Notification
	dataID           string
	payment          *mercadopago.Payment
}

func (p *MercadoPagoNotificationParser) GetProvider(ctx context.Context) types.PaymentProvider {
	return types.PaymentProviderMercadoPago
}

func (p *MercadoPagoNotificationParser) GetNotificationTime(ctx context.Context) time.Time {
	return p.NotificationTime
}

func (p *MercadoPagoNotificationParser) GetNotificationType(ctx context.Context) string {
	return p.Notification.Type
}

func (p *MercadoPagoNotificationParser) GetVendorPaymentID(ctx context.Context) string {
	return p.dataID
}

func (p *MercadoPagoNotificationParser) IsPaymentEvent(ctx context.Context) bool {
	return p.Notification.Type == mercadopago.NotificationTypePayment
}

func (p *MercadoPagoNotificationParser) GetNotification(ctx context.Context) (*reconciliation.Notification, error) {
	if p.dataID == "" {
		return nil, fmt.Errorf("%w: data.id is empty", ErrMalformedNotification)
	}
	if p.payment == nil {
		payment, err := p.fetcher.GetPayment(ctx, p.dataID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch payment %s: %w", p.dataID, err)
		}
		p.payment = payment
	}

	res := &reconciliation.Notification{
		Provider:      p.GetProvider(ctx),
		CorrelationID: p.payment.ID.String(),
		Reference:     p.payment.ExternalReference,
		VendorStatus:  p.payment.Status,
	}
	if res.CorrelationID == "" {
		res.CorrelationID = p.dataID
	}
	if at, ok := p.payment.ApprovedAt(); ok {
		res.ApprovedAt = &at
	}
	return res, nil
}

func (p *MercadoPagoNotificationParser) GetData(ctx context.Context) any {
	return map[string]any{
		"notification": p.Notification,
		"payment":      p.payment,
	}
}

// GetMercadoPagoNotificationParser decodes the webhook envelope. queryDataID
// is the data.id query parameter, used when the body carries none.
func GetMercadoPagoNotificationParser(fetcher PaymentFetcher, body []byte, queryDataID string, notificationTime time.Time) (NotificationParser, error) {
	if notificationTime.IsZero() {
		notificationTime = time.Now()
	}

	var n mercadopago.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, errors.Join(ErrMalformedNotification, err)
	}
	dataID := string(n.Data.ID)
	if dataID == "" {
		dataID = queryDataID
	}

	return &MercadoPagoNotificationParser{
		fetcher:          fetcher,
		NotificationTime: notificationTime,
		Notification:     &n,
		dataID:           dataID,
	}, nil
}
