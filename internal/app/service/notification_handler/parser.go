package notification_handler

import (
	"context"
	"time"

	"github.com/PugTools/divinatory-agenda/internal/app/service/reconciliation"
	"github.com/PugTools/divinatory-agenda/pkg/types"
)

type NotificationParser interface {
	GetProvider(ctx context.Context) types.PaymentProvider
	GetNotificationTime(ctx context.Context) time.Time
	GetNotificationType(ctx context.Context) string
	GetVendorPaymentID(ctx context.Context) string
	// IsPaymentEvent reports whether the notification concerns a payment.
	IsPaymentEvent(ctx context.Context) bool
	// GetNotification resolves the provider payment into a status report.
	GetNotification(ctx context.Context) (*reconciliation.Notification, error)
	GetData(ctx context.Context) any
}
