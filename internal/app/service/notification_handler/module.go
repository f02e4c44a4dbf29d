package notification_handler

import (
	"go.uber.org/fx"

	notificationlog "github.com/PugTools/divinatory-agenda/internal/app/service/notification_log"
	"github.com/PugTools/divinatory-agenda/internal/app/service/reconciliation"
	"github.com/PugTools/divinatory-agenda/internal/platform/mercadopago"
)

var Module = fx.Options(
	fx.Provide(
		NewNotificationHandler,
		func(c *mercadopago.Client) PaymentFetcher { return c },
		func(e *reconciliation.Engine) Reconciler { return e },
		func(s *notificationlog.Service) AuditLogger { return s },
	),
)
