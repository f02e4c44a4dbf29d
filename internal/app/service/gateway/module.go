package gateway

import (
	"go.uber.org/fx"

	"github.com/PugTools/divinatory-agenda/internal/platform/mercadopago"
)

var Module = fx.Options(
	fx.Provide(
		NewService,
		func(c *mercadopago.Client) PaymentGateway { return c },
	),
)
