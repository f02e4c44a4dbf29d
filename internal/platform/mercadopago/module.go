package mercadopago

import (
	"go.uber.org/fx"

	cfgpkg "github.com/PugTools/divinatory-agenda/pkg/config"
)

func NewFromConfig(cfg *cfgpkg.Config) *Client {
	return NewClient(ClientOptions{
		BaseURL:     cfg.MercadoPago.BaseURL,
		AccessToken: cfg.MercadoPago.AccessToken,
		Timeout:     cfg.MercadoPago.Timeout,
	})
}

var Module = fx.Options(
	fx.Provide(NewFromConfig),
)
