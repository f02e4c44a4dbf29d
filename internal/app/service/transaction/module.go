package transaction

import "go.uber.org/fx"

// Module exposes the payment transaction repository via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
