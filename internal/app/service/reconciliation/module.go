package reconciliation

import (
	"go.uber.org/fx"

	"github.com/PugTools/divinatory-agenda/internal/app/service/appointment"
)

var Module = fx.Options(
	fx.Provide(
		NewEngine,
		func(s appointment.Store) AppointmentFlagger { return s },
	),
)
