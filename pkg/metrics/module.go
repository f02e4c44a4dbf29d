package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(func() *Business { return NewBusiness(prometheus.DefaultRegisterer) }),
)
