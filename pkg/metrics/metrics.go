package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var HistogramBuckets = []float64{
	// --- Fast responses (0 - 500ms) ---
	25, 50, 75, 100, 150, 200, 300, 400, 500,

	// --- Medium responses (500ms - 2s) ---
	750, 1000, 1250, 1500, 1750, 2000,

	// --- Slow responses, gateway calls near their timeout (2s - 15s) ---
	2500, 3000, 4000, 5000, 7500, 10000, 15000,
}

// Metric is a definition for the name, description, type, ID, and
// prometheus.Collector type (i.e. CounterVec, Summary, etc) of each metric
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric associates prometheus.Collector based on Metric.Type
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	var metric prometheus.Collector
	switch m.Type {
	case "counter_vec":
		metric = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	case "counter":
		metric = prometheus.NewCounter(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
		)
	case "histogram_vec":
		metric = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
				Buckets:   HistogramBuckets,
			},
			m.Args,
		)
	case "summary_vec":
		metric = prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	}
	return metric
}

// register adds c to reg, reusing the collector already registered under the
// same descriptor so tests and repeated fx graphs share one series.
func register(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}
		return c
	}
	return c
}

var codesIssued = &Metric{
	ID:          "codesIssued",
	Name:        "pix_codes_issued_total",
	Description: "Pix codes handed to callers, partitioned by provenance.",
	Type:        "counter_vec",
	Args:        []string{"provenance"},
}

var gatewayCalls = &Metric{
	ID:          "gatewayCalls",
	Name:        "gateway_call_dur_ms",
	Description: "Latency of outbound payment gateway calls in milliseconds.",
	Type:        "histogram_vec",
	Args:        []string{"op", "result"},
}

var reconcileOutcomes = &Metric{
	ID:          "reconcileOutcomes",
	Name:        "reconciliation_outcomes_total",
	Description: "Status notifications processed, partitioned by outcome.",
	Type:        "counter_vec",
	Args:        []string{"outcome"},
}

var rateLimitDenials = &Metric{
	ID:          "rateLimitDenials",
	Name:        "rate_limit_denials_total",
	Description: "Requests rejected by the per-client rate limiter.",
	Type:        "counter_vec",
	Args:        []string{"route"},
}

// Business holds the payment-domain collectors. A nil *Business is valid and
// records nothing.
type Business struct {
	codesIssued       *prometheus.CounterVec
	gatewayCalls      *prometheus.HistogramVec
	reconcileOutcomes *prometheus.CounterVec
	rateLimitDenials  *prometheus.CounterVec
}

func NewBusiness(reg prometheus.Registerer) *Business {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	const subsystem = "agenda"
	return &Business{
		codesIssued:       register(reg, NewMetric(codesIssued, subsystem)).(*prometheus.CounterVec),
		gatewayCalls:      register(reg, NewMetric(gatewayCalls, subsystem)).(*prometheus.HistogramVec),
		reconcileOutcomes: register(reg, NewMetric(reconcileOutcomes, subsystem)).(*prometheus.CounterVec),
		rateLimitDenials:  register(reg, NewMetric(rateLimitDenials, subsystem)).(*prometheus.CounterVec),
	}
}

func (b *Business) CodeIssued(provenance string) {
	if b == nil {
		return
	}
	b.codesIssued.WithLabelValues(provenance).Inc()
}

func (b *Business) GatewayCall(op string, start time.Time, err error) {
	if b == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	b.gatewayCalls.WithLabelValues(op, result).Observe(MillisecondsSince(start))
}

func (b *Business) Reconciled(outcome string) {
	if b == nil {
		return
	}
	b.reconcileOutcomes.WithLabelValues(outcome).Inc()
}

func (b *Business) RateLimited(route string) {
	if b == nil {
		return
	}
	b.rateLimitDenials.WithLabelValues(route).Inc()
}

func MillisecondsSince(t time.Time) float64 {
	return float64(time.Since(t)) / float64(time.Millisecond)
}

func computeApproximateRequestSize(r *http.Request) int {
	s := 0
	if r.URL != nil {
		s = len(r.URL.Path)
	}
	s += len(r.Method)
	s += len(r.Proto)
	for name, values := range r.Header {
		s += len(name)
		for _, value := range values {
			s += len(value)
		}
	}
	s += len(r.Host)
	if r.ContentLength != -1 {
		s += int(r.ContentLength)
	}
	return s
}

const (
	RefererKey = "X-Referer"
)
