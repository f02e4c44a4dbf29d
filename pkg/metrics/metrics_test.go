package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestBusiness_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	b := NewBusiness(reg)

	b.CodeIssued("gateway")
	b.CodeIssued("local")
	b.CodeIssued("local")
	b.Reconciled("applied")
	b.RateLimited("generate_pix")
	b.GatewayCall("create_payment", time.Now(), errors.New("boom"))

	require.Equal(t, 2.0, testutil.ToFloat64(b.codesIssued.WithLabelValues("local")))
	require.Equal(t, 1.0, testutil.ToFloat64(b.codesIssued.WithLabelValues("gateway")))
	require.Equal(t, 1.0, testutil.ToFloat64(b.reconcileOutcomes.WithLabelValues("applied")))
	require.Equal(t, 1.0, testutil.ToFloat64(b.rateLimitDenials.WithLabelValues("generate_pix")))
	require.Equal(t, 1, testutil.CollectAndCount(b.gatewayCalls))
}

func TestBusiness_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewBusiness(reg)
	second := NewBusiness(reg)

	first.Reconciled("noop")
	second.Reconciled("noop")
	require.Equal(t, 2.0, testutil.ToFloat64(first.reconcileOutcomes.WithLabelValues("noop")))
}

func TestBusiness_NilIsNoop(t *testing.T) {
	var b *Business
	require.NotPanics(t, func() {
		b.CodeIssued("local")
		b.Reconciled("applied")
		b.RateLimited("webhook")
		b.GatewayCall("get_payment", time.Now(), nil)
	})
}

func TestPrometheus_MiddlewareLabelsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	p := NewPrometheus(NewPrometheusOptions{Registerer: reg})

	r := gin.New()
	r.Use(p.HandlerFunc())
	r.GET("/items/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	for _, path := range []string{"/items/1", "/items/2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	require.Equal(t, 2.0, testutil.ToFloat64(p.reqCnt.WithLabelValues("200", http.MethodGet, "/items/:id", "")))
}
