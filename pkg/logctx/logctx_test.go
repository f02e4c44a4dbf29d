package logctx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromCtx_EnrichesWithTraceAndOperator(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core).Sugar()

	ctx := context.WithValue(context.Background(), TraceIDKey, "t-1")
	ctx = context.WithValue(ctx, OperatorIDKey, "op-9")
	FromCtx(ctx, base).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	require.Equal(t, "t-1", fields["trace_id"])
	require.Equal(t, "op-9", fields["operator_id"])
	require.Equal(t, "t-1", TraceID(ctx))
}

func TestWithLogger_VisibleFromGinAndCtx(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	scoped := zap.NewNop().Sugar().With("k", "v")
	WithLogger(c, scoped)

	require.Same(t, scoped, FromGin(c, zap.NewNop().Sugar()))
	require.Same(t, scoped, FromCtx(c.Request.Context(), zap.NewNop().Sugar()))
}
