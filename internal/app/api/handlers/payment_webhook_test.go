package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	nh "github.com/PugTools/divinatory-agenda/internal/app/service/notification_handler"
	"github.com/PugTools/divinatory-agenda/internal/platform/mercadopago"
	"github.com/PugTools/divinatory-agenda/pkg/types"
)

type stubWebhook struct {
	res      *nh.WebhookResult
	err      error
	provider types.PaymentProvider
	got      *nh.WebhookRequest
}

func (s *stubWebhook) HandleNotification(_ context.Context, provider types.PaymentProvider, req *nh.WebhookRequest) (*nh.WebhookResult, error) {
	s.provider, s.got = provider, req
	return s.res, s.err
}

func serveWebhook(h WebhookProcessor, target string, body string, headers map[string]string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterPaymentWebhookRoutes(r.Group("/api/v1/webhooks"), h, zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestApiMercadoPagoWebhook_PassesRequestThrough(t *testing.T) {
	h := &stubWebhook{res: &nh.WebhookResult{Received: true, Processed: true, TransactionID: "tx-1", Status: "paid", Outcome: "applied"}}

	w := serveWebhook(h, "/api/v1/webhooks/mercadopago?data.id=555&type=payment", `{"type":"payment","data":{"id":"555"}}`,
		map[string]string{"x-signature": "ts=1,v1=ab", "x-request-id": "req-9"})
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"received":true,"processed":true,"transactionId":"tx-1","status":"paid","outcome":"applied"}`, w.Body.String())

	require.Equal(t, types.PaymentProviderMercadoPago, h.provider)
	require.Equal(t, `{"type":"payment","data":{"id":"555"}}`, string(h.got.Body))
	require.Equal(t, "ts=1,v1=ab", h.got.Signature)
	require.Equal(t, "req-9", h.got.RequestID)
	require.Equal(t, "555", h.got.QueryDataID)
}

func TestApiMercadoPagoWebhook_AcknowledgesUnprocessed(t *testing.T) {
	h := &stubWebhook{res: &nh.WebhookResult{Received: true, Reason: nh.ReasonIgnoredType, Outcome: "ignored"}}

	w := serveWebhook(h, "/api/v1/webhooks/mercadopago", `{"type":"merchant_order"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"received":true,"processed":false,"reason":"ignored_type","outcome":"ignored"}`, w.Body.String())
}

func TestApiMercadoPagoWebhook_Errors(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		"bad signature":   {mercadopago.ErrInvalidSignature, http.StatusUnauthorized},
		"malformed":       {errors.Join(nh.ErrMalformedNotification, errors.New("eof")), http.StatusBadRequest},
		"misconfigured":   {nh.ErrGatewayMisconfigured, http.StatusInternalServerError},
		"storage failure": {errors.New("db down"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := serveWebhook(&stubWebhook{err: tc.err}, "/api/v1/webhooks/mercadopago", `{}`, nil)
			require.Equal(t, tc.status, w.Code)
			require.Contains(t, w.Body.String(), `"received":false`)
		})
	}
}
