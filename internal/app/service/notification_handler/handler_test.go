package notification_handler

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PugTools/divinatory-agenda/internal/app/service/reconciliation"
	"github.com/PugTools/divinatory-agenda/internal/app/service/transaction/transactiontest"
	models "github.com/PugTools/divinatory-agenda/internal/models"
	"github.com/PugTools/divinatory-agenda/internal/platform/mercadopago"
	"github.com/PugTools/divinatory-agenda/pkg/config"
	"github.com/PugTools/divinatory-agenda/pkg/types"
)

type stubFetcher struct {
	token    bool
	payments map[string]*mercadopago.Payment
	err      error
	calls    int
}

func (s *stubFetcher) HasAccessToken() bool { return s.token }

func (s *stubFetcher) GetPayment(_ context.Context, id string) (*mercadopago.Payment, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.payments[id]
	if !ok {
		return nil, &mercadopago.APIError{StatusCode: 404}
	}
	return p, nil
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []*models.PaymentNotificationLog
}

func (r *recordingAudit) Save(_ context.Context, entry *models.PaymentNotificationLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

type noopFlagger struct{}

func (noopFlagger) SetPaymentStatus(context.Context, string, types.PaymentStatus, *string) error {
	return nil
}

type fixture struct {
	repo    *transactiontest.Memory
	fetcher *stubFetcher
	audit   *recordingAudit
	cfg     *config.Config
	handler *NotificationHandler
	tx      *models.PaymentTransaction
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo: transactiontest.NewMemory(),
		fetcher: &stubFetcher{token: true, payments: map[string]*mercadopago.Payment{
			"555": {ID: "555", Status: "approved", ExternalReference: "PIXREF1", DateApproved: "2026-05-10T14:03:22.000-03:00"},
			"777": {ID: "777", Status: "approved"},
		}},
		audit: &recordingAudit{},
		cfg:   &config.Config{},
	}
	engine := reconciliation.NewEngine(reconciliation.EngineParams{Repo: f.repo, Appointments: noopFlagger{}, Log: zap.NewNop().Sugar()})
	f.handler = NewNotificationHandler(Params{Cfg: f.cfg, Fetcher: f.fetcher, Engine: engine, Audit: f.audit, Log: zap.NewNop().Sugar()})
	f.tx = &models.PaymentTransaction{AppointmentID: "apt-1", PriestID: "p-1", Amount: decimal.NewFromInt(150), ExternalID: "555", ReferenceID: "PIXREF1"}
	require.NoError(t, f.repo.Create(context.Background(), f.tx))
	return f
}

func body(t *testing.T, typ, id string) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{"id": 1, "type": typ, "action": "payment.updated", "data": map[string]any{"id": id}})
	require.NoError(t, err)
	return b
}

func (f *fixture) handle(req *WebhookRequest) (*WebhookResult, error) {
	return f.handler.HandleNotification(context.Background(), types.PaymentProviderMercadoPago, req)
}

func TestHandleNotification_ApprovedPayment(t *testing.T) {
	f := newFixture(t)

	res, err := f.handle(&WebhookRequest{Body: body(t, "payment", "555")})
	require.NoError(t, err)
	require.Equal(t, &WebhookResult{Received: true, Processed: true, TransactionID: f.tx.ID, Status: "paid", Outcome: "applied"}, res)
	require.Equal(t, types.PaymentStatusPaid, f.repo.Get(f.tx.ID).Status)

	require.Len(t, f.audit.entries, 1)
	entry := f.audit.entries[0]
	require.Equal(t, models.PaymentNotificationLogStatusHandled, entry.Status)
	require.Equal(t, "applied", entry.Outcome)
	require.Equal(t, "payment", entry.NotificationType)
	require.Equal(t, "555", entry.VendorPaymentID)
	require.Equal(t, f.tx.ID, *entry.TransactionID)

	again, err := f.handle(&WebhookRequest{Body: body(t, "payment", "555")})
	require.NoError(t, err)
	require.True(t, again.Processed)
	require.Equal(t, "noop", again.Outcome)
	require.Len(t, f.audit.entries, 2)
}

func TestHandleNotification_IgnoresOtherTypes(t *testing.T) {
	f := newFixture(t)

	res, err := f.handle(&WebhookRequest{Body: body(t, "merchant_order", "1")})
	require.NoError(t, err)
	require.False(t, res.Processed)
	require.Equal(t, ReasonIgnoredType, res.Reason)
	require.Zero(t, f.fetcher.calls)
	require.Equal(t, models.PaymentNotificationLogStatusIgnored, f.audit.entries[0].Status)
}

func TestHandleNotification_UnknownTransaction(t *testing.T) {
	f := newFixture(t)

	res, err := f.handle(&WebhookRequest{Body: body(t, "payment", "777")})
	require.NoError(t, err)
	require.False(t, res.Processed)
	require.Equal(t, ReasonNoExternalReference, res.Reason)
	require.Equal(t, "unknown_transaction", res.Outcome)

	f.fetcher.payments["888"] = &mercadopago.Payment{ID: "888", Status: "approved", ExternalReference: "PIXOTHER"}
	res, err = f.handle(&WebhookRequest{Body: body(t, "payment", "888")})
	require.NoError(t, err)
	require.Equal(t, ReasonTransactionNotFound, res.Reason)
}

func TestHandleNotification_TerminalViolationIsAcknowledged(t *testing.T) {
	f := newFixture(t)
	_, err := f.handle(&WebhookRequest{Body: body(t, "payment", "555")})
	require.NoError(t, err)

	f.fetcher.payments["555"] = &mercadopago.Payment{ID: "555", Status: "cancelled", ExternalReference: "PIXREF1"}
	res, err := f.handle(&WebhookRequest{Body: body(t, "payment", "555")})
	require.NoError(t, err)
	require.False(t, res.Processed)
	require.Equal(t, ReasonTerminalStatus, res.Reason)
	require.Equal(t, types.PaymentStatusPaid, f.repo.Get(f.tx.ID).Status)
}

func TestHandleNotification_QueryDataIDFallback(t *testing.T) {
	f := newFixture(t)

	res, err := f.handle(&WebhookRequest{Body: []byte(`{"type":"payment"}`), QueryDataID: "555"})
	require.NoError(t, err)
	require.Equal(t, "applied", res.Outcome)
}

func TestHandleNotification_Failures(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		f := newFixture(t)
		f.fetcher.token = false
		_, err := f.handle(&WebhookRequest{Body: body(t, "payment", "555")})
		require.ErrorIs(t, err, ErrGatewayMisconfigured)
		require.Equal(t, models.PaymentNotificationLogStatusHandleFailed, f.audit.entries[0].Status)
	})
	t.Run("malformed body", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.handle(&WebhookRequest{Body: []byte("not json")})
		require.ErrorIs(t, err, ErrMalformedNotification)
		require.Len(t, f.audit.entries, 1)
		require.JSONEq(t, `"not json"`, string(f.audit.entries[0].Data))
	})
	t.Run("missing data id", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.handle(&WebhookRequest{Body: []byte(`{"type":"payment"}`)})
		require.ErrorIs(t, err, ErrMalformedNotification)
	})
	t.Run("gateway error", func(t *testing.T) {
		f := newFixture(t)
		f.fetcher.err = errors.New("timeout")
		_, err := f.handle(&WebhookRequest{Body: body(t, "payment", "555")})
		require.ErrorContains(t, err, "timeout")
		require.Equal(t, "error", f.audit.entries[0].Outcome)
	})
	t.Run("unsupported provider", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.handler.HandleNotification(context.Background(), types.PaymentProviderLocal, &WebhookRequest{})
		require.ErrorIs(t, err, ErrUnsupportedProvider)
	})
}

func TestHandleNotification_Signature(t *testing.T) {
	f := newFixture(t)
	f.cfg.MercadoPago.WebhookSecret = "whsec"

	_, err := f.handle(&WebhookRequest{Body: body(t, "payment", "555"), RequestID: "r-1", Signature: "ts=1,v1=00"})
	require.ErrorIs(t, err, mercadopago.ErrInvalidSignature)
	require.Equal(t, types.PaymentStatusPending, f.repo.Get(f.tx.ID).Status)

	sig := mercadopago.Sign("whsec", "r-1", "555", "1700000000")
	res, err := f.handle(&WebhookRequest{Body: body(t, "payment", "555"), RequestID: "r-1", Signature: sig})
	require.NoError(t, err)
	require.Equal(t, "applied", res.Outcome)
}
