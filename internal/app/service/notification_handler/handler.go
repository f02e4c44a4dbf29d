package notification_handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/PugTools/divinatory-agenda/internal/app/service/reconciliation"
	models "github.com/PugTools/divinatory-agenda/internal/models"
	"github.com/PugTools/divinatory-agenda/internal/platform/mercadopago"
	"github.com/PugTools/divinatory-agenda/pkg/config"
	"github.com/PugTools/divinatory-agenda/pkg/logctx"
	"github.com/PugTools/divinatory-agenda/pkg/metrics"
	"github.com/PugTools/divinatory-agenda/pkg/types"
)

var (
	ErrGatewayMisconfigured  = errors.New("payment gateway is not configured")
	ErrMalformedNotification = errors.New("malformed notification")
	ErrUnsupportedProvider   = errors.New("unsupported notification provider")
)

// Reasons reported when a notification is acknowledged without a change.
const (
	ReasonIgnoredType         = "ignored_type"
	ReasonNoExternalReference = "no_external_reference"
	ReasonTransactionNotFound = "transaction_not_found"
	ReasonTerminalStatus      = "terminal_status"
)

type AuditLogger interface {
	Save(ctx context.Context, entry *models.PaymentNotificationLog)
}

type Reconciler interface {
	Apply(ctx context.Context, n reconciliation.Notification) (*reconciliation.Result, error)
}

type WebhookRequest struct {
	Body []byte
	// Signature and RequestID carry the x-signature and x-request-id headers.
	Signature   string
	RequestID   string
	QueryDataID string
}

type WebhookResult struct {
	Received      bool   `json:"received"`
	Processed     bool   `json:"processed"`
	Reason        string `json:"reason,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
	Status        string `json:"status,omitempty"`
	Outcome       string `json:"outcome,omitempty"`
}

type NotificationHandler struct {
	cfg     *config.Config
	fetcher PaymentFetcher
	engine  Reconciler
	audit   AuditLogger
	metrics *metrics.Business
	Logger  *zap.SugaredLogger
	now     func() time.Time
}

type Params struct {
	fx.In

	Cfg     *config.Config
	Fetcher PaymentFetcher
	Engine  Reconciler
	Audit   AuditLogger
	Metrics *metrics.Business `optional:"true"`
	Log     *zap.SugaredLogger
}

func NewNotificationHandler(p Params) *NotificationHandler {
	return &NotificationHandler{
		cfg:     p.Cfg,
		fetcher: p.Fetcher,
		engine:  p.Engine,
		audit:   p.Audit,
		metrics: p.Metrics,
		Logger:  p.Log,
		now:     time.Now,
	}
}

func (h *NotificationHandler) HandleNotification(ctx context.Context, provider types.PaymentProvider, req *WebhookRequest) (res *WebhookResult, resErr error) {
	lg := logctx.FromCtx(ctx, h.Logger).With("provider", provider)
	receivedAt := h.now()

	var parser NotificationParser
	var outcome reconciliation.Outcome
	defer func() {
		h.saveAudit(ctx, provider, req, parser, receivedAt, res, outcome, resErr)
	}()

	switch provider {
	case types.PaymentProviderMercadoPago:
		if !h.fetcher.HasAccessToken() {
			lg.Error("mercadopago access token is not configured")
			return nil, ErrGatewayMisconfigured
		}
		p, err := GetMercadoPagoNotificationParser(h.fetcher, req.Body, req.QueryDataID, receivedAt)
		if err != nil {
			return nil, err
		}
		parser = p
		if secret := h.cfg.MercadoPago.WebhookSecret; secret != "" {
			if err := mercadopago.VerifySignature(secret, req.Signature, req.RequestID, p.GetVendorPaymentID(ctx)); err != nil {
				lg.Warnw("rejected notification with bad signature", "request_id", req.RequestID)
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}

	lg = lg.With("type", parser.GetNotificationType(ctx), "vendor_payment_id", parser.GetVendorPaymentID(ctx))
	lg.Infow("received payment notification")

	if !parser.IsPaymentEvent(ctx) {
		outcome = reconciliation.OutcomeIgnored
		h.metrics.Reconciled(string(outcome))
		lg.Infow("ignoring non-payment notification")
		return &WebhookResult{Received: true, Processed: false, Reason: ReasonIgnoredType, Outcome: string(outcome)}, nil
	}

	n, err := parser.GetNotification(ctx)
	if err != nil {
		outcome = reconciliation.OutcomeError
		lg.Errorw("failed to resolve notification", "err", err)
		return nil, err
	}

	result, err := h.engine.Apply(ctx, *n)
	if err != nil {
		outcome = reconciliation.OutcomeError
		return nil, fmt.Errorf("failed to reconcile notification: %w", err)
	}
	outcome = result.Outcome

	res = &WebhookResult{
		Received:      true,
		TransactionID: result.TransactionID,
		Status:        string(result.Status),
		Outcome:       string(result.Outcome),
	}
	switch result.Outcome {
	case reconciliation.OutcomeApplied, reconciliation.OutcomeNoop:
		res.Processed = true
	case reconciliation.OutcomeUnknownTransaction:
		res.Reason = lo.Ternary(n.Reference == "", ReasonNoExternalReference, ReasonTransactionNotFound)
	case reconciliation.OutcomeTerminalViolation:
		res.Reason = ReasonTerminalStatus
	}
	return res, nil
}

func (h *NotificationHandler) saveAudit(ctx context.Context, provider types.PaymentProvider, req *WebhookRequest, parser NotificationParser, receivedAt time.Time, res *WebhookResult, outcome reconciliation.Outcome, resErr error) {
	entry := &models.PaymentNotificationLog{
		ProviderID:       provider,
		TraceID:          logctx.TraceID(ctx),
		NotificationTime: receivedAt,
		Data:             rawJSON(req.Body),
		Outcome:          string(outcome),
	}
	if parser != nil {
		entry.NotificationType = parser.GetNotificationType(ctx)
		entry.VendorPaymentID = parser.GetVendorPaymentID(ctx)
		if data, err := json.Marshal(parser.GetData(ctx)); err == nil {
			entry.Data = datatypes.JSON(data)
		}
	}
	if res != nil && res.TransactionID != "" {
		entry.TransactionID = lo.ToPtr(res.TransactionID)
	}

	resMap := map[string]any{"result": res}
	switch {
	case resErr != nil:
		entry.Status = models.PaymentNotificationLogStatusHandleFailed
		resMap["error"] = resErr.Error()
		if entry.Outcome == "" {
			entry.Outcome = string(reconciliation.OutcomeError)
		}
	case outcome == reconciliation.OutcomeIgnored:
		entry.Status = models.PaymentNotificationLogStatusIgnored
	default:
		entry.Status = models.PaymentNotificationLogStatusHandled
	}
	resBytes, _ := json.Marshal(resMap)
	entry.Result = lo.ToPtr(datatypes.JSON(resBytes))

	h.audit.Save(ctx, entry)
}

// rawJSON keeps valid JSON bodies as-is and quotes anything else.
func rawJSON(body []byte) datatypes.JSON {
	if json.Valid(body) {
		return datatypes.JSON(body)
	}
	quoted, _ := json.Marshal(string(body))
	return datatypes.JSON(quoted)
}
