package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/PugTools/divinatory-agenda/internal/app/service/events"
	"github.com/PugTools/divinatory-agenda/internal/app/service/transaction"
	models "github.com/PugTools/divinatory-agenda/internal/models"
	"github.com/PugTools/divinatory-agenda/pkg/logctx"
	"github.com/PugTools/divinatory-agenda/pkg/metrics"
	types "github.com/PugTools/divinatory-agenda/pkg/types"
)

var (
	ErrInvalidStatus     = errors.New("invalid payment status")
	ErrTerminalViolation = errors.New("payment transaction is already in a terminal status")
)

// Notification is a provider-neutral status report for one payment.
type Notification struct {
	Provider types.PaymentProvider
	// CorrelationID is the id the provider knows the payment by.
	CorrelationID string
	// Reference is our reference id echoed back by the provider.
	Reference    string
	VendorStatus string
	ApprovedAt   *time.Time
}

type Result struct {
	Outcome       Outcome             `json:"outcome"`
	TransactionID string              `json:"transaction_id,omitempty"`
	Status        types.PaymentStatus `json:"status,omitempty"`
	Previous      types.PaymentStatus `json:"previous,omitempty"`
}

// AppointmentFlagger updates the booking-side payment flag.
type AppointmentFlagger interface {
	SetPaymentStatus(ctx context.Context, appointmentID string, status types.PaymentStatus, paymentID *string) error
}

type Engine struct {
	repo         transaction.Repository
	appointments AppointmentFlagger
	publisher    events.Publisher
	metrics      *metrics.Business
	log          *zap.SugaredLogger
	now          func() time.Time
}

type EngineParams struct {
	fx.In

	Repo         transaction.Repository
	Appointments AppointmentFlagger
	Publisher    events.Publisher  `optional:"true"`
	Metrics      *metrics.Business `optional:"true"`
	Log          *zap.SugaredLogger
}

func NewEngine(p EngineParams) *Engine {
	return &Engine{
		repo:         p.Repo,
		appointments: p.Appointments,
		publisher:    p.Publisher,
		metrics:      p.Metrics,
		log:          p.Log,
		now:          time.Now,
	}
}

// Apply reconciles one notification. Unknown transactions, duplicates and
// terminal violations are outcomes, not errors.
func (e *Engine) Apply(ctx context.Context, n Notification) (*Result, error) {
	lg := logctx.FromCtx(ctx, e.log).With("correlation_id", n.CorrelationID, "reference", n.Reference)

	vs := ParseVendorStatus(n.VendorStatus)
	if vs == VendorStatusUnrecognized {
		lg.Warnw("unrecognized vendor status, treating as pending", "vendor_status", n.VendorStatus)
	}
	target := vs.Target()

	tx, err := e.lookup(ctx, n)
	if err != nil {
		return e.record(&Result{Outcome: OutcomeError}), err
	}
	if tx == nil {
		lg.Warnw("notification for unknown transaction")
		return e.record(&Result{Outcome: OutcomeUnknownTransaction, Status: target}), nil
	}

	paidAt := e.now()
	if n.ApprovedAt != nil && !n.ApprovedAt.IsZero() {
		paidAt = *n.ApprovedAt
	}
	return e.transition(ctx, tx, target, &paidAt, types.TransitionReasonWebhook, nil, map[string]any{
		"provider":       n.Provider,
		"correlation_id": n.CorrelationID,
		"vendor_status":  n.VendorStatus,
	})
}

// Override lets an operator settle a pending transaction by hand.
func (e *Engine) Override(ctx context.Context, transactionID string, status types.PaymentStatus, operatorID string) (*Result, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	tx, err := e.repo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("%w: %s", transaction.ErrTransactionNotFound, transactionID)
	}
	now := e.now()
	res, err := e.transition(ctx, tx, status, &now, types.TransitionReasonOperatorOverride, &operatorID, nil)
	if err != nil {
		return res, err
	}
	if res.Outcome == OutcomeTerminalViolation {
		return res, fmt.Errorf("%w: %s is %s", ErrTerminalViolation, tx.ID, res.Previous)
	}
	return res, nil
}

func (e *Engine) lookup(ctx context.Context, n Notification) (*models.PaymentTransaction, error) {
	tx, err := e.repo.FindByExternalID(ctx, n.CorrelationID)
	if err != nil || tx != nil {
		return tx, err
	}
	return e.repo.FindByReference(ctx, n.Reference)
}

func (e *Engine) transition(ctx context.Context, tx *models.PaymentTransaction, target types.PaymentStatus, paidAt *time.Time, reason types.TransitionReason, operatorID *string, extra map[string]any) (*Result, error) {
	lg := logctx.FromCtx(ctx, e.log).With("transaction_id", tx.ID, "from", tx.Status, "to", target)
	res := &Result{TransactionID: tx.ID, Status: tx.Status, Previous: tx.Status}

	if tx.Status == target {
		res.Outcome = OutcomeNoop
		return e.record(res), nil
	}
	if tx.Status.IsTerminal() {
		lg.Warnw("rejected transition out of terminal status", "reason", reason)
		res.Outcome = OutcomeTerminalViolation
		return e.record(res), nil
	}

	entry := &models.PaymentTransactionLog{
		Reason:     reason,
		OperatorID: operatorID,
		Before:     datatypes.NewJSONType(tx),
		Extra:      datatypes.JSONMap(extra),
	}
	applied, err := e.repo.TransitionStatus(ctx, tx.ID, tx.Status, target, paidAt, entry)
	if err != nil {
		lg.Errorw("transition failed", "err", err)
		res.Outcome = OutcomeError
		return e.record(res), err
	}
	if !applied {
		// Lost the race: someone else moved it first.
		current, err := e.repo.FindByID(ctx, tx.ID)
		if err != nil {
			res.Outcome = OutcomeError
			return e.record(res), err
		}
		if current != nil {
			res.Status = current.Status
			res.Previous = current.Status
		}
		if current != nil && current.Status == target {
			res.Outcome = OutcomeNoop
		} else {
			lg.Warnw("concurrent transition left transaction in a different status", "current", res.Status)
			res.Outcome = OutcomeTerminalViolation
		}
		return e.record(res), nil
	}

	res.Outcome = OutcomeApplied
	res.Status = target
	lg.Infow("payment transaction status applied", "reason", reason)
	e.afterTransition(ctx, tx, target, reason)
	return e.record(res), nil
}

// afterTransition runs the secondary writes. Failures are logged only; the
// transaction row is the source of truth.
func (e *Engine) afterTransition(ctx context.Context, tx *models.PaymentTransaction, target types.PaymentStatus, reason types.TransitionReason) {
	lg := logctx.FromCtx(ctx, e.log).With("transaction_id", tx.ID, "appointment_id", tx.AppointmentID)
	if tx.AppointmentID != "" && e.appointments != nil {
		if err := e.appointments.SetPaymentStatus(ctx, tx.AppointmentID, target, nil); err != nil {
			lg.Errorw("failed to update appointment payment status", "status", target, "err", err)
		}
	}
	if e.publisher != nil {
		err := e.publisher.PublishStatusChanged(ctx, &events.StatusChanged{
			TransactionID: tx.ID,
			AppointmentID: tx.AppointmentID,
			PriestID:      tx.PriestID,
			From:          tx.Status,
			To:            target,
			Reason:        reason,
			Amount:        tx.Amount,
			OccurredAt:    e.now().UTC(),
		})
		if err != nil {
			lg.Errorw("failed to publish status event", "err", err)
		}
	}
}

func (e *Engine) record(res *Result) *Result {
	e.metrics.Reconciled(string(res.Outcome))
	return res
}
