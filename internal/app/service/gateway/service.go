package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/PugTools/divinatory-agenda/internal/app/service/appointment"
	"github.com/PugTools/divinatory-agenda/internal/app/service/transaction"
	models "github.com/PugTools/divinatory-agenda/internal/models"
	"github.com/PugTools/divinatory-agenda/internal/platform/mercadopago"
	"github.com/PugTools/divinatory-agenda/pkg/brcode"
	"github.com/PugTools/divinatory-agenda/pkg/config"
	"github.com/PugTools/divinatory-agenda/pkg/logctx"
	"github.com/PugTools/divinatory-agenda/pkg/metrics"
	"github.com/PugTools/divinatory-agenda/pkg/tool"
	"github.com/PugTools/divinatory-agenda/pkg/types"
)

var (
	ErrRecipientNotFound      = errors.New("recipient not configured for priest")
	ErrMissingRecipientKey    = errors.New("recipient has no pix key")
	ErrInvalidRecipientKey    = errors.New("recipient pix key cannot be encoded")
	ErrAppointmentNotFound    = errors.New("appointment not found")
	ErrInvalidAmount          = errors.New("appointment amount must be positive")
	ErrAppointmentAlreadyPaid = errors.New("appointment is already paid")
)

// PaymentGateway issues pix codes on a payment provider.
type PaymentGateway interface {
	HasAccessToken() bool
	CreatePixPayment(ctx context.Context, req *mercadopago.CreatePaymentRequest, idempotencyKey string) (*mercadopago.Payment, error)
}

type IssueRequest struct {
	AppointmentID string
	PriestID      string
}

type IssueResult struct {
	CodePayload     string
	ReferenceID     string
	TransactionID   string
	VendorPaymentID string
	Amount          decimal.Decimal
	Provenance      types.CodeProvenance
}

type Params struct {
	fx.In

	Cfg          *config.Config
	Repo         transaction.Repository
	Appointments appointment.Store
	Gateway      PaymentGateway
	Metrics      *metrics.Business `optional:"true"`
	Log          *zap.SugaredLogger
}

type Service struct {
	cfg          *config.Config
	repo         transaction.Repository
	appointments appointment.Store
	gateway      PaymentGateway
	encoder      *brcode.Encoder
	metrics      *metrics.Business
	log          *zap.SugaredLogger
	now          func() time.Time
}

func NewService(p Params) (*Service, error) {
	enc, err := brcode.NewEncoder(p.Cfg.Pix.EncoderOptions())
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:          p.Cfg,
		repo:         p.Repo,
		appointments: p.Appointments,
		gateway:      p.Gateway,
		encoder:      enc,
		metrics:      p.Metrics,
		log:          p.Log,
		now:          time.Now,
	}, nil
}

// attempt is the transaction a code is being issued for.
type attempt struct {
	existing    *models.PaymentTransaction
	referenceID string
	amount      decimal.Decimal
}

type issuedCode struct {
	payload         string
	provenance      types.CodeProvenance
	vendorPaymentID string
}

// IssueCode returns a payment code for an appointment. A pending attempt is
// reused so that retries keep the same reference and amount.
func (s *Service) IssueCode(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	lg := logctx.FromCtx(ctx, s.log).With("appointment_id", req.AppointmentID, "priest_id", req.PriestID)

	recipient, err := s.appointments.FindRecipient(ctx, req.PriestID)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, ErrRecipientNotFound
	}
	key := strings.TrimSpace(recipient.PixKey)
	if key == "" {
		return nil, ErrMissingRecipientKey
	}
	if err := s.encoder.ValidateKey(key); err != nil {
		return nil, errors.Join(ErrInvalidRecipientKey, err)
	}

	apt, err := s.appointments.FindAppointment(ctx, req.AppointmentID, req.PriestID)
	if err != nil {
		return nil, err
	}
	if apt == nil {
		return nil, ErrAppointmentNotFound
	}
	if !apt.Valor.IsPositive() {
		return nil, ErrInvalidAmount
	}

	at, err := s.prepareAttempt(ctx, apt)
	if err != nil {
		return nil, err
	}
	lg = lg.With("reference_id", at.referenceID)

	code, err := s.issue(ctx, lg, apt, recipient, key, at)
	if err != nil {
		return nil, err
	}

	tx, err := s.persist(ctx, lg, apt, at, code)
	if err != nil {
		return nil, err
	}

	s.metrics.CodeIssued(string(tx.CodeProvenance))
	if err := s.appointments.SetPaymentStatus(ctx, apt.ID, types.PaymentStatusPending, lo.ToPtr(tx.ID)); err != nil {
		lg.Errorw("failed to flag appointment as pending", "transaction_id", tx.ID, "err", err)
	}
	lg.Infow("issued payment code", "transaction_id", tx.ID, "provenance", tx.CodeProvenance)

	return &IssueResult{
		CodePayload:     lo.FromPtr(tx.CodePayload),
		ReferenceID:     tx.ReferenceID,
		TransactionID:   tx.ID,
		VendorPaymentID: lo.Ternary(tx.CodeProvenance == types.CodeProvenanceGateway, tx.ExternalID, ""),
		Amount:          tx.Amount,
		Provenance:      tx.CodeProvenance,
	}, nil
}

func (s *Service) prepareAttempt(ctx context.Context, apt *models.Appointment) (*attempt, error) {
	latest, err := s.repo.FindByAppointment(ctx, apt.ID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		switch latest.Status {
		case types.PaymentStatusPaid:
			return nil, ErrAppointmentAlreadyPaid
		case types.PaymentStatusPending:
			return &attempt{existing: latest, referenceID: latest.ReferenceID, amount: latest.Amount}, nil
		}
	}
	return &attempt{
		referenceID: tool.GeneratePixReference(s.now(), apt.ID),
		amount:      apt.Valor.Round(2),
	}, nil
}

// issue prefers a gateway-issued code and falls back to a locally encoded one.
func (s *Service) issue(ctx context.Context, lg *zap.SugaredLogger, apt *models.Appointment, recipient *models.PriestConfig, key string, at *attempt) (*issuedCode, error) {
	code, reason := s.issueRemote(ctx, apt, at)
	if code != nil {
		return code, nil
	}
	lg.Warnw("using local pix code", "reason", reason)

	payload, err := s.encoder.Encode(brcode.Payload{
		Key:         key,
		Name:        lo.CoalesceOrEmpty(strings.TrimSpace(recipient.PixLabel), s.cfg.Pix.DefaultLabel),
		City:        s.cfg.Pix.MerchantCity,
		Amount:      at.amount,
		ReferenceID: at.referenceID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode pix payload: %w", err)
	}
	return &issuedCode{payload: payload, provenance: types.CodeProvenanceLocal}, nil
}

// issueRemote returns nil and the reason when the gateway cannot be used.
func (s *Service) issueRemote(ctx context.Context, apt *models.Appointment, at *attempt) (*issuedCode, string) {
	mp := s.cfg.MercadoPago
	if !mp.Enabled {
		return nil, "gateway disabled"
	}
	if s.gateway == nil || !s.gateway.HasAccessToken() {
		return nil, "gateway credentials missing"
	}
	email := lo.CoalesceOrEmpty(strings.TrimSpace(lo.FromPtr(apt.ClientEmail)), mp.PayerEmail)
	if email == "" {
		return nil, "payer email missing"
	}

	start := time.Now()
	payment, err := s.gateway.CreatePixPayment(ctx, &mercadopago.CreatePaymentRequest{
		TransactionAmount: json.Number(brcode.FormatAmount(at.amount)),
		Description:       mp.Description,
		PaymentMethodID:   mercadopago.PaymentMethodPix,
		ExternalReference: at.referenceID,
		NotificationURL:   mp.NotificationURL,
		Payer:             mercadopago.Payer{Email: email, FirstName: apt.ClientName},
	}, at.referenceID)
	s.metrics.GatewayCall("create_payment", start, err)
	if err != nil {
		return nil, err.Error()
	}
	if payment.QRCode() == "" || payment.ID.String() == "" {
		return nil, "gateway returned no code"
	}
	return &issuedCode{
		payload:         payment.QRCode(),
		provenance:      types.CodeProvenanceGateway,
		vendorPaymentID: payment.ID.String(),
	}, ""
}

func (s *Service) persist(ctx context.Context, lg *zap.SugaredLogger, apt *models.Appointment, at *attempt, code *issuedCode) (*models.PaymentTransaction, error) {
	externalID := lo.CoalesceOrEmpty(code.vendorPaymentID, at.referenceID)

	if tx := at.existing; tx != nil {
		// A pending gateway code and its vendor id are never replaced by a local fallback.
		if tx.CodeProvenance == types.CodeProvenanceGateway && tx.CodePayload != nil && code.provenance != types.CodeProvenanceGateway {
			lg.Infow("keeping gateway code of pending transaction", "transaction_id", tx.ID, "vendor_payment_id", tx.ExternalID)
			return tx, nil
		}
		if err := s.repo.UpdateCode(ctx, tx.ID, code.payload, code.provenance, externalID); err != nil {
			return nil, err
		}
		tx.CodePayload = lo.ToPtr(code.payload)
		tx.CodeProvenance = code.provenance
		tx.ExternalID = externalID
		return tx, nil
	}

	tx := &models.PaymentTransaction{
		ID:             tool.GenerateUUIDV7(),
		AppointmentID:  apt.ID,
		PriestID:       apt.PriestID,
		Amount:         at.amount,
		Status:         types.PaymentStatusPending,
		PaymentMethod:  types.PaymentMethodPix,
		ExternalID:     externalID,
		ReferenceID:    at.referenceID,
		CodePayload:    lo.ToPtr(code.payload),
		CodeProvenance: code.provenance,
	}
	err := s.repo.Create(ctx, tx)
	if errors.Is(err, transaction.ErrPendingExists) {
		// A concurrent request created the pending attempt first; hand out its code.
		winner, ferr := s.repo.FindByAppointment(ctx, apt.ID)
		if ferr != nil {
			return nil, ferr
		}
		if winner != nil && winner.Status == types.PaymentStatusPending && winner.CodePayload != nil {
			lg.Infow("reusing concurrently created payment transaction", "transaction_id", winner.ID)
			return winner, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}
