package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	models "github.com/PugTools/divinatory-agenda/internal/models"
	"github.com/PugTools/divinatory-agenda/pkg/logctx"
	"github.com/PugTools/divinatory-agenda/pkg/tool"
	types "github.com/PugTools/divinatory-agenda/pkg/types"
)

type Service struct {
	log *zap.SugaredLogger
	db  *gorm.DB
}

func NewService(log *zap.SugaredLogger, db *gorm.DB) Repository {
	return &Service{log: log, db: db}
}

func (s *Service) Create(ctx context.Context, item *models.PaymentTransaction) error {
	if item.ID == "" {
		item.ID = tool.GenerateUUIDV7()
	}
	if item.Status == "" {
		item.Status = types.PaymentStatusPending
	}
	if item.PaymentMethod == "" {
		item.PaymentMethod = types.PaymentMethodPix
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create payment transaction: %w", mapWriteErr(err))
	}
	return nil
}

func (s *Service) FindByID(ctx context.Context, id string) (*models.PaymentTransaction, error) {
	return s.findOne(ctx, s.db.WithContext(ctx).Where("id = ?", id))
}

func (s *Service) FindByAppointment(ctx context.Context, appointmentID string) (*models.PaymentTransaction, error) {
	return s.findOne(ctx, latestForAppointment(s.db.WithContext(ctx), appointmentID))
}

func (s *Service) FindByExternalID(ctx context.Context, externalID string) (*models.PaymentTransaction, error) {
	if externalID == "" {
		return nil, nil
	}
	return s.findOne(ctx, s.db.WithContext(ctx).Where("external_id = ?", externalID))
}

func (s *Service) FindByReference(ctx context.Context, referenceID string) (*models.PaymentTransaction, error) {
	if referenceID == "" {
		return nil, nil
	}
	return s.findOne(ctx, s.db.WithContext(ctx).Where("reference_id = ?", referenceID))
}

func latestForAppointment(db *gorm.DB, appointmentID string) *gorm.DB {
	return db.Where("appointment_id = ?", appointmentID).Order("created_at DESC").Order("id DESC")
}

func (s *Service) findOne(ctx context.Context, q *gorm.DB) (*models.PaymentTransaction, error) {
	var item models.PaymentTransaction
	if err := q.Take(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load payment transaction: %w", err)
	}
	return &item, nil
}

func (s *Service) UpdateCode(ctx context.Context, id string, code string, provenance types.CodeProvenance, externalID string) error {
	res := s.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
		Where("id = ? AND status = ?", id, types.PaymentStatusPending).
		Updates(map[string]any{
			"code_payload":    code,
			"code_provenance": provenance,
			"external_id":     externalID,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update payment code: %w", mapWriteErr(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s is not pending", ErrInvalidTransition, id)
	}
	return nil
}

// transitionQuery is the conditional update every status change goes through.
func transitionQuery(db *gorm.DB, id string, from, to types.PaymentStatus, paidAt *time.Time) *gorm.DB {
	values := map[string]any{"status": to}
	if to == types.PaymentStatusPaid && paidAt != nil {
		values["paid_at"] = paidAt.UTC()
	}
	return db.Model(&models.PaymentTransaction{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
}

func (s *Service) TransitionStatus(ctx context.Context, id string, from, to types.PaymentStatus, paidAt *time.Time, entry *models.PaymentTransactionLog) (bool, error) {
	if !to.Valid() || from.IsTerminal() {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := transitionQuery(tx, id, from, to, paidAt)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true
		if entry == nil {
			return nil
		}
		var after models.PaymentTransaction
		if err := tx.Where("id = ?", id).Take(&after).Error; err != nil {
			return err
		}
		if entry.ID == "" {
			entry.ID = tool.GenerateUUIDV7()
		}
		entry.TransactionID = id
		entry.FromStatus = from
		entry.ToStatus = to
		entry.After = datatypes.NewJSONType(&after)
		return tx.Create(entry).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to transition payment transaction %s: %w", id, err)
	}
	if applied {
		logctx.FromCtx(ctx, s.log).Infow("payment transaction transitioned", "transaction_id", id, "from", from, "to", to)
	}
	return applied, nil
}

// UpdateStatus applies status to a pending transaction. Re-applying the
// current status is a no-op; leaving a terminal status is rejected.
func (s *Service) UpdateStatus(ctx context.Context, id string, status types.PaymentStatus, paidAt *time.Time) error {
	current, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	if current.Status == status {
		return nil
	}
	applied, err := s.TransitionStatus(ctx, id, current.Status, status, paidAt, nil)
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("%w: %s changed concurrently", ErrInvalidTransition, id)
	}
	return nil
}

// filtersAnd is a helper to combine multiple CommonFilter into a single clause.Expression
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

func scanQuery(db *gorm.DB, req *ScanTransactionsRequest) *gorm.DB {
	tx := db.Model(&models.PaymentTransaction{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}
	return tx
}

// ScanTransactions implements paginated/admin listing with filters
func (s *Service) ScanTransactions(ctx context.Context, req *ScanTransactionsRequest) (*ScanTransactionsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	var total int64
	if err := scanQuery(s.db.WithContext(ctx), req).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	var rows []*models.PaymentTransaction
	q := scanQuery(s.db.WithContext(ctx), req).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}}).
		Limit(req.Size).
		Offset(req.From)
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return &ScanTransactionsResponse{Items: rows, Total: total}, nil
}
