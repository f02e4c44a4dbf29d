package transaction

import (
	"context"
	"time"

	models "github.com/PugTools/divinatory-agenda/internal/models"
	types "github.com/PugTools/divinatory-agenda/pkg/types"
)

// Repository persists payment transactions. Lookups return (nil, nil) when no
// row matches.
type Repository interface {
	Create(ctx context.Context, item *models.PaymentTransaction) error
	FindByID(ctx context.Context, id string) (*models.PaymentTransaction, error)
	// FindByAppointment returns the latest attempt for the appointment.
	FindByAppointment(ctx context.Context, appointmentID string) (*models.PaymentTransaction, error)
	FindByExternalID(ctx context.Context, externalID string) (*models.PaymentTransaction, error)
	FindByReference(ctx context.Context, referenceID string) (*models.PaymentTransaction, error)
	UpdateCode(ctx context.Context, id string, code string, provenance types.CodeProvenance, externalID string) error
	// TransitionStatus moves id from `from` to `to` only if the row is still in
	// `from`, writing entry in the same database transaction. It reports false
	// when no row matched.
	TransitionStatus(ctx context.Context, id string, from, to types.PaymentStatus, paidAt *time.Time, entry *models.PaymentTransactionLog) (bool, error)
	UpdateStatus(ctx context.Context, id string, status types.PaymentStatus, paidAt *time.Time) error
	// Scan transactions (used by admin list pages).
	ScanTransactions(ctx context.Context, req *ScanTransactionsRequest) (*ScanTransactionsResponse, error)
}

// Scan transaction request/response.
type ScanTransactionsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanTransactionsResponse struct {
	Items []*models.PaymentTransaction `json:"items"`
	Total int64                        `json:"total"`
}

const (
	defaultScanSize = 10
	maxScanSize     = 200
)

// scannable lists the columns operators may filter and sort on.
var scannable = map[string]bool{
	"id":              true,
	"appointment_id":  true,
	"priest_id":       true,
	"status":          true,
	"external_id":     true,
	"reference_id":    true,
	"code_provenance": true,
	"amount":          true,
	"paid_at":         true,
	"created_at":      true,
	"updated_at":      true,
}

// Normalize validates filters and clamps paging in place.
func (r *ScanTransactionsRequest) Normalize() error {
	for _, f := range r.Filters {
		if err := f.Validate(scannable); err != nil {
			return err
		}
	}
	if r.SortBy != "" && !scannable[r.SortBy] {
		return types.ErrInvalidFilter
	}
	if r.SortBy == "" {
		r.SortBy = "created_at"
	}
	if r.SortOrder != "asc" {
		r.SortOrder = "desc"
	}
	if r.Size <= 0 {
		r.Size = defaultScanSize
	}
	if r.Size > maxScanSize {
		r.Size = maxScanSize
	}
	if r.From < 0 {
		r.From = 0
	}
	return nil
}
