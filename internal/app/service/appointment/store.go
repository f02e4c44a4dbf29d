package appointment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"gorm.io/gorm"

	models "github.com/PugTools/divinatory-agenda/internal/models"
	types "github.com/PugTools/divinatory-agenda/pkg/types"
)

// Store reads booking-owned records. Lookups return (nil, nil) when absent.
type Store interface {
	FindRecipient(ctx context.Context, priestID string) (*models.PriestConfig, error)
	FindAppointment(ctx context.Context, appointmentID, priestID string) (*models.Appointment, error)
	// SetPaymentStatus updates the appointment's payment flag; paymentID is
	// written when non-nil.
	SetPaymentStatus(ctx context.Context, appointmentID string, status types.PaymentStatus, paymentID *string) error
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) Store {
	return &Service{db: db}
}

func (s *Service) FindRecipient(ctx context.Context, priestID string) (*models.PriestConfig, error) {
	var item models.PriestConfig
	if err := s.db.WithContext(ctx).Where("priest_id = ?", priestID).Take(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load priest config: %w", err)
	}
	return &item, nil
}

func (s *Service) FindAppointment(ctx context.Context, appointmentID, priestID string) (*models.Appointment, error) {
	var item models.Appointment
	if err := s.db.WithContext(ctx).Where("id = ? AND priest_id = ?", appointmentID, priestID).Take(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load appointment: %w", err)
	}
	return &item, nil
}

func paymentFlagQuery(db *gorm.DB, appointmentID string, status types.PaymentStatus, paymentID *string) *gorm.DB {
	values := map[string]any{"payment_status": status}
	if paymentID != nil {
		values["payment_id"] = *paymentID
	}
	return db.Model(&models.Appointment{}).Where("id = ?", appointmentID).Updates(values)
}

func (s *Service) SetPaymentStatus(ctx context.Context, appointmentID string, status types.PaymentStatus, paymentID *string) error {
	if err := paymentFlagQuery(s.db.WithContext(ctx), appointmentID, status, paymentID).Error; err != nil {
		return fmt.Errorf("failed to update appointment payment status: %w", err)
	}
	return nil
}

var Module = fx.Options(
	fx.Provide(NewService),
)
