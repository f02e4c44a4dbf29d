package notification_log

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/PugTools/divinatory-agenda/internal/models"
	"github.com/PugTools/divinatory-agenda/pkg/logctx"
	"github.com/PugTools/divinatory-agenda/pkg/tool"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists a payment notification log. Nil input is ignored.
func (s *Service) Save(ctx context.Context, entry *models.PaymentNotificationLog) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = tool.GenerateUUIDV7()
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorw("failed to save notification log", "id", entry.ID, "err", err)
		}
	}()
}

var Module = fx.Options(
	fx.Provide(New),
)
