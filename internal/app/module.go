package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/PugTools/divinatory-agenda/internal/app/api/server"
	"github.com/PugTools/divinatory-agenda/internal/app/service/appointment"
	"github.com/PugTools/divinatory-agenda/internal/app/service/events"
	"github.com/PugTools/divinatory-agenda/internal/app/service/gateway"
	notificationhandler "github.com/PugTools/divinatory-agenda/internal/app/service/notification_handler"
	notificationlog "github.com/PugTools/divinatory-agenda/internal/app/service/notification_log"
	"github.com/PugTools/divinatory-agenda/internal/app/service/ratelimit"
	"github.com/PugTools/divinatory-agenda/internal/app/service/reconciliation"
	"github.com/PugTools/divinatory-agenda/internal/app/service/transaction"
	"github.com/PugTools/divinatory-agenda/internal/platform/db"
	"github.com/PugTools/divinatory-agenda/internal/platform/kafka"
	"github.com/PugTools/divinatory-agenda/internal/platform/mercadopago"
	"github.com/PugTools/divinatory-agenda/internal/platform/redis"
	"github.com/PugTools/divinatory-agenda/pkg/config"
	"github.com/PugTools/divinatory-agenda/pkg/logger"
	"github.com/PugTools/divinatory-agenda/pkg/metrics"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	metrics.Module,
	db.Module,
	redis.Module,
	kafka.Module,
	mercadopago.Module,
	server.Module,
	transaction.Module,
	appointment.Module,
	events.Module,
	reconciliation.Module,
	notificationlog.Module,
	notificationhandler.Module,
	gateway.Module,
	ratelimit.Module,
)
