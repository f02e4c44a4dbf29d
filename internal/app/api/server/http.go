package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/PugTools/divinatory-agenda/docs"
	"github.com/PugTools/divinatory-agenda/internal/app/api/handlers"
	mw "github.com/PugTools/divinatory-agenda/internal/app/api/middleware"
	"github.com/PugTools/divinatory-agenda/internal/app/service/gateway"
	nh "github.com/PugTools/divinatory-agenda/internal/app/service/notification_handler"
	"github.com/PugTools/divinatory-agenda/internal/app/service/ratelimit"
	"github.com/PugTools/divinatory-agenda/internal/app/service/reconciliation"
	"github.com/PugTools/divinatory-agenda/internal/app/service/transaction"
	cfgpkg "github.com/PugTools/divinatory-agenda/pkg/config"
	metrics "github.com/PugTools/divinatory-agenda/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeParams struct {
	fx.In

	Engine   *gin.Engine
	Log      *zap.SugaredLogger
	Cfg      *cfgpkg.Config
	Gateway  *gateway.Service
	Webhook  *nh.NotificationHandler
	Repo     transaction.Repository
	Recon    *reconciliation.Engine
	Limiter  ratelimit.Limiter
	Business *metrics.Business `optional:"true"`
}

func registerRoutes(p routeParams) {
	r, log, cfg := p.Engine, p.Log, p.Cfg
	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		prom := metrics.NewPrometheus(metrics.NewPrometheusOptions{Logger: log})
		prom.SetListenAddress(cfg.MetricsAddr)
		prom.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}
	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())

	guard := func(name string, rule cfgpkg.RateLimitRule) []gin.HandlerFunc {
		if !cfg.RateLimit.Enabled {
			return nil
		}
		return []gin.HandlerFunc{mw.RateLimitMiddleware(name, p.Limiter, ratelimit.LimitFromRule(rule), p.Business, log)}
	}

	handlers.RegisterPixRoutes(apiV1.Group("/pix", guard("generate_pix", cfg.RateLimit.GeneratePix)...), p.Gateway, log)
	handlers.RegisterPaymentWebhookRoutes(apiV1.Group("/webhooks", guard("webhook", cfg.RateLimit.Webhook)...), p.Webhook, log)

	// Operator APIs
	admin := apiV1.Group("/admin", mw.OperatorAuthMiddleware(cfg.Operator.JWTSecret, log))
	handlers.RegisterAdminPaymentRoutes(admin, p.Repo, p.Recon, log)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
