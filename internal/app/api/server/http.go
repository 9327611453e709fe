package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/inkwell-labs/inkwell/docs"
	"github.com/inkwell-labs/inkwell/internal/app/api/handlers"
	mw "github.com/inkwell-labs/inkwell/internal/app/api/middleware"
	authsvc "github.com/inkwell-labs/inkwell/internal/app/service/auth"
	journalsvc "github.com/inkwell-labs/inkwell/internal/app/service/journal"
	membershipsvc "github.com/inkwell-labs/inkwell/internal/app/service/membership"
	notificationsvc "github.com/inkwell-labs/inkwell/internal/app/service/notification"
	paymentsvc "github.com/inkwell-labs/inkwell/internal/app/service/payment"
	quotasvc "github.com/inkwell-labs/inkwell/internal/app/service/quota"
	"github.com/inkwell-labs/inkwell/internal/app/service/statistics"
	sweepersvc "github.com/inkwell-labs/inkwell/internal/app/service/sweeper"
	"github.com/inkwell-labs/inkwell/internal/platform/gateway"
	cfgpkg "github.com/inkwell-labs/inkwell/pkg/config"
	metrics "github.com/inkwell-labs/inkwell/pkg/metrics"
)

func newEngine(cfg *cfgpkg.Config) *gin.Engine {
	if cfg.Env != cfgpkg.EnvDev {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Request tracing only; request logger & access log are attached per group.
	r.Use(mw.TraceMiddleware())
	return r
}

type routeDeps struct {
	fx.In

	Log      *zap.SugaredLogger
	Cfg      *cfgpkg.Config
	Auth     *authsvc.Service
	Journals *journalsvc.Service
	Quotas   *quotasvc.Service
	Payments *paymentsvc.Service
	Members  *membershipsvc.Service
	Notifs   *notificationsvc.Service
	Stats    *statistics.Service
	Sweep    *sweepersvc.Sweeper
	Events   *paymentsvc.EventLogger
	PayOS    *gateway.PayOSClient
	VNPay    *gateway.VNPayClient
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	// Prometheus metrics on their own listener
	if d.Cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: d.Log,
		})
		p.SetListenAddress(d.Cfg.MetricsAddr)
		p.Use(r)
		d.Log.Infow("metrics started", "addr", d.Cfg.MetricsAddr)
	}

	// Public group: health, swagger, auth, gateway callbacks.
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	handlers.RegisterAuthRoutes(pub.Group("/api/v1/auth"), d.Auth)
	handlers.RegisterWebhookRoutes(pub.Group("/webhook"), d.Payments, d.PayOS, d.VNPay, d.Events, d.Log)

	// Authenticated group.
	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware(), mw.AuthMiddleware(d.Auth))
	handlers.RegisterAuthProtectedRoutes(apiV1.Group("/auth"))
	handlers.RegisterJournalRoutes(apiV1.Group("/journals"), d.Journals)
	handlers.RegisterQuotaRoutes(apiV1.Group("/quota"), d.Quotas)
	handlers.RegisterPaymentRoutes(apiV1.Group("/payments"), d.Payments)
	handlers.RegisterMembershipRoutes(apiV1.Group("/membership"), d.Members)
	handlers.RegisterNotificationRoutes(apiV1.Group("/notifications"), d.Notifs)

	// Admin group.
	admin := apiV1.Group("/admin")
	admin.Use(mw.AdminMiddleware())
	handlers.RegisterAdminRoutes(admin, d.Members, d.Payments, d.Stats, d.Sweep)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
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
