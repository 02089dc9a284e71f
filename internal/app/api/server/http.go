package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/ezstay/payrecon/docs"
	"github.com/ezstay/payrecon/internal/app/api/handlers"
	mw "github.com/ezstay/payrecon/internal/app/api/middleware"
	"github.com/ezstay/payrecon/internal/app/service/query"
	"github.com/ezstay/payrecon/internal/app/service/reconciler"
	"github.com/ezstay/payrecon/internal/app/service/statistics"
	"github.com/ezstay/payrecon/internal/app/service/sweep"
	cfgpkg "github.com/ezstay/payrecon/pkg/config"
	"github.com/ezstay/payrecon/pkg/metrics"
)

func newEngine(cfg *cfgpkg.Config) *gin.Engine {
	if cfg != nil && cfg.Env == cfgpkg.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	r.Use(newCORS(cfg))
	return r
}

// newCORS lets the tenant and owner web apps poll payment status from the
// browser. "*" in server.cors_origins allows any origin.
func newCORS(cfg *cfgpkg.Config) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", mw.TraceHeader},
		ExposeHeaders: []string{"Content-Length", mw.TraceHeader},
		MaxAge:        12 * time.Hour,
	}
	var origins []string
	if cfg != nil {
		origins = cfg.Server.CorsOrigins
	}
	if len(origins) == 0 || lo.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return cors.New(c)
}

type routeParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Log        *zap.SugaredLogger
	Config     *cfgpkg.Config
	Engine     *gin.Engine
	Reconciler *reconciler.Reconciler
	Query      *query.Service
	Statistics *statistics.Service
	Sweeper    *sweep.Sweeper
}

func registerRoutes(p routeParams) {
	r, log, cfg := p.Engine, p.Log, p.Config

	// Prometheus metrics
	if cfg.MetricsAddr != "" {
		prom := metrics.NewPrometheus(metrics.NewPrometheusOptions{Logger: log})
		prom.SetListenAddress(cfg.MetricsAddr)
		prom.Use(r)
		p.Lifecycle.Append(fx.Hook{OnStop: func(context.Context) error { return prom.Close() }})

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

	payment := apiV1.Group("/payment")
	// Gateway callbacks carry no user identity, only the optional shared key.
	hook := payment.Group("", mw.WebhookAPIKeyMiddleware(cfg.Webhook.APIKey, log))
	handlers.RegisterPaymentWebhookRoutes(hook, p.Reconciler, cfg, log)
	handlers.RegisterPaymentQueryRoutes(payment, p.Query, p.Statistics, cfg)

	// Admin payment APIs
	handlers.RegisterAdminPaymentRoutes(apiV1.Group("/admin"), p.Query, p.Sweeper)
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
