package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/brightkube/authhub/internal/auth"
	"github.com/brightkube/authhub/internal/config"
	"github.com/brightkube/authhub/internal/http/handlers"
	"github.com/brightkube/authhub/internal/http/middlewares"
	"github.com/brightkube/authhub/internal/observability"
	"github.com/brightkube/authhub/internal/ratelimit"
	"github.com/brightkube/authhub/internal/repo/memory"
	"github.com/brightkube/authhub/internal/repo/postgres"
	"github.com/brightkube/authhub/internal/security"
	"github.com/brightkube/authhub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func NewRouter(log *slog.Logger, cfg config.Config, pool *pgxpool.Pool, reg *prometheus.Registry) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())
	r.Use(otelgin.Middleware("authhub"))
	r.Use(prom.GinHandleMiddleware())

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up the user store; memory keeps local runs working without a DB
	var store service.UserStore

	if pool != nil {
		store = postgres.NewUsersRepo(pool)
	} else {
		store = memory.NewUsersRepo()
	}

	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL)
	authSvc := service.NewAuthService(store, hasher, jwtManager, log)

	authHandler := handlers.NewAuthHandler(authSvc, prom)
	authMW := middlewares.NewAuthMiddleware(jwtManager)

	// credential endpoints get their own throttle
	var limiter ratelimit.Limiter

	if cfg.RedisAddr != "" {
		limiter = ratelimit.NewRedisLimiter(ratelimit.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.AuthRateLimit, cfg.AuthRateWindow)
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	}

	authGroup := r.Group("/auth")
	authGroup.Use(middlewares.RateLimit(limiter, middlewares.KeyByIP))

	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", authMW.RequireAuth(), authHandler.Me)

	return r
}
