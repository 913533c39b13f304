package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/salmankhan-prs/multi-tenant-payment-platform/core"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/modules/auth"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/modules/payments"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/modules/tenantconfig"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/modules/tenants"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/modules/usagereport"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/config"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/jwt"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/logger"
	mongoconn "github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/mongo"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/ratelimit"
	redisconn "github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/redis"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/requestid"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/scoped"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/tenant"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/usage"
)

type appConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	BaseDomain      string        `env:"BASE_DOMAIN" envDefault:"example.com"`
	JWTSecret       string        `env:"JWT_SECRET,required"`
	JWTTTL          time.Duration `env:"JWT_TTL" envDefault:"24h"`
	TierConfigPath  string        `env:"TIER_CONFIG_PATH"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var appCfg appConfig
	if err := config.Load(&appCfg); err != nil {
		return err
	}
	var logCfg logger.Config
	if err := config.Load(&logCfg); err != nil {
		return err
	}
	var mongoCfg mongoconn.Config
	if err := config.Load(&mongoCfg); err != nil {
		return err
	}
	var redisCfg redisconn.Config
	if err := config.Load(&redisCfg); err != nil {
		return err
	}

	log := logger.New(logCfg, logger.WithContextExtractors(
		requestid.LoggerExtractor(),
		tenant.LoggerExtractor(),
	))
	slog.SetDefault(log)

	if appCfg.TierConfigPath != "" {
		if err := tenant.LoadTierDefaults(appCfg.TierConfigPath); err != nil {
			return fmt.Errorf("load tier config: %w", err)
		}
	}

	db, err := mongoconn.ConnectDatabase(ctx, mongoCfg)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
		defer cancel()
		_ = db.Client().Disconnect(disconnectCtx)
	}()

	rdb, err := redisconn.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer rdb.Close()

	if err := ensureIndexes(ctx, db); err != nil {
		return err
	}

	tokens, err := jwt.New(appCfg.JWTSecret, appCfg.JWTTTL)
	if err != nil {
		return err
	}

	tenantSvc := tenant.NewService(
		tenant.NewMongoStore(db),
		tenant.NewRedisCache(rdb),
		tenant.WithLogger(log),
	)

	registry := ratelimit.NewRegistry(ratelimit.NewRedisStore(rdb), ratelimit.DefaultWindow)
	tracker := usage.NewTracker(usage.NewRedisCounter(rdb))

	authSvc := auth.NewService(scoped.Wrap(db.Collection(auth.CollectionName)), tokens, log)
	paymentSvc := payments.NewService(scoped.Wrap(db.Collection(payments.CollectionName)), tracker, log)

	resolver := tenant.NewChainResolver(
		tenant.NewClaimResolver(func(token string) (string, error) {
			claims, err := tokens.Verify(token)
			if err != nil {
				return "", err
			}
			return claims.TenantSlug, nil
		}),
		tenant.NewSubdomainResolver(appCfg.BaseDomain),
		tenant.NewHeaderResolver(tenant.DefaultTenantHeader),
	)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(requestid.Middleware)
	r.Use(chimw.Recoverer)

	r.Get("/health", healthHandler(mongoconn.Healthcheck(db.Client()), redisconn.Healthcheck(rdb)))

	// Platform surface: no tenant resolution, no tenant quotas.
	r.Mount("/admin/tenants", tenants.Router(tenantSvc))

	// Tenant surface: every request resolves a tenant, passes the status
	// guard, spends a rate-limit point, and is counted toward usage.
	r.Group(func(r chi.Router) {
		r.Use(tenant.Middleware(tenantSvc, resolver, appCfg.BaseDomain,
			tenant.WithMiddlewareLogger(log)))
		r.Use(tenant.RequireActive(nil))
		r.Use(ratelimit.Middleware(registry, log))
		r.Use(usage.Middleware(tracker, log))

		r.Mount("/auth", auth.Router(authSvc))
		r.Mount("/payments", payments.Router(paymentSvc))
		r.Mount("/usage", usagereport.Router(tracker, registry, log))
		r.Mount("/tenant", tenantconfig.Router())
	})

	srv := &http.Server{
		Addr:              appCfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "server listening", slog.String("addr", appCfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, ensure := range []func(context.Context, *mongo.Database) error{
		tenant.EnsureIndexes,
		auth.EnsureIndexes,
		payments.EnsureIndexes,
	} {
		if err := ensure(ctx, db); err != nil {
			return err
		}
	}
	return nil
}

func healthHandler(probes ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, probe := range probes {
			if err := probe(r.Context()); err != nil {
				core.RespondJSON(w, http.StatusServiceUnavailable,
					map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		core.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
