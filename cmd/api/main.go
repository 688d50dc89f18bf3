package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/gymstackhq/gymstack-backend/api/routes"
	"github.com/gymstackhq/gymstack-backend/internal/accounts"
	"github.com/gymstackhq/gymstack-backend/internal/admin"
	"github.com/gymstackhq/gymstack-backend/internal/auth"
	"github.com/gymstackhq/gymstack-backend/internal/clientportal"
	"github.com/gymstackhq/gymstack-backend/internal/members"
	"github.com/gymstackhq/gymstack-backend/internal/plans"
	"github.com/gymstackhq/gymstack-backend/internal/subscriptions"
	"github.com/gymstackhq/gymstack-backend/pkg/config"
	"github.com/gymstackhq/gymstack-backend/pkg/db"
	"github.com/gymstackhq/gymstack-backend/pkg/logger"
	"github.com/gymstackhq/gymstack-backend/pkg/metrics"
	"github.com/gymstackhq/gymstack-backend/pkg/migrate"
	"github.com/gymstackhq/gymstack-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	if err := accounts.EnsureSuperAdmin(context.Background(), dbClient, cfg.Bootstrap, cfg.Password); err != nil {
		logg.Error(context.Background(), "failed to seed super admin", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	accountRepo := accounts.NewRepository(dbClient.DB())
	subscriptionRepo := subscriptions.NewRepository(dbClient.DB())
	planRepo := plans.NewRepository(dbClient.DB())

	resolver, err := subscriptions.NewAccessResolver(accountRepo, subscriptionRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create access resolver", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		AccountRepo:      accountRepo,
		SubscriptionRepo: subscriptionRepo,
		JWTConfig:        cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	signupService, err := auth.NewSignupService(auth.SignupServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create signup service", err)
		os.Exit(1)
	}

	adminService, err := admin.NewService(admin.ServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
	}

	portalService, err := clientportal.NewService(clientportal.ServiceParams{DB: dbClient})
	if err != nil {
		logg.Error(context.Background(), "failed to create client portal service", err)
		os.Exit(1)
	}

	memberService, err := members.NewService(members.ServiceParams{DB: dbClient})
	if err != nil {
		logg.Error(context.Background(), "failed to create member service", err)
		os.Exit(1)
	}

	planService, err := plans.NewService(planRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create plan service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	router := routes.NewRouter(routes.RouterParams{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		Registry:       registry,
		Metrics:        httpMetrics,
		AccessResolver: resolver,
		AuthService:    authService,
		SignupService:  signupService,
		AdminService:   adminService,
		PortalService:  portalService,
		MemberService:  memberService,
		PlanService:    planService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
