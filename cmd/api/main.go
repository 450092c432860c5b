package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hardlinehq/hardline-backend/api/controllers"
	"github.com/hardlinehq/hardline-backend/api/routes"
	"github.com/hardlinehq/hardline-backend/internal/fulfillment"
	"github.com/hardlinehq/hardline-backend/internal/notifications"
	"github.com/hardlinehq/hardline-backend/internal/products"
	"github.com/hardlinehq/hardline-backend/internal/receiving"
	"github.com/hardlinehq/hardline-backend/internal/reservation"
	"github.com/hardlinehq/hardline-backend/internal/returns"
	"github.com/hardlinehq/hardline-backend/internal/stock"
	"github.com/hardlinehq/hardline-backend/pkg/config"
	"github.com/hardlinehq/hardline-backend/pkg/db"
	"github.com/hardlinehq/hardline-backend/pkg/logger"
	"github.com/hardlinehq/hardline-backend/pkg/migrate"
	"github.com/hardlinehq/hardline-backend/pkg/redis"
)

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
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
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

	gormDB := dbClient.DB()
	ledger := stock.NewLedger(gormDB)

	reservationSvc, err := reservation.NewService(
		reservation.NewRepository(gormDB),
		ledger,
		dbClient,
		logg,
		cfg.Reservation.DefaultTTL(),
		cfg.Sweeper.BatchSize,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create reservation service", err)
		os.Exit(1)
	}

	productsRepo := products.NewRepository(gormDB)
	productsSvc, err := products.NewService(productsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	notifier, err := notifications.NewLogNotifier(logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifier", err)
		os.Exit(1)
	}

	fulfillmentSvc, err := fulfillment.NewService(
		fulfillment.NewRepository(gormDB),
		productsRepo,
		ledger,
		reservationSvc,
		dbClient,
		notifier,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment service", err)
		os.Exit(1)
	}

	receivingSvc, err := receiving.NewService(
		receiving.NewRepository(gormDB),
		productsRepo,
		ledger,
		dbClient,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create receiving service", err)
		os.Exit(1)
	}

	returnsSvc, err := returns.NewService(
		returns.NewRepository(gormDB),
		fulfillmentSvc,
		ledger,
		dbClient,
		logg,
		cfg.Returns.Window(),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create returns service", err)
		os.Exit(1)
	}

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
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config: cfg,
			Logger: logg,
			Health: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
			Reservations: reservationSvc,
			Orders:       fulfillmentSvc,
			Receipts:     receivingSvc,
			Returns:      returnsSvc,
			Products:     productsSvc,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		graceCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "api server shutdown error", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}
