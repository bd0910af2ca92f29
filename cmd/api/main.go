package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/config"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/db"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/handlers"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/logger"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/realtime"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/repository"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/account"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/dashboard"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/marketplace"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/notify"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/profile"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/reconcile"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Must(cfg.LogLevel, cfg.IsDevelopment())
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Connect(cfg.DBDSN, log)
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal("migrate database", zap.Error(err))
	}
	store := repository.NewGormStore(gdb)

	// Without redis, events reach only the clients connected to this instance.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn("redis unreachable, realtime fan-out is local only", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			_ = rdb.Close()
			rdb = nil
		} else {
			log.Info("redis connected", zap.String("addr", cfg.RedisAddr))
		}
	}

	hub := realtime.NewHub(log.Named("hub"))
	go hub.Run(ctx)
	broker := realtime.NewBroker(rdb, hub, cfg.EventsChannel, log.Named("broker"))
	if rdb != nil {
		go broker.Run(ctx)
	}

	inbox := notify.NewService(store, broker, log.Named("notify"))
	market := marketplace.NewService(store, inbox, broker, log.Named("marketplace"))

	scheduler := reconcile.NewScheduler(store, log.Named("reconcile"))
	if err := scheduler.Start(cfg.ReconcileCron); err != nil {
		log.Fatal("start reconcile scheduler", zap.String("schedule", cfg.ReconcileCron), zap.Error(err))
	}
	defer scheduler.Stop()

	var googleCfg *oauth2.Config
	if cfg.GoogleClientID != "" {
		googleCfg = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		}
	} else {
		log.Info("GOOGLE_CLIENT_ID not set, Google sign-in disabled")
	}

	app := handlers.NewApp(handlers.Deps{
		Accounts:      account.NewService(store, log.Named("account")),
		Market:        market,
		Dashboard:     dashboard.NewService(store, log.Named("dashboard")),
		Profiles:      profile.NewService(store, log.Named("profile")),
		Inbox:         inbox,
		Hub:           hub,
		JWTSecret:     cfg.JWTSecret,
		JWTExpiresMin: cfg.JWTExpiresMin,
		SecureCookie:  !cfg.IsDevelopment(),
		CORSOrigins:   cfg.CORSOrigins,
		Log:           log.Named("http"),

		Google:            googleCfg,
		GoogleUserInfoURL: handlers.GoogleUserInfoURL,
		FrontendBaseURL:   cfg.FrontendBaseURL,
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Warn("http shutdown", zap.Error(err))
		}
	}()

	log.Info("listening", zap.String("port", cfg.AppPort))
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatal("http server", zap.Error(err))
	}

	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
