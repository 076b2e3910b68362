package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Ashmit111/secure-scan/internal/alert"
	"github.com/Ashmit111/secure-scan/internal/config"
	"github.com/Ashmit111/secure-scan/internal/httpapi"
	apimw "github.com/Ashmit111/secure-scan/internal/httpapi/middleware"
	"github.com/Ashmit111/secure-scan/internal/logging"
	"github.com/Ashmit111/secure-scan/internal/metrics"
	"github.com/Ashmit111/secure-scan/internal/monitor"
	"github.com/Ashmit111/secure-scan/internal/probe"
	"github.com/Ashmit111/secure-scan/internal/store"
	"github.com/Ashmit111/secure-scan/internal/store/memory"
	"github.com/Ashmit111/secure-scan/internal/store/postgres"
	"github.com/Ashmit111/secure-scan/internal/store/sqlitedb"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, cleanup, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store_open_failed", zap.Error(err))
	}
	defer cleanup()

	var notifiers alert.Multi
	if email := alert.NewEmail(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom); email != nil {
		notifiers = append(notifiers, email)
	}
	if wh := alert.NewWebhook(cfg.AlertWebhookURL); wh != nil {
		notifiers = append(notifiers, wh)
	}
	var notifier alert.Notifier
	if len(notifiers) > 0 {
		notifier = notifiers
	} else {
		logger.Warn("alerting_disabled_no_transport")
	}

	metrics.Register()

	ctrl := monitor.NewController(logger, probe.NewHTTPChecker(cfg.CheckTimeout), st, notifier, monitor.Config{
		CheckTimeout: cfg.CheckTimeout,
		TrackTimeout: cfg.TrackTimeout,
		AlertTimeout: cfg.AlertTimeout,
	})

	sweeper := monitor.NewSweeper(logger, st, ctrl, cfg.SweepInterval, cfg.SweepConcurrency)
	go sweeper.Run(ctx)

	api := httpapi.NewServer(logger, ctrl, st)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("api_listen", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("api_serve_failed", zap.Error(err))
	}
	logger.Info("api_stopped")
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.StatusStore, func(), error) {
	switch {
	case cfg.DatabaseURL != "":
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.Init(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		logger.Info("store_postgres")
		return pg, pg.Close, nil
	case cfg.SQLitePath != "":
		s, err := sqlitedb.New(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("store_sqlite", zap.String("path", cfg.SQLitePath))
		return s, func() {}, nil
	default:
		logger.Info("store_memory")
		return memory.New(), func() {}, nil
	}
}
