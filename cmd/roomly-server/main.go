package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"roomly/backend/internal/config"
	"roomly/backend/internal/identity"
	"roomly/backend/internal/notify"
	"roomly/backend/internal/service/bookings"
	"roomly/backend/internal/store/postgres"
	httpTransport "roomly/backend/internal/transport/http"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "roomly-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "roomly-server"),
	)
	slog.SetDefault(log)

	log.Info("starting", slog.String("http_addr", cfg.HTTPAddr()), slog.String("log_level", cfg.LogLevel))

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		os.Exit(1)
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 2*time.Minute)
	err = postgres.Migrate(migrateCtx, db)
	cancelMigrate()
	if err != nil {
		log.Error("migrations failed", slog.Any("err", err))
		os.Exit(1)
	}
	if version, err := postgres.MigrationVersion(context.Background(), db); err == nil {
		log.Info("migrations applied", slog.Int64("version", version))
	}

	var messenger notify.Messenger
	if cfg.MessageWebhookURL != "" {
		messenger = notify.NewWebhookMessenger(cfg.MessageWebhookURL, cfg.NotifyTimeout)
	}
	var mirror notify.SheetMirror
	if cfg.SheetWebhookURL != "" {
		mirror = notify.NewWebhookMirror(cfg.SheetWebhookURL, cfg.NotifyTimeout)
	}
	dispatcher := notify.NewDispatcher(messenger, mirror, cfg.MessageTo, cfg.NotifyTimeout, log)

	bookingRepo := postgres.NewBookingRepo(db)
	roomRepo := postgres.NewRoomRepo(db)
	svc := bookings.NewService(bookingRepo, roomRepo, cfg.WorkingWindow, dispatcher, log)

	gin.SetMode(gin.ReleaseMode)
	handler := httpTransport.NewHandler(svc, identity.NewHeaderProvider(), log)
	router := httpTransport.NewRouter(handler, httpTransport.RouterConfig{
		AllowOrigins:   cfg.CORSAllowOrigins,
		RequestTimeout: cfg.HTTPRequestTimeout,
	})

	server := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	log.Info("http server started", slog.String("http_addr", cfg.HTTPAddr()))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdown(log, server, dispatcher, cfg.ShutdownTimeout)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped with error", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func shutdown(log *slog.Logger, server *http.Server, dispatcher *notify.Dispatcher, timeout time.Duration) {
	log.Info("shutting down http server", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown failed; closing", slog.Any("err", err))
		_ = server.Close()
	} else {
		log.Info("http server stopped")
	}

	// Let in-flight notifications drain before the process exits.
	done := make(chan struct{})
	go func() {
		dispatcher.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Warn("notification drain timed out")
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
