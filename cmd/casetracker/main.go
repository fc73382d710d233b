package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/court-case-tracker/internal/api"
	"github.com/JakeFAU/court-case-tracker/internal/config"
	"github.com/JakeFAU/court-case-tracker/internal/courtcase"
	"github.com/JakeFAU/court-case-tracker/internal/crawlclient"
	"github.com/JakeFAU/court-case-tracker/internal/logging"
	"github.com/JakeFAU/court-case-tracker/internal/storage/memory"
	"github.com/JakeFAU/court-case-tracker/internal/storage/postgres"
)

const shutdownTimeout = 10 * time.Second

type caseStore interface {
	courtcase.Repository
	api.Pinger
}

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	envFile := flag.String("env-file", ".env", "Path to dotenv file")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "load env file failed: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("court case tracker exited", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	if syncErr := logger.Sync(); syncErr != nil {
		fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := crawlclient.New(crawlclient.Config{
		BaseURL: cfg.CrawlerService.BaseURL,
		Path:    cfg.CrawlerService.Path,
		Timeout: cfg.DispatchTimeout(),
	}, nil, logger.Named("crawlclient"))
	if err != nil {
		return fmt.Errorf("crawl client: %w", err)
	}

	svc := courtcase.NewService(store, client, logger.Named("courtcase"))
	apiServer := api.NewServer(svc, store, cfg, logger.Named("api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server started",
			zap.Int("port", cfg.Server.Port),
			zap.String("crawl_endpoint", client.Endpoint()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown initiated")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
	return nil
}

// openStore picks Postgres when a DSN is configured and the in-memory store otherwise.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (caseStore, func(), error) {
	if cfg.DB.DSN == "" {
		logger.Warn("db.dsn not set; court cases are kept in memory and lost on restart")
		return memory.NewCaseStore(), func() {}, nil
	}
	store, err := postgres.NewCaseStore(ctx, postgres.CaseStoreConfig{
		DSN:             cfg.DB.DSN,
		Table:           cfg.DB.Table,
		MaxConns:        cfg.DB.MaxConns,
		MinConns:        cfg.DB.MinConns,
		MaxConnLifetime: cfg.DB.MaxConnLifetime(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open case store: %w", err)
	}
	if cfg.DB.AutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		logger.Info("case store schema ensured", zap.String("table", cfg.DB.Table))
	}
	return store, store.Close, nil
}
