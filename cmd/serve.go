package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"payments-register/internal/clients"
	"payments-register/internal/config"
	"payments-register/internal/refdata"
	"payments-register/internal/repository"
	"payments-register/internal/service"
	"payments-register/internal/session"
	"payments-register/internal/transport/rest"
	"payments-register/internal/transport/websocket"
	"payments-register/pkg/database/postgres"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

func newReferenceCache(cfg config.AppConfig, log logrus.FieldLogger) (*refdata.Cache, error) {
	aliases, err := refdata.LoadAliases(cfg.Reference.AliasesFile)
	if err != nil {
		return nil, err
	}
	loader := refdata.NewFileLoader(refdata.Paths{
		Advisors:      cfg.Reference.AdvisorsFile,
		Obligations:   cfg.Reference.ObligationsFile,
		PaymentPoints: cfg.Reference.PaymentPointsFile,
	}, aliases)
	return refdata.NewCache(loader, cfg.Reference.TTL, log), nil
}

func serve(ctx context.Context, cfg config.AppConfig, log *logrus.Logger) error {
	refs, err := newReferenceCache(cfg, log)
	if err != nil {
		return err
	}
	// unusable reference data stops the service before it accepts input
	if _, err := refs.Get(ctx); err != nil {
		log.WithError(err).Error("reference data check failed")
		return err
	}

	if cfg.Reference.RefreshSchedule != "" {
		refresher, err := refdata.NewRefresher(refs, cfg.Reference.RefreshSchedule, log)
		if err != nil {
			return err
		}
		refresher.Start()
		defer refresher.Stop()
	}

	var sessions service.SessionStore
	switch cfg.Sessions.Driver {
	case "redis":
		redisClient, err := newRedisClient(cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis init: %w", err)
		}
		defer redisClient.Close()
		sessions = session.NewRedisStore(redisClient, cfg.Sessions.TTL)
	case "memory", "":
		sessions = session.NewMemoryStore(cfg.Sessions.TTL)
	default:
		return fmt.Errorf("unknown sessions driver %q", cfg.Sessions.Driver)
	}

	opts := rest.Options{LinkTTL: cfg.Receipts.LinkTTL, Log: log}
	var receipts service.ReceiptStore
	switch cfg.Receipts.Driver {
	case "s3":
		s3, err := clients.NewS3Client(ctx, clients.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			UseSSL:          cfg.S3.UseSSL,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
		})
		if err != nil {
			return err
		}
		receipts, opts.Links = s3, s3
	case "local", "":
		storage, err := clients.NewLocalStorage(cfg.Receipts.Dir, cfg.Receipts.BaseURL)
		if err != nil {
			return err
		}
		receipts, opts.Files = storage, storage
	default:
		return fmt.Errorf("unknown receipts driver %q", cfg.Receipts.Driver)
	}

	var mirror service.Mirror
	if cfg.Mirror.Enabled {
		db, err := newPostgres(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("postgres init: %w", err)
		}
		defer postgres.Close(db)

		repo := repository.NewMirrorRepository(db, cfg.Mirror.Table)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		mirror = repo
	}

	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	ledger := repository.NewCSVLedger(cfg.LedgerPath, log)
	svc := service.NewRegistrationService(service.Dependencies{
		References: refs,
		Sessions:   sessions,
		Ledger:     ledger,
		Mirror:     mirror,
		Receipts:   receipts,
		Notifier:   clients.NewWebSocketClient(hub),
		Options:    service.RecordOptions{RequireCampaign: cfg.RequireCampaign},
		Log:        log,
	})

	opts.Exports = service.NewExportService(ledger, log)
	handler := rest.NewHandler(svc, hub, opts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           withCORS(handler.InitRouter()),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port":     cfg.Port,
			"receipts": cfg.Receipts.Driver,
			"sessions": cfg.Sessions.Driver,
			"mirror":   cfg.Mirror.Enabled,
		}).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	select {
	case err := <-srvErr:
		return err
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}
	log.Info("shutdown complete")
	return nil
}

func newPostgres(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	return postgres.NewPostgresConnection(ctx, postgres.ConnectionInfo{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.User,
		DBName:   cfg.DBName,
		SSLMode:  cfg.SSLMode,
		Password: cfg.Password,
	})
}

func newRedisClient(cfg config.RedisConfig) (*clients.RedisClient, error) {
	return clients.NewRedisClient(clients.RedisConfig{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: time.Duration(cfg.DialTimeout) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		Prefix:      cfg.Prefix,
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Session-ID, X-Requested-With")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
