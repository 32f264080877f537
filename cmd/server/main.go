package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"pefitness/internal/adapters/ai"
	web "pefitness/internal/adapters/http"
	"pefitness/internal/adapters/http/perf"
	"pefitness/internal/adapters/identity"
	"pefitness/internal/adapters/storage"
	accountStore "pefitness/internal/adapters/storage/account"
	"pefitness/internal/adapters/storage/fitnessrecord"
	"pefitness/internal/application/orchestrators"
	"pefitness/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
	if err := cfg.Validate(); err != nil {
		fatal("invalid configuration", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// WAL mode, foreign keys and busy timeout on every pooled connection
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		fatal("failed to open database", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.PingContext(ctx); err != nil {
		fatal("database unreachable", err)
	}
	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		fatal("failed to migrate database", err)
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery)
	acctStore := accountStore.NewSQLiteStore(timedDB)

	// Fitness records go to MongoDB when configured, else to the SQLite document table.
	var (
		records fitnessrecord.Store = fitnessrecord.NewSQLiteStore(timedDB, cfg.AppID)
		backend                     = "sqlite"
	)
	if cfg.MongoURI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, cfg.WriteTimeout)
		client, err := fitnessrecord.Connect(connectCtx, cfg.MongoURI)
		cancel()
		if err != nil {
			fatal("mongodb unreachable", err)
		}
		defer client.Disconnect(context.Background())
		records = fitnessrecord.NewMongoStore(client, cfg.MongoDB, cfg.AppID)
		backend = "mongodb"
	}
	recorder := orchestrators.NewRecorder(records, orchestrators.RecorderConfig{
		Backend:   backend,
		Timeout:   cfg.WriteTimeout,
		Collector: collector,
	})

	if cfg.SeedAdmin() {
		seedDeps := orchestrators.CreateAccountDeps{AccountStore: acctStore}
		if err := orchestrators.ExecuteSeedAdmin(ctx, seedDeps, cfg.AdminEmail, cfg.AdminPass); err != nil {
			fatal("failed to seed admin", err)
		}
	} else if n, err := acctStore.Count(ctx); err == nil && n == 0 {
		slog.Warn("no_staff_accounts", "hint", "set FITNESS_ADMIN_EMAIL and FITNESS_ADMIN_PASSWORD to seed one")
	}

	var verifier identity.TokenVerifier
	if cfg.GoogleID != "" {
		verifier = identity.NewGoogleVerifier(cfg.GoogleID)
	}

	csrfKey, err := cfg.CSRFKey()
	if err != nil {
		fatal("csrf key unavailable", err)
	}

	srv, err := web.NewServer(web.Deps{
		Accounts: acctStore,
		Sink:     recorder,
		Completer: ai.NewOpenRouterClient(ai.OpenRouterConfig{
			BaseURL:   cfg.AIBaseURL,
			Model:     cfg.AIModel,
			Timeout:   cfg.AITimeout,
			Collector: collector,
		}),
		Verifier:        verifier,
		Collector:       collector,
		DeploymentAIKey: cfg.AIKey,
		GoogleClientID:  cfg.GoogleID,
		CSRFKey:         csrfKey,
		SecureCookies:   cfg.Production(),
		TrustedOrigins:  cfg.TrustedOrigins,
		SlowRequest:     cfg.SlowRequest,
	})
	if err != nil {
		fatal("failed to build server", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.AITimeout + 10*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown_failed", "error", err)
		}
	}()

	slog.Info("server_starting", "version", version, "schema", storage.LatestSchemaVersion(), "records", backend, "config", cfg)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fatal("server failed", err)
	}
	// ListenAndServe returns as soon as the listener closes; handlers still
	// running may hand records to the recorder until Shutdown returns.
	<-drained
	recorder.Wait()
	slog.Info("server_stopped")
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
