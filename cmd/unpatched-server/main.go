// Unpatched Server is the control plane for fleet agents. It stores hosts,
// scripts and schedules, and dispatches due script executions to connected
// agents over WebSocket sessions.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/unpatched/unpatched-server/pkg/api"
	"github.com/unpatched/unpatched-server/pkg/auth"
	"github.com/unpatched/unpatched-server/pkg/config"
	"github.com/unpatched/unpatched-server/pkg/database"
	"github.com/unpatched/unpatched-server/pkg/session"
	"github.com/unpatched/unpatched-server/pkg/store"
	"github.com/unpatched/unpatched-server/pkg/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("Failed to load configuration from environment", "error", err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:          version.AppName,
		Short:        "Control plane for unpatched fleet agents",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}

	// Flag defaults come from the UNPATCHED_* environment, so a set flag
	// always wins over a set variable.
	f := rootCmd.Flags()
	f.StringVar(&cfg.Bind, "bind", cfg.Bind, "address to listen on")
	f.IntVar(&cfg.Port, "port", cfg.Port, "port to listen on")
	f.BoolVar(&cfg.NoTLS, "no-tls", cfg.NoTLS, "serve plain HTTP instead of TLS")
	f.StringVar(&cfg.CertFolder, "cert-folder", cfg.CertFolder,
		"folder holding cert.pem and key.pem; a self-signed pair is generated on first start")
	f.BoolVar(&cfg.SevenPartCron, "seven-part-cron", cfg.SevenPartCron,
		"accept cron expressions with seconds and year fields")
	f.StringVar(&cfg.InitUser, "init-user", cfg.InitUser,
		"email of an admin account ensured at startup")
	f.StringVar(&cfg.InitPassword, "init-password", cfg.InitPassword,
		"password for the --init-user account")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("Starting unpatched-server",
		"version", version.GitCommit,
		"addr", cfg.Addr(),
		"tls", !cfg.NoTLS)

	ctx := context.Background()

	// 1. Open the database, run migrations, seed the sample data.
	dbClient, err := database.NewClient(ctx, cfg.DatabasePath)
	if err != nil {
		slog.Error("Failed to open database", "path", cfg.DatabasePath, "error", err)
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			slog.Error("Error closing database", "error", err)
		}
	}()

	st := store.New(dbClient.DB())
	if err := st.SeedSampleData(ctx); err != nil {
		slog.Error("Failed to seed sample data", "error", err)
		return err
	}

	// 2. Ensure the bootstrap account when the operator asked for one.
	if cfg.InitUser != "" || cfg.InitPassword != "" {
		if err := auth.EnsureUser(ctx, st, cfg.InitUser, cfg.InitPassword); err != nil {
			slog.Error("Failed to ensure bootstrap user", "email", cfg.InitUser, "error", err)
			return err
		}
	}

	// 3. Token signing and login services.
	secret, err := auth.LoadOrCreateSecret(cfg.SecretPath)
	if err != nil {
		slog.Error("Failed to load signing secret", "path", cfg.SecretPath, "error", err)
		return err
	}
	issuer := auth.NewTokenIssuer(secret)
	authorizer := auth.NewAuthorizer(st, issuer)

	// 4. Session registry and HTTP server.
	sessions := session.NewManager()
	server := api.NewServer(cfg, dbClient, st, authorizer, issuer, sessions)

	// 5. TLS material, generated on first start.
	var certFile, keyFile string
	if !cfg.NoTLS {
		certFile, keyFile, err = ensureCertificates(cfg.CertFolder, cfg.Bind)
		if err != nil {
			slog.Error("Failed to prepare certificates", "folder", cfg.CertFolder, "error", err)
			return err
		}
	}

	// 6. Start serving (non-blocking).
	errCh := make(chan error, 1)
	go func() {
		var serveErr error
		if cfg.NoTLS {
			serveErr = server.Start(cfg.Addr())
		} else {
			serveErr = server.StartTLS(cfg.Addr(), certFile, keyFile)
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()
	slog.Info("Server listening", "addr", cfg.Addr(), "tls", !cfg.NoTLS)

	// 7. Wait for a shutdown signal or a listener failure.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	var fatalErr error
	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case fatalErr = <-errCh:
		slog.Error("Server failed, shutting down", "error", fatalErr)
	}

	// 8. Graceful shutdown: drop the agent sessions first so their handlers
	// return, then drain the HTTP server.
	sessions.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
	return fatalErr
}
