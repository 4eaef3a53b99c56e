package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"activityhub/internal/adapters/email"
	web "activityhub/internal/adapters/http"
	"activityhub/internal/adapters/http/perf"
	"activityhub/internal/adapters/storage/hub"
	"activityhub/internal/adapters/storage/seed"
	"activityhub/internal/config"
)

// shutdownGrace bounds how long in-flight requests and notices get after a
// signal.
const shutdownGrace = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string

	// ready, when set, receives the bound address once the listener is up.
	ready chan<- string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions, version string) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the activities API.

The relational store is opened at --db. If it cannot be opened the server
keeps running on an in-memory store and logs a single store_degraded warning.

Example:
  activityhub serve --addr :3000 --db ./database.sqlite
  activityhub serve --driver memory`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.Config
			if opts.Addr != "" {
				cfg.Addr = opts.Addr
			}
			return runServe(cmd.Context(), cfg, version, opts.ready)
		},
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides ACTIVITIES_ADDR / PORT)")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config, version string, ready chan<- string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fixtures, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return err
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	opened := hub.Open(ctx, hub.Options{
		Driver:    cfg.DBDriver,
		Path:      cfg.DBPath,
		Seeds:     fixtures,
		Collector: collector,
	})
	defer func() {
		if err := opened.Store.Close(); err != nil {
			slog.Error("store_close_failed", "error", err)
		}
	}()

	csrfKey, err := web.LoadCSRFKey(cfg.CSRFKey, cfg.IsProduction())
	if err != nil {
		return err
	}

	srv := web.NewServer(web.Options{
		Store:         opened.Store,
		Degraded:      opened.Degraded,
		Collector:     collector,
		Sender:        newSender(cfg),
		EmailFrom:     cfg.ResendFrom,
		StaticDir:     cfg.StaticDir,
		CORSOrigins:   cfg.CORSOrigins,
		CSRFKey:       csrfKey,
		SecureCookies: cfg.IsProduction(),
		RateLimit:     cfg.RateLimit,
		SlowRequestMs: cfg.SlowRequestMs,
	})

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	slog.Info("server_starting", "version", version, "addr", ln.Addr().String(),
		"env", cfg.Env, "backend", opened.Store.Backend(), "degraded", opened.Degraded)
	if ready != nil {
		ready <- ln.Addr().String()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.Serve(ln) }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	// Notices read the store; the deferred Close must not run under them.
	if err := srv.WaitBackground(shutdownCtx); err != nil {
		slog.Warn("join_notices_abandoned", "error", err)
	}
	return nil
}

func newSender(cfg config.Config) email.Sender {
	if cfg.ResendKey != "" {
		slog.Info("email_sender_configured", "provider", "resend")
		return email.NewResendSender(cfg.ResendKey, cfg.ResendFrom)
	}
	if cfg.IsProduction() {
		slog.Warn("email_sender_disabled", "hint", "set ACTIVITIES_RESEND_KEY for real delivery")
	}
	return email.NewNoopSender()
}
