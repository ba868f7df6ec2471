package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/nodo/internal/adapters/http/client"
	"github.com/okian/nodo/internal/app"
	"github.com/okian/nodo/internal/cli"
	"github.com/okian/nodo/internal/config"
	"github.com/okian/nodo/internal/session"
	"github.com/okian/nodo/pkg/logger"
	"github.com/okian/nodo/pkg/metrics"
)

// HTTP server timeout constants for the metrics endpoint.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	// Logs go to stderr; stdout belongs to the rendered view.
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}
	if cfg.LogJSON {
		_ = logger.Init(logger.WithJSON(true))
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if cfg.MetricsAddr != "" {
		// A failed metrics listener is logged; the client keeps running.
		srv, _ := startMetricsServer(ctx, cfg.MetricsAddr, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error(ctx, "metrics server shutdown failed", logger.Error(err))
			}
		}()
	}

	sess := session.New(session.NewFileStore(cfg.SessionFile))
	api := client.New(cfg.BackendURL, sess, client.WithLogger(log.Named("client")))
	shell := app.NewShell(api, sess, app.WithLogger(log))
	if err := shell.Start(ctx); err != nil {
		log.Warn(ctx, "initial dashboard load failed", logger.Error(err))
	}

	term := cli.New(shell, api, os.Stdout, cli.WithLogger(log.Named("cli")))

	// The scanner cannot be interrupted, so a signal ends the process
	// without waiting for the next line.
	done := make(chan error, 1)
	go func() { done <- term.Run(ctx, os.Stdin) }()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error(ctx, "terminal failed", logger.Error(err))
			return 1
		}
	case <-ctx.Done():
		os.Stdout.WriteString("\n")
	}
	return 0
}

// startMetricsServer serves the client's Prometheus registry at /metrics.
// A listener failure is logged and delivered once on the returned channel,
// wrapped in metrics.ErrServe; the channel closes when the server stops.
func startMetricsServer(ctx context.Context, addr string, log logger.Logger) (*http.Server, <-chan error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		log.Info(ctx, "serving metrics", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("%w: %s: %w", metrics.ErrServe, addr, err)
			log.Error(ctx, "metrics server failed", logger.Error(err))
			errs <- err
		}
	}()
	return srv, errs
}
