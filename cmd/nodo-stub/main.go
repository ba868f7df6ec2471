package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/nodo/internal/domain/model"
	"github.com/okian/nodo/internal/testbackend"
	"github.com/okian/nodo/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// demoPassword is shared by the -seed accounts.
const demoPassword = "password"

func main() {
	var (
		addr     = flag.String("addr", "127.0.0.1:8000", "Listen address")
		secret   = flag.String("secret", "", "HS256 signing key (random when empty)")
		seed     = flag.Bool("seed", false, "Create verified demo accounts dev@nodo.local and contractor@nodo.local")
		logLevel = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := logger.SetLevelString(*logLevel); err != nil {
		log.Warn(ctx, "invalid log level; falling back to info", logger.String("log_level", *logLevel))
		_ = logger.SetLevelString("info")
	}

	backend := testbackend.New(
		testbackend.WithLogger(log.Named("stub")),
		testbackend.WithSecret([]byte(*secret)),
	)
	if *seed {
		for _, r := range []model.Registration{
			{Name: "Demo Developer", Email: "dev@nodo.local", Password: demoPassword, Role: model.RoleDeveloper},
			{Name: "Demo Contractor", Email: "contractor@nodo.local", Password: demoPassword, Role: model.RoleContractor},
		} {
			if _, err := backend.SeedUser(r); err != nil {
				log.Error(ctx, "seed failed", logger.Error(err))
				os.Exit(1)
			}
			log.Info(ctx, "seeded account", logger.String("email", r.Email), logger.String("role", string(r.Role)))
		}
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           backend,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting stub backend", logger.String("addr", *addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "stub backend failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down stub backend...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "stub backend shutdown failed", logger.Error(err))
	}
}
