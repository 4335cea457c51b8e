package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/wirerelay/internal/config"
	"github.com/vovakirdan/wirerelay/internal/core"
	transporthttp "github.com/vovakirdan/wirerelay/internal/transport/http"
	"github.com/vovakirdan/wirerelay/internal/transport/tcp"
)

// App wires together core and transport layers.
type App struct {
	hub             *core.Hub
	tcp             *tcp.Server
	admin           *stdhttp.Server
	shutdownTimeout time.Duration
	log             *zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New constructs the application with provided configuration. The chat
// listener is bound here so that a busy port fails before anything starts.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = core.DefaultWorkers()
	}

	hub := core.NewHub(core.Options{
		Workers:          workers,
		ClientsPerWorker: cfg.ClientsPerWorker,
		MaxFrameSize:     cfg.MaxFrameSize,
		WriteTimeout:     cfg.WriteTimeout,
	}, logger)

	srv, err := tcp.Listen(cfg.Addr, hub, cfg.AcceptRate, cfg.AcceptBurst, logger)
	if err != nil {
		return nil, fmt.Errorf("init chat listener: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		hub:             hub,
		tcp:             srv,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
		ctx:             ctx,
		cancel:          cancel,
	}
	if cfg.AdminAddr != "" {
		a.admin = transporthttp.NewServer(ctx, hub, cfg, logger)
	}

	logger.Info().Int("workers", hub.Workers()).Msg("workers detected")
	logger.Info().Int("max_users", hub.MaxClients()).Msg("capacity")

	return a, nil
}

// Addr returns the chat listener address.
func (a *App) Addr() string {
	return a.tcp.Addr().String()
}

// Hub exposes the relay core.
func (a *App) Hub() *core.Hub {
	return a.hub
}

// Run serves until ctx is cancelled or a listener fails.
func (a *App) Run(ctx context.Context) error {
	defer a.cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		a.log.Info().Str("addr", a.Addr()).Msg("chat listener started")
		return a.tcp.Serve(gctx)
	})

	if a.admin != nil {
		g.Go(func() error {
			a.log.Info().Str("addr", a.admin.Addr).Msg("admin server started")
			if err := a.admin.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				return fmt.Errorf("admin server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.shutdown()
		return nil
	})

	return g.Wait()
}

func (a *App) shutdown() {
	a.log.Info().Msg("shutting down")

	_ = a.tcp.Close()
	a.cancel()

	if a.admin != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()
		if err := a.admin.Shutdown(shutdownCtx); err != nil {
			a.log.Warn().Err(err).Msg("admin server shutdown")
		}
	}

	a.hub.Close()
	a.log.Info().Msg("clients disconnected")
}
