package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"SETPulse/internal/usecase"
	"SETPulse/pkg/config"
	xhttp "SETPulse/pkg/http"
	applogger "SETPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	streamer   *usecase.Streamer
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. streamer may
// be nil when the realtime feed is disabled.
func New(cfg *config.Config, log *applogger.Logger, handler xhttp.Handler, streamer *usecase.Streamer) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		handler:  handler,
		streamer: streamer,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithRequestMetrics(a.log, 0),
	)

	if a.streamer != nil {
		go func() {
			if err := a.streamer.Run(ctx); err != nil && ctx.Err() == nil {
				a.log.Error("quote streamer error", applogger.Error(err))
			}
		}()
		a.log.Info("quote streamer started", applogger.Strings("symbols", a.cfg.Stream.Symbols))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown(context.Background())
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}
