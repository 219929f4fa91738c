package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"raindrop-mcp/internal/config"
	"raindrop-mcp/internal/httpserver"
	"raindrop-mcp/internal/httpserver/deps"
	"raindrop-mcp/internal/logger"
	"raindrop-mcp/internal/mcp"
	"raindrop-mcp/internal/raindrop"
	"raindrop-mcp/internal/version"
)

type App struct {
	cfg        *config.Config
	logger     logger.Logger
	dispatcher *mcp.Server
	stdio      *mcp.StdioTransport
	httpServer *httpserver.Server // nil when serving over stdio
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	client, err := raindrop.New(raindrop.Options{
		Token:          cfg.Token,
		BaseURL:        cfg.BaseURL,
		Timeout:        cfg.RequestTimeout,
		MaxRetries:     cfg.MaxRetries,
		RetryBaseDelay: cfg.RetryBaseDelay,
		Logger:         loggerClient,
	})
	if err != nil {
		loggerClient.Errorf("Failed to build Raindrop.io client: %v", err)
		os.Exit(1)
	}

	dispatcher := mcp.NewServer(client, loggerClient)

	a := &App{
		cfg:        cfg,
		logger:     loggerClient,
		dispatcher: dispatcher,
	}

	if cfg.HTTPAddr != "" {
		d := deps.Deps{
			Logger:     loggerClient,
			StartTime:  time.Now(),
			Version:    version.Version,
			Commit:     version.Commit,
			BuildDate:  version.BuildDate,
			GoVersion:  version.GoVersion,
			Dispatcher: dispatcher,
		}
		a.httpServer = httpserver.New(cfg.HTTPAddr, loggerClient, d)
	} else {
		a.stdio = mcp.NewStdioTransport(dispatcher, loggerClient)
	}

	return a
}

func (a *App) Run() error {
	defer func() { _ = a.logger.Sync() }()

	transport := "stdio"
	if a.httpServer != nil {
		transport = "http " + a.cfg.HTTPAddr
	}
	a.logger.Infof("🚀 Starting raindrop-mcp %s (commit=%s, built=%s, go=%s) transport=%s",
		version.Version, version.Commit, version.BuildDate, version.GoVersion, transport)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if a.httpServer != nil {
			errCh <- a.httpServer.Start()
			return
		}
		errCh <- a.stdio.Run(ctx)
	}()

	select {
	case err := <-errCh:
		// Transport finished on its own: client EOF or a fatal transport
		// error. Nothing left to drain.
		return err
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	}

	// Drain window: refuse new meaningful work but keep answering until the
	// grace period runs out, then leave regardless of outstanding operations.
	a.dispatcher.BeginShutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			return err
		}
	} else {
		select {
		case err := <-errCh:
			a.logger.Info("✅ raindrop-mcp stopped cleanly")
			return err
		case <-shutdownCtx.Done():
			a.logger.Warn("drain window elapsed, exiting")
		}
	}

	a.logger.Info("✅ raindrop-mcp stopped cleanly")
	return nil
}
