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

	"github.com/spf13/cobra"

	"github.com/wasteday/wasteday/internal/bootstrap"
	"github.com/wasteday/wasteday/internal/command"
	"github.com/wasteday/wasteday/internal/daemon"
	"github.com/wasteday/wasteday/internal/reporter"
	"github.com/wasteday/wasteday/internal/retention"
	"github.com/wasteday/wasteday/internal/web"
	"github.com/wasteday/wasteday/pkg/detector"
)

func runAgent(cmd *cobra.Command, opts runOptions) error {
	a, err := openApp(&opts)
	if err != nil {
		return err
	}
	defer a.close()

	logger := a.logger

	launch := bootstrap.LaunchFromConfig(a.cfg.Launch, os.Args[1:])
	decision, err := bootstrap.Decide(a.store, launch, logger)
	if err != nil {
		return err
	}

	dm := daemon.New(a.cfg.Daemon.PIDFile)
	if err := dm.WritePID(); err != nil {
		logger.Warn().Err(err).Msg("failed to write PID file")
	}
	defer dm.RemovePID()

	probe := detector.NewProbe(logger)
	surface := command.NewSurface(a.store, probe, reporter.New(a.store, nil), decision)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cleanup := retention.NewService(a.store, a.cfg.Retention, logger)
	if err := cleanup.Start(ctx); err != nil {
		return err
	}
	defer cleanup.Stop()

	webServer := web.NewServer(a.cfg, surface, logger)
	serveErr := make(chan error, 1)
	go func() {
		if err := webServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	logger.Info().
		Str("outcome", string(decision.Outcome)).
		Str("backend", probe.Backend()).
		Str("addr", webServer.GetAddress()).
		Msg("wasteday started")
	logger.Debug().Msg(a.cfg.String())

	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("web server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error shutting down web server")
	}

	logger.Info().Msg("wasteday stopped")
	return nil
}
