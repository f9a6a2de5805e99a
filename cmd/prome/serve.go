package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/promehq/go-prome-client/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		options := []server.Option{server.WithLogger(a.log)}
		if a.registry != nil {
			options = append(options, server.WithProviderRegistry(a.registry))
		}
		gateway, err := server.New(a.cfg, a.sessions, a.api, a.callbacks, options...)
		if err != nil {
			return errors.Wrap(err, "[serve] building gateway")
		}

		if _, restored := a.sessions.Rehydrate(); restored {
			a.log.Info().Msg("restored previous session")
		}

		displayAppName(a.cfg.GetAppName())
		httpServer := &http.Server{Addr: a.cfg.GetPort(), Handler: gateway}

		errCh := make(chan error, 1)
		go func() {
			a.log.Info().Str("addr", httpServer.Addr).Msg("gateway listening")
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return errors.Wrap(err, "[serve] listen")
		case <-stop:
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			return errors.Wrap(err, "[serve] shutdown")
		}
		a.log.Info().Msg("gateway stopped")
		return nil
	},
}

func displayAppName(appName string) {
	figure.NewFigure(appName, "cybermedium", true).Print()
	fmt.Println()
}
