package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobmcallan/stockview/internal/app"
	"github.com/bobmcallan/stockview/internal/common"
	"github.com/bobmcallan/stockview/internal/server"
)

func main() {
	a, err := app.NewApp(os.Getenv("STOCKVIEW_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	common.PrintBanner(a.Config, a.Logger)

	// Resolve the working portfolio up front; the page retries on load.
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Backend.GetTimeout())
	if err := a.ResolvePortfolio(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Portfolio not resolved at startup")
	}
	cancel()

	srv := server.NewServer(a)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			a.Logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	a.Logger.Info().
		Str("url", a.Config.ServiceURL()).
		Msg("Server ready")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	common.PrintShutdownBanner(a.Logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	a.Close()
	a.Logger.Info().Msg("Server stopped")
}
