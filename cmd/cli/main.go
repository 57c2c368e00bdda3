package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/capgallery/internal/buildinfo"
	"github.com/dmitrijs2005/capgallery/internal/client/cli"
	"github.com/dmitrijs2005/capgallery/internal/client/config"
	"github.com/dmitrijs2005/capgallery/internal/logging"
	"github.com/dmitrijs2005/capgallery/internal/metrics"
	"github.com/dmitrijs2005/capgallery/internal/telemetry"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	shutdown, err := telemetry.Init(ctx, cfg.OTLPEndpoint, buildinfo.Version())
	if err != nil {
		log.Fatalf("telemetry: %v", err)
		return
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn(shutdownCtx, "telemetry shutdown failed", "error", err)
		}
	}()

	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		m = metrics.New()
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, m, logger); err != nil {
				logger.Error(ctx, "metrics listener stopped", "error", err)
			}
		}()
	}

	app, err := cli.NewApp(cfg, logger, m)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
