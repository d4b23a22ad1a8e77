package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mailprobe/mailprobe/internal/api"
	"github.com/mailprobe/mailprobe/internal/config"
	"github.com/mailprobe/mailprobe/internal/finder"
	"github.com/mailprobe/mailprobe/internal/logging"
	"github.com/mailprobe/mailprobe/internal/metrics"
	"github.com/mailprobe/mailprobe/internal/mx"
	"github.com/mailprobe/mailprobe/internal/probe"
	"github.com/mailprobe/mailprobe/internal/verify"
)

func runServe() {
	flags := config.ParseFlags()

	cfg, err := config.LoadWithFlags(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	collector, metricsServer := metrics.New(metrics.Config{
		Enabled: cfg.Metrics.Enabled,
		Address: cfg.Metrics.Address,
		Path:    cfg.Metrics.Path,
	})
	if cfg.Metrics.Enabled {
		go func() {
			logger.Info("metrics server listening",
				"address", cfg.Metrics.Address,
				"path", cfg.Metrics.Path)
			if err := metricsServer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	verifier, search := buildStack(cfg, collector, logger)

	srv := api.New(api.Config{
		Address:        cfg.Server.Address,
		ReadTimeout:    cfg.Server.ReadTimeoutDuration(),
		WriteTimeout:   cfg.Server.WriteTimeoutDuration(),
		RateLimit:      cfg.Server.RateLimit,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxWorkers:     cfg.Verify.MaxWorkers,
		Verifier:       verifier,
		Finder:         search,
		Logger:         logger,
	})

	logger.Info("starting mailprobed",
		"address", cfg.Server.Address,
		"helo_domain", cfg.Verify.HELODomain,
		"max_workers", cfg.Verify.MaxWorkers)

	if err := srv.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// buildStack wires the verification pipeline from the configuration.
// Shared by the serve and check subcommands.
func buildStack(cfg config.Config, collector metrics.Collector, logger *slog.Logger) (*verify.Verifier, *finder.Finder) {
	mxService := mx.NewService(mx.ServiceConfig{
		Resolver: mx.NewResolver(cfg.Verify.DNSTimeoutDuration()),
		TTL:      cfg.Verify.MXCacheTTLDuration(),
		Lifetime: cfg.Verify.DNSLifetimeDuration(),
		Metrics:  collector,
		Logger:   logger,
	})

	prober := probe.New(probe.Config{
		Port:       cfg.Verify.SMTPPort,
		Timeout:    cfg.Verify.SMTPTimeoutDuration(),
		Pause:      cfg.Verify.ProbePauseDuration(),
		HELODomain: cfg.Verify.HELODomain,
		MailFrom:   cfg.Verify.MailFrom,
		Metrics:    collector,
		Logger:     logger,
	})

	verifier := verify.New(verify.Config{
		MX:      mxService,
		Prober:  prober,
		Metrics: collector,
		Logger:  logger,
	})

	search := finder.New(finder.Config{
		Verifier: verifier,
		Metrics:  collector,
		Logger:   logger,
	})

	return verifier, search
}
