package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/park285/cheese-web/internal/broker"
	"github.com/park285/cheese-web/internal/chess/openingbook"
	"github.com/park285/cheese-web/internal/config"
	"github.com/park285/cheese-web/internal/domain"
	"github.com/park285/cheese-web/internal/httpapi"
	"github.com/park285/cheese-web/internal/msgcat"
	"github.com/park285/cheese-web/internal/obslog"
	"github.com/park285/cheese-web/internal/relay"
	"github.com/park285/cheese-web/internal/render"
	"github.com/park285/cheese-web/internal/session"
)

const sweepInterval = time.Minute

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	logger := obslog.L()
	defer logger.Sync()

	messages, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return fmt.Errorf("loading messages: %w", err)
	}
	openings, err := openingbook.Open(cfg.OpeningCatalogPath)
	if err != nil {
		return fmt.Errorf("loading opening catalog: %w", err)
	}
	logger.Info("opening_catalog_loaded", zap.Int("entries", openings.Len()))

	// --- Event fan-out ---
	var (
		events broker.Broker
		checks []httpapi.HealthCheck
	)
	if cfg.RedisURL != "" {
		rdb, err := broker.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		rb := broker.NewRedisBroker(rdb, logger)
		if err := rb.Ping(ctx); err != nil {
			rb.Close()
			return fmt.Errorf("pinging redis: %w", err)
		}
		events = rb
		checks = append(checks, httpapi.HealthCheck{Name: "redis", Check: rb.Ping})
		logger.Info("broker_redis")
	} else {
		events = broker.NewMemoryBroker()
		logger.Info("broker_memory")
	}
	defer func() { err = multierr.Append(err, events.Close()) }()

	var notifier relay.Notifier
	if cfg.ChatRelayURL != "" {
		notifier = relay.NewClient(cfg.ChatRelayURL, relay.WithTimeout(cfg.ChatRelayTimeout))
		logger.Info("chat_relay_enabled", zap.String("url", cfg.ChatRelayURL))
	}

	mode, _ := domain.ParseMode(cfg.DefaultMode)
	computerSide, _ := domain.ParseSide(cfg.ComputerSide)
	sessions := session.NewManager(session.Options{
		InitialClock:  cfg.InitialClockSeconds(),
		TickInterval:  cfg.TickInterval,
		ComputerDelay: cfg.ComputerDelay,
		ComputerSide:  computerSide,
		Mode:          mode,
		Openings:      openings,
		Messages:      messages,
		Broker:        events,
		Relay:         notifier,
		RelayTimeout:  cfg.ChatRelayTimeout,
		Logger:        logger,
	}, session.WithMaxSessions(cfg.MaxSessions), session.WithIdleTTL(cfg.SessionIdleTTL))
	defer sessions.Close()

	srv := httpapi.New(cfg.HTTPAddr, httpapi.Deps{
		Sessions: sessions,
		Broker:   events,
		Renderer: render.NewRenderer(),
		Openings: openings,
		Checks:   checks,
		Logger:   logger,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http_starting", zap.String("addr", cfg.HTTPAddr))
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("http_shutting_down")
		return srv.Shutdown(context.Background())
	})

	g.Go(func() error {
		t := time.NewTicker(sweepInterval)
		defer t.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-t.C:
				sessions.Sweep(now)
			}
		}
	})

	return g.Wait()
}
