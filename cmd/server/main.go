package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"collectible-order/internal/config"
	"collectible-order/internal/database"
	"collectible-order/internal/infrastructure/catalog"
	"collectible-order/internal/infrastructure/chain"
	"collectible-order/internal/infrastructure/member"
	"collectible-order/internal/infrastructure/messaging"
	"collectible-order/internal/repo"
	"collectible-order/internal/service"
	transporthttp "collectible-order/internal/transport/http"
	"collectible-order/internal/worker"
)

const (
	startupTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	if cfg.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	db, err := database.NewPostgres(startCtx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(startCtx, db); err != nil {
		return err
	}

	// Step deadlines come from the request context; this only caps stuck
	// connections.
	httpClient := &http.Client{Timeout: time.Minute}

	payments, minter := newChain(cfg, httpClient, logger)
	events := newPublisher(cfg, logger)
	defer events.Close()

	attempts := repo.NewAttemptRepo(db)
	svc := service.NewOrderService(service.Deps{
		Members:  member.NewClient(cfg.MemberServiceURL, httpClient),
		Catalog:  catalog.NewClient(cfg.ProductServiceURL, httpClient),
		Payments: payments,
		Minter:   minter,
		Orders:   repo.NewOrderRepo(db),
		Attempts: attempts,
		Events:   events,
		Topic:    cfg.Kafka.Topic,
		Timeouts: cfg.Timeouts,
		Logger:   logger,
	})
	reconciler := worker.NewReconciliationWorker(attempts, cfg.Reconcile.Interval, cfg.Reconcile.StaleAfter, logger)

	health := func(ctx context.Context) map[string]string { return database.Health(ctx, db) }
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           transporthttp.NewRouter(svc, health, cfg.CORSOrigins, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", "addr", server.Addr, "chain", cfg.ChainMode, "broker", cfg.EventBroker)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return reconciler.Run(gctx)
	})
	if mem, ok := events.(*messaging.MemoryPublisher); ok {
		g.Go(func() error {
			return logEvents(gctx, mem, cfg.Kafka.Topic, logger)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newChain(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (chain.PaymentGateway, chain.TokenMinter) {
	if cfg.ChainMode == config.ChainSimulated {
		logger.Warn("using simulated chain, no KLAY moves")
		gw := chain.NewSimulatedGateway(200 * time.Millisecond)
		return gw, gw
	}
	gw := chain.NewKASGateway(cfg.KAS, httpClient)
	return gw, gw
}

func newPublisher(cfg *config.Config, logger *slog.Logger) messaging.Publisher {
	if cfg.EventBroker == config.BrokerMemory {
		return messaging.NewMemoryPublisher(logger, false)
	}
	return messaging.NewKafkaPublisher(cfg.Kafka.Brokers)
}

// logEvents drains the in-process topic so events are visible without a
// broker.
func logEvents(ctx context.Context, pub *messaging.MemoryPublisher, topic string, logger *slog.Logger) error {
	msgs, err := pub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}
	for msg := range msgs {
		logger.Info("event delivered",
			"topic", topic,
			"event_type", msg.Metadata.Get(messaging.HeaderEventType),
			"key", msg.Metadata.Get(messaging.HeaderKey),
		)
		msg.Ack()
	}
	return nil
}
