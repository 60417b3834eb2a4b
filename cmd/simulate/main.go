package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"collectible-order/internal/config"
	"collectible-order/internal/database"
	"collectible-order/internal/domain"
	"collectible-order/internal/infrastructure/catalog"
	"collectible-order/internal/infrastructure/chain"
	"collectible-order/internal/infrastructure/member"
	"collectible-order/internal/infrastructure/messaging"
	"collectible-order/internal/repo"
	"collectible-order/internal/service"
	"collectible-order/internal/worker"
)

var members = []domain.Member{
	{ID: 1, Email: "alice@example.com", Name: "Alice", WalletAddress: "0xA11CE"},
	{ID: 2, Email: "bob@example.com", Name: "Bob", WalletAddress: "0xB0B"},
	{ID: 3, Email: "carol@example.com", Name: "Carol"},
}

var products = []domain.Product{
	{ID: 10, Title: "Genesis #1", Price: 100, RemainedCount: 50, NftInfo: domain.NftInfo{MetadataURI: "ipfs://genesis/1", ContractAlias: "genesis"}},
	{ID: 11, Title: "Genesis #2", Price: 250, RemainedCount: 10, NftInfo: domain.NftInfo{MetadataURI: "ipfs://genesis/2", ContractAlias: "genesis"}},
}

func main() {
	count := flag.Int("n", 20, "number of purchases to simulate")
	latency := flag.Duration("latency", 50*time.Millisecond, "simulated chain latency per call")
	flag.Parse()

	if err := run(*count, *latency); err != nil {
		fmt.Fprintf(os.Stderr, "simulation failed: %v\n", err)
		os.Exit(1)
	}
}

func run(count int, latency time.Duration) error {
	// The simulation never talks to KAS or Kafka.
	_ = os.Setenv("CHAIN_MODE", config.ChainSimulated)
	_ = os.Setenv("EVENT_BROKER", config.BrokerMemory)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	gateway := chain.NewSimulatedGateway(latency)
	events := messaging.NewMemoryPublisher(logger, false)
	defer events.Close()

	var delivered atomic.Int64
	subCtx, stopSub := context.WithCancel(ctx)
	defer stopSub()
	msgs, err := events.Subscribe(subCtx, cfg.Kafka.Topic)
	if err != nil {
		return err
	}
	go func() {
		for msg := range msgs {
			delivered.Add(1)
			msg.Ack()
		}
	}()

	orders := repo.NewOrderRepo(db)
	attempts := repo.NewAttemptRepo(db)
	svc := service.NewOrderService(service.Deps{
		Members:  member.NewStatic(members...),
		Catalog:  catalog.NewStatic(products...),
		Payments: gateway,
		Minter:   gateway,
		Orders:   orders,
		Attempts: attempts,
		Events:   events,
		Topic:    cfg.Kafka.Topic,
		Timeouts: cfg.Timeouts,
		Logger:   logger,
	})

	fmt.Printf("--- STARTING SIMULATION (%d PURCHASES) ---\n", count)
	outcomes := make(map[string]int)
	for i := 0; i < count; i++ {
		m := members[i%len(members)]
		p := products[i%len(products)]

		fmt.Printf("[%d] member %d buys product %d ... ", i+1, m.ID, p.ID)
		detail, err := svc.SubmitOrder(ctx, m.ID, p.ID)
		if err != nil {
			code := string(domain.CodeInternal)
			var oerr *domain.OrderError
			if errors.As(err, &oerr) {
				code = string(oerr.Code)
			}
			outcomes[code]++
			fmt.Printf("FAILED: %v\n", err)
			continue
		}
		outcomes["CREATED"]++
		fmt.Printf("OK order=%s token=%s\n", detail.ID, detail.TokenID)
	}

	fmt.Println("---------------------------------------------------")
	for code, n := range outcomes {
		fmt.Printf("%-20s %d\n", code, n)
	}
	for _, m := range members {
		charged, refunded := gateway.Balance(m.WalletAddress)
		saved, err := orders.FindByMember(ctx, m.ID, domain.Page{Size: domain.MaxPageSize})
		if err != nil {
			return err
		}
		fmt.Printf("member %d wallet=%q charged=%d refunded=%d orders=%d\n",
			m.ID, m.WalletAddress, charged, refunded, len(saved))
	}
	fmt.Printf("tokens minted: %d\n", gateway.MintedCount())

	time.Sleep(200 * time.Millisecond)
	fmt.Printf("events delivered: %d\n", delivered.Load())

	// Every attempt is stale from the worker's point of view, so anything
	// left unresolved gets reported now.
	reconciler := worker.NewReconciliationWorker(attempts, time.Second, 0, logger)
	flagged, err := reconciler.Scan(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("attempts flagged for reconciliation: %d\n", flagged)
	return nil
}
