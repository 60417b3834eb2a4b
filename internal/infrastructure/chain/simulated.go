package chain

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"
)

// Outcome forces the result of the next simulated call.
type Outcome int

const (
	Random Outcome = iota
	Succeed
	Fail
)

// SimulatedGateway stands in for the chain. Charges succeed 80% of the time
// and mints 85% of the time unless an outcome is forced. Every charge and
// refund is recorded per wallet.
type SimulatedGateway struct {
	mu      sync.Mutex
	latency time.Duration
	charge  Outcome
	mint    Outcome
	refund  Outcome

	charged  map[string]int64
	refunded map[string]int64
	minted   map[string]string
}

func NewSimulatedGateway(latency time.Duration) *SimulatedGateway {
	return &SimulatedGateway{
		latency:  latency,
		charged:  make(map[string]int64),
		refunded: make(map[string]int64),
		minted:   make(map[string]string),
	}
}

// Force fixes the outcomes of subsequent charge, mint and refund calls.
func (g *SimulatedGateway) Force(charge, mint, refund Outcome) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.charge, g.mint, g.refund = charge, mint, refund
}

func (g *SimulatedGateway) ChargeFee(ctx context.Context, price int64, from string) (bool, error) {
	if err := g.wait(ctx); err != nil {
		return false, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !decide(g.charge, 80) {
		return false, errors.New("insufficient balance")
	}
	g.charged[from] += price
	return true, nil
}

func (g *SimulatedGateway) Mint(ctx context.Context, to, metadataURI, contractAlias string) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !decide(g.mint, 85) {
		return "", nil
	}
	tokenID := NewTokenID()
	g.minted[tokenID] = to
	return tokenID, nil
}

func (g *SimulatedGateway) Refund(ctx context.Context, price int64, to string) error {
	if err := g.wait(ctx); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !decide(g.refund, 100) {
		return errors.New("fee address locked")
	}
	g.refunded[to] += price
	return nil
}

// Balance returns the net amount taken from a wallet so far.
func (g *SimulatedGateway) Balance(wallet string) (charged, refunded int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.charged[wallet], g.refunded[wallet]
}

func (g *SimulatedGateway) MintedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.minted)
}

func (g *SimulatedGateway) wait(ctx context.Context) error {
	if g.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(g.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func decide(o Outcome, successPercent int) bool {
	switch o {
	case Succeed:
		return true
	case Fail:
		return false
	default:
		return rand.IntN(100) < successPercent
	}
}
