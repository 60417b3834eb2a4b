package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"collectible-order/internal/domain"
)

type refund struct {
	Price int64
	To    string
}

// fakeChain records every chain call. Hooks override the default outcome.
type fakeChain struct {
	mu sync.Mutex

	chargeFn func(ctx context.Context) (bool, error)
	mintFn   func(ctx context.Context) (string, error)
	refundFn func(ctx context.Context) error

	charges  []refund
	mints    int
	mintArgs []mintCall
	refunds  []refund
}

type mintCall struct {
	To            string
	MetadataURI   string
	ContractAlias string
}

func (c *fakeChain) ChargeFee(ctx context.Context, price int64, from string) (bool, error) {
	c.mu.Lock()
	c.charges = append(c.charges, refund{Price: price, To: from})
	fn := c.chargeFn
	c.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return true, nil
}

func (c *fakeChain) Mint(ctx context.Context, to, metadataURI, contractAlias string) (string, error) {
	c.mu.Lock()
	c.mints++
	c.mintArgs = append(c.mintArgs, mintCall{To: to, MetadataURI: metadataURI, ContractAlias: contractAlias})
	fn := c.mintFn
	c.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return "TOKEN-1", nil
}

func (c *fakeChain) Refund(ctx context.Context, price int64, to string) error {
	c.mu.Lock()
	c.refunds = append(c.refunds, refund{Price: price, To: to})
	fn := c.refundFn
	c.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil
}

type rangeCall struct {
	Method     string
	MemberID   int64
	Start, End time.Time
}

type fakeOrders struct {
	mu      sync.Mutex
	orders  []domain.Order
	saveErr error
	listErr error
	calls   []rangeCall
}

func (r *fakeOrders) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *fakeOrders) Save(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	r.orders = append(r.orders, *order)
	return nil
}

func (r *fakeOrders) FindById(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, nil
}

func (r *fakeOrders) UpdateMemo(_ context.Context, id uuid.UUID, memo string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders[i].Memo = memo
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *fakeOrders) FindAll(_ context.Context, _ domain.Page) ([]domain.Order, error) {
	return r.filter(rangeCall{Method: "FindAll"}, func(domain.Order) bool { return true })
}

func (r *fakeOrders) FindByDateRange(_ context.Context, start, end time.Time, _ domain.Page) ([]domain.Order, error) {
	return r.filter(rangeCall{Method: "FindByDateRange", Start: start, End: end}, func(o domain.Order) bool {
		return within(o, start, end)
	})
}

func (r *fakeOrders) FindByMember(_ context.Context, memberID int64, _ domain.Page) ([]domain.Order, error) {
	return r.filter(rangeCall{Method: "FindByMember", MemberID: memberID}, func(o domain.Order) bool {
		return o.MemberID == memberID
	})
}

func (r *fakeOrders) FindByMemberAndDateRange(_ context.Context, memberID int64, start, end time.Time, _ domain.Page) ([]domain.Order, error) {
	call := rangeCall{Method: "FindByMemberAndDateRange", MemberID: memberID, Start: start, End: end}
	return r.filter(call, func(o domain.Order) bool {
		return o.MemberID == memberID && within(o, start, end)
	})
}

func (r *fakeOrders) filter(call rangeCall, keep func(domain.Order) bool) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []domain.Order
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out, nil
}

func within(o domain.Order, start, end time.Time) bool {
	return !o.OrderDate.Before(start) && !o.OrderDate.After(end)
}

type fakeAttempts struct {
	mu        sync.Mutex
	attempts  map[uuid.UUID]*domain.PurchaseAttempt
	history   []domain.AttemptStatus
	createErr error
}

func newFakeAttempts() *fakeAttempts {
	return &fakeAttempts{attempts: make(map[uuid.UUID]*domain.PurchaseAttempt)}
}

func (r *fakeAttempts) Create(_ context.Context, a *domain.PurchaseAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	a.ID = uuid.New()
	cp := *a
	r.attempts[a.ID] = &cp
	r.history = append(r.history, a.Status)
	return nil
}

func (r *fakeAttempts) UpdateStatus(_ context.Context, id uuid.UUID, status domain.AttemptStatus, tokenID string, orderID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.Status = status
	if tokenID != "" {
		a.TokenID = tokenID
	}
	if orderID != uuid.Nil {
		a.OrderID = orderID
	}
	r.history = append(r.history, status)
	return nil
}

func (r *fakeAttempts) FindById(_ context.Context, id uuid.UUID) (*domain.PurchaseAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAttempts) FindUnresolved(context.Context, time.Time, int) ([]domain.PurchaseAttempt, error) {
	return nil, nil
}

func (r *fakeAttempts) only() domain.PurchaseAttempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attempts {
		return *a
	}
	return domain.PurchaseAttempt{}
}

type published struct {
	Topic     string
	Key       string
	EventType string
	Event     any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, topic, key, eventType string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{Topic: topic, Key: key, EventType: eventType, Event: event})
	return nil
}

func (p *fakePublisher) Close() error { return nil }

// brokenDirectory resolves wallets but fails every profile lookup.
type brokenDirectory struct {
	wallet    string
	walletErr error
	memberErr error
}

func (d brokenDirectory) FindWallet(context.Context, int64) (string, error) {
	return d.wallet, d.walletErr
}

func (d brokenDirectory) FindMember(context.Context, int64) (*domain.Member, error) {
	return nil, d.memberErr
}

type brokenCatalog struct{ err error }

func (c brokenCatalog) FindProduct(context.Context, int64) (*domain.Product, error) {
	return nil, c.err
}
