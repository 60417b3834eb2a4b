package catalog

import (
	"context"
	"sync"

	"collectible-order/internal/domain"
)

// Static is an in-memory Catalog used by the simulator.
type Static struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
}

func NewStatic(products ...domain.Product) *Static {
	s := &Static{products: make(map[int64]domain.Product, len(products))}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *Static) FindProduct(_ context.Context, productID int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}
