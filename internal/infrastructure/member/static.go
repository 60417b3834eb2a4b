package member

import (
	"context"
	"sync"

	"collectible-order/internal/domain"
)

// Static is an in-memory Directory used by the simulator.
type Static struct {
	mu      sync.RWMutex
	members map[int64]domain.Member
}

func NewStatic(members ...domain.Member) *Static {
	s := &Static{members: make(map[int64]domain.Member, len(members))}
	for _, m := range members {
		s.members[m.ID] = m
	}
	return s
}

func (s *Static) FindWallet(_ context.Context, memberID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.members[memberID].WalletAddress, nil
}

func (s *Static) FindMember(_ context.Context, memberID int64) (*domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[memberID]
	if !ok {
		return nil, nil
	}
	return &m, nil
}
