package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"collectible-order/internal/domain"
	"collectible-order/internal/repo"
)

// journal records purchase attempts. Every write is best-effort: a failure
// is logged and the saga carries on with the same outcome.
type journal struct {
	repo repo.AttemptRepo
	log  *slog.Logger
}

func (j *journal) begin(ctx context.Context, memberID, productID int64, wallet string, price int64) *domain.PurchaseAttempt {
	if j.repo == nil {
		return nil
	}
	a := &domain.PurchaseAttempt{
		MemberID:      memberID,
		ProductID:     productID,
		WalletAddress: wallet,
		Price:         price,
		Status:        domain.AttemptCharging,
	}
	if err := j.repo.Create(ctx, a); err != nil {
		j.log.Warn("purchase attempt not journaled", "member_id", memberID, "product_id", productID, "error", err)
		return nil
	}
	return a
}

func (j *journal) mark(ctx context.Context, a *domain.PurchaseAttempt, status domain.AttemptStatus, tokenID string, orderID uuid.UUID) {
	if j.repo == nil || a == nil {
		return
	}
	if err := j.repo.UpdateStatus(ctx, a.ID, status, tokenID, orderID); err != nil {
		j.log.Warn("purchase attempt status not journaled", "attempt_id", a.ID, "status", status, "error", err)
		return
	}
	a.Status = status
	if tokenID != "" {
		a.TokenID = tokenID
	}
	if orderID != uuid.Nil {
		a.OrderID = orderID
	}
}
