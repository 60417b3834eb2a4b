package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collectible-order/internal/domain"
)

func TestAttemptRepo(t *testing.T) {
	db := newTestDB(t)
	repo := NewAttemptRepo(db)

	t.Run("Create then UpdateStatus keeps token and order id", func(t *testing.T) {
		ctx := context.Background()
		truncate(t, db)

		a := &domain.PurchaseAttempt{MemberID: 1, ProductID: 10, WalletAddress: "0xABC", Price: 100, Status: domain.AttemptCharging}
		require.NoError(t, repo.Create(ctx, a))

		require.NoError(t, repo.UpdateStatus(ctx, a.ID, domain.AttemptMinted, "TOKEN-1", uuid.Nil))
		orderID := uuid.New()
		require.NoError(t, repo.UpdateStatus(ctx, a.ID, domain.AttemptCompleted, "", orderID))

		got, err := repo.FindById(ctx, a.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, domain.AttemptCompleted, got.Status)
		assert.Equal(t, "TOKEN-1", got.TokenID)
		assert.Equal(t, orderID, got.OrderID)
		assert.Equal(t, int64(100), got.Price)
	})

	t.Run("FindUnresolved returns failures and stale in-flight attempts", func(t *testing.T) {
		ctx := context.Background()
		truncate(t, db)

		old := time.Now().UTC().Add(-time.Hour)
		insert := func(status domain.AttemptStatus, at time.Time) uuid.UUID {
			a := &domain.PurchaseAttempt{MemberID: 1, ProductID: 10, WalletAddress: "0xABC", Price: 100, Status: status, CreatedAt: at}
			require.NoError(t, repo.Create(ctx, a))
			return a.ID
		}
		refundFailed := insert(domain.AttemptRefundFailed, time.Now().UTC())
		persistFailed := insert(domain.AttemptPersistFailed, time.Now().UTC())
		staleCharged := insert(domain.AttemptCharged, old)
		insert(domain.AttemptCharged, time.Now().UTC())
		insert(domain.AttemptCompleted, old)
		insert(domain.AttemptRefunded, old)
		insert(domain.AttemptFlagged, old)

		got, err := repo.FindUnresolved(ctx, time.Now().UTC().Add(-5*time.Minute), 10)
		require.NoError(t, err)

		ids := make([]uuid.UUID, 0, len(got))
		for _, a := range got {
			ids = append(ids, a.ID)
		}
		assert.ElementsMatch(t, []uuid.UUID{refundFailed, persistFailed, staleCharged}, ids)
	})
}
