package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"collectible-order/internal/domain"
	"collectible-order/internal/repo"
)

const batchSize = 100

// ReconciliationWorker reports purchase attempts that ended with money or a
// token out of place: failed refunds, minted tokens without an order, and
// sagas that stopped mid-flight. It flags them for manual follow-up and
// never moves funds itself.
type ReconciliationWorker struct {
	attempts   repo.AttemptRepo
	interval   time.Duration
	staleAfter time.Duration
	log        *slog.Logger
	now        func() time.Time
}

func NewReconciliationWorker(
	attempts repo.AttemptRepo,
	interval time.Duration,
	staleAfter time.Duration,
	logger *slog.Logger,
) *ReconciliationWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconciliationWorker{
		attempts:   attempts,
		interval:   interval,
		staleAfter: staleAfter,
		log:        logger.With("component", "reconciliation"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run scans on every tick until ctx is done.
func (rw *ReconciliationWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()

	rw.log.Info("reconciliation worker started", "interval", rw.interval, "stale_after", rw.staleAfter)

	for {
		select {
		case <-ctx.Done():
			rw.log.Info("reconciliation worker stopped")
			return nil
		case <-ticker.C:
			if _, err := rw.Scan(ctx); err != nil {
				rw.log.Error("reconciliation scan failed", "error", err)
			}
		}
	}
}

// Scan flags every unresolved attempt once and returns how many it flagged.
func (rw *ReconciliationWorker) Scan(ctx context.Context) (int, error) {
	unresolved, err := rw.attempts.FindUnresolved(ctx, rw.now().Add(-rw.staleAfter), batchSize)
	if err != nil {
		return 0, err
	}
	if len(unresolved) == 0 {
		return 0, nil
	}

	rw.log.Warn("unresolved purchase attempts found", "count", len(unresolved))

	flagged := 0
	for _, a := range unresolved {
		rw.log.Error("purchase attempt needs manual reconciliation",
			"attempt_id", a.ID,
			"status", a.Status,
			"reason", reason(a.Status),
			"member_id", a.MemberID,
			"product_id", a.ProductID,
			"wallet", a.WalletAddress,
			"price", a.Price,
			"token_id", a.TokenID,
			"created_at", a.CreatedAt,
		)
		if err := rw.attempts.UpdateStatus(ctx, a.ID, domain.AttemptFlagged, "", uuid.Nil); err != nil {
			rw.log.Warn("could not flag purchase attempt", "attempt_id", a.ID, "error", err)
			continue
		}
		flagged++
	}
	return flagged, nil
}

func reason(s domain.AttemptStatus) string {
	switch s {
	case domain.AttemptRefundFailed:
		return "fee charged, mint failed and refund failed"
	case domain.AttemptPersistFailed:
		return "fee charged and token minted but no order saved"
	case domain.AttemptCharging:
		return "charge outcome unknown"
	case domain.AttemptCharged:
		return "fee charged, mint outcome unknown"
	case domain.AttemptMinted:
		return "token minted, order outcome unknown"
	default:
		return string(s)
	}
}
