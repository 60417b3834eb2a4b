package domain

import (
	"time"

	"github.com/google/uuid"
)

type AttemptStatus string

const (
	AttemptCharging      AttemptStatus = "CHARGING"
	AttemptCharged       AttemptStatus = "CHARGED"
	AttemptMinted        AttemptStatus = "MINTED"
	AttemptCompleted     AttemptStatus = "COMPLETED"
	AttemptChargeFailed  AttemptStatus = "CHARGE_FAILED"
	AttemptRefunded      AttemptStatus = "REFUNDED"
	AttemptRefundFailed  AttemptStatus = "REFUND_FAILED"
	AttemptPersistFailed AttemptStatus = "PERSIST_FAILED"
	AttemptFlagged       AttemptStatus = "FLAGGED"
)

// InFlight reports whether the saga that owns the attempt had not reached
// a terminal state when it was last recorded.
func (s AttemptStatus) InFlight() bool {
	return s == AttemptCharging || s == AttemptCharged || s == AttemptMinted
}

// PurchaseAttempt journals one submitOrder call from the payment step on.
// It exists so that charges without a matching order can be found later.
type PurchaseAttempt struct {
	ID            uuid.UUID
	MemberID      int64
	ProductID     int64
	WalletAddress string
	Price         int64
	TokenID       string
	OrderID       uuid.UUID
	Status        AttemptStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
