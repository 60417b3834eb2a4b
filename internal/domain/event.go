package domain

import (
	"time"

	"github.com/google/uuid"
)

const OrderTopic = "order"

// OrderCreatedEvent is published after an order is persisted. It carries
// copies of the product and member so consumers need no extra lookups.
// Delivery is at-least-once and carries no deduplication key.
type OrderCreatedEvent struct {
	ID            uuid.UUID `json:"id"`
	MemberID      int64     `json:"memberId"`
	ProductID     int64     `json:"productId"`
	WalletAddress string    `json:"walletAddress"`
	TokenID       string    `json:"tokenId"`
	Memo          string    `json:"memo"`
	OrderDate     time.Time `json:"orderDate"`
	Product       *Product  `json:"product"`
	Member        *Member   `json:"member"`
}

func NewOrderCreatedEvent(d OrderDetail) OrderCreatedEvent {
	return OrderCreatedEvent{
		ID:            d.ID,
		MemberID:      d.MemberID,
		ProductID:     d.ProductID,
		WalletAddress: d.WalletAddress,
		TokenID:       d.TokenID,
		Memo:          d.Memo,
		OrderDate:     d.OrderDate,
		Product:       d.Product,
		Member:        d.Member,
	}
}
