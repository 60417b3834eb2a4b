package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is the persisted record of a completed purchase. The wallet address
// is the one resolved at purchase time and is never re-resolved.
type Order struct {
	ID            uuid.UUID `json:"id"`
	MemberID      int64     `json:"memberId"`
	ProductID     int64     `json:"productId"`
	WalletAddress string    `json:"walletAddress"`
	TokenID       string    `json:"tokenId"`
	Memo          string    `json:"memo"`
	OrderDate     time.Time `json:"orderDate"`
}

// OrderDetail is an Order enriched with the product and member snapshots
// resolved while serving the request. Either snapshot may be nil.
type OrderDetail struct {
	Order
	Product *Product `json:"product"`
	Member  *Member  `json:"member"`
}

func NewOrderDetail(order Order, product *Product, member *Member) OrderDetail {
	return OrderDetail{Order: order, Product: product, Member: member}
}
