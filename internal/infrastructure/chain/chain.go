package chain

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentGateway debits fees, in KLAY, from a member wallet to the
// administrative fee address.
type PaymentGateway interface {
	ChargeFee(ctx context.Context, price int64, from string) (bool, error)
}

// TokenMinter issues tokens and reverses fee payments when issuing fails.
type TokenMinter interface {
	// Mint returns the new token id, or "" when the token was not issued.
	Mint(ctx context.Context, to, metadataURI, contractAlias string) (string, error)
	// Refund sends price KLAY from the fee address back to the wallet.
	Refund(ctx context.Context, price int64, to string) error
}

var pebPerKlay = decimal.New(1, 18)

// KlayToPeb converts a whole-KLAY amount into its hex peb representation.
func KlayToPeb(klay int64) string {
	return "0x" + decimal.NewFromInt(klay).Mul(pebPerKlay).BigInt().Text(16)
}

// PebToKlay parses a hex peb amount.
func PebToKlay(peb string) (decimal.Decimal, error) {
	if len(peb) > 2 && peb[:2] == "0x" {
		peb = peb[2:]
	}
	n, ok := new(big.Int).SetString(peb, 16)
	if !ok {
		return decimal.Zero, fmt.Errorf("invalid peb amount %q", peb)
	}
	return decimal.NewFromBigInt(n, 0).Div(pebPerKlay), nil
}

// NewTokenID returns a random 128-bit token id in hex.
func NewTokenID() string {
	id := uuid.New()
	return "0x" + hex.EncodeToString(id[:])
}
