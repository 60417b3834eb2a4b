package chain

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKlayToPeb(t *testing.T) {
	assert.Equal(t, "0xde0b6b3a7640000", KlayToPeb(1))
	assert.Equal(t, "0x56bc75e2d63100000", KlayToPeb(100))
	assert.Equal(t, "0x0", KlayToPeb(0))

	klay, err := PebToKlay("0x56bc75e2d63100000")
	require.NoError(t, err)
	assert.True(t, klay.Equal(decimal.NewFromInt(100)))

	_, err = PebToKlay("0xzz")
	assert.Error(t, err)
}

func TestNewTokenID(t *testing.T) {
	a, b := NewTokenID(), NewTokenID()
	assert.True(t, strings.HasPrefix(a, "0x"))
	assert.Len(t, a, 34)
	assert.NotEqual(t, a, b)
}

func TestSimulatedGateway_ForcedOutcomes(t *testing.T) {
	g := NewSimulatedGateway(0)
	ctx := context.Background()

	g.Force(Succeed, Fail, Succeed)
	ok, err := g.ChargeFee(ctx, 100, "0xABC")
	require.NoError(t, err)
	assert.True(t, ok)

	tokenID, err := g.Mint(ctx, "0xABC", "ipfs://meta10", "team-a")
	require.NoError(t, err)
	assert.Empty(t, tokenID)

	require.NoError(t, g.Refund(ctx, 100, "0xABC"))
	charged, refunded := g.Balance("0xABC")
	assert.Equal(t, int64(100), charged)
	assert.Equal(t, int64(100), refunded)

	g.Force(Fail, Succeed, Fail)
	ok, err = g.ChargeFee(ctx, 100, "0xABC")
	assert.Error(t, err)
	assert.False(t, ok)

	tokenID, err = g.Mint(ctx, "0xABC", "ipfs://meta10", "team-a")
	require.NoError(t, err)
	assert.NotEmpty(t, tokenID)
	assert.Equal(t, 1, g.MintedCount())

	assert.Error(t, g.Refund(ctx, 100, "0xABC"))
}

func TestSimulatedGateway_RespectsDeadline(t *testing.T) {
	g := NewSimulatedGateway(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.ChargeFee(ctx, 100, "0xABC")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
