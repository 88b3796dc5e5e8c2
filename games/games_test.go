package games

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casino/random"
)

func TestParseKind(t *testing.T) {
	for _, name := range []string{"blackjack", "roulette", "slots", "bowling", "poker"} {
		k, err := ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, Kind(name), k)
	}

	_, err := ParseKind("craps")
	assert.ErrorIs(t, err, ErrInvalidBetSpec)
}

func TestRegistryCoversAllKinds(t *testing.T) {
	r := NewRegistry()
	for _, kind := range []Kind{KindBlackjack, KindRoulette, KindSlots, KindBowling, KindPoker} {
		e, err := r.Engine(kind)
		require.NoError(t, err)
		assert.Equal(t, kind, e.Kind())
	}
	assert.Len(t, r.Kinds(), 5)

	_, err := r.Engine(Kind("craps"))
	assert.ErrorIs(t, err, ErrInvalidBetSpec)
}

func TestPokerRejectsAllWagers(t *testing.T) {
	engine := NewPoker()

	err := engine.ValidateSpec("")
	assert.ErrorIs(t, err, ErrNotImplemented)

	round, err := engine.Start(100, "", random.NewSequence())
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.Nil(t, round)
}

func TestSettlementPayoutRoundsDown(t *testing.T) {
	s := newSettlement(KindSlots, 7, "", decimal.RequireFromString("2.5"), OutcomeWin, "")
	assert.Equal(t, int64(17), s.Payout)

	s = newSettlement(KindSlots, 10, "", decimal.RequireFromString("0.25"), OutcomeLose, "")
	assert.Equal(t, int64(2), s.Payout)

	s = newSettlement(KindSlots, 0, "", decimal.NewFromInt(36), OutcomeWin, "")
	assert.Equal(t, int64(0), s.Payout)
}
