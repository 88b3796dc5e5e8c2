package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casino/random"
)

func playBowling(t *testing.T, wager int64, rolls ...int) *Settlement {
	t.Helper()
	round, err := NewBowling().Start(wager, "", random.NewSequence(rolls...))
	require.NoError(t, err)
	require.NotNil(t, round.Settlement)
	return round.Settlement
}

func TestBowlingStrike(t *testing.T) {
	settlement := playBowling(t, 10, 10)
	assert.Equal(t, OutcomeWin, settlement.Outcome)
	assert.Equal(t, int64(30), settlement.Payout)
}

func TestBowlingSpare(t *testing.T) {
	// Second roll draws from the remaining pins: Intn(7) with a script of 6.
	settlement := playBowling(t, 10, 4, 6)
	assert.Equal(t, OutcomeWin, settlement.Outcome)
	assert.Equal(t, int64(20), settlement.Payout)
}

func TestBowlingNinePinsPushes(t *testing.T) {
	settlement := playBowling(t, 10, 5, 4)
	assert.Equal(t, OutcomePush, settlement.Outcome)
	assert.Equal(t, int64(10), settlement.Payout)
}

func TestBowlingEightPinsPushes(t *testing.T) {
	settlement := playBowling(t, 10, 6, 2)
	assert.Equal(t, OutcomePush, settlement.Outcome)
	assert.Equal(t, int64(10), settlement.Payout)
}

func TestBowlingOpenFrameLoses(t *testing.T) {
	settlement := playBowling(t, 10, 3, 2)
	assert.Equal(t, OutcomeLose, settlement.Outcome)
	assert.Equal(t, int64(0), settlement.Payout)
}

func TestBowlingRejectsBetSpec(t *testing.T) {
	_, err := NewBowling().Start(10, "pins:10", random.NewSequence())
	assert.ErrorIs(t, err, ErrInvalidBetSpec)
}
