package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casino/random"
)

func playRoulette(t *testing.T, wager int64, spec string, pocket int) *Settlement {
	t.Helper()
	round, err := NewRoulette().Start(wager, spec, random.NewSequence(pocket))
	require.NoError(t, err)
	require.NotNil(t, round.Settlement)
	return round.Settlement
}

func TestRouletteStraightUpWin(t *testing.T) {
	settlement := playRoulette(t, 10, "single:10", 10)
	assert.Equal(t, OutcomeWin, settlement.Outcome)
	assert.Equal(t, int64(360), settlement.Payout)
}

func TestRouletteStraightUpLoss(t *testing.T) {
	settlement := playRoulette(t, 10, "single:10", 11)
	assert.Equal(t, OutcomeLose, settlement.Outcome)
	assert.Equal(t, int64(0), settlement.Payout)
}

func TestRouletteRedWin(t *testing.T) {
	settlement := playRoulette(t, 10, "red", 12)
	assert.Equal(t, OutcomeWin, settlement.Outcome)
	assert.Equal(t, int64(20), settlement.Payout)
}

func TestRouletteZeroBeatsOutsideBets(t *testing.T) {
	for _, spec := range []string{"red", "black", "odd", "even", "low", "high", "dozen:1", "column:1"} {
		t.Run(spec, func(t *testing.T) {
			settlement := playRoulette(t, 10, spec, 0)
			assert.Equal(t, OutcomeLose, settlement.Outcome)
		})
	}
}

func TestRouletteZeroStraightUpWins(t *testing.T) {
	settlement := playRoulette(t, 10, "single:0", 0)
	assert.Equal(t, OutcomeWin, settlement.Outcome)
	assert.Equal(t, int64(360), settlement.Payout)
}

func TestRouletteGroupBets(t *testing.T) {
	tests := []struct {
		spec    string
		pocket  int
		win     bool
		payout  int64
	}{
		{"split:17,20", 20, true, 180},
		{"split:17,18", 18, true, 180},
		{"split:17,20", 19, false, 0},
		{"street:4", 11, true, 120},
		{"street:4", 13, false, 0},
		{"corner:25", 29, true, 90},
		{"corner:25", 27, false, 0},
		{"line:7", 24, true, 60},
		{"line:7", 25, false, 0},
		{"dozen:2", 24, true, 30},
		{"dozen:2", 25, false, 0},
		{"column:3", 33, true, 30},
		{"column:3", 34, false, 0},
		{"odd", 7, true, 20},
		{"even", 7, false, 0},
		{"low", 18, true, 20},
		{"high", 19, true, 20},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			settlement := playRoulette(t, 10, tt.spec, tt.pocket)
			if tt.win {
				assert.Equal(t, OutcomeWin, settlement.Outcome)
			} else {
				assert.Equal(t, OutcomeLose, settlement.Outcome)
			}
			assert.Equal(t, tt.payout, settlement.Payout)
		})
	}
}

func TestRouletteRejectsMalformedSpecs(t *testing.T) {
	specs := []string{
		"",
		"single:37",
		"single:-1",
		"single:abc",
		"split:1,5",       // not adjacent
		"split:18,19",     // adjacent numbers, different rows
		"split:0,1",       // zero has no splits
		"split:1",         // needs two numbers
		"street:13",
		"corner:3",        // right-column anchor
		"corner:33",       // bottom-row anchor
		"line:12",
		"dozen:4",
		"column:0",
		"red:1",           // flat bets take no argument
		"sevens",
	}

	engine := NewRoulette()
	for _, spec := range specs {
		t.Run(spec, func(t *testing.T) {
			err := engine.ValidateSpec(spec)
			assert.ErrorIs(t, err, ErrInvalidBetSpec)

			_, err = engine.Start(10, spec, random.NewSequence(0))
			assert.ErrorIs(t, err, ErrInvalidBetSpec)
		})
	}
}

func TestRouletteSplitAdjacency(t *testing.T) {
	// Vertical neighbors differ by three, horizontal by one within a row.
	valid := []string{"split:1,2", "split:1,4", "split:35,36", "split:33,36"}
	for _, spec := range valid {
		assert.NoError(t, NewRoulette().ValidateSpec(spec), spec)
	}
}
