package repository

import (
	"context"
	"testing"
	"time"

	"casino/models"
	"casino/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("record and read back", func(t *testing.T) {
		bet := &models.Bet{
			UserID:     100,
			Game:       "blackjack",
			Amount:     100,
			BetSpec:    "",
			Outcome:    models.BetOutcomeWin,
			Multiplier: decimal.NewFromFloat(2.5),
			Payout:     250,
			Detail:     "natural",
			CreatedAt:  now,
		}
		require.NoError(t, repo.Record(ctx, bet))
		assert.NotZero(t, bet.ID)

		bets, err := repo.GetRecentByUser(ctx, 100, 10)
		require.NoError(t, err)
		require.Len(t, bets, 1)

		assert.Equal(t, models.BetOutcomeWin, bets[0].Outcome)
		assert.True(t, bets[0].Multiplier.Equal(decimal.NewFromFloat(2.5)),
			"got %s", bets[0].Multiplier)
		assert.Equal(t, int64(250), bets[0].Payout)
		assert.Equal(t, "natural", bets[0].Detail)
	})

	t.Run("newest first", func(t *testing.T) {
		loss := &models.Bet{
			UserID:     100,
			Game:       "slots",
			Amount:     10,
			Outcome:    models.BetOutcomeLose,
			Multiplier: decimal.Zero,
			CreatedAt:  now,
		}
		require.NoError(t, repo.Record(ctx, loss))

		bets, err := repo.GetRecentByUser(ctx, 100, 10)
		require.NoError(t, err)
		require.Len(t, bets, 2)
		assert.Equal(t, "slots", bets[0].Game)
		assert.Equal(t, "blackjack", bets[1].Game)
	})
}
