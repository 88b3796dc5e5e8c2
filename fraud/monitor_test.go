package fraud

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casino/models"
	"casino/repository/memory"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestMonitor() (*Monitor, *memory.FraudFlagStore) {
	store := memory.NewFraudFlagStore()
	return NewMonitor(DefaultConfig(), store), store
}

func bet(userID, amount int64, mult int64, won bool) *models.Bet {
	outcome := models.BetOutcomeLose
	if won {
		outcome = models.BetOutcomeWin
	}
	return &models.Bet{
		UserID:     userID,
		Game:       "roulette",
		Amount:     amount,
		Outcome:    outcome,
		Multiplier: decimal.NewFromInt(mult),
	}
}

func TestBetVelocityFlag(t *testing.T) {
	monitor, store := newTestMonitor()
	ctx := context.Background()

	var flags []*models.FraudFlag
	for i := 0; i < 21; i++ {
		flags = monitor.ObserveBet(ctx, bet(1, 100, 0, false), now.Add(time.Duration(i)*time.Second))
	}

	require.Len(t, flags, 1, "21st bet in five minutes crosses the threshold")
	assert.Equal(t, models.FraudReasonBetVelocity, flags[0].Reason)
	assert.Equal(t, models.FraudSeverityMedium, flags[0].Severity)

	stored, err := store.GetByUser(ctx, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, stored)
}

func TestBetVelocityWindowSlides(t *testing.T) {
	monitor, _ := newTestMonitor()
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		monitor.ObserveBet(ctx, bet(1, 100, 0, false), now)
	}
	// Six minutes later the window is empty again.
	flags := monitor.ObserveBet(ctx, bet(1, 100, 0, false), now.Add(6*time.Minute))
	assert.Empty(t, flags)
}

func TestLargeBetFlag(t *testing.T) {
	monitor, _ := newTestMonitor()
	ctx := context.Background()

	flags := monitor.ObserveBet(ctx, bet(1, 10000, 0, false), now)
	require.Len(t, flags, 1)
	assert.Equal(t, models.FraudReasonLargeBet, flags[0].Reason)

	flags = monitor.ObserveBet(ctx, bet(1, 9999, 0, false), now)
	assert.Empty(t, flags)
}

func TestJackpotStreakFlag(t *testing.T) {
	monitor, _ := newTestMonitor()
	ctx := context.Background()

	flags := monitor.ObserveBet(ctx, bet(1, 10, 36, true), now)
	assert.Empty(t, flags)
	flags = monitor.ObserveBet(ctx, bet(1, 10, 36, true), now)
	assert.Empty(t, flags)
	flags = monitor.ObserveBet(ctx, bet(1, 10, 100, true), now)
	require.Len(t, flags, 1)
	assert.Equal(t, models.FraudReasonJackpotStreak, flags[0].Reason)
	assert.Equal(t, models.FraudSeverityHigh, flags[0].Severity)
}

func TestJackpotStreakResetsOnLoss(t *testing.T) {
	monitor, _ := newTestMonitor()
	ctx := context.Background()

	monitor.ObserveBet(ctx, bet(1, 10, 36, true), now)
	monitor.ObserveBet(ctx, bet(1, 10, 36, true), now)
	monitor.ObserveBet(ctx, bet(1, 10, 0, false), now)
	flags := monitor.ObserveBet(ctx, bet(1, 10, 36, true), now)
	assert.Empty(t, flags, "loss resets the streak")
}

func TestModestWinsDoNotCountTowardStreak(t *testing.T) {
	monitor, _ := newTestMonitor()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		flags := monitor.ObserveBet(ctx, bet(1, 10, 2, true), now)
		assert.Empty(t, flags)
	}
}

func TestAllowWagerHardLimit(t *testing.T) {
	monitor, _ := newTestMonitor()
	ctx := context.Background()

	for i := 0; i < 40; i++ {
		require.NoError(t, monitor.AllowWager(1, now))
		monitor.ObserveBet(ctx, bet(1, 100, 0, false), now)
	}

	err := monitor.AllowWager(1, now)
	assert.ErrorIs(t, err, ErrRateLimited)

	// Another user is unaffected.
	assert.NoError(t, monitor.AllowWager(2, now))
}

func TestTransferHardCap(t *testing.T) {
	monitor, store := newTestMonitor()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, monitor.CheckTransfer(ctx, 1, now.Add(time.Duration(i)*time.Minute)))
	}

	err := monitor.CheckTransfer(ctx, 1, now.Add(11*time.Minute))
	assert.ErrorIs(t, err, ErrRateLimited)

	flags, err2 := store.GetByUser(ctx, 1)
	require.NoError(t, err2)
	require.Len(t, flags, 1)
	assert.Equal(t, models.FraudReasonTransferVelocity, flags[0].Reason)

	// Old transfers age out of the window.
	assert.NoError(t, monitor.CheckTransfer(ctx, 1, now.Add(2*time.Hour)))
}
