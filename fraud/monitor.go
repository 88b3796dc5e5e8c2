// Package fraud watches settled transactions for abusive patterns. Flags
// are advisory: they are persisted and surfaced for moderation but never
// alter a settlement. Only the hard rate limits block an operation.
package fraud

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"casino/models"
)

// ErrRateLimited is the hard stop: the operation itself is refused.
var ErrRateLimited = errors.New("rate limited")

// FlagStore persists raised flags.
type FlagStore interface {
	Record(ctx context.Context, flag *models.FraudFlag) error
}

// Config holds the detection thresholds.
type Config struct {
	// BetWindow and MaxBetsPerWindow define the advisory bet velocity
	// flag; at twice the threshold wagers are refused outright.
	BetWindow        time.Duration
	MaxBetsPerWindow int
	// LargeBetThreshold flags single wagers at or above this stake.
	LargeBetThreshold int64
	// TransferWindow and MaxTransfersPerWindow form a hard cap: transfers
	// beyond it are refused.
	TransferWindow        time.Duration
	MaxTransfersPerWindow int
	// JackpotMultiplier and JackpotStreak flag runs of top-end wins that
	// are statistically implausible.
	JackpotMultiplier decimal.Decimal
	JackpotStreak     int
}

func DefaultConfig() Config {
	return Config{
		BetWindow:             5 * time.Minute,
		MaxBetsPerWindow:      20,
		LargeBetThreshold:     10000,
		TransferWindow:        time.Hour,
		MaxTransfersPerWindow: 10,
		JackpotMultiplier:     decimal.NewFromInt(30),
		JackpotStreak:         3,
	}
}

// Monitor tracks recent activity per user in memory and raises flags
// against the store.
type Monitor struct {
	cfg   Config
	store FlagStore
	log   *logrus.Entry

	mu        sync.Mutex
	bets      map[int64][]time.Time
	transfers map[int64][]time.Time
	streaks   map[int64]int
}

func NewMonitor(cfg Config, store FlagStore) *Monitor {
	return &Monitor{
		cfg:       cfg,
		store:     store,
		log:       logrus.WithField("component", "fraud_monitor"),
		bets:      make(map[int64][]time.Time),
		transfers: make(map[int64][]time.Time),
		streaks:   make(map[int64]int),
	}
}

func pruneBefore(stamps []time.Time, cutoff time.Time) []time.Time {
	out := stamps[:0]
	for _, ts := range stamps {
		if !ts.Before(cutoff) {
			out = append(out, ts)
		}
	}
	return out
}

// AllowWager is the pre-debit hard gate. Wagering at double the advisory
// velocity threshold is refused.
func (m *Monitor) AllowWager(userID int64, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bets[userID] = pruneBefore(m.bets[userID], now.Add(-m.cfg.BetWindow))
	if len(m.bets[userID]) >= 2*m.cfg.MaxBetsPerWindow {
		return fmt.Errorf("%w: %d bets in %s", ErrRateLimited, len(m.bets[userID]), m.cfg.BetWindow)
	}
	return nil
}

// ObserveBet records a settled wager and returns any flags it raised.
func (m *Monitor) ObserveBet(ctx context.Context, bet *models.Bet, now time.Time) []*models.FraudFlag {
	m.mu.Lock()
	m.bets[bet.UserID] = append(pruneBefore(m.bets[bet.UserID], now.Add(-m.cfg.BetWindow)), now)
	count := len(m.bets[bet.UserID])

	if bet.Won() && bet.Multiplier.GreaterThanOrEqual(m.cfg.JackpotMultiplier) {
		m.streaks[bet.UserID]++
	} else {
		m.streaks[bet.UserID] = 0
	}
	streak := m.streaks[bet.UserID]
	m.mu.Unlock()

	var flags []*models.FraudFlag
	if count > m.cfg.MaxBetsPerWindow {
		flags = append(flags, m.raise(ctx, bet.UserID, models.FraudReasonBetVelocity,
			models.FraudSeverityMedium,
			fmt.Sprintf("%d bets within %s", count, m.cfg.BetWindow), now))
	}
	if bet.Amount >= m.cfg.LargeBetThreshold {
		flags = append(flags, m.raise(ctx, bet.UserID, models.FraudReasonLargeBet,
			models.FraudSeverityLow,
			fmt.Sprintf("single wager of %d on %s", bet.Amount, bet.Game), now))
	}
	if streak >= m.cfg.JackpotStreak {
		flags = append(flags, m.raise(ctx, bet.UserID, models.FraudReasonJackpotStreak,
			models.FraudSeverityHigh,
			fmt.Sprintf("%d consecutive wins at %sx or better", streak, m.cfg.JackpotMultiplier), now))
	}
	return flags
}

// CheckTransfer enforces the transfer velocity hard cap. A refused transfer
// also leaves a flag behind.
func (m *Monitor) CheckTransfer(ctx context.Context, fromID int64, now time.Time) error {
	m.mu.Lock()
	m.transfers[fromID] = pruneBefore(m.transfers[fromID], now.Add(-m.cfg.TransferWindow))
	if len(m.transfers[fromID]) >= m.cfg.MaxTransfersPerWindow {
		count := len(m.transfers[fromID])
		m.mu.Unlock()
		m.raise(ctx, fromID, models.FraudReasonTransferVelocity, models.FraudSeverityHigh,
			fmt.Sprintf("%d transfers within %s", count, m.cfg.TransferWindow), now)
		return fmt.Errorf("%w: %d transfers in %s", ErrRateLimited, count, m.cfg.TransferWindow)
	}
	m.transfers[fromID] = append(m.transfers[fromID], now)
	m.mu.Unlock()
	return nil
}

// raise persists and logs a flag. Persistence failures are logged and
// swallowed; an advisory check must never fail the operation it observed.
func (m *Monitor) raise(ctx context.Context, userID int64, reason models.FraudReason, severity models.FraudSeverity, detail string, now time.Time) *models.FraudFlag {
	flag := &models.FraudFlag{
		ID:        uuid.New(),
		UserID:    userID,
		Reason:    reason,
		Severity:  severity,
		Detail:    detail,
		CreatedAt: now,
	}
	if err := m.store.Record(ctx, flag); err != nil {
		m.log.WithError(err).WithField("user_id", userID).Error("failed to persist fraud flag")
	}
	m.log.WithFields(logrus.Fields{
		"user_id":  userID,
		"reason":   reason,
		"severity": severity,
		"detail":   detail,
	}).Warn("fraud flag raised")
	return flag
}
