// Package cooldown gates the periodic reward claims (work, daily, weekly).
// It is pure bookkeeping over an account's claim timestamps; the ledger
// invokes it inside the same critical section as the credit so a claim can
// never double-fire.
package cooldown

import (
	"errors"
	"fmt"
	"time"

	"casino/models"
)

// ErrUnknownReward means the reward kind has no configured window.
var ErrUnknownReward = errors.New("unknown reward kind")

// ActiveError is returned while a reward is still cooling down. Remaining
// is how long until the next claim succeeds.
type ActiveError struct {
	Kind      models.RewardKind
	Remaining time.Duration
}

func (e *ActiveError) Error() string {
	return fmt.Sprintf("%s reward on cooldown for %s", e.Kind, e.Remaining.Round(time.Second))
}

// reward pairs a claim window with the amount it pays.
type reward struct {
	window time.Duration
	amount int64
}

// Store holds the reward schedule.
type Store struct {
	rewards map[models.RewardKind]reward
}

// Config sets the window and payout per reward kind.
type Config struct {
	WorkWindow   time.Duration
	WorkAmount   int64
	DailyWindow  time.Duration
	DailyAmount  int64
	WeeklyWindow time.Duration
	WeeklyAmount int64
}

// DefaultConfig is the house schedule: a small half-hourly payout, a daily
// stipend and a weekly bonus.
func DefaultConfig() Config {
	return Config{
		WorkWindow:   30 * time.Minute,
		WorkAmount:   100,
		DailyWindow:  24 * time.Hour,
		DailyAmount:  500,
		WeeklyWindow: 7 * 24 * time.Hour,
		WeeklyAmount: 2000,
	}
}

func New(cfg Config) *Store {
	return &Store{rewards: map[models.RewardKind]reward{
		models.RewardWork:   {window: cfg.WorkWindow, amount: cfg.WorkAmount},
		models.RewardDaily:  {window: cfg.DailyWindow, amount: cfg.DailyAmount},
		models.RewardWeekly: {window: cfg.WeeklyWindow, amount: cfg.WeeklyAmount},
	}}
}

// Amount returns the payout for a reward kind.
func (s *Store) Amount(kind models.RewardKind) (int64, error) {
	r, ok := s.rewards[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownReward, kind)
	}
	return r.amount, nil
}

// Check returns nil when the reward is claimable now, or an ActiveError
// with the remaining wait.
func (s *Store) Check(account *models.Account, kind models.RewardKind, now time.Time) error {
	r, ok := s.rewards[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownReward, kind)
	}
	last := account.Cooldowns.Last(kind)
	if last.IsZero() {
		return nil
	}
	readyAt := last.Add(r.window)
	if now.Before(readyAt) {
		return &ActiveError{Kind: kind, Remaining: readyAt.Sub(now)}
	}
	return nil
}

// Claim validates the cooldown and stamps the claim time. Callers credit
// the payout in the same account update.
func (s *Store) Claim(account *models.Account, kind models.RewardKind, now time.Time) (int64, error) {
	if err := s.Check(account, kind, now); err != nil {
		return 0, err
	}
	account.Cooldowns.SetLast(kind, now)
	return s.rewards[kind].amount, nil
}

// NextReset reports when the reward next becomes claimable; the zero time
// means it is claimable now.
func (s *Store) NextReset(account *models.Account, kind models.RewardKind, now time.Time) (time.Time, error) {
	err := s.Check(account, kind, now)
	var active *ActiveError
	switch {
	case err == nil:
		return time.Time{}, nil
	case errors.As(err, &active):
		return now.Add(active.Remaining), nil
	default:
		return time.Time{}, err
	}
}
