package service

import (
	"context"
	"time"

	"casino/games"
	"casino/models"
)

// TransactionRepository persists the append-only wallet change log.
type TransactionRepository interface {
	Record(ctx context.Context, tx *models.Transaction) error
	GetRecentByUser(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error)
}

// BetRepository persists settled wagers.
type BetRepository interface {
	Record(ctx context.Context, bet *models.Bet) error
	GetRecentByUser(ctx context.Context, userID int64, limit int) ([]*models.Bet, error)
}

// FraudFlagRepository reads back advisory flags for moderation surfaces.
type FraudFlagRepository interface {
	Record(ctx context.Context, flag *models.FraudFlag) error
	GetByUser(ctx context.Context, userID int64) ([]*models.FraudFlag, error)
}

// SessionRepository stores at most one live blackjack session per user.
type SessionRepository interface {
	// Get returns the session or nil when the user has none.
	Get(ctx context.Context, userID int64) (*games.BlackjackSession, error)
	Save(ctx context.Context, session *games.BlackjackSession) error
	Delete(ctx context.Context, userID int64) error
	// ListIdle returns sessions whose last action predates the cutoff.
	ListIdle(ctx context.Context, before time.Time) ([]*games.BlackjackSession, error)
}

// Casino is the service surface the chat layer calls. Every operation is
// safe under concurrent invocation for the same or different users.
type Casino interface {
	// PlaceWager validates, debits and plays a round. Single-step games
	// return a settlement; blackjack returns a live session view.
	PlaceWager(ctx context.Context, userID int64, kind games.Kind, spec string, amount int64) (*WagerResult, error)
	// ApplyAction advances the user's live session (hit, stand, insurance).
	ApplyAction(ctx context.Context, userID int64, action games.Action) (*WagerResult, error)
	// ActiveSession returns the user's live session view, or nil.
	ActiveSession(ctx context.Context, userID int64) (*games.SessionView, error)
	// SettleIdleSessions force-stands sessions idle past the configured
	// timeout and returns how many were settled.
	SettleIdleSessions(ctx context.Context) (int, error)

	// ClaimReward pays out a work/daily/weekly reward if off cooldown.
	ClaimReward(ctx context.Context, userID int64, kind models.RewardKind) (int64, *models.Account, error)
	// Transfer moves wallet funds between two users.
	Transfer(ctx context.Context, fromID, toID, amount int64) error
	// Deposit moves wallet funds into the bank.
	Deposit(ctx context.Context, userID, amount int64) (*models.Account, error)
	// Withdraw moves bank funds back into the wallet.
	Withdraw(ctx context.Context, userID, amount int64) (*models.Account, error)

	// Balance returns the account, creating it on first interaction.
	Balance(ctx context.Context, userID int64) (*models.Account, error)
	// Leaderboard ranks accounts by total balance.
	Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
	// History returns recent transactions, newest first.
	History(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error)
	// BetHistory returns recent settled bets, newest first.
	BetHistory(ctx context.Context, userID int64, limit int) ([]*models.Bet, error)
	// Flags returns the advisory fraud flags on an account.
	Flags(ctx context.Context, userID int64) ([]*models.FraudFlag, error)
}

// WagerResult is the outcome of a wager or a session action. Exactly one of
// Settlement and Session is set while a round is live; after settlement the
// session is gone and Settlement carries the final numbers.
type WagerResult struct {
	Settlement *games.Settlement
	Session    *games.SessionView
	Account    *models.Account
}
