package models

import "time"

// Account is a player's currency account. Balances are exact integer coin
// amounts; Wallet is the spendable balance and Bank is the protected one.
// All mutation goes through the ledger so that per-account operations stay
// linearizable.
type Account struct {
	UserID           int64
	Wallet           int64
	Bank             int64
	Cooldowns        CooldownState
	DailyWagered     int64
	WagerWindowStart time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Total returns the combined wallet and bank balance used for ranking.
func (a *Account) Total() int64 {
	return a.Wallet + a.Bank
}

// Clone returns a deep copy so callers can mutate without aliasing store
// state.
func (a *Account) Clone() *Account {
	c := *a
	return &c
}

// LeaderboardEntry is a single row of the wealth ranking.
type LeaderboardEntry struct {
	Rank   int
	UserID int64
	Wallet int64
	Bank   int64
	Total  int64
}
