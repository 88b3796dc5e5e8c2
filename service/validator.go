package service

import (
	"errors"
	"fmt"
	"time"

	"casino/ledger"
	"casino/models"
)

var (
	// ErrBetTooSmall and ErrBetTooLarge bound a single stake.
	ErrBetTooSmall = errors.New("bet below table minimum")
	ErrBetTooLarge = errors.New("bet above table maximum")
	// ErrDailyLimitExceeded means the rolling 24h wagered total would be
	// breached.
	ErrDailyLimitExceeded = errors.New("daily wager limit exceeded")
)

// WagerValidator enforces the stake limits before any currency moves.
type WagerValidator struct {
	minBet     int64
	maxBet     int64
	dailyLimit int64
}

func NewWagerValidator(minBet, maxBet, dailyLimit int64) *WagerValidator {
	return &WagerValidator{minBet: minBet, maxBet: maxBet, dailyLimit: dailyLimit}
}

// dailyWindow is the rolling period the wager limit applies to.
const dailyWindow = 24 * time.Hour

// Validate checks the stake against the account. It must run inside the
// ledger update so the limit check and the debit are atomic. Checks run in
// a fixed order: bounds, funds, daily limit.
func (v *WagerValidator) Validate(account *models.Account, amount int64, now time.Time) error {
	if amount < v.minBet {
		return fmt.Errorf("%w: %d < %d", ErrBetTooSmall, amount, v.minBet)
	}
	if amount > v.maxBet {
		return fmt.Errorf("%w: %d > %d", ErrBetTooLarge, amount, v.maxBet)
	}
	if account.Wallet < amount {
		return fmt.Errorf("%w: wallet %d, need %d", ledger.ErrInsufficientFunds, account.Wallet, amount)
	}
	if wagered := v.wageredInWindow(account, now); wagered+amount > v.dailyLimit {
		return fmt.Errorf("%w: %d wagered, %d requested, limit %d",
			ErrDailyLimitExceeded, wagered, amount, v.dailyLimit)
	}
	return nil
}

// RecordWager bumps the rolling total after a successful validation, inside
// the same account update.
func (v *WagerValidator) RecordWager(account *models.Account, amount int64, now time.Time) {
	if v.windowExpired(account, now) {
		account.DailyWagered = 0
		account.WagerWindowStart = now
	} else if account.WagerWindowStart.IsZero() {
		account.WagerWindowStart = now
	}
	account.DailyWagered += amount
}

func (v *WagerValidator) wageredInWindow(account *models.Account, now time.Time) int64 {
	if v.windowExpired(account, now) {
		return 0
	}
	return account.DailyWagered
}

func (v *WagerValidator) windowExpired(account *models.Account, now time.Time) bool {
	return !account.WagerWindowStart.IsZero() &&
		now.Sub(account.WagerWindowStart) >= dailyWindow
}
