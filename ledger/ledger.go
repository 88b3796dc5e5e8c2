// Package ledger owns every balance mutation. It serializes operations per
// account with a keyed mutex so concurrent commands on one account apply one
// at a time, and it guarantees currency is conserved: every credit and debit
// goes through here.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"casino/models"
)

var (
	// ErrInsufficientFunds means the wallet cannot cover the requested
	// debit. The balance is untouched.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidAmount means a non-positive amount was requested.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrSameAccount rejects a self-transfer.
	ErrSameAccount = errors.New("cannot transfer to the same account")
	// ErrStorageUnavailable wraps backing-store failures so callers can
	// distinguish them from rule violations.
	ErrStorageUnavailable = errors.New("account storage unavailable")
)

// AccountStore is the persistence seam under the ledger. Implementations
// must return copies the caller can mutate freely; the ledger provides all
// synchronization.
type AccountStore interface {
	// Get returns the account or nil when it does not exist.
	Get(ctx context.Context, userID int64) (*models.Account, error)
	// Create inserts a fresh account.
	Create(ctx context.Context, account *models.Account) error
	// Save overwrites an existing account.
	Save(ctx context.Context, account *models.Account) error
	// GetAll returns every account, for rankings.
	GetAll(ctx context.Context) ([]*models.Account, error)
}

// Ledger mediates all account access.
type Ledger struct {
	store          AccountStore
	startingWallet int64
	onCreate       func(*models.Account)

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func New(store AccountStore, startingWallet int64) *Ledger {
	return &Ledger{
		store:          store,
		startingWallet: startingWallet,
		locks:          make(map[int64]*sync.Mutex),
	}
}

// OnAccountCreate registers a callback fired whenever a missing account is
// lazily created. Set it before the ledger takes traffic.
func (l *Ledger) OnAccountCreate(fn func(*models.Account)) {
	l.onCreate = fn
}

// lockFor returns the mutex guarding one account, creating it on first use.
func (l *Ledger) lockFor(userID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	return m
}

// loadOrCreate fetches the account, lazily creating it on first interaction.
// Callers must hold the account lock.
func (l *Ledger) loadOrCreate(ctx context.Context, userID int64) (*models.Account, error) {
	account, err := l.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if account != nil {
		return account, nil
	}
	now := time.Now().UTC()
	account = &models.Account{
		UserID:    userID,
		Wallet:    l.startingWallet,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := l.store.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if l.onCreate != nil {
		l.onCreate(account.Clone())
	}
	return account, nil
}

// Update runs fn against the account under its lock and persists the result.
// If fn returns an error nothing is saved. This is the single
// read-modify-write path, so composite checks (limits, cooldowns) happen
// atomically with the balance change.
func (l *Ledger) Update(ctx context.Context, userID int64, fn func(*models.Account) error) (*models.Account, error) {
	lock := l.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	account, err := l.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(account); err != nil {
		return nil, err
	}
	account.UpdatedAt = time.Now().UTC()
	if err := l.store.Save(ctx, account); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return account, nil
}

// Account returns a snapshot, creating the account on first read.
func (l *Ledger) Account(ctx context.Context, userID int64) (*models.Account, error) {
	return l.Update(ctx, userID, func(*models.Account) error { return nil })
}

// Credit adds amount to the wallet.
func (l *Ledger) Credit(ctx context.Context, userID, amount int64) (*models.Account, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return l.Update(ctx, userID, func(a *models.Account) error {
		a.Wallet += amount
		return nil
	})
}

// Debit removes amount from the wallet, failing without mutation when the
// wallet cannot cover it.
func (l *Ledger) Debit(ctx context.Context, userID, amount int64) (*models.Account, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return l.Update(ctx, userID, func(a *models.Account) error {
		if a.Wallet < amount {
			return fmt.Errorf("%w: wallet %d, need %d", ErrInsufficientFunds, a.Wallet, amount)
		}
		a.Wallet -= amount
		return nil
	})
}

// Deposit moves amount from wallet to bank.
func (l *Ledger) Deposit(ctx context.Context, userID, amount int64) (*models.Account, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return l.Update(ctx, userID, func(a *models.Account) error {
		if a.Wallet < amount {
			return fmt.Errorf("%w: wallet %d, need %d", ErrInsufficientFunds, a.Wallet, amount)
		}
		a.Wallet -= amount
		a.Bank += amount
		return nil
	})
}

// Withdraw moves amount from bank to wallet.
func (l *Ledger) Withdraw(ctx context.Context, userID, amount int64) (*models.Account, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return l.Update(ctx, userID, func(a *models.Account) error {
		if a.Bank < amount {
			return fmt.Errorf("%w: bank %d, need %d", ErrInsufficientFunds, a.Bank, amount)
		}
		a.Bank -= amount
		a.Wallet += amount
		return nil
	})
}

// TransferResult reports both sides of a completed transfer.
type TransferResult struct {
	From *models.Account
	To   *models.Account
}

// Transfer atomically moves amount between two wallets. Both account locks
// are taken in ascending user ID order, so two opposing transfers can never
// deadlock.
func (l *Ledger) Transfer(ctx context.Context, fromID, toID, amount int64) (*TransferResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if fromID == toID {
		return nil, ErrSameAccount
	}

	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}
	firstLock, secondLock := l.lockFor(first), l.lockFor(second)
	firstLock.Lock()
	defer firstLock.Unlock()
	secondLock.Lock()
	defer secondLock.Unlock()

	from, err := l.loadOrCreate(ctx, fromID)
	if err != nil {
		return nil, err
	}
	to, err := l.loadOrCreate(ctx, toID)
	if err != nil {
		return nil, err
	}
	if from.Wallet < amount {
		return nil, fmt.Errorf("%w: wallet %d, need %d", ErrInsufficientFunds, from.Wallet, amount)
	}

	now := time.Now().UTC()
	from.Wallet -= amount
	from.UpdatedAt = now
	to.Wallet += amount
	to.UpdatedAt = now

	if err := l.store.Save(ctx, from); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := l.store.Save(ctx, to); err != nil {
		// Put the debited side back so no currency vanishes.
		from.Wallet += amount
		if rbErr := l.store.Save(ctx, from); rbErr != nil {
			return nil, fmt.Errorf("%w: transfer credit failed (%v) and rollback failed (%v)",
				ErrStorageUnavailable, err, rbErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &TransferResult{From: from, To: to}, nil
}

// Leaderboard ranks all accounts by total balance descending, breaking ties
// by user ID ascending so the ordering is stable.
func (l *Ledger) Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	accounts, err := l.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	sort.Slice(accounts, func(i, j int) bool {
		ti, tj := accounts[i].Total(), accounts[j].Total()
		if ti != tj {
			return ti > tj
		}
		return accounts[i].UserID < accounts[j].UserID
	})

	if limit > 0 && len(accounts) > limit {
		accounts = accounts[:limit]
	}
	entries := make([]*models.LeaderboardEntry, len(accounts))
	for i, a := range accounts {
		entries[i] = &models.LeaderboardEntry{
			Rank:   i + 1,
			UserID: a.UserID,
			Wallet: a.Wallet,
			Bank:   a.Bank,
			Total:  a.Total(),
		}
	}
	return entries, nil
}
