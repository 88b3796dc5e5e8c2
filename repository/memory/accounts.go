// Package memory provides map-backed stores with the same contracts as the
// Postgres repositories. They back unit tests and the offline simulator;
// production wiring uses the pgx implementations.
package memory

import (
	"context"
	"fmt"
	"sync"

	"casino/models"
)

// AccountStore is an in-memory ledger.AccountStore.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[int64]*models.Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[int64]*models.Account)}
}

func (s *AccountStore) Get(ctx context.Context, userID int64) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[userID]
	if !ok {
		return nil, nil
	}
	return account.Clone(), nil
}

func (s *AccountStore) Create(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.UserID]; ok {
		return fmt.Errorf("account %d already exists", account.UserID)
	}
	s.accounts[account.UserID] = account.Clone()
	return nil
}

func (s *AccountStore) Save(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.UserID]; !ok {
		return fmt.Errorf("account %d does not exist", account.UserID)
	}
	s.accounts[account.UserID] = account.Clone()
	return nil
}

func (s *AccountStore) GetAll(ctx context.Context) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a.Clone())
	}
	return out, nil
}
