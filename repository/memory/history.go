package memory

import (
	"context"
	"sync"

	"casino/models"
)

// TransactionStore is an in-memory append-only transaction log.
type TransactionStore struct {
	mu     sync.RWMutex
	nextID int64
	byUser map[int64][]*models.Transaction
}

func NewTransactionStore() *TransactionStore {
	return &TransactionStore{nextID: 1, byUser: make(map[int64][]*models.Transaction)}
}

func (s *TransactionStore) Record(ctx context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.nextID
	s.nextID++
	c := *tx
	s.byUser[tx.UserID] = append(s.byUser[tx.UserID], &c)
	return nil
}

// GetRecentByUser returns transactions newest first.
func (s *TransactionStore) GetRecentByUser(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.byUser[userID]
	out := make([]*models.Transaction, 0, limit)
	for i := len(entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		c := *entries[i]
		out = append(out, &c)
	}
	return out, nil
}

// BetStore is an in-memory settled-bet history.
type BetStore struct {
	mu     sync.RWMutex
	nextID int64
	byUser map[int64][]*models.Bet
}

func NewBetStore() *BetStore {
	return &BetStore{nextID: 1, byUser: make(map[int64][]*models.Bet)}
}

func (s *BetStore) Record(ctx context.Context, bet *models.Bet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bet.ID = s.nextID
	s.nextID++
	c := *bet
	s.byUser[bet.UserID] = append(s.byUser[bet.UserID], &c)
	return nil
}

// GetRecentByUser returns bets newest first.
func (s *BetStore) GetRecentByUser(ctx context.Context, userID int64, limit int) ([]*models.Bet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.byUser[userID]
	out := make([]*models.Bet, 0, limit)
	for i := len(entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		c := *entries[i]
		out = append(out, &c)
	}
	return out, nil
}

// FraudFlagStore is an in-memory fraud flag log.
type FraudFlagStore struct {
	mu     sync.RWMutex
	byUser map[int64][]*models.FraudFlag
}

func NewFraudFlagStore() *FraudFlagStore {
	return &FraudFlagStore{byUser: make(map[int64][]*models.FraudFlag)}
}

func (s *FraudFlagStore) Record(ctx context.Context, flag *models.FraudFlag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *flag
	s.byUser[flag.UserID] = append(s.byUser[flag.UserID], &c)
	return nil
}

func (s *FraudFlagStore) GetByUser(ctx context.Context, userID int64) ([]*models.FraudFlag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.byUser[userID]
	out := make([]*models.FraudFlag, len(entries))
	for i, f := range entries {
		c := *f
		out[i] = &c
	}
	return out, nil
}
