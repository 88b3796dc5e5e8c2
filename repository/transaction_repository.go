package repository

import (
	"context"
	"fmt"

	"casino/database"
	"casino/models"
)

// TransactionRepository is the Postgres wallet change log.
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// Record appends a transaction entry
func (r *TransactionRepository) Record(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (
			user_id, type, change_amount, wallet_before, wallet_after,
			counterparty_id, game, metadata, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		tx.UserID, tx.Type, tx.ChangeAmount, tx.WalletBefore, tx.WalletAfter,
		tx.CounterpartyID, nullIfEmpty(tx.Game), tx.Metadata, tx.CreatedAt,
	).Scan(&tx.ID)
	if err != nil {
		return fmt.Errorf("failed to record transaction for user %d: %w", tx.UserID, err)
	}
	return nil
}

// GetRecentByUser returns transactions newest first
func (r *TransactionRepository) GetRecentByUser(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, user_id, type, change_amount, wallet_before, wallet_after,
		       counterparty_id, COALESCE(game, ''), metadata, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.Type, &tx.ChangeAmount, &tx.WalletBefore, &tx.WalletAfter,
			&tx.CounterpartyID, &tx.Game, &tx.Metadata, &tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &tx)
	}
	return transactions, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
