package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"casino/database"
	"casino/models"
)

// AccountRepository is the Postgres ledger.AccountStore.
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

const accountColumns = `
	user_id, wallet, bank,
	last_work, last_daily, last_weekly,
	daily_wagered, wager_window_start,
	created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.UserID, &a.Wallet, &a.Bank,
		&a.Cooldowns.LastWork, &a.Cooldowns.LastDaily, &a.Cooldowns.LastWeekly,
		&a.DailyWagered, &a.WagerWindowStart,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Get retrieves an account by user ID, returning nil when it does not exist
func (r *AccountRepository) Get(ctx context.Context, userID int64) (*models.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE user_id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", userID, err)
	}
	return account, nil
}

// Create inserts a fresh account
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (
			user_id, wallet, bank,
			last_work, last_daily, last_weekly,
			daily_wagered, wager_window_start,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.Exec(ctx, query,
		account.UserID, account.Wallet, account.Bank,
		account.Cooldowns.LastWork, account.Cooldowns.LastDaily, account.Cooldowns.LastWeekly,
		account.DailyWagered, account.WagerWindowStart,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account %d: %w", account.UserID, err)
	}
	return nil
}

// Save overwrites an existing account
func (r *AccountRepository) Save(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET wallet = $2, bank = $3,
		    last_work = $4, last_daily = $5, last_weekly = $6,
		    daily_wagered = $7, wager_window_start = $8,
		    updated_at = $9
		WHERE user_id = $1
	`

	tag, err := r.q.Exec(ctx, query,
		account.UserID, account.Wallet, account.Bank,
		account.Cooldowns.LastWork, account.Cooldowns.LastDaily, account.Cooldowns.LastWeekly,
		account.DailyWagered, account.WagerWindowStart,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save account %d: %w", account.UserID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %d does not exist", account.UserID)
	}
	return nil
}

// GetAll returns every account
func (r *AccountRepository) GetAll(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts ORDER BY user_id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}
