package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"casino/database"
	"casino/models"
)

// BetRepository is the Postgres settled-bet history.
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// Record appends a settled bet
func (r *BetRepository) Record(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (
			user_id, game, amount, bet_spec, outcome,
			multiplier, payout, detail, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	// The multiplier travels as text so the NUMERIC column keeps the exact
	// recorded value.
	err := r.q.QueryRow(ctx, query,
		bet.UserID, bet.Game, bet.Amount, bet.BetSpec, bet.Outcome,
		bet.Multiplier.String(), bet.Payout, bet.Detail, bet.CreatedAt,
	).Scan(&bet.ID)
	if err != nil {
		return fmt.Errorf("failed to record bet for user %d: %w", bet.UserID, err)
	}
	return nil
}

// GetRecentByUser returns bets newest first
func (r *BetRepository) GetRecentByUser(ctx context.Context, userID int64, limit int) ([]*models.Bet, error) {
	query := `
		SELECT id, user_id, game, amount, bet_spec, outcome,
		       multiplier::text, payout, detail, created_at
		FROM bets
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets for user %d: %w", userID, err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		var bet models.Bet
		var multiplier string
		err := rows.Scan(
			&bet.ID, &bet.UserID, &bet.Game, &bet.Amount, &bet.BetSpec, &bet.Outcome,
			&multiplier, &bet.Payout, &bet.Detail, &bet.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bet.Multiplier, err = decimal.NewFromString(multiplier)
		if err != nil {
			return nil, fmt.Errorf("failed to parse multiplier %q: %w", multiplier, err)
		}
		bets = append(bets, &bet)
	}
	return bets, rows.Err()
}
