package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"casino/database"
	"casino/models"
)

// FraudFlagRepository persists anti-fraud flags.
type FraudFlagRepository struct {
	q queryable
}

// NewFraudFlagRepository creates a new fraud flag repository
func NewFraudFlagRepository(db *database.DB) *FraudFlagRepository {
	return &FraudFlagRepository{q: db.Pool}
}

// Record persists a flag, assigning an ID when the caller left it zero
func (r *FraudFlagRepository) Record(ctx context.Context, flag *models.FraudFlag) error {
	if flag.ID == uuid.Nil {
		flag.ID = uuid.New()
	}

	query := `
		INSERT INTO fraud_flags (id, user_id, reason, severity, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.Exec(ctx, query,
		flag.ID.String(), flag.UserID, flag.Reason, flag.Severity, flag.Detail, flag.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record fraud flag for user %d: %w", flag.UserID, err)
	}
	return nil
}

// GetByUser returns every flag raised against a user, newest first
func (r *FraudFlagRepository) GetByUser(ctx context.Context, userID int64) ([]*models.FraudFlag, error) {
	query := `
		SELECT id::text, user_id, reason, severity, detail, created_at
		FROM fraud_flags
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fraud flags for user %d: %w", userID, err)
	}
	defer rows.Close()

	var flags []*models.FraudFlag
	for rows.Next() {
		var flag models.FraudFlag
		var id string
		err := rows.Scan(&id, &flag.UserID, &flag.Reason, &flag.Severity, &flag.Detail, &flag.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fraud flag: %w", err)
		}
		flag.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("failed to parse fraud flag id %q: %w", id, err)
		}
		flags = append(flags, &flag)
	}
	return flags, rows.Err()
}
