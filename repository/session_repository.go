package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"casino/database"
	"casino/games"
)

// SessionRepository persists in-flight blackjack sessions, one per user.
// The full round state rides in a JSONB column; last_action_at is mirrored
// into its own column so the idle sweep can use an index instead of probing
// inside the document.
type SessionRepository struct {
	q queryable
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{q: db.Pool}
}

// Get returns the user's active session, or nil when none exists
func (r *SessionRepository) Get(ctx context.Context, userID int64) (*games.BlackjackSession, error) {
	query := `SELECT state FROM blackjack_sessions WHERE user_id = $1`

	var raw []byte
	err := r.q.QueryRow(ctx, query, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session for user %d: %w", userID, err)
	}

	var session games.BlackjackSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session for user %d: %w", userID, err)
	}
	return &session, nil
}

// Save upserts the session for its user
func (r *SessionRepository) Save(ctx context.Context, session *games.BlackjackSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session for user %d: %w", session.UserID, err)
	}

	query := `
		INSERT INTO blackjack_sessions (user_id, state, last_action_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET state = EXCLUDED.state, last_action_at = EXCLUDED.last_action_at
	`

	_, err = r.q.Exec(ctx, query, session.UserID, raw, session.LastActionAt)
	if err != nil {
		return fmt.Errorf("failed to save session for user %d: %w", session.UserID, err)
	}
	return nil
}

// Delete removes the user's session. Deleting an absent session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, userID int64) error {
	query := `DELETE FROM blackjack_sessions WHERE user_id = $1`

	_, err := r.q.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete session for user %d: %w", userID, err)
	}
	return nil
}

// ListIdle returns sessions whose last action predates the cutoff
func (r *SessionRepository) ListIdle(ctx context.Context, before time.Time) ([]*games.BlackjackSession, error) {
	query := `SELECT state FROM blackjack_sessions WHERE last_action_at < $1`

	rows, err := r.q.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query idle sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*games.BlackjackSession
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		var session games.BlackjackSession
		if err := json.Unmarshal(raw, &session); err != nil {
			return nil, fmt.Errorf("failed to decode idle session: %w", err)
		}
		sessions = append(sessions, &session)
	}
	return sessions, rows.Err()
}
