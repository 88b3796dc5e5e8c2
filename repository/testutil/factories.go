package testutil

import (
	"time"

	"casino/models"
)

// NewTestAccount builds an account ready for insertion, with timestamps
// truncated to what the database round-trips.
func NewTestAccount(userID int64, wallet int64) *models.Account {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Account{
		UserID:    userID,
		Wallet:    wallet,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
