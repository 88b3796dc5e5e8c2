package models

import (
	"time"

	"github.com/google/uuid"
)

// FraudSeverity grades how strongly a flag should be surfaced to moderators.
type FraudSeverity string

const (
	FraudSeverityLow    FraudSeverity = "low"
	FraudSeverityMedium FraudSeverity = "medium"
	FraudSeverityHigh   FraudSeverity = "high"
)

// FraudReason identifies the heuristic that raised a flag.
type FraudReason string

const (
	FraudReasonBetVelocity      FraudReason = "bet_velocity"
	FraudReasonLargeBet         FraudReason = "large_bet"
	FraudReasonTransferVelocity FraudReason = "transfer_velocity"
	FraudReasonJackpotStreak    FraudReason = "jackpot_streak"
)

// FraudFlag is an advisory marker attached to an account. Flags never alter
// balances; moderation decides what to do with them.
type FraudFlag struct {
	ID        uuid.UUID
	UserID    int64
	Reason    FraudReason
	Severity  FraudSeverity
	Detail    string
	CreatedAt time.Time
}
