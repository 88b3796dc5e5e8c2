package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetOutcome is the terminal result of a settled wager.
type BetOutcome string

const (
	BetOutcomeWin  BetOutcome = "win"
	BetOutcomeLose BetOutcome = "lose"
	BetOutcomePush BetOutcome = "push"
)

// Bet records a settled wager for history and fraud analysis. Amount is the
// stake that was debited; Payout is the total amount credited back, already
// rounded down from Amount times Multiplier.
type Bet struct {
	ID         int64
	UserID     int64
	Game       string
	Amount     int64
	BetSpec    string
	Outcome    BetOutcome
	Multiplier decimal.Decimal
	Payout     int64
	Detail     string
	CreatedAt  time.Time
}

// Won reports whether the bet paid more than a push.
func (b *Bet) Won() bool {
	return b.Outcome == BetOutcomeWin
}
