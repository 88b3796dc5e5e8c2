package games

import (
	"fmt"

	"github.com/shopspring/decimal"

	"casino/random"
)

var (
	multBowlingStrike = decimal.NewFromInt(3)
	multBowlingSpare  = decimal.NewFromInt(2)
	multBowlingPush   = decimal.NewFromInt(1)
)

type bowlingEngine struct{}

// NewBowling returns the bowling engine: one frame, up to two rolls against
// ten pins. A strike pays 3x, a spare 2x, eight or nine pins push, anything
// less loses.
func NewBowling() Engine {
	return &bowlingEngine{}
}

func (e *bowlingEngine) Kind() Kind {
	return KindBowling
}

func (e *bowlingEngine) ValidateSpec(spec string) error {
	if spec != "" {
		return fmt.Errorf("%w: bowling takes no bet specification, got %q", ErrInvalidBetSpec, spec)
	}
	return nil
}

func (e *bowlingEngine) Start(wager int64, spec string, src random.Source) (*Round, error) {
	if err := e.ValidateSpec(spec); err != nil {
		return nil, err
	}

	first := src.Intn(11)
	if first == 10 {
		settlement := newSettlement(KindBowling, wager, spec, multBowlingStrike, OutcomeWin, "strike!")
		return &Round{Settlement: &settlement}, nil
	}

	second := src.Intn(11 - first)
	total := first + second
	detail := fmt.Sprintf("%d + %d pins", first, second)

	var settlement Settlement
	switch {
	case total == 10:
		settlement = newSettlement(KindBowling, wager, spec, multBowlingSpare, OutcomeWin, "spare, "+detail)
	case total >= 8:
		settlement = newSettlement(KindBowling, wager, spec, multBowlingPush, OutcomePush, detail)
	default:
		settlement = newSettlement(KindBowling, wager, spec, decimal.Decimal{}, OutcomeLose, detail)
	}
	return &Round{Settlement: &settlement}, nil
}
