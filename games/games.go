// Package games implements the house game engines. Engines are pure game
// logic: they validate bet specs, consume injected randomness and produce
// settlements. They never touch balances; the transaction coordinator owns
// the debit and credit around each round.
package games

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"casino/random"
)

// Kind identifies a game variant.
type Kind string

const (
	KindBlackjack Kind = "blackjack"
	KindRoulette  Kind = "roulette"
	KindSlots     Kind = "slots"
	KindBowling   Kind = "bowling"
	KindPoker     Kind = "poker"
)

// ParseKind validates a game name coming from the chat layer.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindBlackjack, KindRoulette, KindSlots, KindBowling, KindPoker:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: unknown game %q", ErrInvalidBetSpec, s)
	}
}

var (
	// ErrInvalidBetSpec means the bet specification cannot be played. It is
	// always raised before any currency moves.
	ErrInvalidBetSpec = errors.New("invalid bet specification")
	// ErrInvalidAction means the requested session action is not legal in
	// the current state.
	ErrInvalidAction = errors.New("invalid action for session state")
	// ErrNotImplemented marks a game that is registered but not yet
	// playable.
	ErrNotImplemented = errors.New("game not implemented")
)

// Settlement is the terminal outcome of a round. Payout is the total amount
// to credit back, already rounded; Multiplier applies to the main wager and
// InsurancePayout carries any side-bet credit on top.
type Settlement struct {
	Kind            Kind
	BetSpec         string
	Outcome         string
	Multiplier      decimal.Decimal
	Payout          int64
	InsurancePayout int64
	Detail          string
}

const (
	OutcomeWin  = "win"
	OutcomeLose = "lose"
	OutcomePush = "push"
)

// TotalPayout is the full credit the settlement produces.
func (s Settlement) TotalPayout() int64 {
	return s.Payout + s.InsurancePayout
}

// newSettlement computes the payout as the wager times the total-return
// multiplier, rounded down. Rounding down keeps settled amounts exactly
// reproducible from the recorded multiplier.
func newSettlement(kind Kind, wager int64, spec string, mult decimal.Decimal, outcome, detail string) Settlement {
	payout := decimal.NewFromInt(wager).Mul(mult).Floor().IntPart()
	return Settlement{
		Kind:       kind,
		BetSpec:    spec,
		Outcome:    outcome,
		Multiplier: mult,
		Payout:     payout,
		Detail:     detail,
	}
}

// Round is what starting a game produces: either an immediate settlement or
// a live session awaiting player actions. Exactly one field is set.
type Round struct {
	Settlement *Settlement
	Session    *BlackjackSession
}

// Engine is implemented once per game kind.
type Engine interface {
	Kind() Kind
	// ValidateSpec rejects malformed bet specifications. It runs before any
	// currency is reserved.
	ValidateSpec(spec string) error
	// Start plays a round. Single-step games settle immediately; session
	// games return a live session instead.
	Start(wager int64, spec string, src random.Source) (*Round, error)
}

// Registry holds one engine per kind. Lookup of an unregistered kind is an
// error rather than a silent no-op so new variants fail loudly.
type Registry struct {
	engines map[Kind]Engine
}

// NewRegistry wires the default engine set.
func NewRegistry() *Registry {
	r := &Registry{engines: make(map[Kind]Engine)}
	for _, e := range []Engine{
		NewBlackjack(),
		NewRoulette(),
		NewSlots(DefaultPaytable()),
		NewBowling(),
		NewPoker(),
	} {
		r.engines[e.Kind()] = e
	}
	return r
}

// Engine returns the engine for the given kind.
func (r *Registry) Engine(kind Kind) (Engine, error) {
	e, ok := r.engines[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no engine for %q", ErrInvalidBetSpec, kind)
	}
	return e, nil
}

// Kinds lists the registered kinds.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, 0, len(r.engines))
	for k := range r.engines {
		out = append(out, k)
	}
	return out
}
