package games

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"casino/random"
)

// Symbol is a slot reel symbol.
type Symbol string

const (
	SymbolCherry  Symbol = "cherry"
	SymbolLemon   Symbol = "lemon"
	SymbolOrange  Symbol = "orange"
	SymbolGrape   Symbol = "grape"
	SymbolBell    Symbol = "bell"
	SymbolDiamond Symbol = "diamond"
	SymbolSeven   Symbol = "seven"
)

// Paytable defines the reel distribution and returns of the slot machine.
// All three reels share the same weighted symbol strip.
type Paytable struct {
	Symbols []Symbol
	Weights []int
	// Triple maps a symbol to the total-return multiplier for three of a
	// kind.
	Triple map[Symbol]decimal.Decimal
	// Pair maps a symbol to a consolation multiplier for exactly two of a
	// kind. Symbols missing here pay nothing on a pair.
	Pair map[Symbol]decimal.Decimal
}

// DefaultPaytable is the house configuration: rare sevens and diamonds,
// common fruit, partial returns for near-miss pairs of the top symbols.
func DefaultPaytable() Paytable {
	return Paytable{
		Symbols: []Symbol{
			SymbolCherry, SymbolLemon, SymbolOrange, SymbolGrape,
			SymbolBell, SymbolDiamond, SymbolSeven,
		},
		Weights: []int{25, 22, 18, 15, 10, 5, 5},
		Triple: map[Symbol]decimal.Decimal{
			SymbolCherry:  decimal.NewFromInt(3),
			SymbolLemon:   decimal.NewFromInt(5),
			SymbolOrange:  decimal.NewFromInt(8),
			SymbolGrape:   decimal.NewFromInt(12),
			SymbolBell:    decimal.NewFromInt(20),
			SymbolDiamond: decimal.NewFromInt(50),
			SymbolSeven:   decimal.NewFromInt(100),
		},
		Pair: map[Symbol]decimal.Decimal{
			SymbolSeven:   decimal.RequireFromString("0.5"),
			SymbolDiamond: decimal.RequireFromString("0.25"),
		},
	}
}

func (p Paytable) totalWeight() int {
	total := 0
	for _, w := range p.Weights {
		total += w
	}
	return total
}

// spin draws one symbol from the weighted strip.
func (p Paytable) spin(src random.Source) Symbol {
	v := src.Intn(p.totalWeight())
	for i, w := range p.Weights {
		if v < w {
			return p.Symbols[i]
		}
		v -= w
	}
	// Unreachable while weights sum to totalWeight.
	return p.Symbols[len(p.Symbols)-1]
}

type slotsEngine struct {
	table Paytable
}

// NewSlots returns a three-reel slot machine over the given paytable.
func NewSlots(table Paytable) Engine {
	if len(table.Symbols) == 0 || len(table.Symbols) != len(table.Weights) {
		panic("games: malformed slots paytable")
	}
	return &slotsEngine{table: table}
}

func (e *slotsEngine) Kind() Kind {
	return KindSlots
}

func (e *slotsEngine) ValidateSpec(spec string) error {
	if spec != "" {
		return fmt.Errorf("%w: slots takes no bet specification, got %q", ErrInvalidBetSpec, spec)
	}
	return nil
}

func (e *slotsEngine) Start(wager int64, spec string, src random.Source) (*Round, error) {
	if err := e.ValidateSpec(spec); err != nil {
		return nil, err
	}
	reels := [3]Symbol{e.table.spin(src), e.table.spin(src), e.table.spin(src)}
	mult, outcome := e.evaluate(reels)
	detail := fmt.Sprintf("[%s]", strings.Join([]string{
		string(reels[0]), string(reels[1]), string(reels[2]),
	}, " | "))

	settlement := newSettlement(KindSlots, wager, spec, mult, outcome, detail)
	return &Round{Settlement: &settlement}, nil
}

func (e *slotsEngine) evaluate(reels [3]Symbol) (decimal.Decimal, string) {
	if reels[0] == reels[1] && reels[1] == reels[2] {
		return e.table.Triple[reels[0]], OutcomeWin
	}
	counts := make(map[Symbol]int, 3)
	for _, s := range reels {
		counts[s]++
	}
	for sym, mult := range e.table.Pair {
		if counts[sym] == 2 {
			// Consolation pays back part of the stake; still a loss.
			return mult, OutcomeLose
		}
	}
	return decimal.Decimal{}, OutcomeLose
}
