package games

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"casino/random"
)

// European wheel: pockets 0..36, single zero.
const roulettePockets = 37

var rouletteRed = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true,
	16: true, 18: true, 19: true, 21: true, 23: true, 25: true, 27: true,
	30: true, 32: true, 34: true, 36: true,
}

var (
	multRouletteSingle = decimal.NewFromInt(36)
	multRouletteSplit  = decimal.NewFromInt(18)
	multRouletteStreet = decimal.NewFromInt(12)
	multRouletteCorner = decimal.NewFromInt(9)
	multRouletteLine   = decimal.NewFromInt(6)
	multRouletteDozen  = decimal.NewFromInt(3)
	multRouletteEven   = decimal.NewFromInt(2)
)

// rouletteBet is a parsed bet: the covered pockets and the total-return
// multiplier on a hit.
type rouletteBet struct {
	pockets map[int]bool
	mult    decimal.Decimal
	label   string
}

type rouletteEngine struct{}

// NewRoulette returns the European roulette engine. Bet specs follow the
// table layout: "single:17", "split:17,20", "street:4", "corner:25",
// "line:7", "dozen:2", "column:3", "red", "black", "odd", "even", "low",
// "high". Zero wins only a straight-up bet on zero.
func NewRoulette() Engine {
	return &rouletteEngine{}
}

func (e *rouletteEngine) Kind() Kind {
	return KindRoulette
}

func (e *rouletteEngine) ValidateSpec(spec string) error {
	_, err := parseRouletteBet(spec)
	return err
}

func (e *rouletteEngine) Start(wager int64, spec string, src random.Source) (*Round, error) {
	bet, err := parseRouletteBet(spec)
	if err != nil {
		return nil, err
	}
	pocket := src.Intn(roulettePockets)
	detail := fmt.Sprintf("ball lands on %d (%s)", pocket, pocketColor(pocket))

	var settlement Settlement
	if bet.pockets[pocket] {
		settlement = newSettlement(KindRoulette, wager, spec, bet.mult, OutcomeWin, detail)
	} else {
		settlement = newSettlement(KindRoulette, wager, spec, decimal.Decimal{}, OutcomeLose, detail)
	}
	return &Round{Settlement: &settlement}, nil
}

func pocketColor(n int) string {
	switch {
	case n == 0:
		return "green"
	case rouletteRed[n]:
		return "red"
	default:
		return "black"
	}
}

func parseRouletteBet(spec string) (*rouletteBet, error) {
	name, arg, hasArg := strings.Cut(strings.ToLower(strings.TrimSpace(spec)), ":")

	switch name {
	case "red", "black":
		if hasArg {
			return nil, fmt.Errorf("%w: %q takes no argument", ErrInvalidBetSpec, name)
		}
		want := name == "red"
		pockets := make(map[int]bool)
		for n := 1; n <= 36; n++ {
			if rouletteRed[n] == want {
				pockets[n] = true
			}
		}
		return &rouletteBet{pockets: pockets, mult: multRouletteEven, label: name}, nil

	case "odd", "even":
		if hasArg {
			return nil, fmt.Errorf("%w: %q takes no argument", ErrInvalidBetSpec, name)
		}
		wantOdd := name == "odd"
		pockets := make(map[int]bool)
		for n := 1; n <= 36; n++ {
			if (n%2 == 1) == wantOdd {
				pockets[n] = true
			}
		}
		return &rouletteBet{pockets: pockets, mult: multRouletteEven, label: name}, nil

	case "low", "high":
		if hasArg {
			return nil, fmt.Errorf("%w: %q takes no argument", ErrInvalidBetSpec, name)
		}
		lo, hi := 1, 18
		if name == "high" {
			lo, hi = 19, 36
		}
		return &rouletteBet{pockets: pocketRange(lo, hi), mult: multRouletteEven, label: name}, nil

	case "single", "straight":
		n, err := rouletteNumber(arg, 0, 36)
		if err != nil {
			return nil, err
		}
		return &rouletteBet{pockets: map[int]bool{n: true}, mult: multRouletteSingle, label: spec}, nil

	case "split":
		return parseSplit(arg)

	case "street":
		// Streets are the twelve rows of three: street N covers 3N-2..3N.
		n, err := rouletteNumber(arg, 1, 12)
		if err != nil {
			return nil, err
		}
		return &rouletteBet{pockets: pocketRange(3*n-2, 3*n), mult: multRouletteStreet, label: spec}, nil

	case "corner":
		return parseCorner(arg)

	case "line":
		// Line N covers streets N and N+1, six numbers.
		n, err := rouletteNumber(arg, 1, 11)
		if err != nil {
			return nil, err
		}
		return &rouletteBet{pockets: pocketRange(3*n-2, 3*n+3), mult: multRouletteLine, label: spec}, nil

	case "dozen":
		n, err := rouletteNumber(arg, 1, 3)
		if err != nil {
			return nil, err
		}
		return &rouletteBet{pockets: pocketRange(12*n-11, 12*n), mult: multRouletteDozen, label: spec}, nil

	case "column":
		n, err := rouletteNumber(arg, 1, 3)
		if err != nil {
			return nil, err
		}
		pockets := make(map[int]bool)
		for p := n; p <= 36; p += 3 {
			pockets[p] = true
		}
		return &rouletteBet{pockets: pockets, mult: multRouletteDozen, label: spec}, nil

	default:
		return nil, fmt.Errorf("%w: unknown roulette bet %q", ErrInvalidBetSpec, spec)
	}
}

// parseSplit accepts two pockets adjacent on the table grid. The grid is
// twelve rows of three columns; neighbors sit side by side (difference 1
// inside a row) or stacked (difference 3). Zero has no splits here.
func parseSplit(arg string) (*rouletteBet, error) {
	parts := strings.Split(arg, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: split needs two numbers", ErrInvalidBetSpec)
	}
	a, err := rouletteNumber(strings.TrimSpace(parts[0]), 1, 36)
	if err != nil {
		return nil, err
	}
	b, err := rouletteNumber(strings.TrimSpace(parts[1]), 1, 36)
	if err != nil {
		return nil, err
	}
	if a > b {
		a, b = b, a
	}
	horizontal := b-a == 1 && (a-1)/3 == (b-1)/3
	vertical := b-a == 3
	if !horizontal && !vertical {
		return nil, fmt.Errorf("%w: %d and %d are not adjacent on the layout", ErrInvalidBetSpec, a, b)
	}
	return &rouletteBet{
		pockets: map[int]bool{a: true, b: true},
		mult:    multRouletteSplit,
		label:   fmt.Sprintf("split:%d,%d", a, b),
	}, nil
}

// parseCorner takes the top-left pocket of a 2x2 block. Valid anchors are
// not in the rightmost column and not in the bottom row.
func parseCorner(arg string) (*rouletteBet, error) {
	a, err := rouletteNumber(arg, 1, 32)
	if err != nil {
		return nil, err
	}
	if a%3 == 0 {
		return nil, fmt.Errorf("%w: corner cannot anchor on the right column (%d)", ErrInvalidBetSpec, a)
	}
	return &rouletteBet{
		pockets: map[int]bool{a: true, a + 1: true, a + 3: true, a + 4: true},
		mult:    multRouletteCorner,
		label:   fmt.Sprintf("corner:%d", a),
	}, nil
}

func rouletteNumber(s string, min, max int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidBetSpec, s)
	}
	if n < min || n > max {
		return 0, fmt.Errorf("%w: %d outside %d..%d", ErrInvalidBetSpec, n, min, max)
	}
	return n, nil
}

func pocketRange(lo, hi int) map[int]bool {
	pockets := make(map[int]bool, hi-lo+1)
	for n := lo; n <= hi; n++ {
		pockets[n] = true
	}
	return pockets
}
