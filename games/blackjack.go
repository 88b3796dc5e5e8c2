package games

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"casino/random"
)

// Action is a player move inside a live session.
type Action string

const (
	ActionHit       Action = "hit"
	ActionStand     Action = "stand"
	ActionInsurance Action = "insurance"
)

// ParseAction validates an action name coming from the chat layer.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionHit, ActionStand, ActionInsurance:
		return Action(s), nil
	default:
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidAction, s)
	}
}

// SessionState tracks where a blackjack session is in its lifecycle.
type SessionState string

const (
	SessionInProgress SessionState = "in_progress"
	SessionSettled    SessionState = "settled"
)

var (
	multBlackjackNatural = decimal.RequireFromString("2.5")
	multBlackjackWin     = decimal.NewFromInt(2)
	multBlackjackPush    = decimal.NewFromInt(1)
	multBlackjackLose    = decimal.Decimal{}
)

// BlackjackSession is a live blackjack round. It is a pure state machine:
// the coordinator moves currency, the session only decides outcomes. Fields
// are exported for persistence.
type BlackjackSession struct {
	ID             uuid.UUID    `json:"id"`
	UserID         int64        `json:"user_id"`
	Wager          int64        `json:"wager"`
	Deck           *Deck        `json:"deck"`
	Player         []Card       `json:"player"`
	Dealer         []Card       `json:"dealer"`
	State          SessionState `json:"state"`
	InsuranceBet   int64        `json:"insurance_bet"`
	StartedAt      time.Time    `json:"started_at"`
	LastActionAt   time.Time    `json:"last_action_at"`
}

type blackjackEngine struct{}

// NewBlackjack returns the blackjack engine. A natural pays 3:2 on top of
// the returned stake; the dealer stands on all 17s.
func NewBlackjack() Engine {
	return &blackjackEngine{}
}

func (e *blackjackEngine) Kind() Kind {
	return KindBlackjack
}

func (e *blackjackEngine) ValidateSpec(spec string) error {
	if spec != "" {
		return fmt.Errorf("%w: blackjack takes no bet specification, got %q", ErrInvalidBetSpec, spec)
	}
	return nil
}

// Start deals a fresh round. A player natural settles immediately; anything
// else returns a live session awaiting actions.
func (e *blackjackEngine) Start(wager int64, spec string, src random.Source) (*Round, error) {
	if err := e.ValidateSpec(spec); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	s := &BlackjackSession{
		ID:           uuid.New(),
		Wager:        wager,
		Deck:         NewDeck(src),
		State:        SessionInProgress,
		StartedAt:    now,
		LastActionAt: now,
	}
	s.Player = append(s.Player, s.Deck.Draw())
	s.Dealer = append(s.Dealer, s.Deck.Draw())
	s.Player = append(s.Player, s.Deck.Draw())
	s.Dealer = append(s.Dealer, s.Deck.Draw())

	if IsBlackjack(s.Player) {
		settlement := s.settleNatural()
		return &Round{Settlement: &settlement}, nil
	}
	return &Round{Session: s}, nil
}

func (s *BlackjackSession) settleNatural() Settlement {
	s.State = SessionSettled
	if IsBlackjack(s.Dealer) {
		return s.settle(multBlackjackPush, OutcomePush, "both have blackjack")
	}
	return s.settle(multBlackjackNatural, OutcomeWin, "blackjack!")
}

// CanInsure reports whether the insurance side bet is currently offered:
// dealer shows an ace, no cards drawn yet, not already taken.
func (s *BlackjackSession) CanInsure() bool {
	return s.State == SessionInProgress &&
		s.InsuranceBet == 0 &&
		len(s.Player) == 2 &&
		len(s.Dealer) >= 1 &&
		s.Dealer[0].Rank == RankAce
}

// InsuranceStake is the side-bet amount, half the main wager rounded down.
func (s *BlackjackSession) InsuranceStake() int64 {
	return s.Wager / 2
}

// TakeInsurance records the side bet. The coordinator debits the stake first.
func (s *BlackjackSession) TakeInsurance(now time.Time) error {
	if !s.CanInsure() {
		return fmt.Errorf("%w: insurance not available", ErrInvalidAction)
	}
	s.InsuranceBet = s.InsuranceStake()
	s.LastActionAt = now
	return nil
}

// Apply advances the session with a hit or stand. It returns a settlement
// when the round ends, or nil while the session is still live.
func (s *BlackjackSession) Apply(action Action, src random.Source, now time.Time) (*Settlement, error) {
	if s.State != SessionInProgress {
		return nil, fmt.Errorf("%w: session already settled", ErrInvalidAction)
	}
	s.LastActionAt = now

	switch action {
	case ActionHit:
		s.Player = append(s.Player, s.Deck.Draw())
		if IsBust(s.Player) {
			s.State = SessionSettled
			settlement := s.settle(multBlackjackLose, OutcomeLose,
				fmt.Sprintf("bust with %d", HandValue(s.Player)))
			return &settlement, nil
		}
		return nil, nil
	case ActionStand:
		settlement := s.playDealer()
		return &settlement, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
}

// playDealer draws the dealer to 17 or better and compares hands.
func (s *BlackjackSession) playDealer() Settlement {
	for HandValue(s.Dealer) < 17 {
		s.Dealer = append(s.Dealer, s.Deck.Draw())
	}
	s.State = SessionSettled

	player := HandValue(s.Player)
	dealer := HandValue(s.Dealer)
	switch {
	case dealer > 21:
		return s.settle(multBlackjackWin, OutcomeWin, fmt.Sprintf("dealer busts with %d", dealer))
	case player > dealer:
		return s.settle(multBlackjackWin, OutcomeWin, fmt.Sprintf("%d beats %d", player, dealer))
	case player < dealer:
		return s.settle(multBlackjackLose, OutcomeLose, fmt.Sprintf("%d loses to %d", player, dealer))
	default:
		return s.settle(multBlackjackPush, OutcomePush, fmt.Sprintf("push at %d", player))
	}
}

// settle builds the settlement, resolving the insurance side bet
// independently of the main wager: it pays 2:1 exactly when the dealer's
// initial two cards are a natural.
func (s *BlackjackSession) settle(mult decimal.Decimal, outcome, detail string) Settlement {
	settlement := newSettlement(KindBlackjack, s.Wager, "", mult, outcome, detail)
	if s.InsuranceBet > 0 && len(s.Dealer) >= 2 && IsBlackjack(s.Dealer[:2]) {
		settlement.InsurancePayout = s.InsuranceBet * 3
	}
	return settlement
}

// View is the player-facing snapshot of a session. The dealer's hole card
// stays hidden while the round is live.
type SessionView struct {
	ID          uuid.UUID
	Kind        Kind
	Wager       int64
	Player      []string
	PlayerValue int
	DealerUp    string
	State       SessionState
	Insured     bool
	CanInsure   bool
}

func (s *BlackjackSession) View() SessionView {
	v := SessionView{
		ID:          s.ID,
		Kind:        KindBlackjack,
		Wager:       s.Wager,
		Player:      handStrings(s.Player),
		PlayerValue: HandValue(s.Player),
		State:       s.State,
		Insured:     s.InsuranceBet > 0,
		CanInsure:   s.CanInsure(),
	}
	if len(s.Dealer) > 0 {
		v.DealerUp = s.Dealer[0].String()
	}
	return v
}
