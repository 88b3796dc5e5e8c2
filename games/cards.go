package games

import (
	"fmt"

	"casino/random"
)

// Suit is one of the four French suits.
type Suit string

const (
	SuitSpades   Suit = "♠"
	SuitHearts   Suit = "♥"
	SuitDiamonds Suit = "♦"
	SuitClubs    Suit = "♣"
)

// Rank is a card face value.
type Rank string

const (
	RankAce   Rank = "A"
	RankTwo   Rank = "2"
	RankThree Rank = "3"
	RankFour  Rank = "4"
	RankFive  Rank = "5"
	RankSix   Rank = "6"
	RankSeven Rank = "7"
	RankEight Rank = "8"
	RankNine  Rank = "9"
	RankTen   Rank = "10"
	RankJack  Rank = "J"
	RankQueen Rank = "Q"
	RankKing  Rank = "K"
)

var suits = []Suit{SuitSpades, SuitHearts, SuitDiamonds, SuitClubs}

var ranks = []Rank{
	RankAce, RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven,
	RankEight, RankNine, RankTen, RankJack, RankQueen, RankKing,
}

// Card is a single playing card.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// value returns the blackjack value of the card, counting aces high. Hand
// scoring demotes aces as needed.
func (c Card) value() int {
	switch c.Rank {
	case RankAce:
		return 11
	case RankTen, RankJack, RankQueen, RankKing:
		return 10
	case RankTwo:
		return 2
	case RankThree:
		return 3
	case RankFour:
		return 4
	case RankFive:
		return 5
	case RankSix:
		return 6
	case RankSeven:
		return 7
	case RankEight:
		return 8
	case RankNine:
		return 9
	}
	return 0
}

// Deck is an ordered pile of cards drawn from the front.
type Deck struct {
	Cards []Card `json:"cards"`
}

// NewDeck builds a 52-card deck shuffled by src.
func NewDeck(src random.Source) *Deck {
	d := &Deck{Cards: make([]Card, 0, 52)}
	for _, s := range suits {
		for _, r := range ranks {
			d.Cards = append(d.Cards, Card{Rank: r, Suit: s})
		}
	}
	src.Shuffle(len(d.Cards), func(i, j int) {
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	})
	return d
}

// Draw removes and returns the top card. Panics on an empty deck; a
// single-deck blackjack round cannot exhaust 52 cards.
func (d *Deck) Draw() Card {
	if len(d.Cards) == 0 {
		panic("games: draw from empty deck")
	}
	c := d.Cards[0]
	d.Cards = d.Cards[1:]
	return c
}

// HandValue scores a blackjack hand. Aces count 11 and demote to 1 one at a
// time while the total busts.
func HandValue(cards []Card) int {
	total := 0
	aces := 0
	for _, c := range cards {
		total += c.value()
		if c.Rank == RankAce {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsBlackjack reports a natural: exactly two cards totalling 21.
func IsBlackjack(cards []Card) bool {
	return len(cards) == 2 && HandValue(cards) == 21
}

// IsBust reports whether the hand exceeds 21.
func IsBust(cards []Card) bool {
	return HandValue(cards) > 21
}

func handStrings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
