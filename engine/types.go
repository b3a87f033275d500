package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Suit constants, packed into upper 4 bits of Card.
const (
	SuitRed     uint8 = 0
	SuitYellow  uint8 = 1
	SuitBlue    uint8 = 2
	SuitGreen   uint8 = 3
	SuitSpecial uint8 = 4 // Wizards and Jesters only

	NumColors = 4
)

// Rank constants, packed into lower 4 bits of Card.
const (
	RankJester    uint8 = 0
	RankMinNumber uint8 = 1
	RankMaxNumber uint8 = 13
	RankWizard    uint8 = 14
)

// Card is a packed uint8: upper 4 bits = suit, lower 4 bits = rank.
type Card uint8

// EmptyCard represents the absence of a card (e.g. no trump indicator).
const EmptyCard Card = 0xFF

// Kind is derived from the rank of a card.
type Kind uint8

const (
	KindNumber Kind = iota // 0
	KindJester             // 1: always loses
	KindWizard             // 2: always wins
)

func (k Kind) String() string {
	switch k {
	case KindJester:
		return "JESTER"
	case KindWizard:
		return "WIZARD"
	default:
		return "NUMBER"
	}
}

// NewCard constructs a Card from suit and rank.
func NewCard(suit, rank uint8) Card {
	return Card((suit << 4) | (rank & 0x0F))
}

// Wizard returns a Wizard card.
func Wizard() Card { return NewCard(SuitSpecial, RankWizard) }

// Jester returns a Jester card.
func Jester() Card { return NewCard(SuitSpecial, RankJester) }

// Suit returns the suit bits (upper 4).
func (c Card) Suit() uint8 { return uint8(c) >> 4 }

// Rank returns the rank bits (lower 4).
func (c Card) Rank() uint8 { return uint8(c) & 0x0F }

// Kind returns Jester for rank 0, Wizard for rank 14, Number otherwise.
func (c Card) Kind() Kind {
	switch c.Rank() {
	case RankJester:
		return KindJester
	case RankWizard:
		return KindWizard
	default:
		return KindNumber
	}
}

// IsWild reports whether the card is a Wizard or a Jester.
func (c Card) IsWild() bool { return c.Kind() != KindNumber }

// Valid reports whether the card exists in a Wizard deck.
func (c Card) Valid() bool {
	if c == EmptyCard {
		return false
	}
	switch c.Kind() {
	case KindNumber:
		return c.Suit() < NumColors && c.Rank() >= RankMinNumber && c.Rank() <= RankMaxNumber
	default:
		return c.Suit() == SuitSpecial
	}
}

var suitNames = [...]string{"RED", "YELLOW", "BLUE", "GREEN", "SPECIAL"}

// SuitName returns the wire name of a suit.
func SuitName(s uint8) string {
	if int(s) < len(suitNames) {
		return suitNames[s]
	}
	return "?"
}

// String returns the wire form: "RED_10", "WIZARD" or "JESTER".
func (c Card) String() string {
	if c == EmptyCard {
		return "NONE"
	}
	switch c.Kind() {
	case KindWizard:
		return "WIZARD"
	case KindJester:
		return "JESTER"
	}
	return SuitName(c.Suit()) + "_" + strconv.Itoa(int(c.Rank()))
}

// ParseCard parses the wire form produced by String. Matching is case-insensitive.
func ParseCard(s string) (Card, error) {
	ref := strings.ToUpper(strings.TrimSpace(s))
	switch ref {
	case "":
		return EmptyCard, fmt.Errorf("%w: empty card reference", ErrInvalidCard)
	case "WIZARD":
		return Wizard(), nil
	case "JESTER":
		return Jester(), nil
	}

	color, value, ok := strings.Cut(ref, "_")
	if !ok {
		return EmptyCard, fmt.Errorf("%w: expected COLOR_VALUE, got %q", ErrInvalidCard, s)
	}
	suit := -1
	for i := 0; i < NumColors; i++ {
		if suitNames[i] == color {
			suit = i
			break
		}
	}
	if suit < 0 {
		return EmptyCard, fmt.Errorf("%w: unknown color %q", ErrInvalidCard, color)
	}
	rank, err := strconv.Atoi(value)
	if err != nil || rank < int(RankMinNumber) || rank > int(RankMaxNumber) {
		return EmptyCard, fmt.Errorf("%w: number card value must be 1-13, got %q", ErrInvalidCard, value)
	}
	return NewCard(uint8(suit), uint8(rank)), nil
}
