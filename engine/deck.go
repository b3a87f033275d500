package engine

import (
	"fmt"
	"math/rand/v2"
)

const (
	SpecialsPerKind = 4
	DeckSize        = NumColors*int(RankMaxNumber) + 2*SpecialsPerKind // 60
)

// Deck is an ordered stack of cards drawn from the front.
// Its size only ever decreases within a round.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck builds the full 60-card Wizard deck in a fixed order:
// 1-13 in each color, then the four Wizards and four Jesters interleaved.
// The rng is used by Shuffle; nil falls back to a randomly seeded source.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	cards := make([]Card, 0, DeckSize)
	for suit := uint8(0); suit < NumColors; suit++ {
		for rank := RankMinNumber; rank <= RankMaxNumber; rank++ {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	for i := 0; i < SpecialsPerKind; i++ {
		cards = append(cards, Wizard(), Jester())
	}
	return &Deck{cards: cards, rng: rng}
}

// Shuffle performs a uniform random permutation (Fisher-Yates).
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the first n cards. It never returns a partial result.
func (d *Deck) Draw(n int) ([]Card, error) {
	if n < 1 || n > len(d.cards) {
		return nil, fmt.Errorf("%w: cannot draw %d cards from deck of %d", ErrInvalidDraw, n, len(d.cards))
	}
	drawn := make([]Card, n)
	copy(drawn, d.cards[:n])
	d.cards = d.cards[n:]
	return drawn, nil
}

// Len returns the number of cards left.
func (d *Deck) Len() int { return len(d.cards) }

// Cards returns a copy of the remaining cards in draw order.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
