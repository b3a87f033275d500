package engine

import "math"

// Play is a single card played into a trick.
type Play struct {
	Player PlayerID
	Card   Card
}

// Trick holds the cards played since the last resolution, in play order.
type Trick struct {
	Plays []Play
}

// Len returns the number of cards played so far.
func (t *Trick) Len() int { return len(t.Plays) }

// IsComplete returns true once every seated player has played.
func (t *Trick) IsComplete(numPlayers int) bool { return len(t.Plays) >= numPlayers }

func (t *Trick) add(p PlayerID, c Card) {
	t.Plays = append(t.Plays, Play{Player: p, Card: c})
}

func (t *Trick) clear() { t.Plays = t.Plays[:0] }

// LeadSuit returns the suit players must follow, if any.
//
//   - First card Wizard → no lead suit.
//   - First card Jester → taken from the first later non-Jester card; none if
//     every card is a Jester or that card is a Wizard.
//   - Otherwise the first card's suit.
func (t *Trick) LeadSuit() (uint8, bool) {
	for _, p := range t.Plays {
		switch p.Card.Kind() {
		case KindJester:
			continue
		case KindWizard:
			return 0, false
		default:
			return p.Card.Suit(), true
		}
	}
	return 0, false
}

// Strength scores a card for trick resolution.
//   - Wizard → max, Jester → min
//   - trump Number → 1000 + rank
//   - lead-suit Number → 100 + rank
//   - any other → 0
func Strength(c Card, trump uint8, hasTrump bool, lead uint8, hasLead bool) int {
	switch c.Kind() {
	case KindWizard:
		return math.MaxInt
	case KindJester:
		return math.MinInt
	}
	switch {
	case hasTrump && c.Suit() == trump:
		return 1000 + int(c.Rank())
	case hasLead && c.Suit() == lead:
		return 100 + int(c.Rank())
	}
	return 0
}

// WinningIndex returns the position of the winning play. Ties go to the
// earliest play, so the first Wizard wins, and a trick of only Jesters goes
// to whoever led.
func (t *Trick) WinningIndex(trump Card) (int, error) {
	if len(t.Plays) == 0 {
		return -1, ErrEmptyTrick
	}
	trumpSuit, hasTrump := trumpSuitOf(trump)
	lead, hasLead := t.LeadSuit()

	best := 0
	bestStrength := Strength(t.Plays[0].Card, trumpSuit, hasTrump, lead, hasLead)
	for i := 1; i < len(t.Plays); i++ {
		s := Strength(t.Plays[i].Card, trumpSuit, hasTrump, lead, hasLead)
		if s > bestStrength {
			best, bestStrength = i, s
		}
	}
	return best, nil
}

// Winner returns the player who wins the trick.
func (t *Trick) Winner(trump Card) (PlayerID, error) {
	idx, err := t.WinningIndex(trump)
	if err != nil {
		return "", err
	}
	return t.Plays[idx].Player, nil
}

// trumpSuitOf returns the trump suit set by the indicator card. A Wizard or
// Jester indicator makes SPECIAL the trump suit, which no Number card has.
func trumpSuitOf(indicator Card) (uint8, bool) {
	if indicator == EmptyCard {
		return 0, false
	}
	return indicator.Suit(), true
}
