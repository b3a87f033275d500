package engine

// PlayerID identifies a player.
type PlayerID string

// Player holds one player's round and game state.
type Player struct {
	ID          PlayerID
	Name        string
	Hand        []Card
	Prediction  *int // nil until the player has bid this round
	TricksWon   int
	Score       int
	RoundScores []int // append-only, one entry per finished round
}

// NewPlayer returns a player with an empty hand and no score.
func NewPlayer(id PlayerID, name string) *Player {
	return &Player{ID: id, Name: name}
}

// HasCard reports whether c is in the player's hand.
func (p *Player) HasCard(c Card) bool {
	_, ok := indexOfCard(p.Hand, c)
	return ok
}

// HasSuit reports whether the hand holds a Number card of the given suit.
func (p *Player) HasSuit(suit uint8) bool {
	for _, c := range p.Hand {
		if c.Kind() == KindNumber && c.Suit() == suit {
			return true
		}
	}
	return false
}

// HasPredicted reports whether the player has bid this round.
func (p *Player) HasPredicted() bool { return p.Prediction != nil }

// removeCard removes one copy of c from the hand.
func (p *Player) removeCard(c Card) bool {
	idx, ok := indexOfCard(p.Hand, c)
	if !ok {
		return false
	}
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	return true
}

// resetRound clears all per-round state.
func (p *Player) resetRound(hand []Card) {
	p.Hand = hand
	p.Prediction = nil
	p.TricksWon = 0
}

func indexOfCard(hand []Card, c Card) (int, bool) {
	for i, h := range hand {
		if h == c {
			return i, true
		}
	}
	return -1, false
}
