package engine

// IsValidPlay reports whether p may play c into the trick under follow-suit.
// Wizards and Jesters are always legal, as is any card when there is no lead
// suit yet. Otherwise a player holding the lead suit must play it.
func IsValidPlay(p *Player, c Card, t *Trick) bool {
	if c.IsWild() {
		return true
	}
	lead, ok := t.LeadSuit()
	if !ok {
		return true
	}
	return c.Suit() == lead || !p.HasSuit(lead)
}

// LegalCards returns the cards of p's hand that may be played now.
func LegalCards(p *Player, t *Trick) []Card {
	legal := make([]Card, 0, len(p.Hand))
	for _, c := range p.Hand {
		if IsValidPlay(p, c, t) {
			legal = append(legal, c)
		}
	}
	return legal
}
