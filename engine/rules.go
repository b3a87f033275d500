package engine

// HouseRules holds configurable game rule settings.
type HouseRules struct {
	MinPlayers     int
	MaxPlayers     int
	CardBudget     int // total cards available per game; bounds the round count
	ExactBonus     int // flat bonus for hitting the prediction
	PointsPerTrick int // per trick won on an exact prediction, and per trick of error otherwise
}

// DefaultHouseRules returns the standard Wizard rules.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		MinPlayers:     3,
		MaxPlayers:     6,
		CardBudget:     DeckSize,
		ExactBonus:     20,
		PointsPerTrick: 10,
	}
}

// MaxRound returns how many rounds a game with n players lasts.
func (r *HouseRules) MaxRound(n int) int {
	if n <= 0 {
		return 0
	}
	return r.cardBudget() / n
}

// cardBudget returns the effective budget, treating 0 as a full deck.
func (r *HouseRules) cardBudget() int {
	if r.CardBudget <= 0 || r.CardBudget > DeckSize {
		return DeckSize
	}
	return r.CardBudget
}
