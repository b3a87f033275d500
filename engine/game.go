// Package engine implements the Wizard trick-taking rules: the deck, dealing
// and trump, the prediction protocol, trick resolution, and scoring.
//
// The package holds no locks and does no I/O. One Round value drives exactly
// one round; the caller owns synchronization.
package engine

import (
	"fmt"
	"math/rand/v2"
)

// RoundPhase is the phase of a single round.
type RoundPhase uint8

const (
	PhasePredicting RoundPhase = iota // 0
	PhasePlaying                      // 1
	PhaseFinished                     // 2: hands empty, not yet scored
	PhaseScored                       // 3
)

func (p RoundPhase) String() string {
	switch p {
	case PhasePredicting:
		return "predicting"
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	case PhaseScored:
		return "scored"
	}
	return "unknown"
}

// ResolvedTrick records the outcome of the last completed trick.
type ResolvedTrick struct {
	Plays  []Play
	Winner PlayerID
}

// Round drives one round: deal, predictions, trick-by-trick play, scoring.
type Round struct {
	Number  int
	Players []*Player  // seating order
	Order   []PlayerID // prediction order; Order[0] leads the first trick
	Trump   Card       // trump indicator, EmptyCard when none was drawn
	Trick   Trick
	Last    *ResolvedTrick

	Phase         RoundPhase
	CurrentPlayer PlayerID
	TricksPlayed  int

	deck  *Deck
	rules HouseRules
}

// StartRound validates the round, then builds and shuffles a fresh deck,
// deals number cards to each player, resets their round state, and draws the
// trump indicator if any card is left.
// Nothing is modified when an error is returned.
func StartRound(rules HouseRules, players []*Player, order []PlayerID, number int, rng *rand.Rand) (*Round, error) {
	n := len(players)
	if n == 0 {
		return nil, fmt.Errorf("%w: no players", ErrInvalidRound)
	}
	if number < 1 {
		return nil, fmt.Errorf("%w: round number must be at least 1, got %d", ErrInvalidRound, number)
	}
	if n*number > rules.cardBudget() {
		return nil, fmt.Errorf("%w: round %d needs %d cards for %d players, budget is %d",
			ErrInvalidRound, number, n*number, n, rules.cardBudget())
	}
	if err := validateOrder(players, order); err != nil {
		return nil, err
	}

	deck := NewDeck(rng)
	deck.Shuffle()

	hands := make([][]Card, n)
	for i := range players {
		hand, err := deck.Draw(number)
		if err != nil {
			return nil, err
		}
		hands[i] = hand
	}
	for i, p := range players {
		p.resetRound(hands[i])
	}

	r := &Round{
		Number:  number,
		Players: players,
		Order:   append([]PlayerID(nil), order...),
		Trump:   EmptyCard,
		Phase:   PhasePredicting,
		deck:    deck,
		rules:   rules,
	}
	if deck.Len() > 0 {
		drawn, err := deck.Draw(1)
		if err != nil {
			return nil, err
		}
		r.Trump = drawn[0]
	}
	r.CurrentPlayer = order[0]
	return r, nil
}

// validateOrder checks that order is a permutation of the players' IDs.
func validateOrder(players []*Player, order []PlayerID) error {
	if len(order) != len(players) {
		return fmt.Errorf("%w: prediction order has %d entries for %d players", ErrInvalidRound, len(order), len(players))
	}
	seen := make(map[PlayerID]bool, len(order))
	for _, id := range order {
		if seen[id] {
			return fmt.Errorf("%w: player %s appears twice in prediction order", ErrInvalidRound, id)
		}
		seen[id] = true
	}
	for _, p := range players {
		if !seen[p.ID] {
			return fmt.Errorf("%w: player %s missing from prediction order", ErrInvalidRound, p.ID)
		}
	}
	return nil
}

// TrumpSuit returns the trump suit, if the round has one.
func (r *Round) TrumpSuit() (uint8, bool) { return trumpSuitOf(r.Trump) }

// DeckLen returns the number of undealt cards left after the trump draw.
func (r *Round) DeckLen() int { return r.deck.Len() }

// CardsDealt returns how many cards each player received.
func (r *Round) CardsDealt() int { return r.Number }

// CardCount returns every card accounted for this round: hands, deck, trump
// indicator, the open trick, and resolved tricks. It always equals DeckSize.
func (r *Round) CardCount() int {
	total := r.deck.Len() + r.Trick.Len() + r.TricksPlayed*len(r.Players)
	if r.Trump != EmptyCard {
		total++
	}
	for _, p := range r.Players {
		total += len(p.Hand)
	}
	return total
}

// Player returns the seated player with the given ID.
func (r *Round) Player(id PlayerID) (*Player, error) {
	for _, p := range r.Players {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
}

// seatAfter returns the player seated after id.
func (r *Round) seatAfter(id PlayerID) PlayerID {
	for i, p := range r.Players {
		if p.ID == id {
			return r.Players[(i+1)%len(r.Players)].ID
		}
	}
	return r.Players[0].ID
}

// ---------------------------------------------------------------------------
// Predictions
// ---------------------------------------------------------------------------

// PredictionCount returns how many players have bid.
func (r *Round) PredictionCount() int {
	count := 0
	for _, p := range r.Players {
		if p.HasPredicted() {
			count++
		}
	}
	return count
}

// ExpectedBidder returns the next player to bid, or false once all have.
func (r *Round) ExpectedBidder() (PlayerID, bool) {
	idx := r.PredictionCount()
	if idx >= len(r.Order) {
		return "", false
	}
	return r.Order[idx], true
}

// Predict records a bid.
//
// Bids are taken strictly in prediction order. The last bidder may not bring
// the sum of bids to the number of cards dealt. Once everyone has bid the
// round moves to play and Order[0] leads.
func (r *Round) Predict(id PlayerID, value int) error {
	if r.Phase != PhasePredicting {
		return fmt.Errorf("%w: round is %s", ErrWrongPhase, r.Phase)
	}
	p, err := r.Player(id)
	if err != nil {
		return err
	}
	expected, _ := r.ExpectedBidder()
	if expected != id {
		return fmt.Errorf("%w: expected prediction from %s, got %s", ErrTurnViolation, expected, id)
	}
	if value < 0 || value > r.Number {
		return fmt.Errorf("%w: prediction must be between 0 and %d, got %d", ErrInvalidPrediction, r.Number, value)
	}

	isLast := r.PredictionCount() == len(r.Order)-1
	if isLast {
		sum := value
		for _, other := range r.Players {
			if other.Prediction != nil {
				sum += *other.Prediction
			}
		}
		if sum == r.Number {
			return fmt.Errorf("%w: total predictions may not equal %d tricks", ErrInvalidPrediction, r.Number)
		}
	}

	v := value
	p.Prediction = &v
	if isLast {
		r.Phase = PhasePlaying
		r.CurrentPlayer = r.Order[0]
	} else {
		r.CurrentPlayer = r.Order[r.PredictionCount()]
	}
	return nil
}

// ---------------------------------------------------------------------------
// Play
// ---------------------------------------------------------------------------

// PlayCard plays c from id's hand into the open trick. cheatBypass skips the
// follow-suit check and nothing else.
func (r *Round) PlayCard(id PlayerID, c Card, cheatBypass bool) error {
	if r.Phase != PhasePlaying {
		return fmt.Errorf("%w: round is %s", ErrWrongPhase, r.Phase)
	}
	p, err := r.Player(id)
	if err != nil {
		return err
	}
	if id != r.CurrentPlayer {
		return fmt.Errorf("%w: waiting for %s, got %s", ErrTurnViolation, r.CurrentPlayer, id)
	}
	if r.Trick.IsComplete(len(r.Players)) {
		return fmt.Errorf("%w: trick is complete and awaits resolution", ErrWrongPhase)
	}
	if !p.HasCard(c) {
		return fmt.Errorf("%w: %s does not hold %s", ErrCardNotInHand, id, c)
	}
	if !cheatBypass && !IsValidPlay(p, c, &r.Trick) {
		lead, _ := r.Trick.LeadSuit()
		return fmt.Errorf("%w: %s must follow %s", ErrInvalidTurn, id, SuitName(lead))
	}

	p.removeCard(c)
	r.Trick.add(id, c)
	r.CurrentPlayer = r.seatAfter(id)
	return nil
}

// TrickComplete reports whether every seated player has played to the trick.
func (r *Round) TrickComplete() bool { return r.Trick.IsComplete(len(r.Players)) }

// EndTrick resolves the open trick once every player has played to it. The
// winner's trick count goes up and they lead the next trick. When hands are
// empty the round is finished.
func (r *Round) EndTrick() (PlayerID, error) {
	if n := r.Trick.Len(); n > 0 && !r.TrickComplete() {
		return "", fmt.Errorf("%w: trick has %d of %d cards", ErrWrongPhase, n, len(r.Players))
	}
	winner, err := r.Trick.Winner(r.Trump)
	if err != nil {
		return "", err
	}
	p, err := r.Player(winner)
	if err != nil {
		return "", err
	}
	p.TricksWon++

	r.Last = &ResolvedTrick{
		Plays:  append([]Play(nil), r.Trick.Plays...),
		Winner: winner,
	}
	r.Trick.clear()
	r.TricksPlayed++
	r.CurrentPlayer = winner
	if len(p.Hand) == 0 {
		r.Phase = PhaseFinished
	}
	return winner, nil
}

// ---------------------------------------------------------------------------
// Round end
// ---------------------------------------------------------------------------

// TricksLeader returns the player with the most tricks this round. Ties go
// to the player seated first.
func (r *Round) TricksLeader() PlayerID {
	best := r.Players[0]
	for _, p := range r.Players[1:] {
		if p.TricksWon > best.TricksWon {
			best = p
		}
	}
	return best.ID
}

// EndRound scores the round and returns the prediction order for the next
// one, starting at the tricks leader.
func (r *Round) EndRound() ([]PlayerID, error) {
	if r.Phase != PhaseFinished {
		return nil, fmt.Errorf("%w: round is %s", ErrWrongPhase, r.Phase)
	}
	r.rules.applyScores(r.Players)
	r.Phase = PhaseScored
	return PredictionOrder(r.Players, r.TricksLeader())
}

// PredictionOrder rotates the seating order to start at start.
func PredictionOrder(players []*Player, start PlayerID) ([]PlayerID, error) {
	startIdx := -1
	for i, p := range players {
		if p.ID == start {
			startIdx = i
			break
		}
	}
	if startIdx < 0 {
		return nil, fmt.Errorf("%w: starting player %s", ErrPlayerNotFound, start)
	}
	order := make([]PlayerID, len(players))
	for i := range players {
		order[i] = players[(startIdx+i)%len(players)].ID
	}
	return order, nil
}
