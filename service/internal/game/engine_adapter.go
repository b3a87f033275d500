// internal/game/engine_adapter.go
package game

import (
	"fmt"

	engine "github.com/SE2-Projekt-Wizard2025/Server-WizardSE2-sub000/engine"
	"github.com/sirupsen/logrus"
)

// cardView converts an engine card to its wire form.
func cardView(c engine.Card) CardView {
	return CardView{
		Ref:  c.String(),
		Suit: engine.SuitName(c.Suit()),
		Rank: int(c.Rank()),
		Kind: c.Kind().String(),
	}
}

// parseCardRef resolves a client card reference such as "RED_10" or "wizard".
func parseCardRef(ref string) (engine.Card, error) {
	c, err := engine.ParseCard(ref)
	if err != nil {
		return engine.EmptyCard, err
	}
	return c, nil
}

// findPlayer returns the seated player with the given ID.
// Assumes lock is held by caller.
func (s *Session) findPlayer(id engine.PlayerID) *engine.Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// requirePlayer is findPlayer with a wrapped ErrPlayerNotFound.
// Assumes lock is held by caller.
func (s *Session) requirePlayer(id engine.PlayerID) (*engine.Player, error) {
	if p := s.findPlayer(id); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s in game %s", ErrPlayerNotFound, id, s.ID)
}

// startRoundEngine deals round number and announces it.
// Assumes lock is held by caller.
func (s *Session) startRoundEngine(number int) error {
	if err := s.dealRound(number); err != nil {
		return err
	}
	s.announceRound()
	return nil
}

// dealRound deals round number with the current prediction order and moves
// the session to Predicting. Nothing changes on error.
// Assumes lock is held by caller.
func (s *Session) dealRound(number int) error {
	r, err := engine.StartRound(s.HouseRules, s.Players, s.Order, number, s.Rand)
	if err != nil {
		return err
	}
	s.Round = r
	s.CurrentRound = number
	s.Status = StatusPredicting
	return nil
}

// announceRound publishes the start of the current round.
// Assumes lock is held by caller.
func (s *Session) announceRound() {
	r := s.Round
	payload := map[string]interface{}{
		"round":    s.CurrentRound,
		"maxRound": s.MaxRound,
		"order":    s.Order,
	}
	ev := GameEvent{Type: EventRoundStart, Round: s.CurrentRound, Payload: payload}
	if r.Trump != engine.EmptyCard {
		tv := cardView(r.Trump)
		ev.Card = &tv
		payload["trump"] = tv.Ref
	}
	s.logAction("", string(EventRoundStart), payload)
	s.fireEvent(ev)
	s.log.WithFields(logrus.Fields{"round": s.CurrentRound, "trump": r.Trump.String()}).Info("Round started")
}

// resolveTrickEngine closes a complete trick and, when hands are empty,
// scores the round and either deals the next one or ends the game.
// Assumes lock is held by caller.
func (s *Session) resolveTrickEngine() error {
	r := s.Round
	winner, err := r.EndTrick()
	if err != nil {
		return err
	}

	plays := playViews(r.Last.Plays)
	s.logAction(string(winner), string(EventTrickWon), map[string]interface{}{
		"round": s.CurrentRound,
		"trick": r.TricksPlayed,
	})
	s.fireEvent(GameEvent{
		Type:    EventTrickWon,
		User:    s.eventUser(winner),
		Round:   s.CurrentRound,
		Payload: map[string]interface{}{"plays": plays, "trick": r.TricksPlayed},
	})

	if r.Phase != engine.PhaseFinished {
		return nil
	}

	order, err := r.EndRound()
	if err != nil {
		return err
	}
	final := s.CurrentRound >= s.MaxRound
	scores := s.Scoreboard()
	s.logAction("", string(EventRoundEnd), map[string]interface{}{"round": s.CurrentRound, "final": final})
	s.publishScoreboard(s.CurrentRound, final, scores)
	s.fireEvent(GameEvent{Type: EventRoundEnd, Round: s.CurrentRound, Scores: scores})

	if final {
		s.endGame()
		return nil
	}
	s.Order = order
	return s.startRoundEngine(s.CurrentRound + 1)
}
