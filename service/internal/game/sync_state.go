// internal/game/sync_state.go
package game

import (
	"slices"

	engine "github.com/SE2-Projekt-Wizard2025/Server-WizardSE2-sub000/engine"
)

// CardView is the wire form of a card.
type CardView struct {
	Ref      string `json:"ref"` // "RED_10", "WIZARD", "JESTER"
	Suit     string `json:"suit"`
	Rank     int    `json:"rank"`
	Kind     string `json:"kind"`
	Playable bool   `json:"playable,omitempty"` // set only on the requester's own hand
}

// PlayView is one card played into a trick.
type PlayView struct {
	PlayerID engine.PlayerID `json:"playerId"`
	Card     CardView        `json:"card"`
}

// TrickView is a resolved trick.
type TrickView struct {
	Plays  []PlayView      `json:"plays"`
	Winner engine.PlayerID `json:"winner"`
}

// PlayerView is the state of one player as seen by a given observer.
type PlayerView struct {
	ID            engine.PlayerID `json:"id"`
	Name          string          `json:"name"`
	HandSize      int             `json:"handSize"`
	Prediction    *int            `json:"prediction,omitempty"`
	TricksWon     int             `json:"tricksWon"`
	Score         int             `json:"score"`
	RoundScores   []int           `json:"roundScores"`
	IsCurrentTurn bool            `json:"isCurrentTurn"`
	// Hand is populated only for the observer's own seat.
	Hand []CardView `json:"hand,omitempty"`
}

// SessionView is a snapshot of a session tailored to one observer.
type SessionView struct {
	GameID          string            `json:"gameId"`
	Status          string            `json:"status"`
	Round           int               `json:"round"`
	MaxRound        int               `json:"maxRound"`
	RoundPhase      string            `json:"roundPhase,omitempty"`
	CurrentPlayerID engine.PlayerID   `json:"currentPlayerId,omitempty"`
	Trump           *CardView         `json:"trump,omitempty"`
	TrumpSuit       string            `json:"trumpSuit,omitempty"`
	PredictionOrder []engine.PlayerID `json:"predictionOrder,omitempty"`
	Trick           []PlayView        `json:"trick"`
	LastTrick       *TrickView        `json:"lastTrick,omitempty"`
	Players         []PlayerView      `json:"players"`
}

// ScoreEntry is one line of the scoreboard.
type ScoreEntry struct {
	PlayerID    engine.PlayerID `json:"playerId"`
	Name        string          `json:"name"`
	Score       int             `json:"score"`
	TricksWon   int             `json:"tricksWon"`
	Prediction  *int            `json:"prediction,omitempty"`
	RoundScores []int           `json:"roundScores"`
}

// View builds the snapshot for forPlayer. Unknown observers see no hands.
// Assumes lock is held by caller.
func (s *Session) View(forPlayer engine.PlayerID) SessionView {
	v := SessionView{
		GameID:   s.ID,
		Status:   s.Status.String(),
		Round:    s.CurrentRound,
		MaxRound: s.MaxRound,
		Trick:    []PlayView{},
		Players:  make([]PlayerView, 0, len(s.Players)),
	}

	r := s.Round
	if r != nil {
		v.RoundPhase = r.Phase.String()
		v.PredictionOrder = append([]engine.PlayerID(nil), r.Order...)
		if r.Trump != engine.EmptyCard {
			tv := cardView(r.Trump)
			v.Trump = &tv
		}
		if suit, ok := r.TrumpSuit(); ok {
			v.TrumpSuit = engine.SuitName(suit)
		}
		v.Trick = playViews(r.Trick.Plays)
		if r.Last != nil {
			v.LastTrick = &TrickView{Plays: playViews(r.Last.Plays), Winner: r.Last.Winner}
		}
		if s.Status == StatusPredicting || s.Status == StatusPlaying {
			v.CurrentPlayerID = r.CurrentPlayer
		}
	}

	for _, p := range s.Players {
		pv := PlayerView{
			ID:            p.ID,
			Name:          p.Name,
			HandSize:      len(p.Hand),
			Prediction:    copyInt(p.Prediction),
			TricksWon:     p.TricksWon,
			Score:         p.Score,
			RoundScores:   append([]int{}, p.RoundScores...),
			IsCurrentTurn: v.CurrentPlayerID != "" && v.CurrentPlayerID == p.ID,
		}
		if p.ID == forPlayer {
			pv.Hand = s.handView(p)
		}
		v.Players = append(v.Players, pv)
	}
	return v
}

// handView reveals p's hand and marks the cards p may play right now.
func (s *Session) handView(p *engine.Player) []CardView {
	hand := make([]CardView, len(p.Hand))
	var legal []engine.Card
	if s.Status == StatusPlaying && s.Round != nil && s.Round.CurrentPlayer == p.ID && !s.Round.TrickComplete() {
		legal = engine.LegalCards(p, &s.Round.Trick)
	}
	for i, c := range p.Hand {
		hand[i] = cardView(c)
		hand[i].Playable = slices.Contains(legal, c)
	}
	return hand
}

// Scoreboard lists players by score, highest first. Ties keep seating order.
// Assumes lock is held by caller.
func (s *Session) Scoreboard() []ScoreEntry {
	entries := make([]ScoreEntry, len(s.Players))
	for i, p := range s.Players {
		entries[i] = ScoreEntry{
			PlayerID:    p.ID,
			Name:        p.Name,
			Score:       p.Score,
			TricksWon:   p.TricksWon,
			Prediction:  copyInt(p.Prediction),
			RoundScores: append([]int{}, p.RoundScores...),
		}
	}
	slices.SortStableFunc(entries, func(a, b ScoreEntry) int {
		return b.Score - a.Score
	})
	return entries
}

func playViews(plays []engine.Play) []PlayView {
	out := make([]PlayView, len(plays))
	for i, pl := range plays {
		out[i] = PlayView{PlayerID: pl.Player, Card: cardView(pl.Card)}
	}
	return out
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
