// internal/game/service.go
package game

import (
	"fmt"

	engine "github.com/SE2-Projekt-Wizard2025/Server-WizardSE2-sub000/engine"
	"github.com/sirupsen/logrus"
)

// Service is the entry point for the transport. Every call locks exactly one
// session; calls on different sessions run in parallel.
type Service struct {
	store *Store
	log   logrus.FieldLogger
}

// NewService wraps store.
func NewService(store *Store, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, log: log}
}

// Store returns the underlying session store.
func (svc *Service) Store() *Store { return svc.store }

// CreateGame registers an empty lobby under a fresh ID.
func (svc *Service) CreateGame() string {
	return svc.store.Create().ID
}

// JoinGame adds playerID to gameID, creating the session if needed, and
// returns the player's view. Joining twice is harmless.
func (svc *Service) JoinGame(gameID string, playerID engine.PlayerID, playerName string) (SessionView, error) {
	if playerID == "" {
		return SessionView{}, fmt.Errorf("%w: empty player id", ErrPlayerNotFound)
	}
	s, err := svc.acquire(gameID, true)
	if err != nil {
		return SessionView{}, err
	}
	defer s.Mu.Unlock()
	if err := s.AddPlayer(playerID, playerName); err != nil {
		svc.reject(s, playerID, "join", err)
		return SessionView{}, err
	}
	return s.View(playerID), nil
}

// StartGame seats the lobby and deals round 1 on behalf of playerID, who
// must have joined. The view is the neutral one with no hand revealed.
func (svc *Service) StartGame(gameID string, playerID engine.PlayerID) (SessionView, error) {
	var view SessionView
	err := svc.withSession(gameID, func(s *Session) error {
		if _, err := s.requirePlayer(playerID); err != nil {
			svc.reject(s, playerID, "start", err)
			return err
		}
		if err := s.Start(); err != nil {
			svc.reject(s, playerID, "start", err)
			return err
		}
		view = s.View("")
		return nil
	})
	return view, err
}

// SubmitPrediction records playerID's bid.
func (svc *Service) SubmitPrediction(gameID string, playerID engine.PlayerID, value int) (SessionView, error) {
	var view SessionView
	err := svc.withSession(gameID, func(s *Session) error {
		if err := s.SubmitPrediction(playerID, value); err != nil {
			svc.reject(s, playerID, "predict", err)
			return err
		}
		view = s.View(playerID)
		return nil
	})
	return view, err
}

// PlayCard plays cardRef from playerID's hand.
func (svc *Service) PlayCard(gameID string, playerID engine.PlayerID, cardRef string, cheatBypass bool) (SessionView, error) {
	var view SessionView
	err := svc.withSession(gameID, func(s *Session) error {
		if err := s.PlayCard(playerID, cardRef, cheatBypass); err != nil {
			svc.reject(s, playerID, "play", err)
			return err
		}
		view = s.View(playerID)
		return nil
	})
	return view, err
}

// Scoreboard returns the standings of gameID.
func (svc *Service) Scoreboard(gameID string) ([]ScoreEntry, error) {
	var scores []ScoreEntry
	err := svc.withSession(gameID, func(s *Session) error {
		scores = s.Scoreboard()
		return nil
	})
	return scores, err
}

// View returns gameID as seen by playerID.
func (svc *Service) View(gameID string, playerID engine.PlayerID) (SessionView, error) {
	var view SessionView
	err := svc.withSession(gameID, func(s *Session) error {
		view = s.View(playerID)
		return nil
	})
	return view, err
}

// AbortGame ends gameID immediately on behalf of playerID, who must have
// joined.
func (svc *Service) AbortGame(gameID string, playerID engine.PlayerID, reason string) error {
	return svc.withSession(gameID, func(s *Session) error {
		if _, err := s.requirePlayer(playerID); err != nil {
			svc.reject(s, playerID, "abort", err)
			return err
		}
		return s.Abort(reason)
	})
}

func (svc *Service) withSession(gameID string, fn func(s *Session) error) error {
	s, err := svc.acquire(gameID, false)
	if err != nil {
		return err
	}
	defer s.Mu.Unlock()
	return fn(s)
}

// acquire returns the session of gameID locked and touched. A session swept
// between lookup and lock is looked up again.
func (svc *Service) acquire(gameID string, create bool) (*Session, error) {
	for {
		var s *Session
		if create {
			s, _ = svc.store.GetOrCreate(gameID)
		} else {
			var err error
			if s, err = svc.store.Get(gameID); err != nil {
				return nil, err
			}
		}
		s.Mu.Lock()
		if svc.store.holds(gameID, s) {
			s.Touch()
			return s, nil
		}
		s.Mu.Unlock()
	}
}

func (svc *Service) reject(s *Session, playerID engine.PlayerID, action string, err error) {
	svc.log.WithFields(logrus.Fields{
		"game_id":   s.ID,
		"player_id": playerID,
		"action":    action,
	}).WithError(err).Debug("Action rejected")
}
