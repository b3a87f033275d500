// internal/game/game.go
package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	engine "github.com/SE2-Projekt-Wizard2025/Server-WizardSE2-sub000/engine"
	"github.com/SE2-Projekt-Wizard2025/Server-WizardSE2-sub000/service/internal/cache"
	"github.com/sirupsen/logrus"
)

// Status is the lifecycle state of a session.
type Status uint8

const (
	StatusLobby Status = iota
	StatusPredicting
	StatusPlaying
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusLobby:
		return "lobby"
	case StatusPredicting:
		return "predicting"
	case StatusPlaying:
		return "playing"
	case StatusEnded:
		return "ended"
	}
	return "unknown"
}

// GameEventType represents the type of a game-related event broadcast via WebSockets.
type GameEventType string

const (
	EventPlayerJoin       GameEventType = "player_join"        // Public: a player joined the lobby.
	EventGameStart        GameEventType = "game_start"         // Public: seating fixed, first round dealt.
	EventRoundStart       GameEventType = "game_round_start"   // Public: new round dealt, carries the trump card.
	EventPlayerPredict    GameEventType = "player_predict"     // Public: a player submitted a bid.
	EventPlayerPlayCard   GameEventType = "player_play_card"   // Public: a card was played into the trick.
	EventTrickWon         GameEventType = "game_trick_won"     // Public: trick resolved.
	EventRoundEnd         GameEventType = "game_round_end"     // Public: round scored, carries the scoreboard.
	EventGameEnd          GameEventType = "game_end"           // Public: last round scored.
	EventGameAborted      GameEventType = "game_aborted"       // Public: game ended early.
	EventPrivateSyncState GameEventType = "private_sync_state" // Private: full view for one player.
	EventError            GameEventType = "error"              // Private: a rejected action.
)

// EventUser identifies a player within a GameEvent payload.
type EventUser struct {
	ID   engine.PlayerID `json:"id"`
	Name string          `json:"name,omitempty"`
}

// GameEvent is the standard structure for broadcasting game state changes and actions.
type GameEvent struct {
	Type   GameEventType `json:"type"`
	User   *EventUser    `json:"user,omitempty"`
	Card   *CardView     `json:"card,omitempty"`
	Round  int           `json:"round,omitempty"`
	Scores []ScoreEntry  `json:"scores,omitempty"`

	Payload map[string]interface{} `json:"payload,omitempty"`

	State *SessionView `json:"state,omitempty"` // set on sync events
}

// ActionPublisher receives the action stream and round scoreboards of a game.
type ActionPublisher interface {
	PublishGameAction(ctx context.Context, rec cache.GameActionRecord) error
	PublishScoreboard(ctx context.Context, rec cache.ScoreboardRecord) error
}

// Session is one Wizard game: its roster, lifecycle, and the current round.
type Session struct {
	ID string

	HouseRules engine.HouseRules
	Status     Status

	Players      []*engine.Player  // join order in the lobby, seating order after start
	Order        []engine.PlayerID // prediction order of the current round
	Round        *engine.Round
	CurrentRound int
	MaxRound     int

	CreatedAt    time.Time
	EndedAt      time.Time
	lastActivity time.Time
	actionIndex  int

	Mu   sync.Mutex
	Rand *rand.Rand
	Now  func() time.Time

	// Communication callbacks, invoked with the lock held.
	BroadcastFn         func(ev GameEvent)
	BroadcastToPlayerFn func(playerID engine.PlayerID, ev GameEvent)
	Publisher           ActionPublisher

	log logrus.FieldLogger
}

// NewSession creates an empty lobby.
func NewSession(id string, rules engine.HouseRules, log logrus.FieldLogger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	now := time.Now()
	return &Session{
		ID:           id,
		HouseRules:   rules,
		Status:       StatusLobby,
		CreatedAt:    now,
		lastActivity: now,
		Rand:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		Now:          time.Now,
		log:          log.WithField("game_id", id),
	}
}

// Touch records activity for idle expiry.
// Assumes lock is held by caller.
func (s *Session) Touch() { s.lastActivity = s.Now() }

// LastActivity returns the time of the last operation.
// Assumes lock is held by caller.
func (s *Session) LastActivity() time.Time { return s.lastActivity }

// AddPlayer seats a new player in the lobby. Joining again with a known ID
// only resends that player's view, also after the game has started or ended.
// Either way the joiner receives exactly one sync event.
// Assumes lock is held by caller.
func (s *Session) AddPlayer(id engine.PlayerID, name string) error {
	if id == "" {
		return fmt.Errorf("%w: empty player id", ErrPlayerNotFound)
	}
	if s.findPlayer(id) != nil {
		s.SendSyncState(id)
		return nil
	}
	switch s.Status {
	case StatusEnded:
		return fmt.Errorf("%w: %s", ErrGameAlreadyEnded, s.ID)
	case StatusPredicting, StatusPlaying:
		return fmt.Errorf("%w: %s cannot join round %d", ErrGameInProgress, id, s.CurrentRound)
	}
	if len(s.Players) >= s.HouseRules.MaxPlayers {
		return fmt.Errorf("%w: %d of %d seats taken", ErrGameFull, len(s.Players), s.HouseRules.MaxPlayers)
	}
	if name == "" {
		name = string(id)
	}

	s.Players = append(s.Players, engine.NewPlayer(id, name))
	s.logAction(string(id), string(EventPlayerJoin), map[string]interface{}{"name": name})
	s.fireEvent(GameEvent{Type: EventPlayerJoin, User: s.eventUser(id)})
	s.log.WithFields(logrus.Fields{"player_id": id, "players": len(s.Players)}).Info("Player joined")
	s.BroadcastSyncStateToAll()
	return nil
}

// Start fixes a random seating order and deals round 1.
// Assumes lock is held by caller.
func (s *Session) Start() error {
	if s.Status == StatusEnded {
		return fmt.Errorf("%w: %s", ErrGameAlreadyEnded, s.ID)
	}
	if s.Status != StatusLobby {
		return fmt.Errorf("%w: already started", ErrGameStart)
	}
	n := len(s.Players)
	if n < s.HouseRules.MinPlayers || n > s.HouseRules.MaxPlayers {
		return fmt.Errorf("%w: need %d to %d players, have %d",
			ErrGameStart, s.HouseRules.MinPlayers, s.HouseRules.MaxPlayers, n)
	}

	lobby := s.Players
	seated := slices.Clone(lobby)
	s.Rand.Shuffle(len(seated), func(i, j int) { seated[i], seated[j] = seated[j], seated[i] })
	order := make([]engine.PlayerID, n)
	for i, p := range seated {
		order[i] = p.ID
	}

	s.Players = seated
	s.Order = order
	s.MaxRound = s.HouseRules.MaxRound(n)
	if err := s.dealRound(1); err != nil {
		s.Players, s.Order, s.MaxRound = lobby, nil, 0
		return fmt.Errorf("%w: %v", ErrGameStart, err)
	}
	startPayload := map[string]interface{}{"seating": order, "maxRound": s.MaxRound}
	s.logAction("", string(EventGameStart), startPayload)
	s.fireEvent(GameEvent{Type: EventGameStart, Payload: startPayload})
	s.announceRound()
	s.log.WithFields(logrus.Fields{"players": n, "max_round": s.MaxRound}).Info("Game started")
	s.BroadcastSyncStateToAll()
	return nil
}

// SubmitPrediction records a bid for the current round.
// Assumes lock is held by caller.
func (s *Session) SubmitPrediction(id engine.PlayerID, value int) error {
	if s.Status == StatusEnded {
		return fmt.Errorf("%w: %s", ErrGameAlreadyEnded, s.ID)
	}
	if _, err := s.requirePlayer(id); err != nil {
		return err
	}
	if s.Status != StatusPredicting {
		return fmt.Errorf("%w: predictions are closed while %s", ErrGameNotActive, s.Status)
	}
	if err := s.Round.Predict(id, value); err != nil {
		return err
	}

	s.logAction(string(id), string(EventPlayerPredict), map[string]interface{}{"value": value, "round": s.CurrentRound})
	s.fireEvent(GameEvent{
		Type:    EventPlayerPredict,
		User:    s.eventUser(id),
		Round:   s.CurrentRound,
		Payload: map[string]interface{}{"value": value},
	})
	if s.Round.Phase == engine.PhasePlaying {
		s.Status = StatusPlaying
		s.log.WithField("round", s.CurrentRound).Debug("All predictions in")
	}
	s.BroadcastSyncStateToAll()
	return nil
}

// PlayCard plays cardRef from id's hand. A completed trick is resolved
// immediately, which may end the round or the game.
// Assumes lock is held by caller.
func (s *Session) PlayCard(id engine.PlayerID, cardRef string, cheatBypass bool) error {
	if s.Status == StatusEnded {
		return fmt.Errorf("%w: %s", ErrGameAlreadyEnded, s.ID)
	}
	if _, err := s.requirePlayer(id); err != nil {
		return err
	}
	if s.Status != StatusPlaying {
		return fmt.Errorf("%w: cannot play while %s", ErrGameNotActive, s.Status)
	}
	c, err := parseCardRef(cardRef)
	if err != nil {
		return err
	}
	if err := s.Round.PlayCard(id, c, cheatBypass); err != nil {
		return err
	}

	cv := cardView(c)
	payload := map[string]interface{}{"card": cv.Ref, "round": s.CurrentRound}
	if cheatBypass {
		payload["cheat"] = true
		s.log.WithFields(logrus.Fields{"player_id": id, "card": cv.Ref}).Warn("Follow-suit check bypassed")
	}
	s.logAction(string(id), string(EventPlayerPlayCard), payload)
	s.fireEvent(GameEvent{Type: EventPlayerPlayCard, User: s.eventUser(id), Card: &cv, Round: s.CurrentRound})

	if s.Round.TrickComplete() {
		if err := s.resolveTrickEngine(); err != nil {
			// The engine validated every play; this only trips on a broken invariant.
			s.log.WithError(err).Error("Failed resolving trick")
			return err
		}
	}
	s.BroadcastSyncStateToAll()
	return nil
}

// Abort ends the game immediately.
// Assumes lock is held by caller.
func (s *Session) Abort(reason string) error {
	if s.Status == StatusEnded {
		return fmt.Errorf("%w: %s", ErrGameAlreadyEnded, s.ID)
	}
	s.Status = StatusEnded
	s.EndedAt = s.Now()
	s.logAction("", string(EventGameAborted), map[string]interface{}{"reason": reason, "round": s.CurrentRound})
	s.fireEvent(GameEvent{
		Type:    EventGameAborted,
		Round:   s.CurrentRound,
		Scores:  s.Scoreboard(),
		Payload: map[string]interface{}{"reason": reason},
	})
	s.log.WithField("reason", reason).Info("Game aborted")
	s.BroadcastSyncStateToAll()
	return nil
}

// endGame marks the session Ended after the last round was scored.
// Assumes lock is held by caller.
func (s *Session) endGame() {
	s.Status = StatusEnded
	s.EndedAt = s.Now()

	scores := s.Scoreboard()
	var winners []engine.PlayerID
	for _, e := range scores {
		if e.Score == scores[0].Score {
			winners = append(winners, e.PlayerID)
		}
	}
	s.logAction("", string(EventGameEnd), map[string]interface{}{"winners": winners, "rounds": s.CurrentRound})
	s.fireEvent(GameEvent{
		Type:    EventGameEnd,
		Round:   s.CurrentRound,
		Scores:  scores,
		Payload: map[string]interface{}{"winners": winners},
	})
	s.log.WithField("winners", winners).Info("Game ended")
}

// SendSyncState sends playerID their tailored view.
// Assumes lock is held by caller.
func (s *Session) SendSyncState(playerID engine.PlayerID) {
	view := s.View(playerID)
	s.fireEventToPlayer(playerID, GameEvent{Type: EventPrivateSyncState, State: &view})
}

// BroadcastSyncStateToAll sends every seated player their tailored view.
// Assumes lock is held by caller.
func (s *Session) BroadcastSyncStateToAll() {
	for _, p := range s.Players {
		s.SendSyncState(p.ID)
	}
}

func (s *Session) eventUser(id engine.PlayerID) *EventUser {
	u := &EventUser{ID: id}
	if p := s.findPlayer(id); p != nil {
		u.Name = p.Name
	}
	return u
}

// fireEvent broadcasts an event to all connected players via the BroadcastFn callback.
// Assumes lock is held by caller.
func (s *Session) fireEvent(ev GameEvent) {
	if s.BroadcastFn != nil {
		s.BroadcastFn(ev)
		return
	}
	s.log.WithField("event", ev.Type).Debug("BroadcastFn is nil, dropping event")
}

// fireEventToPlayer sends an event to a single player via the BroadcastToPlayerFn callback.
// Assumes lock is held by caller.
func (s *Session) fireEventToPlayer(playerID engine.PlayerID, ev GameEvent) {
	if s.BroadcastToPlayerFn != nil {
		s.BroadcastToPlayerFn(playerID, ev)
	}
}

// logAction publishes an action record to the configured publisher.
// Increments the internal action index for ordering.
// Assumes lock is held by caller.
func (s *Session) logAction(actorID string, actionType string, payload map[string]interface{}) {
	s.actionIndex++
	if s.Publisher == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        s.ID,
		ActionIndex:   s.actionIndex,
		ActorID:       actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     s.Now().UnixMilli(),
	}

	pub, log := s.Publisher, s.log
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := pub.PublishGameAction(ctx, rec); err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"action_index": rec.ActionIndex,
				"action_type":  rec.ActionType,
			}).Warn("Failed publishing action")
		}
	}(record)
}

// publishScoreboard publishes a round's scoreboard.
// Assumes lock is held by caller.
func (s *Session) publishScoreboard(round int, final bool, scores []ScoreEntry) {
	if s.Publisher == nil {
		return
	}
	rec := cache.ScoreboardRecord{
		GameID:    s.ID,
		Round:     round,
		Final:     final,
		Scores:    scores,
		Timestamp: s.Now().UnixMilli(),
	}
	pub, log := s.Publisher, s.log
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := pub.PublishScoreboard(ctx, rec); err != nil {
			log.WithError(err).WithField("round", round).Warn("Failed publishing scoreboard")
		}
	}()
}
