// internal/handlers/handlers.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"

	engine "github.com/SE2-Projekt-Wizard2025/Server-WizardSE2-sub000/engine"
	"github.com/SE2-Projekt-Wizard2025/Server-WizardSE2-sub000/service/internal/auth"
	"github.com/SE2-Projekt-Wizard2025/Server-WizardSE2-sub000/service/internal/game"
)

// eventScoreboard answers a "scoreboard" request on the requesting connection.
const eventScoreboard game.GameEventType = "game_scoreboard"

// clientMessage is the envelope for every message a player sends.
type clientMessage struct {
	Type  string `json:"type"`
	Value *int   `json:"value,omitempty"` // predict
	Card  string `json:"card,omitempty"`  // play
	Cheat bool   `json:"cheat,omitempty"` // play
}

// Handler serves the HTTP and websocket API.
type Handler struct {
	svc  *game.Service
	hub  *Hub
	auth *auth.Verifier
	log  logrus.FieldLogger
}

// NewHandler wires the API to svc. Sessions must be attached to hub by the
// store's factory for broadcasts to reach connections.
func NewHandler(svc *game.Service, hub *Hub, verifier *auth.Verifier, log logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, hub: hub, auth: verifier, log: log}
}

// Routes returns the server mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.healthz)
	mux.HandleFunc("POST /games", h.createGame)
	mux.HandleFunc("GET /games/{gameId}/scoreboard", h.scoreboard)
	mux.HandleFunc("GET /ws/games/{gameId}", h.serveWS)
	return mux
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) createGame(w http.ResponseWriter, _ *http.Request) {
	id := h.svc.CreateGame()
	h.log.WithField("game_id", id).Info("Game created")
	writeJSON(w, http.StatusCreated, map[string]string{"gameId": id})
}

func (h *Handler) scoreboard(w http.ResponseWriter, r *http.Request) {
	scores, err := h.svc.Scoreboard(r.PathValue("gameId"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, game.ErrGameNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error(), "code": errorCode(err)})
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

// serveWS upgrades the request and runs the read loop for one player.
func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameId")
	q := r.URL.Query()
	playerID := engine.PlayerID(q.Get("playerId"))
	name := q.Get("name")
	if playerID == "" {
		http.Error(w, "playerId is required", http.StatusBadRequest)
		return
	}
	if err := h.auth.Authorize(q.Get("token"), string(playerID)); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		h.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.CloseNow()

	log := h.log.WithFields(logrus.Fields{"game_id": gameID, "player_id": playerID})
	c := newClient(gameID, playerID, conn)
	h.hub.register(c)
	defer h.hub.unregister(c)

	ctx := r.Context()
	go c.writeLoop(ctx, log)
	log.Debug("Client connected")

	for {
		var msg clientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) == -1 {
				log.WithError(err).Debug("Read failed")
			}
			break
		}
		h.dispatch(c, name, msg)

		select {
		case <-c.done:
			conn.Close(websocket.StatusPolicyViolation, "connection replaced or too slow")
			return
		default:
		}
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

// dispatch runs one client message against the service.
func (h *Handler) dispatch(c *client, name string, msg clientMessage) {
	var err error
	switch msg.Type {
	case "join":
		_, err = h.svc.JoinGame(c.gameID, c.playerID, name)
	case "start":
		_, err = h.svc.StartGame(c.gameID, c.playerID)
	case "predict":
		if msg.Value == nil {
			err = errBadRequest("predict requires a value")
			break
		}
		_, err = h.svc.SubmitPrediction(c.gameID, c.playerID, *msg.Value)
	case "play":
		if msg.Card == "" {
			err = errBadRequest("play requires a card")
			break
		}
		_, err = h.svc.PlayCard(c.gameID, c.playerID, msg.Card, msg.Cheat)
	case "scoreboard":
		var scores []game.ScoreEntry
		scores, err = h.svc.Scoreboard(c.gameID)
		if err == nil {
			c.enqueue(game.GameEvent{Type: eventScoreboard, Scores: scores})
		}
	case "abort":
		err = h.svc.AbortGame(c.gameID, c.playerID, fmt.Sprintf("aborted by %s", c.playerID))
	default:
		err = errBadRequest(fmt.Sprintf("unknown message type %q", msg.Type))
	}

	if err != nil {
		c.enqueue(game.GameEvent{
			Type:    game.EventError,
			Payload: map[string]interface{}{"message": err.Error(), "code": errorCode(err), "request": msg.Type},
		})
	}
}

var errBadRequestBase = errors.New("bad request")

func errBadRequest(msg string) error {
	return fmt.Errorf("%w: %s", errBadRequestBase, msg)
}

// errorCode maps an error to the stable code sent to clients.
func errorCode(err error) string {
	codes := []struct {
		target error
		code   string
	}{
		{game.ErrGameNotFound, "game_not_found"},
		{game.ErrPlayerNotFound, "player_not_found"},
		{engine.ErrPlayerNotFound, "player_not_found"},
		{game.ErrGameAlreadyEnded, "game_ended"},
		{game.ErrGameNotActive, "game_not_active"},
		{game.ErrGameFull, "game_full"},
		{game.ErrGameInProgress, "game_in_progress"},
		{game.ErrGameStart, "game_start"},
		{engine.ErrTurnViolation, "turn_violation"},
		{engine.ErrInvalidTurn, "invalid_turn"},
		{engine.ErrInvalidPrediction, "invalid_prediction"},
		{engine.ErrCardNotInHand, "card_not_in_hand"},
		{engine.ErrInvalidCard, "invalid_card"},
		{engine.ErrWrongPhase, "wrong_phase"},
		{errBadRequestBase, "bad_request"},
	}
	for _, c := range codes {
		if errors.Is(err, c.target) {
			return c.code
		}
	}
	return "internal"
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
