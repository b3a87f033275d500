// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPoolSize    = 10
	defaultMinIdle     = 2
	defaultMaxIdleTime = 5 * time.Minute
)

// GameActionRecord is one entry in a game's action stream.
type GameActionRecord struct {
	ID            uuid.UUID              `json:"id"`
	GameID        string                 `json:"gameId"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorID       string                 `json:"actorId,omitempty"` // empty for game-level events
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload"`
	Timestamp     int64                  `json:"timestamp"` // unix millis
}

// ScoreboardRecord is published once per finished round.
type ScoreboardRecord struct {
	GameID    string      `json:"gameId"`
	Round     int         `json:"round"`
	Final     bool        `json:"final"`
	Scores    interface{} `json:"scores"`
	Timestamp int64       `json:"timestamp"`
}

// ActionsChannel is the pub/sub channel carrying a game's action records.
func ActionsChannel(gameID string) string {
	return "wizard:game:" + gameID + ":actions"
}

// ScoreboardChannel is the pub/sub channel carrying a game's round scoreboards.
func ScoreboardChannel(gameID string) string {
	return "wizard:game:" + gameID + ":scoreboard"
}

// NewClient builds a go-redis client with the server's pool defaults.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:            addr,
		Password:        password,
		DB:              db,
		PoolSize:        defaultPoolSize,
		MinIdleConns:    defaultMinIdle,
		ConnMaxIdleTime: defaultMaxIdleTime,
	})
}

// Publisher fans game records out over Redis pub/sub.
type Publisher struct {
	rdb redis.UniversalClient
}

// NewPublisher wraps an existing client.
func NewPublisher(rdb redis.UniversalClient) *Publisher {
	return &Publisher{rdb: rdb}
}

// Ping checks the connection.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// Close releases the underlying client.
func (p *Publisher) Close() error {
	return p.rdb.Close()
}

// PublishGameAction publishes rec on its game's actions channel.
func (p *Publisher) PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	data, err := EncodeGameAction(rec)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, ActionsChannel(rec.GameID), data).Err(); err != nil {
		return fmt.Errorf("publish action %d for game %s: %w", rec.ActionIndex, rec.GameID, err)
	}
	return nil
}

// PublishScoreboard publishes rec on its game's scoreboard channel.
func (p *Publisher) PublishScoreboard(ctx context.Context, rec ScoreboardRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode scoreboard: %w", err)
	}
	if err := p.rdb.Publish(ctx, ScoreboardChannel(rec.GameID), data).Err(); err != nil {
		return fmt.Errorf("publish scoreboard for game %s round %d: %w", rec.GameID, rec.Round, err)
	}
	return nil
}

// EncodeGameAction serializes rec, filling in an ID and a non-nil payload.
func EncodeGameAction(rec GameActionRecord) ([]byte, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.ActionPayload == nil {
		rec.ActionPayload = map[string]interface{}{}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode action record: %w", err)
	}
	return data, nil
}
