package cache

import (
	"absurdlyvisual/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionTTL = 12 * time.Hour

// SessionCache tracks live sockets per game. Sessions of one game share a
// hash so a finished game drops them in one delete.
type SessionCache interface {
	Set(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, gameID, sessionID string) (*model.Session, error)
	Delete(ctx context.Context, gameID, sessionID string) error
	Count(ctx context.Context, gameID string) (int64, error)
	DeleteGame(ctx context.Context, gameID string) error
}

type sessionCache struct {
	client *redis.Client
}

func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{client: client}
}

func sessionsKey(gameID string) string {
	return fmt.Sprintf("game:%s:sessions", gameID)
}

func (c *sessionCache) Set(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	key := sessionsKey(session.GameID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, session.ID, data)
	pipe.Expire(ctx, key, sessionTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *sessionCache) Get(ctx context.Context, gameID, sessionID string) (*model.Session, error) {
	data, err := c.client.HGet(ctx, sessionsKey(gameID), sessionID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

func (c *sessionCache) Delete(ctx context.Context, gameID, sessionID string) error {
	return c.client.HDel(ctx, sessionsKey(gameID), sessionID).Err()
}

func (c *sessionCache) Count(ctx context.Context, gameID string) (int64, error) {
	return c.client.HLen(ctx, sessionsKey(gameID)).Result()
}

func (c *sessionCache) DeleteGame(ctx context.Context, gameID string) error {
	return c.client.Del(ctx, sessionsKey(gameID)).Err()
}
