package cache

import (
	"absurdlyvisual/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// GameCache mirrors lobby-listing metadata to Redis so other instances and
// dashboards can see live games.
type GameCache interface {
	SetMeta(ctx context.Context, meta *model.GameMeta) error
	GetMeta(ctx context.Context, gameID string) (*model.GameMeta, error)
	List(ctx context.Context) ([]*model.GameMeta, error)
	Delete(ctx context.Context, gameID string) error
}

type gameCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameCache creates a new game cache
func NewGameCache(client *redis.Client) GameCache {
	return &gameCache{
		client: client,
		ttl:    24 * time.Hour, // Abandoned games fall out after a day
	}
}

func (c *gameCache) key(gameID string) string {
	return fmt.Sprintf("game:%s", gameID)
}

func (c *gameCache) indexKey() string {
	return "games:live"
}

func (c *gameCache) SetMeta(ctx context.Context, meta *model.GameMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.key(meta.ID), data, c.ttl)
	pipe.ZAdd(ctx, c.indexKey(), redis.Z{Score: float64(meta.CreatedAt.Unix()), Member: meta.ID})
	_, err = pipe.Exec(ctx)
	return err
}

func (c *gameCache) GetMeta(ctx context.Context, gameID string) (*model.GameMeta, error) {
	data, err := c.client.Get(ctx, c.key(gameID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var meta model.GameMeta
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// List returns live games newest first, pruning index entries whose meta expired
func (c *gameCache) List(ctx context.Context) ([]*model.GameMeta, error) {
	ids, err := c.client.ZRevRange(ctx, c.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*model.GameMeta, 0, len(ids))
	for _, id := range ids {
		meta, err := c.GetMeta(ctx, id)
		if err != nil {
			return nil, err
		}
		if meta == nil {
			c.client.ZRem(ctx, c.indexKey(), id)
			continue
		}
		out = append(out, meta)
	}
	return out, nil
}

func (c *gameCache) Delete(ctx context.Context, gameID string) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, c.key(gameID))
	pipe.ZRem(ctx, c.indexKey(), gameID)
	_, err := pipe.Exec(ctx)
	return err
}
