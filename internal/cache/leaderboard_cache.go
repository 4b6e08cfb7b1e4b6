package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// abandoned games drop their scores after a day
const leaderboardTTL = 24 * time.Hour

// LeaderboardCache keeps per-game scores in a sorted set
type LeaderboardCache interface {
	UpdateScore(ctx context.Context, gameID, playerID string, score int) error
	GetTop(ctx context.Context, gameID string, limit int) ([]LeaderboardEntry, error)
	Delete(ctx context.Context, gameID string) error
}

// LeaderboardEntry is one ranked player. Tied scores share a rank.
type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

// Rank assigns competition ranks (1, 1, 3) to entries sorted by
// descending score
func Rank(entries []LeaderboardEntry) {
	for i := range entries {
		if i > 0 && entries[i].Score == entries[i-1].Score {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
}

type leaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{client: client}
}

func leaderboardKey(gameID string) string {
	return fmt.Sprintf("game:%s:lb", gameID)
}

func (c *leaderboardCache) UpdateScore(ctx context.Context, gameID, playerID string, score int) error {
	key := leaderboardKey(gameID)
	pipe := c.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(score), Member: playerID})
	pipe.Expire(ctx, key, leaderboardTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update score: %w", err)
	}
	return nil
}

func (c *leaderboardCache) GetTop(ctx context.Context, gameID string, limit int) ([]LeaderboardEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, leaderboardKey(gameID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for _, z := range results {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, LeaderboardEntry{PlayerID: id, Score: int(z.Score)})
	}
	Rank(entries)
	return entries, nil
}

func (c *leaderboardCache) Delete(ctx context.Context, gameID string) error {
	return c.client.Del(ctx, leaderboardKey(gameID)).Err()
}
