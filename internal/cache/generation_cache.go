package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// MediaKind namespaces cache entries so an image and a video for the same
// card combination do not collide.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
)

// GenerationCache memoizes media URLs by card-combination fingerprint
type GenerationCache interface {
	Get(ctx context.Context, kind MediaKind, fingerprint string) (string, bool, error)
	Set(ctx context.Context, kind MediaKind, fingerprint, url string, permanent bool) error
	Sweep(ctx context.Context) (int, error)
	Stats(ctx context.Context) (CacheStats, error)
}

// CacheStats counts live entries
type CacheStats struct {
	Total     int `json:"total"`
	Permanent int `json:"permanent"`
	Temporary int `json:"temporary"`
}

// Fingerprint is a stable hash of the prompt text and the answer texts.
// Answer order does not matter.
func Fingerprint(promptText string, answers []string) string {
	sorted := append([]string(nil), answers...)
	sort.Strings(sorted)
	data, _ := json.Marshal(struct {
		Prompt  string   `json:"prompt"`
		Answers []string `json:"answers"`
	}{promptText, sorted})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type generationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGenerationCache creates a Redis-backed generation cache. Temporary
// entries expire after ttl; permanent entries never expire.
func NewGenerationCache(client *redis.Client, ttl time.Duration) GenerationCache {
	return &generationCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *generationCache) key(kind MediaKind, fp string) string {
	return fmt.Sprintf("gen:%s:%s", kind, fp)
}

func (c *generationCache) permanentKey() string {
	return "gen:permanent"
}

func (c *generationCache) Get(ctx context.Context, kind MediaKind, fp string) (string, bool, error) {
	url, err := c.client.Get(ctx, c.key(kind, fp)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return url, true, nil
}

func (c *generationCache) Set(ctx context.Context, kind MediaKind, fp, url string, permanent bool) error {
	key := c.key(kind, fp)
	if !permanent {
		return c.client.Set(ctx, key, url, c.ttl).Err()
	}
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, url, 0)
	pipe.SAdd(ctx, c.permanentKey(), key)
	_, err := pipe.Exec(ctx)
	return err
}

// Sweep is a no-op for Redis, which expires keys itself
func (c *generationCache) Sweep(ctx context.Context) (int, error) {
	return 0, nil
}

func (c *generationCache) Stats(ctx context.Context) (CacheStats, error) {
	var stats CacheStats
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, "gen:*:*", 500).Result()
		if err != nil {
			return stats, err
		}
		stats.Total += len(keys)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	permanent, err := c.client.SCard(ctx, c.permanentKey()).Result()
	if err != nil {
		return stats, err
	}
	stats.Permanent = int(permanent)
	stats.Temporary = stats.Total - stats.Permanent
	return stats, nil
}
