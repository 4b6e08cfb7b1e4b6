package cache

import (
	"absurdlyvisual/internal/model"
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// testRedis connects to TEST_REDIS_ADDR or skips
func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisGenerationCache(t *testing.T) {
	client := testRedis(t)
	ctx := context.Background()
	c := NewGenerationCache(client, time.Minute)
	fp := Fingerprint(uuid.NewString(), []string{"a"})
	t.Cleanup(func() {
		client.Del(ctx, "gen:image:"+fp, "gen:video:"+fp)
		client.SRem(ctx, "gen:permanent", "gen:video:"+fp)
	})

	if _, ok, err := c.Get(ctx, MediaImage, fp); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, MediaImage, fp, "https://img", false); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set(ctx, MediaVideo, fp, "https://vid", true); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if ttl := client.TTL(ctx, "gen:image:"+fp).Val(); ttl <= 0 {
		t.Fatalf("expected temporary entry to carry a ttl, got %v", ttl)
	}
	if ttl := client.TTL(ctx, "gen:video:"+fp).Val(); ttl != -1 {
		t.Fatalf("expected permanent entry without ttl, got %v", ttl)
	}
	url, ok, err := c.Get(ctx, MediaVideo, fp)
	if err != nil || !ok || url != "https://vid" {
		t.Fatalf("expected video hit, got %q %v %v", url, ok, err)
	}
}

func TestRedisGameCache(t *testing.T) {
	client := testRedis(t)
	ctx := context.Background()
	c := NewGameCache(client)
	meta := &model.GameMeta{ID: uuid.NewString(), State: model.GameLobby, PlayerCount: 2, CreatedAt: time.Now()}
	t.Cleanup(func() { c.Delete(ctx, meta.ID) })

	if err := c.SetMeta(ctx, meta); err != nil {
		t.Fatalf("SetMeta failed: %v", err)
	}
	got, err := c.GetMeta(ctx, meta.ID)
	if err != nil || got == nil || got.PlayerCount != 2 {
		t.Fatalf("expected cached meta, got %+v err=%v", got, err)
	}

	list, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	found := false
	for _, m := range list {
		if m.ID == meta.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s in listing", meta.ID)
	}

	if err := c.Delete(ctx, meta.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got, _ := c.GetMeta(ctx, meta.ID); got != nil {
		t.Fatalf("expected meta removed")
	}
}

func TestRedisLeaderboard(t *testing.T) {
	client := testRedis(t)
	ctx := context.Background()
	c := NewLeaderboardCache(client)
	gameID := uuid.NewString()
	t.Cleanup(func() { c.Delete(ctx, gameID) })

	for player, score := range map[string]int{"p1": 1, "p2": 3, "p3": 2} {
		if err := c.UpdateScore(ctx, gameID, player, score); err != nil {
			t.Fatalf("UpdateScore failed: %v", err)
		}
	}
	top, err := c.GetTop(ctx, gameID, 2)
	if err != nil {
		t.Fatalf("GetTop failed: %v", err)
	}
	if len(top) != 2 || top[0].PlayerID != "p2" || top[1].PlayerID != "p3" {
		t.Fatalf("unexpected ranking %+v", top)
	}
	if ttl := client.TTL(ctx, "game:"+gameID+":lb").Val(); ttl <= 0 {
		t.Fatalf("expected leaderboard to expire, got ttl %v", ttl)
	}
}

func TestRedisSessionCache(t *testing.T) {
	client := testRedis(t)
	ctx := context.Background()
	c := NewSessionCache(client)
	gameID := uuid.NewString()
	t.Cleanup(func() { c.DeleteGame(ctx, gameID) })

	for _, id := range []string{"s1", "s2"} {
		s := &model.Session{ID: id, GameID: gameID, PlayerID: "p-" + id, ConnectedAt: time.Now()}
		if err := c.Set(ctx, s); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	got, err := c.Get(ctx, gameID, "s1")
	if err != nil || got == nil || got.PlayerID != "p-s1" {
		t.Fatalf("expected session, got %+v err=%v", got, err)
	}
	if n, _ := c.Count(ctx, gameID); n != 2 {
		t.Fatalf("expected 2 sessions, got %d", n)
	}

	if err := c.Delete(ctx, gameID, "s1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got, _ := c.Get(ctx, gameID, "s1"); got != nil {
		t.Fatalf("expected session removed")
	}
	if err := c.DeleteGame(ctx, gameID); err != nil {
		t.Fatalf("DeleteGame failed: %v", err)
	}
	if n, _ := c.Count(ctx, gameID); n != 0 {
		t.Fatalf("expected no sessions left, got %d", n)
	}
}
