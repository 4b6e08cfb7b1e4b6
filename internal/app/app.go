package app

import (
	"absurdlyvisual/internal/cache"
	"absurdlyvisual/internal/config"
	"absurdlyvisual/internal/repository"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// App bundles the storage connections and the repositories and caches
// built on them.
type App struct {
	Mongo *mongo.Client
	Redis *redis.Client

	CardRepo  repository.CardRepo
	RoundRepo repository.RoundRepo
	FeedRepo  repository.FeedRepo
	Blobs     *repository.BlobStore

	GenCache     cache.GenerationCache
	GameCache    cache.GameCache
	Leaderboard  cache.LeaderboardCache
	SessionCache cache.SessionCache
}

// New connects to Mongo and Redis and builds the storage layer
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	log.Println("Connected to MongoDB")

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		mongoClient.Disconnect(ctx)
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	log.Println("Connected to Redis")

	db := mongoClient.Database(cfg.MongoDatabase)
	blobs, err := repository.NewBlobStore(db, cfg.PublicBaseURL)
	if err != nil {
		mongoClient.Disconnect(ctx)
		rdb.Close()
		return nil, err
	}

	a := &App{
		Mongo:        mongoClient,
		Redis:        rdb,
		CardRepo:     repository.NewCardRepo(db),
		RoundRepo:    repository.NewRoundRepo(db),
		FeedRepo:     repository.NewFeedRepo(db),
		Blobs:        blobs,
		GameCache:    cache.NewGameCache(rdb),
		Leaderboard:  cache.NewLeaderboardCache(rdb),
		SessionCache: cache.NewSessionCache(rdb),
	}

	switch cfg.Cache.Backend {
	case "memory":
		a.GenCache = cache.NewMemoryGenerationCache(cfg.Cache.TTL)
	default:
		a.GenCache = cache.NewGenerationCache(rdb, cfg.Cache.TTL)
	}
	log.Printf("Generation cache backend=%s ttl=%s", cfg.Cache.Backend, cfg.Cache.TTL)

	return a, nil
}

// Close releases the connections
func (a *App) Close(ctx context.Context) {
	if err := a.Redis.Close(); err != nil {
		log.Printf("failed to close Redis: %v", err)
	}
	if err := a.Mongo.Disconnect(ctx); err != nil {
		log.Printf("failed to disconnect MongoDB: %v", err)
	}
}
