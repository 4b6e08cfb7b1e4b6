package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process configuration loaded from the environment
type Config struct {
	HTTPPort      string
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	JWTSecret     string
	PublicBaseURL string

	Game     GameDefaults
	Timing   Timing
	Media    MediaConfig
	Cache    CacheConfig
	Feed     FeedConfig
	AIConfig *AIConfig
}

// GameDefaults are applied to new games unless the creator overrides them
type GameDefaults struct {
	MaxPlayers  int
	MinPlayers  int
	MinHumans   int
	MaxBots     int
	PointsToWin int
	HandSize    int
}

// Timing controls the automated-player delays
type Timing struct {
	BotJudgeDelay     time.Duration
	RoundAdvanceDelay time.Duration
	BotThinkJitter    time.Duration
}

// MediaConfig bounds every externally awaited media result
type MediaConfig struct {
	ImageTimeout        time.Duration
	VideoTimeout        time.Duration
	VideoPollInterval   time.Duration
	NarrationTimeout    time.Duration
	ImagePlaceholderURL string
	VideoPlaceholderURL string
	MaxParallel         int
}

// CacheConfig selects and tunes the generation cache
type CacheConfig struct {
	Backend       string // redis | memory
	TTL           time.Duration
	SweepInterval time.Duration
}

// FeedConfig controls feed ranking
type FeedConfig struct {
	TrendingMode string // engagement | random
}

// Load reads .env (if present) and the process environment
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: failed to read .env error=%v", err)
	}

	return &Config{
		HTTPPort:      getEnv("PORT", "8080"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "absurdly_visual"),
		RedisAddr:     strings.TrimPrefix(getEnv("REDIS_URI", "localhost:6379"), "redis://"),
		JWTSecret:     getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		Game: GameDefaults{
			MaxPlayers:  getInt("GAME_MAX_PLAYERS", 8),
			MinPlayers:  getInt("GAME_MIN_PLAYERS", 3),
			MinHumans:   getInt("GAME_MIN_HUMANS", 1),
			MaxBots:     getInt("GAME_MAX_BOTS", 7),
			PointsToWin: getInt("GAME_POINTS_TO_WIN", 7),
			HandSize:    getInt("GAME_HAND_SIZE", 5),
		},
		Timing: Timing{
			BotJudgeDelay:     getDuration("BOT_JUDGE_DELAY", 2*time.Second),
			RoundAdvanceDelay: getDuration("ROUND_ADVANCE_DELAY", 5*time.Second),
			BotThinkJitter:    getDuration("BOT_THINK_JITTER", 1500*time.Millisecond),
		},
		Media: MediaConfig{
			ImageTimeout:        getDuration("IMAGE_TIMEOUT", 45*time.Second),
			VideoTimeout:        getDuration("VIDEO_TIMEOUT", 90*time.Second),
			VideoPollInterval:   getDuration("VIDEO_POLL_INTERVAL", 15*time.Second),
			NarrationTimeout:    getDuration("NARRATION_TIMEOUT", 30*time.Second),
			ImagePlaceholderURL: getEnv("IMAGE_PLACEHOLDER_URL", "https://via.placeholder.com/720x1280/4ECDC4/FFFFFF?text=Image+Unavailable"),
			VideoPlaceholderURL: getEnv("VIDEO_PLACEHOLDER_URL", "https://via.placeholder.com/640x480/FF6B6B/FFFFFF?text=Video+Generation+Failed"),
			MaxParallel:         getInt("MEDIA_MAX_PARALLEL", 4),
		},
		Cache: CacheConfig{
			Backend:       getEnv("CACHE_BACKEND", "redis"),
			TTL:           getDuration("CACHE_TTL", 24*time.Hour),
			SweepInterval: getDuration("CACHE_SWEEP_INTERVAL", 10*time.Minute),
		},
		Feed: FeedConfig{
			TrendingMode: getEnv("FEED_TRENDING_MODE", "engagement"),
		},
		AIConfig: DefaultAIConfig(),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: invalid integer key=%s value=%q, using %d", key, v, defaultVal)
		return defaultVal
	}
	return n
}

// getDuration accepts Go durations ("2s") or bare milliseconds ("2000")
func getDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	log.Printf("config: invalid duration key=%s value=%q, using %s", key, v, defaultVal)
	return defaultVal
}
