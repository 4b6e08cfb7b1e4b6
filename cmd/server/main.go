package main

import (
	"absurdlyvisual/internal/app"
	"absurdlyvisual/internal/config"
	"absurdlyvisual/internal/model"
	"absurdlyvisual/internal/service"
	"absurdlyvisual/internal/transport/rest"
	"absurdlyvisual/internal/transport/ws"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// Log model settings
	aiConfig := cfg.AIConfig
	log.Printf("AI Config:")
	log.Printf("  Oracle:  %s", aiConfig.Models.Oracle)
	log.Printf("  Prompt:  %s", aiConfig.Models.Prompt)
	log.Printf("  Image:   %s", aiConfig.Models.Image)
	log.Printf("  Video:   %s", aiConfig.Models.Video)
	log.Printf("  TTS:     %s (voice %s)", aiConfig.Models.TTS, aiConfig.Voice)
	if aiConfig.IsEnabled() {
		log.Println("  API Key: configured ✓")
	} else {
		log.Println("  API Key: NOT SET (random bots, placeholder media)")
	}

	deps, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer deps.Close(context.Background())

	// Load the card catalog into memory
	catalog, err := service.LoadCatalog(ctx, deps.CardRepo)
	if err != nil {
		log.Fatal("Failed to load card catalog:", err)
	}
	log.Printf("Card catalog loaded: prompts=%d answers=%d",
		catalog.Count(model.CardPrompt, model.RatingNone, ""), catalog.Count(model.CardAnswer, model.RatingNone, ""))

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret)
	gameSvc := service.NewGameService(service.NewStore(), catalog, cfg.Game)
	oracle := service.NewOracleService(cfg.AIConfig)
	media := service.NewMediaService(cfg.AIConfig, deps.Blobs, cfg.Media.VideoPollInterval)
	feedSvc := service.NewFeedService(deps.FeedRepo, cfg.Feed.TrendingMode)
	pipeline := service.NewPipelineService(gameSvc, oracle, media, deps.GenCache, feedSvc, cfg.Media)
	bots := service.NewBotService(gameSvc, oracle, cfg.Timing)
	matchSvc := service.NewMatchService(gameSvc, bots, pipeline, authSvc, deps.GameCache, deps.Leaderboard, deps.RoundRepo)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	matchSvc.SetBroadcaster(wsHub)

	// Periodic generation cache sweep
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepCache(sweepCtx, deps, cfg.Cache.SweepInterval)

	// Create router with container
	container := &rest.Container{
		AuthService:  authSvc,
		MatchService: matchSvc,
		FeedService:  feedSvc,
		Cards:        catalog,
		Blobs:        deps.Blobs,
		GenCache:     deps.GenCache,
		Sessions:     deps.SessionCache,
		WSHub:        wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST/GET /v1/games")
		log.Println("  POST /v1/games/{id}/join")
		log.Println("  GET  /v1/games/{id}/state")
		log.Println("  POST /v1/games/{id}/start|submissions|winner|bots|leave|chat")
		log.Println("  GET  /v1/feed, /v1/feed/trending")
		log.Println("  GET  /v1/cards/{kind}")
		log.Println("  GET  /v1/media/{id}")
		log.Println("  WS   /v1/ws/games/{id}?token=")
		log.Println("  GET  /swagger/doc.json")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	matchSvc.Shutdown()

	log.Println("Server exited")
}

func sweepCache(ctx context.Context, deps *app.App, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := deps.GenCache.Sweep(ctx)
			if err != nil {
				log.Printf("cache sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("cache sweep removed=%d", n)
			}
		}
	}
}
