package rest

import (
	_ "absurdlyvisual/docs"
	"absurdlyvisual/internal/cache"
	"absurdlyvisual/internal/repository"
	"absurdlyvisual/internal/service"
	"absurdlyvisual/internal/transport/rest/handler"
	"absurdlyvisual/internal/transport/rest/middleware"
	"absurdlyvisual/internal/transport/ws"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/swaggo/swag"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService  *service.AuthService
	MatchService *service.MatchService
	FeedService  *service.FeedService
	Cards        service.CardSource
	Blobs        *repository.BlobStore
	GenCache     cache.GenerationCache
	Sessions     cache.SessionCache
	WSHub        *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	gameHandler := handler.NewGameHandler(c.MatchService)
	cardHandler := handler.NewCardHandler(c.Cards)
	systemHandler := handler.NewSystemHandler(c.MatchService, c.GenCache)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/games", gameHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/games", gameHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/games/{id}", gameHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/games/{id}/join", gameHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/games/{id}/leaderboard", gameHandler.Leaderboard).Methods("GET", "OPTIONS")
	v1.HandleFunc("/games/{id}/rounds", gameHandler.History).Methods("GET", "OPTIONS")
	v1.HandleFunc("/cards/{kind}", cardHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/cards/{kind}/{id}", cardHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/stats", systemHandler.Stats).Methods("GET", "OPTIONS")

	if c.FeedService != nil {
		feedHandler := handler.NewFeedHandler(c.FeedService)
		v1.HandleFunc("/feed", feedHandler.List).Methods("GET", "OPTIONS")
		v1.HandleFunc("/feed/trending", feedHandler.Trending).Methods("GET", "OPTIONS")
		v1.HandleFunc("/feed/{id}", feedHandler.Get).Methods("GET", "OPTIONS")
		v1.HandleFunc("/feed/{id}/like", feedHandler.Like).Methods("POST", "OPTIONS")
		v1.HandleFunc("/feed/{id}/comments", feedHandler.Comments).Methods("GET", "OPTIONS")
		v1.HandleFunc("/feed/{id}/comments", feedHandler.AddComment).Methods("POST", "OPTIONS")
	}
	if c.Blobs != nil {
		mediaHandler := handler.NewMediaHandler(c.Blobs)
		v1.HandleFunc("/media/{id}", mediaHandler.Get).Methods("GET", "OPTIONS")
	}

	// WebSocket routes (public with token in query param)
	if c.WSHub != nil {
		wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.MatchService, c.Sessions)
		v1.HandleFunc("/ws/games/{id}", wsHandler.PlayerWS).Methods("GET")
	}

	// Health check and API document
	r.HandleFunc("/health", systemHandler.Health).Methods("GET")
	r.HandleFunc("/swagger/doc.json", swaggerDoc).Methods("GET")

	// Player routes (require player auth)
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/games/{id}/state", gameHandler.State).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/games/{id}/start", gameHandler.Start).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{id}/submissions", gameHandler.Submit).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{id}/winner", gameHandler.Winner).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{id}/bots", gameHandler.AddBot).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{id}/leave", gameHandler.Leave).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{id}/chat", gameHandler.Chat).Methods("POST", "OPTIONS")

	return r
}

func swaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		http.Error(w, `{"error":"api document unavailable"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
