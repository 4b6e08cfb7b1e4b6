package middleware

import (
	"absurdlyvisual/internal/model"
	"absurdlyvisual/internal/service"
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type contextKey struct{}

var claimsKey contextKey

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequirePlayer admits requests carrying a valid player token. Routes with
// an {id} variable only accept tokens issued for that game.
func (m *AuthMiddleware) RequirePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := RequestToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidatePlayerToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}
		if id, ok := mux.Vars(r)["id"]; ok && id != claims.GameID {
			http.Error(w, `{"error":"token not valid for this game"}`, http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// Claims returns the authenticated player's claims, nil on public routes
func Claims(ctx context.Context) *model.PlayerClaims {
	claims, _ := ctx.Value(claimsKey).(*model.PlayerClaims)
	return claims
}

// GetPlayerID extracts player ID from context
func GetPlayerID(ctx context.Context) string {
	if c := Claims(ctx); c != nil {
		return c.PlayerID
	}
	return ""
}

// GetGameID extracts game ID from context
func GetGameID(ctx context.Context) string {
	if c := Claims(ctx); c != nil {
		return c.GameID
	}
	return ""
}

// RequestToken reads a bearer token, falling back to the token query
// parameter browsers use for WebSocket upgrades
func RequestToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
