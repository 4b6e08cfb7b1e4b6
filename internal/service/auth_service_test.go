package service

import (
	"absurdlyvisual/internal/model"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestPlayerTokenRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret")
	token, err := svc.GeneratePlayerToken("game-1", "player-1")
	if err != nil {
		t.Fatalf("GeneratePlayerToken failed: %v", err)
	}

	claims, err := svc.ValidatePlayerToken(token)
	if err != nil {
		t.Fatalf("ValidatePlayerToken failed: %v", err)
	}
	if claims.GameID != "game-1" || claims.PlayerID != "player-1" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestPlayerTokenRejected(t *testing.T) {
	svc := NewAuthService("test-secret")
	other, _ := NewAuthService("other-secret").GeneratePlayerToken("game-1", "player-1")

	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &model.PlayerClaims{
		GameID:   "game-1",
		PlayerID: "player-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte("test-secret"))

	anonymous, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &model.PlayerClaims{
		GameID: "game-1",
	}).SignedString([]byte("test-secret"))

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": other,
		"expired":      expired,
		"no player":    anonymous,
	}
	for name, token := range tests {
		if _, err := svc.ValidatePlayerToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}
