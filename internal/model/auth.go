package model

import "github.com/golang-jwt/jwt/v5"

// PlayerClaims are JWT claims for game-scoped player tokens
type PlayerClaims struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
	jwt.RegisteredClaims
}
