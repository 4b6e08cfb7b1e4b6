package model

import "time"

// PlayerKind separates people from automated players
type PlayerKind string

const (
	PlayerHuman     PlayerKind = "human"
	PlayerAutomated PlayerKind = "automated"
)

// Player represents a participant in a game
type Player struct {
	ID          string      `json:"id" bson:"_id,omitempty"`
	GameID      string      `json:"gameId" bson:"gameId"`
	Name        string      `json:"name" bson:"name"`
	Kind        PlayerKind  `json:"kind" bson:"kind"`
	Score       int         `json:"score" bson:"score"`
	Hand        []string    `json:"-" bson:"hand"`
	Connected   bool        `json:"connected" bson:"connected"`
	Personality Personality `json:"personality,omitempty" bson:"personality,omitempty"`
	JoinedAt    time.Time   `json:"joinedAt" bson:"joinedAt"`
}

// IsAutomated reports whether the player is driven by the coordinator
func (p *Player) IsAutomated() bool {
	return p.Kind == PlayerAutomated
}

// HasCards reports whether every id is in the hand, counting duplicates
func (p *Player) HasCards(ids []string) bool {
	counts := make(map[string]int, len(p.Hand))
	for _, id := range p.Hand {
		counts[id]++
	}
	for _, id := range ids {
		if counts[id] == 0 {
			return false
		}
		counts[id]--
	}
	return true
}

// RemoveCards takes ids out of the hand. Callers check HasCards first.
func (p *Player) RemoveCards(ids []string) {
	for _, id := range ids {
		for i, h := range p.Hand {
			if h == id {
				p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
				break
			}
		}
	}
}

// PlayerJoinResponse is returned when a player creates or joins a game
type PlayerJoinResponse struct {
	GameID   string      `json:"gameId"`
	PlayerID string      `json:"playerId"`
	Token    string      `json:"token"`
	State    *PlayerView `json:"state"`
}

// Session is one live socket bound to a player
type Session struct {
	ID          string    `json:"id"`
	GameID      string    `json:"gameId"`
	PlayerID    string    `json:"playerId"`
	ConnectedAt time.Time `json:"connectedAt"`
}
