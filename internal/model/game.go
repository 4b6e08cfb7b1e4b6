package model

import "time"

// GameState is the lifecycle state of a game
type GameState string

const (
	GameLobby    GameState = "lobby"
	GamePlaying  GameState = "playing"
	GameJudging  GameState = "judging"
	GameRoundEnd GameState = "round_end"
	GameEnded    GameState = "game_end"
)

// InProgress reports whether a round is underway or awaiting advance
func (s GameState) InProgress() bool {
	return s == GamePlaying || s == GameJudging || s == GameRoundEnd
}

// GameSettings is fixed when the game is created
type GameSettings struct {
	MaxPlayers  int    `json:"maxPlayers" bson:"maxPlayers"`
	MinPlayers  int    `json:"minPlayers" bson:"minPlayers"`
	PointsToWin int    `json:"pointsToWin" bson:"pointsToWin"`
	HandSize    int    `json:"handSize" bson:"handSize"`
	Rating      Rating `json:"rating" bson:"rating"`
	Topic       string `json:"topic,omitempty" bson:"topic,omitempty"`
}

// Pile is one card kind's draw order and discard pile. The end of
// DrawOrder is the top of the deck.
type Pile struct {
	DrawOrder []string `json:"-" bson:"drawOrder"`
	Discard   []string `json:"-" bson:"discard"`
}

// Game is the aggregate owned by the round state machine
type Game struct {
	ID         string       `json:"id" bson:"_id"`
	State      GameState    `json:"state" bson:"state"`
	Players    []string     `json:"players" bson:"players"`
	Settings   GameSettings `json:"settings" bson:"settings"`
	Current    *Round       `json:"currentRound,omitempty" bson:"currentRound,omitempty"`
	History    []*Round     `json:"history" bson:"history"`
	Prompts    Pile         `json:"-" bson:"prompts"`
	Answers    Pile         `json:"-" bson:"answers"`
	CzarIndex  int          `json:"czarIndex" bson:"czarIndex"`
	RoundSeq   int          `json:"-" bson:"roundSeq"`
	BotCounter int          `json:"-" bson:"botCounter"`
	CreatedAt  time.Time    `json:"createdAt" bson:"createdAt"`
}

// Czar returns roster[czarIndex mod len], or "" for an empty roster
func (g *Game) Czar() string {
	if len(g.Players) == 0 {
		return ""
	}
	return g.Players[g.CzarIndex%len(g.Players)]
}

// RosterIndex returns the position of playerID, or -1
func (g *Game) RosterIndex(playerID string) int {
	for i, id := range g.Players {
		if id == playerID {
			return i
		}
	}
	return -1
}

// GameMeta is the lobby-listing snapshot mirrored to Redis
type GameMeta struct {
	ID          string    `json:"id"`
	State       GameState `json:"state"`
	PlayerCount int       `json:"playerCount"`
	MaxPlayers  int       `json:"maxPlayers"`
	Round       int       `json:"round"`
	Topic       string    `json:"topic,omitempty"`
	Rating      Rating    `json:"rating"`
	CreatedAt   time.Time `json:"createdAt"`
}
