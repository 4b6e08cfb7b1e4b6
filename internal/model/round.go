package model

import "time"

// Submission is one player's answer for a round. The media fields are
// written by the content pipeline after the fact.
type Submission struct {
	PlayerID    string    `json:"playerId" bson:"playerId"`
	CardIDs     []string  `json:"cardIds" bson:"cardIds"`
	SubmittedAt time.Time `json:"submittedAt" bson:"submittedAt"`

	ScenePrompt string `json:"scenePrompt,omitempty" bson:"scenePrompt,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	AudioURL    string `json:"audioUrl,omitempty" bson:"audioUrl,omitempty"`
	VideoURL    string `json:"videoUrl,omitempty" bson:"videoUrl,omitempty"`
}

// WinnerArtifact is the winner phase output for a round
type WinnerArtifact struct {
	NarrationScript string `json:"narrationScript,omitempty" bson:"narrationScript,omitempty"`
	AudioURL        string `json:"audioUrl,omitempty" bson:"audioUrl,omitempty"`
	VideoURL        string `json:"videoUrl,omitempty" bson:"videoUrl,omitempty"`
	FeedID          string `json:"feedId,omitempty" bson:"feedId,omitempty"`
	Placeholder     bool   `json:"placeholder,omitempty" bson:"placeholder,omitempty"`
}

// Round is a single prompt card played to completion. Token identifies
// the round to background work so late results can be detected.
type Round struct {
	GameID      string          `json:"gameId" bson:"gameId"`
	Number      int             `json:"number" bson:"number"`
	Token       string          `json:"-" bson:"token"`
	PromptID    string          `json:"promptId" bson:"promptId"`
	CzarID      string          `json:"czarId" bson:"czarId"`
	Submissions []*Submission   `json:"submissions" bson:"submissions"`
	WinnerIndex int             `json:"winnerIndex" bson:"winnerIndex"`
	WinnerID    string          `json:"winnerId,omitempty" bson:"winnerId,omitempty"`
	Artifact    *WinnerArtifact `json:"artifact,omitempty" bson:"artifact,omitempty"`
	StartedAt   time.Time       `json:"startedAt" bson:"startedAt"`
	EndedAt     *time.Time      `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
}

// SubmittedBy returns the index of playerID's submission, or -1
func (r *Round) SubmittedBy(playerID string) int {
	for i, s := range r.Submissions {
		if s.PlayerID == playerID {
			return i
		}
	}
	return -1
}

// HasWinner reports whether the czar has picked
func (r *Round) HasWinner() bool {
	return r.WinnerID != ""
}
