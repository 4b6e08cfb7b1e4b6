package model

// PlayerViewVersion is bumped whenever PlayerView changes shape
const PlayerViewVersion = 1

// PlayerView is the state visible to one player. It never carries
// another player's hand.
type PlayerView struct {
	Version      int             `json:"v"`
	GameID       string          `json:"gameId"`
	State        GameState       `json:"state"`
	Settings     GameSettings    `json:"settings"`
	Players      []PlayerSummary `json:"players"`
	YourID       string          `json:"yourId"`
	YourHand     []CardView      `json:"yourHand"`
	CurrentRound *RoundView      `json:"currentRound,omitempty"`
	RoundsPlayed int             `json:"roundsPlayed"`
}

// PlayerSummary is the public part of a roster entry
type PlayerSummary struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Kind        PlayerKind  `json:"kind"`
	Score       int         `json:"score"`
	Connected   bool        `json:"connected"`
	HandSize    int         `json:"handSize"`
	Personality Personality `json:"personality,omitempty"`
	IsCzar      bool        `json:"isCzar"`
}

// RoundView is the projection of the current round
type RoundView struct {
	Number          int              `json:"number"`
	Prompt          CardView         `json:"prompt"`
	CzarID          string           `json:"czarId"`
	SubmissionCount int              `json:"submissionCount"`
	YouSubmitted    bool             `json:"youSubmitted"`
	Submissions     []SubmissionView `json:"submissions,omitempty"`
	WinnerID        string           `json:"winnerId,omitempty"`
	WinnerIndex     *int             `json:"winnerIndex,omitempty"`
	VideoURL        string           `json:"videoUrl,omitempty"`
	AudioURL        string           `json:"audioUrl,omitempty"`
	Narration       string           `json:"narration,omitempty"`
}

// SubmissionView hides the submitter until a winner is chosen
type SubmissionView struct {
	Index    int        `json:"index"`
	Cards    []CardView `json:"cards"`
	PlayerID string     `json:"playerId,omitempty"`
	ImageURL string     `json:"imageUrl,omitempty"`
}

// RoundSnapshot is a detached copy of the current round handed to
// background work. Mutating it has no effect on the game.
type RoundSnapshot struct {
	GameID      string
	Token       string
	Number      int
	State       GameState
	PromptText  string
	Pick        int
	CzarID      string
	CzarKind    PlayerKind
	Personality Personality
	Submissions []SubmissionSnapshot
	WinnerIndex int
	WinnerID    string
	WinnerName  string
}

// SubmissionSnapshot carries answer texts resolved under the game lock
type SubmissionSnapshot struct {
	PlayerID    string
	AnswerTexts []string
	ImageURL    string
	ScenePrompt string
}
