package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	Publish(roomID, event string, payload interface{})
	PublishTo(roomID, playerID, event string, payload interface{})
	CloseRoom(roomID string)
}

// Event names sent to game rooms
const (
	EventGameCreated          = "game_created"
	EventPlayerJoined         = "player_joined"
	EventPlayerLeft           = "player_left"
	EventGameStarted          = "game_started"
	EventRoundStarted         = "round_started"
	EventCardsSubmitted       = "cards_submitted"
	EventJudgingPhase         = "judging_phase"
	EventWinnerSelected       = "winner_selected"
	EventVideoProgress        = "video_progress"
	EventSubmissionMediaReady = "submission_media_ready"
	EventNarrationReady       = "narration_ready"
	EventVideoReady           = "video_ready"
	EventGameState            = "game_state"
	EventGameOver             = "game_over"
	EventChatMessage          = "chat_message"
	EventError                = "error"
)

// NopBroadcaster drops every event. Used until the hub is injected.
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(string, string, interface{}) {}
func (NopBroadcaster) PublishTo(string, string, string, interface{}) {}
func (NopBroadcaster) CloseRoom(string) {}
