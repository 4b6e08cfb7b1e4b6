package model

import "time"

// FeedEntry is a published winner video with its card combination
type FeedEntry struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	GameID          string    `json:"gameId" bson:"gameId"`
	RoundNumber     int       `json:"roundNumber" bson:"roundNumber"`
	PromptText      string    `json:"promptText" bson:"promptText"`
	AnswerTexts     []string  `json:"answerTexts" bson:"answerTexts"`
	VideoURL        string    `json:"videoUrl" bson:"videoUrl"`
	ImageURL        string    `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	AudioURL        string    `json:"audioUrl,omitempty" bson:"audioUrl,omitempty"`
	NarrationScript string    `json:"narrationScript,omitempty" bson:"narrationScript,omitempty"`
	WinnerID        string    `json:"winnerId" bson:"winnerId"`
	WinnerName      string    `json:"winnerName" bson:"winnerName"`
	LikedBy         []string  `json:"-" bson:"likedBy"`
	LikesCount      int       `json:"likesCount" bson:"likesCount"`
	CommentsCount   int       `json:"commentsCount" bson:"commentsCount"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
}

// FeedComment is a viewer comment on a feed entry
type FeedComment struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	EntryID   string    `json:"entryId" bson:"entryId"`
	UserID    string    `json:"userId" bson:"userId"`
	UserName  string    `json:"userName" bson:"userName"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// LikeResult is returned from a like toggle
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}
