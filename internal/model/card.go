package model

import (
	"fmt"
	"strings"
)

// CardKind distinguishes prompt (black) cards from answer (white) cards
type CardKind string

const (
	CardPrompt CardKind = "prompt"
	CardAnswer CardKind = "answer"
)

// ParseCardKind validates a kind coming from a URL or seed file
func ParseCardKind(s string) (CardKind, error) {
	switch CardKind(strings.ToLower(s)) {
	case CardPrompt, "black":
		return CardPrompt, nil
	case CardAnswer, "white":
		return CardAnswer, nil
	}
	return "", fmt.Errorf("unknown card kind %q", s)
}

// Rating is the content-rating tier a game is played at
type Rating string

const (
	RatingNone   Rating = "none"
	RatingMild   Rating = "mild"
	RatingFamily Rating = "family"
)

// Valid reports whether r is one of the known tiers
func (r Rating) Valid() bool {
	switch r {
	case RatingNone, RatingMild, RatingFamily:
		return true
	}
	return false
}

// Card is a catalog entry. Pick is only meaningful for prompt cards.
type Card struct {
	ID     string   `json:"id" bson:"id"`
	Kind   CardKind `json:"kind" bson:"kind"`
	Text   string   `json:"text" bson:"text"`
	Pick   int      `json:"pick,omitempty" bson:"pick,omitempty"`
	Pack   string   `json:"pack,omitempty" bson:"pack,omitempty"`
	NSFW   bool     `json:"nsfw" bson:"nsfw"`
	Topics []string `json:"topics,omitempty" bson:"topics,omitempty"`
}

// Allowed reports whether the card passes a game's rating and topic filters.
// Untagged cards are general and match every topic.
func (c *Card) Allowed(rating Rating, topic string) bool {
	if rating == RatingFamily && c.NSFW {
		return false
	}
	if topic == "" || len(c.Topics) == 0 {
		return true
	}
	for _, t := range c.Topics {
		if strings.EqualFold(t, topic) {
			return true
		}
	}
	return false
}

// CardView is a card as shown to a player
type CardView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Pick int    `json:"pick,omitempty"`
}
