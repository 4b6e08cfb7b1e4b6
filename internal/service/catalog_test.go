package service

import (
	"absurdlyvisual/internal/model"
	"testing"
)

func TestCountBlanks(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"No blanks here.", 0},
		{"One ____.", 1},
		{"Two _ and ______.", 2},
		{"____ versus ____ versus ____", 3},
	}
	for _, tt := range tests {
		if got := CountBlanks(tt.text); got != tt.want {
			t.Errorf("CountBlanks(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestFillBlanks(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		answers []string
		want    string
	}{
		{"single", "I love ____.", []string{"Tacos."}, "I love Tacos."},
		{"two", "____ beats ____.", []string{"Rock", "Scissors."}, "Rock beats Scissors."},
		{"no blank", "What is love?", []string{"Baby don't hurt me."}, "What is love? Baby don't hurt me."},
		{"extra answer", "Just ____.", []string{"this", "and that"}, "Just this. and that"},
		{"missing answer", "____ and ____.", []string{"Salt"}, "Salt and ____."},
		{"no answers", "Empty ____.", nil, "Empty ____."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FillBlanks(tt.prompt, tt.answers); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCatalogFilters(t *testing.T) {
	cat := NewCatalog(
		[]model.Card{
			{ID: "p1", Text: "Pick ____ and ____."},
			{ID: "p2", Text: "Just ____.", Pick: 1, Topics: []string{"food"}},
			{ID: "p1", Text: "duplicate"},
		},
		[]model.Card{
			{ID: "a1", Text: "Clean"},
			{ID: "a2", Text: "Rude", NSFW: true},
			{ID: "a3", Text: "Pizza", Topics: []string{"Food"}},
			{ID: "a4", Text: "Rocket", Topics: []string{"space"}},
		},
	)

	if got := cat.PickCount("p1"); got != 2 {
		t.Fatalf("expected pick derived from blanks, got %d", got)
	}
	if got := cat.PickCount("missing"); got != 1 {
		t.Fatalf("expected default pick 1, got %d", got)
	}
	if text, _ := cat.Text(model.CardPrompt, "p1"); text != "Pick ____ and ____." {
		t.Fatalf("expected first card to win over duplicate, got %q", text)
	}

	tests := []struct {
		name   string
		rating model.Rating
		topic  string
		want   int
	}{
		{"everything", model.RatingNone, "", 4},
		{"family drops nsfw", model.RatingFamily, "", 3},
		{"topic keeps untagged", model.RatingNone, "food", 3},
		{"family and topic", model.RatingFamily, "space", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cat.Count(model.CardAnswer, tt.rating, tt.topic); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
			if got := len(cat.ListShuffled(model.CardAnswer, tt.rating, tt.topic)); got != tt.want {
				t.Fatalf("expected %d shuffled ids, got %d", tt.want, got)
			}
		})
	}
}
