package service

import (
	"absurdlyvisual/internal/model"
	"absurdlyvisual/internal/repository"
	"context"
	"fmt"
	"strings"
)

// CardSource is the card catalog as seen by the round state machine.
// Every method is synchronous and safe to call under a game lock.
type CardSource interface {
	ListShuffled(kind model.CardKind, rating model.Rating, topic string) []string
	Count(kind model.CardKind, rating model.Rating, topic string) int
	Text(kind model.CardKind, id string) (string, bool)
	PickCount(promptID string) int
	Card(kind model.CardKind, id string) (*model.Card, bool)
	List(kind model.CardKind, rating model.Rating, topic string) []*model.Card
}

// Catalog is an immutable in-memory card catalog
type Catalog struct {
	cards map[model.CardKind]map[string]*model.Card
	order map[model.CardKind][]string
}

// NewCatalog indexes prompt and answer cards. Prompt pick counts below
// one are derived from the number of blanks.
func NewCatalog(prompts, answers []model.Card) *Catalog {
	c := &Catalog{
		cards: map[model.CardKind]map[string]*model.Card{
			model.CardPrompt: {},
			model.CardAnswer: {},
		},
		order: map[model.CardKind][]string{},
	}
	for i := range prompts {
		card := prompts[i]
		card.Kind = model.CardPrompt
		if card.Pick < 1 {
			card.Pick = max(1, CountBlanks(card.Text))
		}
		c.add(&card)
	}
	for i := range answers {
		card := answers[i]
		card.Kind = model.CardAnswer
		card.Pick = 0
		c.add(&card)
	}
	return c
}

// LoadCatalog reads both card kinds from the repository
func LoadCatalog(ctx context.Context, repo repository.CardRepo) (*Catalog, error) {
	prompts, err := repo.LoadAll(ctx, model.CardPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt cards: %w", err)
	}
	answers, err := repo.LoadAll(ctx, model.CardAnswer)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer cards: %w", err)
	}
	return NewCatalog(prompts, answers), nil
}

func (c *Catalog) add(card *model.Card) {
	if _, dup := c.cards[card.Kind][card.ID]; dup {
		return
	}
	c.cards[card.Kind][card.ID] = card
	c.order[card.Kind] = append(c.order[card.Kind], card.ID)
}

func (c *Catalog) filtered(kind model.CardKind, rating model.Rating, topic string) []string {
	ids := make([]string, 0, len(c.order[kind]))
	for _, id := range c.order[kind] {
		if c.cards[kind][id].Allowed(rating, topic) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (c *Catalog) ListShuffled(kind model.CardKind, rating model.Rating, topic string) []string {
	return ShuffleDeck(c.filtered(kind, rating, topic))
}

func (c *Catalog) Count(kind model.CardKind, rating model.Rating, topic string) int {
	return len(c.filtered(kind, rating, topic))
}

func (c *Catalog) Text(kind model.CardKind, id string) (string, bool) {
	card, ok := c.cards[kind][id]
	if !ok {
		return "", false
	}
	return card.Text, true
}

func (c *Catalog) PickCount(promptID string) int {
	if card, ok := c.cards[model.CardPrompt][promptID]; ok {
		return card.Pick
	}
	return 1
}

func (c *Catalog) Card(kind model.CardKind, id string) (*model.Card, bool) {
	card, ok := c.cards[kind][id]
	return card, ok
}

func (c *Catalog) List(kind model.CardKind, rating model.Rating, topic string) []*model.Card {
	ids := c.filtered(kind, rating, topic)
	out := make([]*model.Card, len(ids))
	for i, id := range ids {
		out[i] = c.cards[kind][id]
	}
	return out
}

// CountBlanks counts runs of underscores in a prompt
func CountBlanks(text string) int {
	n := 0
	in := false
	for _, r := range text {
		if r == '_' {
			if !in {
				n++
			}
			in = true
			continue
		}
		in = false
	}
	return n
}

// FillBlanks substitutes answers into the prompt's blanks in order, one
// answer per run of underscores. Extra answers are appended; a prompt
// without blanks gets the answers after it.
func FillBlanks(prompt string, answers []string) string {
	if len(answers) == 0 {
		return prompt
	}
	var b strings.Builder
	next := 0
	in, filled := false, false
	for _, r := range prompt {
		if r == '_' {
			if !in {
				filled = next < len(answers)
				if filled {
					b.WriteString(strings.TrimRight(answers[next], "."))
					next++
				}
			}
			if !filled {
				b.WriteRune(r)
			}
			in = true
			continue
		}
		in = false
		b.WriteRune(r)
	}
	out := b.String()
	if next < len(answers) {
		out = strings.TrimSpace(out + " " + strings.Join(answers[next:], " "))
	}
	return out
}
