package service

import (
	"absurdlyvisual/internal/model"
	"errors"
	"math/rand"
	"time"
)

// ErrDeckExhausted means both the draw order and discard pile are empty.
// It indicates a catalog too small for the game's configuration.
var ErrDeckExhausted = errors.New("deck exhausted")

// ShuffleDeck returns a uniformly random permutation of ids. The input is
// not modified.
func ShuffleDeck(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Draw pops the top card. An empty draw order is replaced by a shuffled
// copy of the discard pile before the pop, and the discard is cleared.
// The returned bool reports whether that reshuffle happened.
func Draw(p *model.Pile) (string, bool, error) {
	reshuffled := false
	if len(p.DrawOrder) == 0 {
		if len(p.Discard) == 0 {
			return "", false, ErrDeckExhausted
		}
		p.DrawOrder = ShuffleDeck(p.Discard)
		p.Discard = nil
		reshuffled = true
	}
	last := len(p.DrawOrder) - 1
	id := p.DrawOrder[last]
	p.DrawOrder = p.DrawOrder[:last]
	return id, reshuffled, nil
}

// Deal draws up to n cards, stopping early if the deck runs out
func Deal(p *model.Pile, n int) []string {
	cards := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id, _, err := Draw(p)
		if err != nil {
			break
		}
		cards = append(cards, id)
	}
	return cards
}

// DiscardCards puts ids on the discard pile
func DiscardCards(p *model.Pile, ids ...string) {
	p.Discard = append(p.Discard, ids...)
}
