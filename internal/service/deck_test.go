package service

import (
	"absurdlyvisual/internal/model"
	"errors"
	"sort"
	"testing"
)

func TestShuffleDeckIsPermutation(t *testing.T) {
	in := []string{"a", "b", "c", "d", "e", "f"}
	out := ShuffleDeck(in)

	if len(out) != len(in) {
		t.Fatalf("expected %d cards, got %d", len(in), len(out))
	}
	if in[0] != "a" || in[5] != "f" {
		t.Fatalf("expected input untouched, got %v", in)
	}
	sorted := append([]string(nil), out...)
	sort.Strings(sorted)
	for i := range in {
		if sorted[i] != in[i] {
			t.Fatalf("expected a permutation of %v, got %v", in, out)
		}
	}
}

func TestDrawReshufflesOncePerExhaustion(t *testing.T) {
	p := &model.Pile{DrawOrder: []string{"a", "b"}}

	reshuffles := 0
	for i := 0; i < 2; i++ {
		id, reshuffled, err := Draw(p)
		if err != nil {
			t.Fatalf("Draw failed: %v", err)
		}
		if reshuffled {
			reshuffles++
		}
		DiscardCards(p, id)
	}
	if reshuffles != 0 {
		t.Fatalf("expected no reshuffle while cards remain, got %d", reshuffles)
	}

	_, reshuffled, err := Draw(p)
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if !reshuffled {
		t.Fatalf("expected a reshuffle on empty draw order")
	}
	if len(p.Discard) != 0 {
		t.Fatalf("expected discard cleared, got %v", p.Discard)
	}
	if len(p.DrawOrder) != 1 {
		t.Fatalf("expected 1 card left to draw, got %d", len(p.DrawOrder))
	}

	_, reshuffled, err = Draw(p)
	if err != nil || reshuffled {
		t.Fatalf("expected a plain draw, got reshuffled=%v err=%v", reshuffled, err)
	}
}

func TestDrawExhausted(t *testing.T) {
	p := &model.Pile{}
	if _, _, err := Draw(p); !errors.Is(err, ErrDeckExhausted) {
		t.Fatalf("expected ErrDeckExhausted, got %v", err)
	}
}

func TestDealStopsWhenDeckRunsOut(t *testing.T) {
	p := &model.Pile{DrawOrder: []string{"a", "b"}, Discard: []string{"c"}}
	got := Deal(p, 5)
	if len(got) != 3 {
		t.Fatalf("expected 3 cards, got %v", got)
	}
	if len(p.DrawOrder) != 0 || len(p.Discard) != 0 {
		t.Fatalf("expected empty pile, got %+v", p)
	}
}
