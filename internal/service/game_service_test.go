package service

import (
	"absurdlyvisual/internal/config"
	"absurdlyvisual/internal/model"
	"errors"
	"fmt"
	"testing"
)

var testDefaults = config.GameDefaults{
	MaxPlayers:  8,
	MinPlayers:  3,
	MinHumans:   1,
	MaxBots:     3,
	PointsToWin: 100,
	HandSize:    5,
}

// testCatalog builds a catalog of prompts that all need pick cards
func testCatalog(prompts, answers, pick int) *Catalog {
	ps := make([]model.Card, prompts)
	for i := range ps {
		ps[i] = model.Card{ID: fmt.Sprintf("p%d", i), Text: fmt.Sprintf("Prompt %d ____.", i), Pick: pick}
	}
	as := make([]model.Card, answers)
	for i := range as {
		as[i] = model.Card{ID: fmt.Sprintf("a%d", i), Text: fmt.Sprintf("Answer %d.", i)}
	}
	return NewCatalog(ps, as)
}

// newTestGame creates a game with n human players, host first
func newTestGame(t *testing.T, cards CardSource, defaults config.GameDefaults, n int) (*GameService, string, []string) {
	t.Helper()
	svc := NewGameService(NewStore(), cards, defaults)
	gameID, host, err := svc.CreateGame(model.GameSettings{}, "host")
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	ids := []string{host.ID}
	for i := 1; i < n; i++ {
		p, err := svc.Join(gameID, fmt.Sprintf("player%d", i))
		if err != nil {
			t.Fatalf("Join failed: %v", err)
		}
		ids = append(ids, p.ID)
	}
	return svc, gameID, ids
}

func startTestGame(t *testing.T, svc *GameService, gameID string) {
	t.Helper()
	if _, err := svc.Start(gameID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
}

func mustView(t *testing.T, svc *GameService, gameID, playerID string) *model.PlayerView {
	t.Helper()
	v, err := svc.View(gameID, playerID)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	return v
}

func handIDs(v *model.PlayerView) []string {
	ids := make([]string, len(v.YourHand))
	for i, c := range v.YourHand {
		ids[i] = c.ID
	}
	return ids
}

func currentCzar(t *testing.T, svc *GameService, gameID string) string {
	t.Helper()
	snap, err := svc.Snapshot(gameID)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	return snap.CzarID
}

// submitAll plays the first pick cards of every non-czar hand
func submitAll(t *testing.T, svc *GameService, gameID string, players []string, pick int) {
	t.Helper()
	czar := currentCzar(t, svc, gameID)
	for _, id := range players {
		if id == czar {
			continue
		}
		hand := handIDs(mustView(t, svc, gameID, id))
		if _, err := svc.Submit(gameID, "", id, hand[:pick]); err != nil {
			t.Fatalf("Submit failed for %s: %v", id, err)
		}
	}
}

// checkAnswerConservation asserts draw + discard + hands is exactly the
// catalog's answer set
func checkAnswerConservation(t *testing.T, svc *GameService, gameID string, catalogSize int) {
	t.Helper()
	counts := make(map[string]int)
	err := svc.store.update(gameID, func(g *model.Game) error {
		for _, id := range g.Answers.DrawOrder {
			counts[id]++
		}
		for _, id := range g.Answers.Discard {
			counts[id]++
		}
		for _, pid := range g.Players {
			if p := svc.store.player(pid); p != nil {
				for _, id := range p.Hand {
					counts[id]++
				}
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(counts) != catalogSize {
		t.Fatalf("expected %d distinct answer cards, got %d", catalogSize, len(counts))
	}
	for id, n := range counts {
		if n != 1 {
			t.Fatalf("expected card %s exactly once, got %d", id, n)
		}
	}
}

func TestStartDealsHandsAndSeatsFirstCzar(t *testing.T) {
	svc, gameID, players := newTestGame(t, testCatalog(10, 60, 1), testDefaults, 3)

	round, err := svc.Start(gameID)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if round != 1 {
		t.Fatalf("expected round 1, got %d", round)
	}

	for _, id := range players {
		v := mustView(t, svc, gameID, id)
		if len(v.YourHand) != 5 {
			t.Fatalf("expected 5 cards for %s, got %d", id, len(v.YourHand))
		}
		if v.State != model.GamePlaying {
			t.Fatalf("expected playing, got %s", v.State)
		}
		if v.CurrentRound == nil || v.CurrentRound.Prompt.ID == "" {
			t.Fatalf("expected a drawn prompt card")
		}
		if v.CurrentRound.CzarID != players[0] {
			t.Fatalf("expected czar %s, got %s", players[0], v.CurrentRound.CzarID)
		}
	}
}

func TestStartRejections(t *testing.T) {
	svc, gameID, _ := newTestGame(t, testCatalog(10, 60, 1), testDefaults, 2)
	if _, err := svc.Start(gameID); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejection below min players, got %v", err)
	}

	svc, gameID, _ = newTestGame(t, testCatalog(10, 60, 1), testDefaults, 3)
	startTestGame(t, svc, gameID)
	if _, err := svc.Start(gameID); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejection on second start, got %v", err)
	}
}

func TestCreateGameCatalogPreflight(t *testing.T) {
	svc := NewGameService(NewStore(), testCatalog(5, 10, 1), testDefaults)
	if _, _, err := svc.CreateGame(model.GameSettings{}, "host"); !errors.Is(err, ErrCatalogTooSmall) {
		t.Fatalf("expected ErrCatalogTooSmall, got %v", err)
	}

	svc = NewGameService(NewStore(), testCatalog(0, 60, 1), testDefaults)
	if _, _, err := svc.CreateGame(model.GameSettings{}, "host"); !errors.Is(err, ErrCatalogTooSmall) {
		t.Fatalf("expected ErrCatalogTooSmall without prompts, got %v", err)
	}
}

func TestCreateGameDropsPromptsLargerThanHand(t *testing.T) {
	prompts := []model.Card{{ID: "p0", Text: "Just ____.", Pick: 1}}
	for i := 1; i < 5; i++ {
		prompts = append(prompts, model.Card{ID: fmt.Sprintf("p%d", i), Text: "____ and ____.", Pick: 2})
	}
	answers := make([]model.Card, 20)
	for i := range answers {
		answers[i] = model.Card{ID: fmt.Sprintf("a%d", i), Text: fmt.Sprintf("Answer %d.", i)}
	}
	svc := NewGameService(NewStore(), NewCatalog(prompts, answers), testDefaults)

	gameID, _, err := svc.CreateGame(model.GameSettings{HandSize: 1}, "host")
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	var deck []string
	if err := svc.store.update(gameID, func(g *model.Game) error {
		deck = append(deck, g.Prompts.DrawOrder...)
		return nil
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(deck) != 1 || deck[0] != "p0" {
		t.Fatalf("expected only the single-pick prompt, got %v", deck)
	}

	svc = NewGameService(NewStore(), NewCatalog(prompts[1:], answers), testDefaults)
	if _, _, err := svc.CreateGame(model.GameSettings{HandSize: 1}, "host"); !errors.Is(err, ErrCatalogTooSmall) {
		t.Fatalf("expected ErrCatalogTooSmall when no prompt fits a hand, got %v", err)
	}
}

func TestResolveSettings(t *testing.T) {
	svc := NewGameService(NewStore(), testCatalog(1, 1, 1), testDefaults)

	tests := []struct {
		name    string
		in      model.GameSettings
		wantErr bool
	}{
		{"defaults", model.GameSettings{}, false},
		{"family", model.GameSettings{Rating: model.RatingFamily}, false},
		{"unknown rating", model.GameSettings{Rating: "spicy"}, true},
		{"min below two", model.GameSettings{MinPlayers: 1}, true},
		{"max below min", model.GameSettings{MinPlayers: 4, MaxPlayers: 3}, true},
		{"negative hand", model.GameSettings{HandSize: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ResolveSettings(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSettings) {
					t.Fatalf("expected ErrInvalidSettings, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.HandSize != testDefaults.HandSize || got.Rating == "" {
				t.Fatalf("expected defaults filled, got %+v", got)
			}
		})
	}
}

func TestSubmitRequiresPickCount(t *testing.T) {
	svc, gameID, players := newTestGame(t, testCatalog(10, 60, 2), testDefaults, 3)
	startTestGame(t, svc, gameID)

	submitter := players[1]
	hand := handIDs(mustView(t, svc, gameID, submitter))

	if _, err := svc.Submit(gameID, "", submitter, hand[:1]); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejection for one card, got %v", err)
	}
	if got := len(mustView(t, svc, gameID, submitter).YourHand); got != 5 {
		t.Fatalf("expected hand unchanged at 5, got %d", got)
	}

	if _, err := svc.Submit(gameID, "", submitter, hand[:2]); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	after := handIDs(mustView(t, svc, gameID, submitter))
	if len(after) != 3 {
		t.Fatalf("expected 3 cards left, got %d", len(after))
	}
	for _, id := range after {
		if id == hand[0] || id == hand[1] {
			t.Fatalf("expected %s to leave the hand", id)
		}
	}
}

func TestJudgingStartsOnLastSubmission(t *testing.T) {
	svc, gameID, players := newTestGame(t, testCatalog(10, 60, 1), testDefaults, 3)
	startTestGame(t, svc, gameID)

	first := handIDs(mustView(t, svc, gameID, players[1]))
	res, err := svc.Submit(gameID, "", players[1], first[:1])
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if res.EnteredJudging {
		t.Fatalf("expected to stay in playing after first submission")
	}
	if v := mustView(t, svc, gameID, players[0]); v.State != model.GamePlaying {
		t.Fatalf("expected playing, got %s", v.State)
	}

	second := handIDs(mustView(t, svc, gameID, players[2]))
	res, err = svc.Submit(gameID, "", players[2], second[:1])
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !res.EnteredJudging {
		t.Fatalf("expected judging on the second submission")
	}
	if v := mustView(t, svc, gameID, players[0]); v.State != model.GameJudging {
		t.Fatalf("expected judging, got %s", v.State)
	}
}

func TestSubmitIdempotence(t *testing.T) {
	svc, gameID, players := newTestGame(t, testCatalog(10, 60, 1), testDefaults, 4)
	startTestGame(t, svc, gameID)

	hand := handIDs(mustView(t, svc, gameID, players[1]))
	if _, err := svc.Submit(gameID, "", players[1], hand[:1]); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	before := mustView(t, svc, gameID, players[1])

	if _, err := svc.Submit(gameID, "", players[1], handIDs(before)[:1]); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected second submit rejected, got %v", err)
	}
	after := mustView(t, svc, gameID, players[1])
	if len(after.YourHand) != len(before.YourHand) {
		t.Fatalf("expected hand unchanged, got %d want %d", len(after.YourHand), len(before.YourHand))
	}
	if after.CurrentRound.SubmissionCount != 1 {
		t.Fatalf("expected 1 submission, got %d", after.CurrentRound.SubmissionCount)
	}
}

func TestSubmitRejections(t *testing.T) {
	svc, gameID, players := newTestGame(t, testCatalog(10, 60, 1), testDefaults, 3)
	startTestGame(t, svc, gameID)

	czarHand := handIDs(mustView(t, svc, gameID, players[0]))
	otherHand := handIDs(mustView(t, svc, gameID, players[2]))

	tests := []struct {
		name     string
		token    string
		playerID string
		cards    []string
		want     error
	}{
		{"czar", "", players[0], czarHand[:1], ErrRejected},
		{"not in hand", "", players[1], otherHand[:1], ErrRejected},
		{"stranger", "", "nobody", otherHand[:1], ErrRejected},
		{"stale token", "old-token", players[1], otherHand[:1], ErrStaleRound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Submit(gameID, tt.token, tt.playerID, tt.cards); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSelectWinnerScoresSubmitter(t *testing.T) {
	tests := []struct {
		name        string
		pointsToWin int
		wantState   model.GameState
	}{
		{"keeps playing", 3, model.GameRoundEnd},
		{"ends game", 1, model.GameEnded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defaults := testDefaults
			defaults.PointsToWin = tt.pointsToWin
			svc, gameID, players := newTestGame(t, testCatalog(10, 60, 1), defaults, 3)
			startTestGame(t, svc, gameID)
			submitAll(t, svc, gameID, players, 1)

			snap, err := svc.Snapshot(gameID)
			if err != nil {
				t.Fatalf("Snapshot failed: %v", err)
			}
			winnerID := snap.Submissions[0].PlayerID

			res, err := svc.SelectWinner(gameID, "", players[0], 0)
			if err != nil {
				t.Fatalf("SelectWinner failed: %v", err)
			}
			if res.WinnerID != winnerID || res.Score != 1 {
				t.Fatalf("expected %s at 1 point, got %s at %d", winnerID, res.WinnerID, res.Score)
			}
			v := mustView(t, svc, gameID, players[0])
			if v.State != tt.wantState {
				t.Fatalf("expected %s, got %s", tt.wantState, v.State)
			}
			for _, p := range v.Players {
				if p.ID == winnerID && p.Score != 1 {
					t.Fatalf("expected winner score 1, got %d", p.Score)
				}
			}
		})
	}
}

func TestSelectWinnerRules(t *testing.T) {
	svc, gameID, players := newTestGame(t, testCatalog(10, 60, 1), testDefaults, 3)
	startTestGame(t, svc, gameID)

	if _, err := svc.SelectWinner(gameID, "", players[0], 0); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejection outside judging, got %v", err)
	}

	submitAll(t, svc, gameID, players, 1)

	if _, err := svc.SelectWinner(gameID, "", players[1], 0); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejection for non-czar, got %v", err)
	}
	for _, idx := range []int{-1, 2, 10} {
		if _, err := svc.SelectWinner(gameID, "", players[0], idx); !errors.Is(err, ErrRejected) {
			t.Fatalf("expected rejection for index %d, got %v", idx, err)
		}
	}
	if v := mustView(t, svc, gameID, players[0]); v.State != model.GameJudging {
		t.Fatalf("expected judging after rejections, got %s", v.State)
	}
	if _, err := svc.SelectWinner(gameID, "", players[0], 1); err != nil {
		t.Fatalf("SelectWinner failed: %v", err)
	}
}

func TestEndRoundReplenishesAndRotatesCzar(t *testing.T) {
	svc, gameID, players := newTestGame(t, testCatalog(10, 60, 1), testDefaults, 3)
	startTestGame(t, svc, gameID)

	hand := handIDs(mustView(t, svc, gameID, players[1]))
	played := hand[0]
	submitAll(t, svc, gameID, players, 1)

	for _, id := range handIDs(mustView(t, svc, gameID, players[1])) {
		if id == played {
			t.Fatalf("expected %s out of hand before the round ends", played)
		}
	}

	if _, err := svc.SelectWinner(gameID, "", players[0], 0); err != nil {
		t.Fatalf("SelectWinner failed: %v", err)
	}
	res, err := svc.EndRound(gameID, "")
	if err != nil {
		t.Fatalf("EndRound failed: %v", err)
	}
	if res.Archived != 1 || res.NextRound != 2 || res.NextToken == "" {
		t.Fatalf("unexpected result %+v", res)
	}

	v := mustView(t, svc, gameID, players[1])
	if len(v.YourHand) != 5 {
		t.Fatalf("expected hand back to 5, got %d", len(v.YourHand))
	}
	if v.CurrentRound.CzarID != players[1] {
		t.Fatalf("expected czar to rotate to %s, got %s", players[1], v.CurrentRound.CzarID)
	}
	if v.RoundsPlayed != 1 {
		t.Fatalf("expected 1 round in history, got %d", v.RoundsPlayed)
	}

	if _, err := svc.EndRound(gameID, ""); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected EndRound rejected while playing, got %v", err)
	}
}

func TestEndRoundStaleToken(t *testing.T) {
	svc, gameID, players := newTestGame(t, testCatalog(10, 60, 1), testDefaults, 3)
	startTestGame(t, svc, gameID)
	submitAll(t, svc, gameID, players, 1)
	if _, err := svc.SelectWinner(gameID, "", players[0], 0); err != nil {
		t.Fatalf("SelectWinner failed: %v", err)
	}
	if _, err := svc.EndRound(gameID, "not-this-round"); !errors.Is(err, ErrStaleRound) {
		t.Fatalf("expected ErrStaleRound, got %v", err)
	}
}

func TestAnswerDeckConservation(t *testing.T) {
	const answers = 24
	svc, gameID, players := newTestGame(t, testCatalog(4, answers, 2), testDefaults, 4)
	checkAnswerConservation(t, svc, gameID, answers)

	startTestGame(t, svc, gameID)
	checkAnswerConservation(t, svc, gameID, answers)

	// Enough rounds to exhaust the draw order more than once
	for round := 0; round < 8; round++ {
		submitAll(t, svc, gameID, players, 2)
		checkAnswerConservation(t, svc, gameID, answers)

		czar := currentCzar(t, svc, gameID)
		if _, err := svc.SelectWinner(gameID, "", czar, 0); err != nil {
			t.Fatalf("SelectWinner failed: %v", err)
		}
		if _, err := svc.EndRound(gameID, ""); err != nil {
			t.Fatalf("EndRound failed in round %d: %v", round, err)
		}
		checkAnswerConservation(t, svc, gameID, answers)
	}
}

func TestCzarLeavingRestartsRound(t *testing.T) {
	svc, gameID, players := newTestGame(t, testCatalog(10, 60, 1), testDefaults, 4)
	startTestGame(t, svc, gameID)

	before, _ := svc.Snapshot(gameID)
	res, err := svc.Leave(gameID, players[0])
	if err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	if !res.RoundRestarted || res.Token == before.Token {
		t.Fatalf("expected a fresh round, got %+v", res)
	}

	czar := currentCzar(t, svc, gameID)
	if czar == players[0] {
		t.Fatalf("expected the departed czar to be replaced")
	}
	found := false
	for _, id := range players[1:] {
		if id == czar {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected czar %s to be on the roster", czar)
	}
}

func TestCzarLeavingAfterJudgingKeepsRotation(t *testing.T) {
	svc, gameID, players := newTestGame(t, testCatalog(10, 60, 1), testDefaults, 4)
	startTestGame(t, svc, gameID)
	if czar := currentCzar(t, svc, gameID); czar != players[0] {
		t.Fatalf("expected host as first czar, got %s", czar)
	}
	submitAll(t, svc, gameID, players, 1)
	if _, err := svc.SelectWinner(gameID, "", players[0], 0); err != nil {
		t.Fatalf("SelectWinner failed: %v", err)
	}

	if _, err := svc.Leave(gameID, players[0]); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	if _, err := svc.EndRound(gameID, ""); err != nil {
		t.Fatalf("EndRound failed: %v", err)
	}
	if czar := currentCzar(t, svc, gameID); czar != players[1] {
		t.Fatalf("expected %s to judge next, got %s", players[1], czar)
	}
}

func TestCzarIndexStaysValidAfterLeaves(t *testing.T) {
	defaults := testDefaults
	defaults.MinPlayers = 2
	svc, gameID, players := newTestGame(t, testCatalog(10, 80, 1), defaults, 5)
	startTestGame(t, svc, gameID)

	// Rotate the czar to the last seat, then remove players ahead of it
	for i := 0; i < 4; i++ {
		submitAll(t, svc, gameID, players, 1)
		if _, err := svc.SelectWinner(gameID, "", currentCzar(t, svc, gameID), 0); err != nil {
			t.Fatalf("SelectWinner failed: %v", err)
		}
		if _, err := svc.EndRound(gameID, ""); err != nil {
			t.Fatalf("EndRound failed: %v", err)
		}
	}
	if got := currentCzar(t, svc, gameID); got != players[4] {
		t.Fatalf("expected czar %s, got %s", players[4], got)
	}

	remaining := append([]string(nil), players...)
	for _, leaving := range []string{players[1], players[4], players[0]} {
		if _, err := svc.Leave(gameID, leaving); err != nil {
			t.Fatalf("Leave failed: %v", err)
		}
		for i, id := range remaining {
			if id == leaving {
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
		err := svc.store.update(gameID, func(g *model.Game) error {
			if g.RosterIndex(g.Czar()) < 0 {
				return fmt.Errorf("czar %q not on roster", g.Czar())
			}
			if g.Current != nil && g.RosterIndex(g.Current.CzarID) < 0 {
				return fmt.Errorf("round czar %q not on roster", g.Current.CzarID)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("after %s left: %v", leaving, err)
		}
	}
	if len(remaining) != 2 {
		t.Fatalf("expected 2 players left, got %d", len(remaining))
	}
}

func TestLeaveBelowMinimumReturnsToLobby(t *testing.T) {
	svc, gameID, players := newTestGame(t, testCatalog(10, 60, 1), testDefaults, 3)
	startTestGame(t, svc, gameID)

	res, err := svc.Leave(gameID, players[2])
	if err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	if !res.BackToLobby {
		t.Fatalf("expected back to lobby, got %+v", res)
	}
	v := mustView(t, svc, gameID, players[0])
	if v.State != model.GameLobby || v.CurrentRound != nil {
		t.Fatalf("expected lobby without a round, got %s", v.State)
	}
	if _, ok := svc.GameOf(players[2]); ok {
		t.Fatalf("expected departed player to lose membership")
	}
}

func TestLeaveCompletesJudging(t *testing.T) {
	svc, gameID, players := newTestGame(t, testCatalog(10, 60, 1), testDefaults, 4)
	startTestGame(t, svc, gameID)

	for _, id := range players[1:3] {
		hand := handIDs(mustView(t, svc, gameID, id))
		if _, err := svc.Submit(gameID, "", id, hand[:1]); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}
	res, err := svc.Leave(gameID, players[3])
	if err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	if !res.EnteredJudging {
		t.Fatalf("expected judging once the last holdout left, got %+v", res)
	}
}

func TestProjectionHidesOtherHands(t *testing.T) {
	svc, gameID, players := newTestGame(t, testCatalog(10, 60, 1), testDefaults, 3)
	startTestGame(t, svc, gameID)

	mine := mustView(t, svc, gameID, players[1])
	theirs := mustView(t, svc, gameID, players[2])
	seen := make(map[string]bool)
	for _, id := range handIDs(mine) {
		seen[id] = true
	}
	for _, id := range handIDs(theirs) {
		if seen[id] {
			t.Fatalf("expected disjoint hands, %s in both", id)
		}
	}
	for _, p := range mine.Players {
		if p.HandSize != 5 {
			t.Fatalf("expected hand size 5 for %s, got %d", p.ID, p.HandSize)
		}
	}
	if mine.CurrentRound.Submissions != nil {
		t.Fatalf("expected no submissions shown while playing")
	}

	submitAll(t, svc, gameID, players, 1)
	judging := mustView(t, svc, gameID, players[0])
	if len(judging.CurrentRound.Submissions) != 2 {
		t.Fatalf("expected 2 submissions shown in judging, got %d", len(judging.CurrentRound.Submissions))
	}
	for _, sub := range judging.CurrentRound.Submissions {
		if sub.PlayerID != "" {
			t.Fatalf("expected anonymous submissions while judging")
		}
		if len(sub.Cards) != 1 || sub.Cards[0].Text == "" {
			t.Fatalf("expected resolved card text, got %+v", sub.Cards)
		}
	}

	if _, err := svc.SelectWinner(gameID, "", players[0], 0); err != nil {
		t.Fatalf("SelectWinner failed: %v", err)
	}
	ended := mustView(t, svc, gameID, players[0])
	if ended.CurrentRound.WinnerIndex == nil || *ended.CurrentRound.WinnerIndex != 0 {
		t.Fatalf("expected winner index 0")
	}
	if ended.CurrentRound.Submissions[0].PlayerID == "" {
		t.Fatalf("expected submitters revealed after the pick")
	}
}

func TestAddBotNamesAndLimit(t *testing.T) {
	svc, gameID, _ := newTestGame(t, testCatalog(10, 60, 1), testDefaults, 1)

	for i := 1; i <= testDefaults.MaxBots; i++ {
		p, err := svc.AddBot(gameID, "")
		if err != nil {
			t.Fatalf("AddBot failed: %v", err)
		}
		if want := fmt.Sprintf("AI Bot %d", i); p.Name != want {
			t.Fatalf("expected %q, got %q", want, p.Name)
		}
		if !p.IsAutomated() || p.Personality == "" {
			t.Fatalf("expected automated player with a personality, got %+v", p)
		}
	}
	if _, err := svc.AddBot(gameID, ""); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected bot cap rejection, got %v", err)
	}
}

func TestJoinFullGame(t *testing.T) {
	defaults := testDefaults
	defaults.MaxPlayers = 3
	svc, gameID, _ := newTestGame(t, testCatalog(10, 60, 1), defaults, 3)
	if _, err := svc.Join(gameID, "late"); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected full game rejection, got %v", err)
	}
	if _, err := svc.Join("missing", "late"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
	if _, err := svc.Join(gameID, "   "); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected blank name rejection, got %v", err)
	}
}

func TestAttachMediaToArchivedRound(t *testing.T) {
	svc, gameID, players := newTestGame(t, testCatalog(10, 60, 1), testDefaults, 3)
	startTestGame(t, svc, gameID)
	submitAll(t, svc, gameID, players, 1)
	res, err := svc.SelectWinner(gameID, "", players[0], 1)
	if err != nil {
		t.Fatalf("SelectWinner failed: %v", err)
	}
	if _, err := svc.EndRound(gameID, ""); err != nil {
		t.Fatalf("EndRound failed: %v", err)
	}

	if err := svc.AttachWinnerMedia(gameID, res.Token, model.WinnerArtifact{VideoURL: "https://cdn/v.mp4"}); err != nil {
		t.Fatalf("AttachWinnerMedia failed: %v", err)
	}
	r, err := svc.ArchivedRound(gameID, res.Round)
	if err != nil {
		t.Fatalf("ArchivedRound failed: %v", err)
	}
	if r.Artifact == nil || r.Artifact.VideoURL != "https://cdn/v.mp4" {
		t.Fatalf("expected artifact on archived round, got %+v", r.Artifact)
	}
	if r.Submissions[1].VideoURL != "https://cdn/v.mp4" {
		t.Fatalf("expected video on the winning submission")
	}

	if err := svc.AttachWinnerMedia(gameID, "unknown", model.WinnerArtifact{}); !errors.Is(err, ErrStaleRound) {
		t.Fatalf("expected ErrStaleRound, got %v", err)
	}
	svc.Teardown(gameID)
	if err := svc.AttachSubmissionImage(gameID, res.Token, 0, "", "x"); !errors.Is(err, ErrStaleRound) {
		t.Fatalf("expected ErrStaleRound after teardown, got %v", err)
	}
}
