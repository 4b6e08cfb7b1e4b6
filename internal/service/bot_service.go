package service

import (
	"absurdlyvisual/internal/config"
	"absurdlyvisual/internal/model"
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"
)

// DecisionOracle picks cards and winners for automated players
type DecisionOracle interface {
	SelectCards(ctx context.Context, promptText string, hand []model.CardView, pick int, personality model.Personality) ([]string, error)
	Judge(ctx context.Context, promptText string, submissions [][]string, personality model.Personality) (int, error)
}

// BotActions are the public game operations automated players go through.
// They are the same operations human clients use.
type BotActions interface {
	Submit(ctx context.Context, gameID, token, playerID string, cardIDs []string) error
	SelectWinner(ctx context.Context, gameID, token, czarID string, index int) error
	EndRound(ctx context.Context, gameID, token string) error
}

// BotService drives automated players. Every scheduled task carries the
// round token it was scheduled for and gives up when the round moved on.
type BotService struct {
	games   *GameService
	oracle  DecisionOracle
	actions BotActions
	timing  config.Timing

	mu       sync.Mutex
	contexts map[string]*botGame
	wg       sync.WaitGroup
}

type botGame struct {
	ctx    context.Context
	cancel context.CancelFunc
	// inflight holds token+player keys for scheduled submissions
	inflight map[string]bool
}

// NewBotService creates a new bot service
func NewBotService(games *GameService, oracle DecisionOracle, timing config.Timing) *BotService {
	return &BotService{
		games:    games,
		oracle:   oracle,
		timing:   timing,
		contexts: make(map[string]*botGame),
	}
}

// SetActions injects the operations bots play through (avoids init cycle)
func (s *BotService) SetActions(a BotActions) {
	s.actions = a
}

// game returns the task context for a live game, nil once it is torn down
func (s *BotService) game(gameID string) *botGame {
	s.mu.Lock()
	defer s.mu.Unlock()
	bg := s.contexts[gameID]
	if bg == nil {
		if !s.games.Exists(gameID) {
			return nil
		}
		ctx, cancel := context.WithCancel(context.Background())
		bg = &botGame{ctx: ctx, cancel: cancel, inflight: make(map[string]bool)}
		s.contexts[gameID] = bg
	}
	return bg
}

// spawn runs fn in the background under the game's context
func (s *BotService) spawn(gameID, task string, fn func(ctx context.Context)) {
	bg := s.game(gameID)
	if bg == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered from panic in bot task=%s game_id=%s: %v", task, gameID, r)
			}
		}()
		fn(bg.ctx)
	}()
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// OnRoundStarted schedules a submission for every automated player who
// still owes one in the current round.
func (s *BotService) OnRoundStarted(gameID string) {
	ids, token, err := s.games.PendingBots(gameID)
	if err != nil || token == "" {
		return
	}
	bg := s.game(gameID)
	if bg == nil {
		return
	}
	for _, id := range ids {
		key := token + ":" + id
		s.mu.Lock()
		if bg.inflight[key] {
			s.mu.Unlock()
			continue
		}
		bg.inflight[key] = true
		s.mu.Unlock()

		playerID := id
		s.spawn(gameID, "submit", func(ctx context.Context) {
			defer func() {
				s.mu.Lock()
				delete(bg.inflight, key)
				s.mu.Unlock()
			}()
			s.playTurn(ctx, gameID, token, playerID)
		})
	}
}

func (s *BotService) playTurn(ctx context.Context, gameID, token, playerID string) {
	var jitter time.Duration
	if s.timing.BotThinkJitter > 0 {
		jitter = time.Duration(rand.Int63n(int64(s.timing.BotThinkJitter)))
	}
	if !sleep(ctx, jitter) {
		return
	}

	turn, err := s.games.BotTurn(gameID, playerID)
	if err != nil || turn.Token != token || turn.Done {
		return
	}
	if len(turn.Hand) < turn.Pick {
		log.Printf("bot cannot play game_id=%s player_id=%s hand=%d pick=%d", gameID, playerID, len(turn.Hand), turn.Pick)
		return
	}

	cards, err := s.oracle.SelectCards(ctx, turn.PromptText, turn.Hand, turn.Pick, turn.Personality)
	if err != nil || !validSelection(turn.Hand, turn.Pick, cards) {
		if err != nil && !errors.Is(err, ErrOracleUnavailable) {
			log.Printf("oracle selection failed game_id=%s player_id=%s error=%v", gameID, playerID, err)
		}
		cards = randomSelection(turn.Hand, turn.Pick)
	}
	if ctx.Err() != nil {
		return
	}

	if err := s.actions.Submit(ctx, gameID, token, playerID, cards); err != nil {
		logBotError("submit", gameID, err)
	}
}

// OnJudging lets an automated czar pick a winner after the judge delay
func (s *BotService) OnJudging(gameID string) {
	snap, err := s.games.Snapshot(gameID)
	if err != nil || snap.State != model.GameJudging || snap.CzarKind != model.PlayerAutomated {
		return
	}
	s.spawn(gameID, "judge", func(ctx context.Context) {
		if !sleep(ctx, s.timing.BotJudgeDelay) {
			return
		}
		n := len(snap.Submissions)
		if n == 0 {
			return
		}
		texts := make([][]string, n)
		for i, sub := range snap.Submissions {
			texts[i] = sub.AnswerTexts
		}

		index, err := s.oracle.Judge(ctx, snap.PromptText, texts, snap.Personality)
		if err != nil || index < 0 || index >= n {
			if err != nil && !errors.Is(err, ErrOracleUnavailable) {
				log.Printf("oracle judging failed game_id=%s error=%v", gameID, err)
			}
			index = rand.Intn(n)
		}
		if ctx.Err() != nil {
			return
		}

		if err := s.actions.SelectWinner(ctx, gameID, snap.Token, snap.CzarID, index); err != nil {
			logBotError("judge", gameID, err)
		}
	})
}

// OnWinnerSelected schedules the advance to the next round
func (s *BotService) OnWinnerSelected(gameID, token string, gameEnded bool) {
	if gameEnded {
		return
	}
	s.spawn(gameID, "advance", func(ctx context.Context) {
		if !sleep(ctx, s.timing.RoundAdvanceDelay) {
			return
		}
		if err := s.actions.EndRound(ctx, gameID, token); err != nil {
			logBotError("advance", gameID, err)
		}
	})
}

// Stop cancels every pending task for the game. Once the game is torn
// down no new tasks are scheduled for it.
func (s *BotService) Stop(gameID string) {
	s.mu.Lock()
	bg := s.contexts[gameID]
	delete(s.contexts, gameID)
	s.mu.Unlock()
	if bg != nil {
		bg.cancel()
	}
}

// Shutdown cancels all games and waits for running tasks
func (s *BotService) Shutdown() {
	s.mu.Lock()
	for id, bg := range s.contexts {
		bg.cancel()
		delete(s.contexts, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func logBotError(task, gameID string, err error) {
	switch {
	case errors.Is(err, ErrStaleRound), errors.Is(err, ErrGameNotFound):
		// round moved on
	case errors.Is(err, ErrRejected):
		log.Printf("bot %s rejected game_id=%s reason=%q", task, gameID, RejectionReason(err))
	default:
		log.Printf("bot %s failed game_id=%s error=%v", task, gameID, err)
	}
}

// validSelection checks exact pick count, distinct cards, all in hand
func validSelection(hand []model.CardView, pick int, ids []string) bool {
	if len(ids) != pick {
		return false
	}
	inHand := make(map[string]bool, len(hand))
	for _, c := range hand {
		inHand[c.ID] = true
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !inHand[id] || seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}

// randomSelection picks pick distinct cards uniformly at random
func randomSelection(hand []model.CardView, pick int) []string {
	perm := rand.Perm(len(hand))
	out := make([]string, 0, pick)
	for _, i := range perm[:pick] {
		out = append(out, hand[i].ID)
	}
	return out
}
