package service

import (
	"absurdlyvisual/internal/cache"
	"absurdlyvisual/internal/model"
	"absurdlyvisual/internal/repository"
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	maxChatLength  = 500
	mirrorTimeout  = 2 * time.Second
	archiveTimeout = 10 * time.Second

	// departed players keep their leaderboard entry; read past them
	maxDeparted = 32
)

// MatchService exposes the game operations to transports. Each call runs
// one GameService transition, then broadcasts and kicks off background
// work for bots and media.
type MatchService struct {
	games       *GameService
	bots        *BotService
	pipeline    *PipelineService
	auth        *AuthService
	gameCache   cache.GameCache
	leaderboard cache.LeaderboardCache
	rounds      repository.RoundRepo
	broadcaster Broadcaster

	// gameID -> *sync.Mutex guarding round archive writes
	archiveLocks sync.Map

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMatchService creates a new match service. The caches and round repo
// are optional.
func NewMatchService(
	games *GameService,
	bots *BotService,
	pipeline *PipelineService,
	auth *AuthService,
	gameCache cache.GameCache,
	leaderboard cache.LeaderboardCache,
	rounds repository.RoundRepo,
) *MatchService {
	ctx, cancel := context.WithCancel(context.Background())
	s := &MatchService{
		games:       games,
		bots:        bots,
		pipeline:    pipeline,
		auth:        auth,
		gameCache:   gameCache,
		leaderboard: leaderboard,
		rounds:      rounds,
		broadcaster: NopBroadcaster{},
		ctx:         ctx,
		cancel:      cancel,
	}
	bots.SetActions(s)
	return s
}

// SetBroadcaster sets the WebSocket broadcaster (called after hub is created)
func (s *MatchService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
	s.pipeline.SetBroadcaster(b)
}

// Shutdown stops bots and waits for background media work
func (s *MatchService) Shutdown() {
	s.bots.Shutdown()
	s.cancel()
	s.wg.Wait()
}

func (s *MatchService) background(task, gameID string, fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered from panic in task=%s game_id=%s: %v", task, gameID, r)
			}
		}()
		fn(s.ctx)
	}()
}

func (s *MatchService) member(gameID, playerID string) error {
	if id, ok := s.games.GameOf(playerID); !ok || id != gameID {
		return reject("not in this game")
	}
	return nil
}

func (s *MatchService) joinResponse(gameID string, p *model.Player) (*model.PlayerJoinResponse, error) {
	token, err := s.auth.GeneratePlayerToken(gameID, p.ID)
	if err != nil {
		return nil, err
	}
	view, err := s.games.View(gameID, p.ID)
	if err != nil {
		return nil, err
	}
	return &model.PlayerJoinResponse{GameID: gameID, PlayerID: p.ID, Token: token, State: view}, nil
}

// CreateGame opens a lobby with the caller seated as the first player
func (s *MatchService) CreateGame(ctx context.Context, settings model.GameSettings, hostName string) (*model.PlayerJoinResponse, error) {
	gameID, host, err := s.games.CreateGame(settings, hostName)
	if err != nil {
		return nil, err
	}
	resp, err := s.joinResponse(gameID, host)
	if err != nil {
		return nil, err
	}
	s.trackScore(ctx, gameID, host.ID, 0)
	s.mirror(ctx, gameID)
	s.broadcaster.Publish(gameID, EventGameCreated, map[string]interface{}{
		"gameId":   gameID,
		"settings": resp.State.Settings,
	})
	return resp, nil
}

// Join seats a human player
func (s *MatchService) Join(ctx context.Context, gameID, name string) (*model.PlayerJoinResponse, error) {
	p, err := s.games.Join(gameID, name)
	if err != nil {
		return nil, err
	}
	resp, err := s.joinResponse(gameID, p)
	if err != nil {
		return nil, err
	}
	log.Printf("player joined game_id=%s player_id=%s", gameID, p.ID)
	s.trackScore(ctx, gameID, p.ID, 0)
	s.broadcaster.Publish(gameID, EventPlayerJoined, map[string]interface{}{
		"playerId": p.ID,
		"name":     p.Name,
		"kind":     p.Kind,
	})
	s.refresh(ctx, gameID)
	return resp, nil
}

// AddBot seats an automated player at a member's request
func (s *MatchService) AddBot(ctx context.Context, gameID, requesterID, personality string) (*model.PlayerSummary, error) {
	if err := s.member(gameID, requesterID); err != nil {
		return nil, err
	}
	var pers model.Personality
	if personality != "" {
		p, err := model.ParsePersonality(personality)
		if err != nil {
			return nil, reject("%v", err)
		}
		pers = p
	}

	bot, err := s.games.AddBot(gameID, pers)
	if err != nil {
		return nil, err
	}
	log.Printf("automated player joined game_id=%s player_id=%s personality=%s", gameID, bot.ID, bot.Personality)
	s.trackScore(ctx, gameID, bot.ID, 0)
	s.broadcaster.Publish(gameID, EventPlayerJoined, map[string]interface{}{
		"playerId":    bot.ID,
		"name":        bot.Name,
		"kind":        bot.Kind,
		"personality": bot.Personality,
	})
	s.refresh(ctx, gameID)
	s.bots.OnRoundStarted(gameID)

	return &model.PlayerSummary{
		ID:          bot.ID,
		Name:        bot.Name,
		Kind:        bot.Kind,
		Connected:   true,
		Personality: bot.Personality,
	}, nil
}

// Start begins the first round
func (s *MatchService) Start(ctx context.Context, gameID, playerID string) error {
	if err := s.member(gameID, playerID); err != nil {
		return err
	}
	round, err := s.games.Start(gameID)
	if err != nil {
		return err
	}
	log.Printf("game started game_id=%s round=%d", gameID, round)
	s.broadcaster.Publish(gameID, EventGameStarted, map[string]interface{}{"round": round})
	s.roundStarted(ctx, gameID)
	return nil
}

func (s *MatchService) roundStarted(ctx context.Context, gameID string) {
	snap, err := s.games.Snapshot(gameID)
	if err != nil {
		return
	}
	s.broadcaster.Publish(gameID, EventRoundStarted, map[string]interface{}{
		"round":  snap.Number,
		"prompt": snap.PromptText,
		"pick":   snap.Pick,
		"czarId": snap.CzarID,
	})
	s.refresh(ctx, gameID)
	s.bots.OnRoundStarted(gameID)
}

// Submit plays cards for the current round. An empty token means the
// current round.
func (s *MatchService) Submit(ctx context.Context, gameID, token, playerID string, cardIDs []string) error {
	res, err := s.games.Submit(gameID, token, playerID, cardIDs)
	if err != nil {
		return err
	}
	s.broadcaster.Publish(gameID, EventCardsSubmitted, map[string]interface{}{
		"round":     res.Round,
		"playerId":  playerID,
		"submitted": res.Submitted,
		"needed":    res.Needed,
	})
	if res.EnteredJudging {
		s.judging(ctx, gameID, res.Token)
		return nil
	}
	pushState(s.games, s.broadcaster, gameID)
	return nil
}

func (s *MatchService) judging(ctx context.Context, gameID, token string) {
	snap, err := s.games.SnapshotRound(gameID, token)
	if err != nil {
		return
	}
	s.broadcaster.Publish(gameID, EventJudgingPhase, map[string]interface{}{
		"round":       snap.Number,
		"submissions": len(snap.Submissions),
	})
	s.refresh(ctx, gameID)
	s.bots.OnJudging(gameID)
	s.background("fan-out", gameID, func(ctx context.Context) {
		s.pipeline.RunFanOut(ctx, gameID, token)
	})
}

// SelectWinner records the czar's pick. An empty token means the current
// round.
func (s *MatchService) SelectWinner(ctx context.Context, gameID, token, czarID string, index int) error {
	res, err := s.games.SelectWinner(gameID, token, czarID, index)
	if err != nil {
		return err
	}
	log.Printf("winner selected game_id=%s round=%d winner_id=%s score=%d", gameID, res.Round, res.WinnerID, res.Score)
	s.trackScore(ctx, gameID, res.WinnerID, res.Score)
	s.broadcaster.Publish(gameID, EventWinnerSelected, map[string]interface{}{
		"round":      res.Round,
		"index":      index,
		"winnerId":   res.WinnerID,
		"winnerName": res.WinnerName,
		"score":      res.Score,
		"gameEnded":  res.GameEnded,
	})
	s.refresh(ctx, gameID)

	if res.GameEnded {
		board, _ := s.Leaderboard(ctx, gameID)
		s.broadcaster.Publish(gameID, EventGameOver, map[string]interface{}{
			"winnerId":    res.WinnerID,
			"winnerName":  res.WinnerName,
			"leaderboard": board,
		})
	}

	roundToken, number, ended := res.Token, res.Round, res.GameEnded
	s.background("winner-phase", gameID, func(ctx context.Context) {
		s.pipeline.RunWinnerPhase(ctx, gameID, roundToken)
		if ended {
			// the final round is archived once its media is attached
			if err := s.EndRound(ctx, gameID, roundToken); err != nil {
				logBotError("archive", gameID, err)
			}
			return
		}
		s.archive(gameID, number)
	})
	s.bots.OnWinnerSelected(gameID, res.Token, res.GameEnded)
	return nil
}

// EndRound archives the finished round and starts the next one
func (s *MatchService) EndRound(ctx context.Context, gameID, token string) error {
	res, err := s.games.EndRound(gameID, token)
	if err != nil {
		return err
	}
	s.archive(gameID, res.Archived)

	switch {
	case res.GameEnded:
		s.refresh(ctx, gameID)
	case res.BackToLobby:
		log.Printf("game back to lobby game_id=%s", gameID)
		s.refresh(ctx, gameID)
	default:
		s.roundStarted(ctx, gameID)
	}
	return nil
}

// Leave removes a player from the game
func (s *MatchService) Leave(ctx context.Context, gameID, playerID string) error {
	res, err := s.games.Leave(gameID, playerID)
	if err != nil {
		return err
	}
	log.Printf("player left game_id=%s player_id=%s", gameID, playerID)
	s.broadcaster.Publish(gameID, EventPlayerLeft, map[string]interface{}{"playerId": playerID})
	s.fallout(ctx, gameID, res)
	return nil
}

// Connect marks a player's socket as live
func (s *MatchService) Connect(ctx context.Context, gameID, playerID string) error {
	if _, err := s.games.SetConnected(gameID, playerID, true); err != nil {
		return err
	}
	s.refresh(ctx, gameID)
	return nil
}

// Disconnect marks a player's socket as gone. The seat is kept.
func (s *MatchService) Disconnect(ctx context.Context, gameID, playerID string) error {
	res, err := s.games.SetConnected(gameID, playerID, false)
	if err != nil {
		return err
	}
	s.broadcaster.Publish(gameID, EventPlayerLeft, map[string]interface{}{
		"playerId":     playerID,
		"disconnected": true,
	})
	s.fallout(ctx, gameID, res)
	return nil
}

// fallout reacts to a roster or connectivity change
func (s *MatchService) fallout(ctx context.Context, gameID string, res *LeaveResult) {
	if res.NoHumans {
		s.teardown(ctx, gameID)
		return
	}
	switch {
	case res.BackToLobby:
		log.Printf("game back to lobby game_id=%s", gameID)
		s.refresh(ctx, gameID)
	case res.RoundRestarted:
		s.roundStarted(ctx, gameID)
	case res.EnteredJudging:
		s.judging(ctx, gameID, res.Token)
	default:
		s.refresh(ctx, gameID)
	}
}

func (s *MatchService) teardown(ctx context.Context, gameID string) {
	s.games.Teardown(gameID)
	s.bots.Stop(gameID)
	s.broadcaster.CloseRoom(gameID)
	s.archiveLocks.Delete(gameID)
	if s.gameCache != nil {
		if err := s.gameCache.Delete(ctx, gameID); err != nil {
			log.Printf("failed to delete game meta game_id=%s error=%v", gameID, err)
		}
	}
	if s.leaderboard != nil {
		if err := s.leaderboard.Delete(ctx, gameID); err != nil {
			log.Printf("failed to delete leaderboard game_id=%s error=%v", gameID, err)
		}
	}
}

// Chat relays a message to the room
func (s *MatchService) Chat(ctx context.Context, gameID, playerID, text string) error {
	if err := s.member(gameID, playerID); err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return reject("message is empty")
	}
	if utf8.RuneCountInString(text) > maxChatLength {
		text = string([]rune(text)[:maxChatLength])
	}

	name := ""
	members, err := s.games.Members(gameID)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.ID == playerID {
			name = m.Name
		}
	}
	s.broadcaster.Publish(gameID, EventChatMessage, map[string]interface{}{
		"playerId": playerID,
		"name":     name,
		"text":     text,
		"sentAt":   time.Now(),
	})
	return nil
}

// View returns the caller's projection
func (s *MatchService) View(ctx context.Context, gameID, playerID string) (*model.PlayerView, error) {
	if err := s.member(gameID, playerID); err != nil {
		return nil, err
	}
	return s.games.View(gameID, playerID)
}

// Meta returns the public summary of a game
func (s *MatchService) Meta(ctx context.Context, gameID string) (*model.GameMeta, error) {
	meta, err := s.games.Meta(gameID)
	if err == ErrGameNotFound && s.gameCache != nil {
		cached, cerr := s.gameCache.GetMeta(ctx, gameID)
		if cerr == nil && cached != nil {
			return cached, nil
		}
	}
	return meta, err
}

// ListGames lists live games, newest first
func (s *MatchService) ListGames(ctx context.Context) []model.GameMeta {
	if s.gameCache != nil {
		metas, err := s.gameCache.List(ctx)
		if err == nil {
			out := make([]model.GameMeta, 0, len(metas))
			for _, m := range metas {
				out = append(out, *m)
			}
			return out
		}
		log.Printf("failed to list cached games, using local state: %v", err)
	}
	games := s.games.Games()
	if games == nil {
		games = []model.GameMeta{}
	}
	return games
}

// Leaderboard ranks the seated players by score
func (s *MatchService) Leaderboard(ctx context.Context, gameID string) ([]cache.LeaderboardEntry, error) {
	members, err := s.games.Members(gameID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}

	if s.leaderboard != nil {
		top, err := s.leaderboard.GetTop(ctx, gameID, len(members)+maxDeparted)
		if err == nil {
			out := make([]cache.LeaderboardEntry, 0, len(members))
			for _, e := range top {
				name, seated := names[e.PlayerID]
				if !seated {
					continue
				}
				e.Name = name
				out = append(out, e)
			}
			cache.Rank(out)
			return out, nil
		}
		log.Printf("failed to read leaderboard game_id=%s error=%v", gameID, err)
	}

	sort.SliceStable(members, func(i, j int) bool { return members[i].Score > members[j].Score })
	out := make([]cache.LeaderboardEntry, len(members))
	for i, m := range members {
		out[i] = cache.LeaderboardEntry{PlayerID: m.ID, Name: m.Name, Score: m.Score}
	}
	cache.Rank(out)
	return out, nil
}

// History returns archived rounds
func (s *MatchService) History(ctx context.Context, gameID string) ([]*model.Round, error) {
	if s.rounds == nil {
		return []*model.Round{}, nil
	}
	rounds, err := s.rounds.ListByGame(ctx, gameID)
	if rounds == nil {
		rounds = []*model.Round{}
	}
	return rounds, err
}

// Stats summarises live games
func (s *MatchService) Stats() Stats {
	return s.games.Stats()
}

// refresh pushes projections and mirrors the lobby meta
func (s *MatchService) refresh(ctx context.Context, gameID string) {
	pushState(s.games, s.broadcaster, gameID)
	s.mirror(ctx, gameID)
}

func (s *MatchService) mirror(ctx context.Context, gameID string) {
	if s.gameCache == nil {
		return
	}
	meta, err := s.games.Meta(gameID)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorTimeout)
	defer cancel()
	if err := s.gameCache.SetMeta(ctx, meta); err != nil {
		log.Printf("failed to mirror game meta game_id=%s error=%v", gameID, err)
	}
}

func (s *MatchService) trackScore(ctx context.Context, gameID, playerID string, score int) {
	if s.leaderboard == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorTimeout)
	defer cancel()
	if err := s.leaderboard.UpdateScore(ctx, gameID, playerID, score); err != nil {
		log.Printf("failed to update leaderboard game_id=%s error=%v", gameID, err)
	}
}

// archive writes a finished round to Mongo in the background. Writes for
// one game are serialized and re-read the round, so the last write always
// carries the newest media.
func (s *MatchService) archive(gameID string, number int) {
	if s.rounds == nil || number == 0 {
		return
	}
	round, err := s.games.ArchivedRound(gameID, number)
	if err != nil {
		return
	}
	s.background("archive", gameID, func(ctx context.Context) {
		mu, _ := s.archiveLocks.LoadOrStore(gameID, &sync.Mutex{})
		mu.(*sync.Mutex).Lock()
		defer mu.(*sync.Mutex).Unlock()

		if latest, err := s.games.ArchivedRound(gameID, number); err == nil {
			round = latest
		}
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
		defer cancel()
		if err := s.rounds.Archive(ctx, round); err != nil {
			log.Printf("failed to archive round game_id=%s round=%d error=%v", gameID, number, err)
		}
	})
}
