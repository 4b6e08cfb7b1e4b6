package service

import (
	"absurdlyvisual/internal/config"
	"absurdlyvisual/internal/model"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxNameLength = 32

// GameService is the round state machine. Every method is one serialized
// transition on a single game; rejected actions leave the game unchanged.
type GameService struct {
	store    *Store
	cards    CardSource
	defaults config.GameDefaults
	now      func() time.Time
}

// NewGameService creates a new game service
func NewGameService(store *Store, cards CardSource, defaults config.GameDefaults) *GameService {
	return &GameService{
		store:    store,
		cards:    cards,
		defaults: defaults,
		now:      time.Now,
	}
}

// SubmitResult describes an accepted submission
type SubmitResult struct {
	Round          int
	Token          string
	Submitted      int
	Needed         int
	EnteredJudging bool
}

// WinnerResult describes an accepted winner selection
type WinnerResult struct {
	Round      int
	Token      string
	WinnerID   string
	WinnerName string
	Score      int
	GameEnded  bool
}

// EndRoundResult describes an archived round and what followed it
type EndRoundResult struct {
	Archived    int
	GameEnded   bool
	NextRound   int
	NextToken   string
	BackToLobby bool
}

// LeaveResult describes the structural fallout of a roster change
type LeaveResult struct {
	BackToLobby    bool
	RoundRestarted bool
	EnteredJudging bool
	Token          string
	NoHumans       bool
}

// ResolveSettings fills zero fields from the configured defaults and
// validates the result.
func (s *GameService) ResolveSettings(in model.GameSettings) (model.GameSettings, error) {
	out := in
	if out.MaxPlayers == 0 {
		out.MaxPlayers = s.defaults.MaxPlayers
	}
	if out.MinPlayers == 0 {
		out.MinPlayers = s.defaults.MinPlayers
	}
	if out.PointsToWin == 0 {
		out.PointsToWin = s.defaults.PointsToWin
	}
	if out.HandSize == 0 {
		out.HandSize = s.defaults.HandSize
	}
	if out.Rating == "" {
		out.Rating = model.RatingNone
	}
	out.Topic = strings.TrimSpace(out.Topic)

	switch {
	case !out.Rating.Valid():
		return out, fmt.Errorf("%w: unknown rating %q", ErrInvalidSettings, out.Rating)
	case out.MinPlayers < 2:
		return out, fmt.Errorf("%w: minPlayers must be at least 2", ErrInvalidSettings)
	case out.MaxPlayers < out.MinPlayers:
		return out, fmt.Errorf("%w: maxPlayers below minPlayers", ErrInvalidSettings)
	case out.HandSize < 1:
		return out, fmt.Errorf("%w: handSize must be positive", ErrInvalidSettings)
	case out.PointsToWin < 1:
		return out, fmt.Errorf("%w: pointsToWin must be positive", ErrInvalidSettings)
	}
	return out, nil
}

// CreateGame validates settings, runs the catalog pre-flight check and
// seats the creator as the first player.
func (s *GameService) CreateGame(settings model.GameSettings, hostName string) (string, *model.Player, error) {
	settings, err := s.ResolveSettings(settings)
	if err != nil {
		return "", nil, err
	}
	name, err := cleanName(hostName)
	if err != nil {
		return "", nil, err
	}

	prompts := s.playablePrompts(settings)
	if len(prompts) == 0 {
		return "", nil, fmt.Errorf("%w: no prompt cards match rating=%s topic=%q handSize=%d", ErrCatalogTooSmall, settings.Rating, settings.Topic, settings.HandSize)
	}
	need := settings.MinPlayers * settings.HandSize
	if n := s.cards.Count(model.CardAnswer, settings.Rating, settings.Topic); n < need {
		return "", nil, fmt.Errorf("%w: %d answer cards, need %d", ErrCatalogTooSmall, n, need)
	}

	g := &model.Game{
		ID:       uuid.New().String(),
		State:    model.GameLobby,
		Settings: settings,
		Prompts: model.Pile{
			DrawOrder: prompts,
		},
		Answers: model.Pile{
			DrawOrder: s.cards.ListShuffled(model.CardAnswer, settings.Rating, settings.Topic),
		},
		CreatedAt: s.now(),
	}
	s.store.insert(g)

	var host *model.Player
	err = s.store.update(g.ID, func(g *model.Game) error {
		p, err := s.seat(g, name, model.PlayerHuman, "")
		host = p
		return err
	})
	if err != nil {
		s.store.remove(g.ID)
		return "", nil, err
	}

	log.Printf("game created game_id=%s rating=%s topic=%q", g.ID, settings.Rating, settings.Topic)
	return g.ID, host, nil
}

// playablePrompts lists the filtered prompt deck without cards that ask
// for more answers than a hand holds
func (s *GameService) playablePrompts(settings model.GameSettings) []string {
	ids := s.cards.ListShuffled(model.CardPrompt, settings.Rating, settings.Topic)
	out := ids[:0]
	for _, id := range ids {
		if s.cards.PickCount(id) <= settings.HandSize {
			out = append(out, id)
		}
	}
	return out
}

// Join seats a new human player
func (s *GameService) Join(gameID, name string) (*model.Player, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	var p *model.Player
	err = s.store.update(gameID, func(g *model.Game) error {
		var err error
		p, err = s.seat(g, name, model.PlayerHuman, "")
		return err
	})
	return p, err
}

// AddBot seats an automated player. An empty personality picks one.
func (s *GameService) AddBot(gameID string, personality model.Personality) (*model.Player, error) {
	var p *model.Player
	err := s.store.update(gameID, func(g *model.Game) error {
		bots := 0
		for _, id := range g.Players {
			if pl := s.store.player(id); pl != nil && pl.IsAutomated() {
				bots++
			}
		}
		if s.defaults.MaxBots > 0 && bots >= s.defaults.MaxBots {
			return reject("at most %d automated players", s.defaults.MaxBots)
		}
		if personality == "" {
			personality = model.Personalities[g.BotCounter%len(model.Personalities)]
		}
		g.BotCounter++
		var err error
		p, err = s.seat(g, fmt.Sprintf("AI Bot %d", g.BotCounter), model.PlayerAutomated, personality)
		if err != nil {
			g.BotCounter--
		}
		return err
	})
	return p, err
}

func (s *GameService) seat(g *model.Game, name string, kind model.PlayerKind, personality model.Personality) (*model.Player, error) {
	if g.State == model.GameEnded {
		return nil, reject("game is over")
	}
	if len(g.Players) >= g.Settings.MaxPlayers {
		return nil, reject("game is full")
	}

	p := &model.Player{
		ID:          uuid.New().String(),
		GameID:      g.ID,
		Name:        name,
		Kind:        kind,
		Connected:   true,
		Personality: personality,
		JoinedAt:    s.now(),
	}
	if err := s.store.bind(p); err != nil {
		return nil, err
	}
	g.Players = append(g.Players, p.ID)
	if g.State.InProgress() {
		p.Hand = Deal(&g.Answers, g.Settings.HandSize)
	}
	return p, nil
}

// Start deals hands, draws the first prompt card and enters Playing
func (s *GameService) Start(gameID string) (int, error) {
	var round int
	err := s.store.update(gameID, func(g *model.Game) error {
		if g.State != model.GameLobby {
			return reject("game already started")
		}
		if len(g.Players) < g.Settings.MinPlayers {
			return reject("need at least %d players, have %d", g.Settings.MinPlayers, len(g.Players))
		}
		if n := s.connectedHumans(g); n < s.defaults.MinHumans {
			return reject("need at least %d connected human player(s)", s.defaults.MinHumans)
		}
		need := len(g.Players) * g.Settings.HandSize
		if n := s.cards.Count(model.CardAnswer, g.Settings.Rating, g.Settings.Topic); n < need {
			return fmt.Errorf("%w: %d answer cards, need %d", ErrCatalogTooSmall, n, need)
		}
		if err := s.startRound(g); err != nil {
			return err
		}
		round = g.Current.Number
		return nil
	})
	return round, err
}

// startRound draws the prompt card first so a failed draw changes nothing
func (s *GameService) startRound(g *model.Game) error {
	promptID, reshuffled, err := Draw(&g.Prompts)
	if err != nil {
		return fmt.Errorf("failed to draw prompt card: %w", err)
	}
	if reshuffled {
		log.Printf("prompt deck reshuffled game_id=%s", g.ID)
	}

	for _, id := range g.Players {
		p := s.store.player(id)
		if p == nil {
			continue
		}
		if missing := g.Settings.HandSize - len(p.Hand); missing > 0 {
			p.Hand = append(p.Hand, Deal(&g.Answers, missing)...)
		}
	}

	g.CzarIndex %= len(g.Players)
	g.RoundSeq++
	g.Current = &model.Round{
		GameID:      g.ID,
		Number:      g.RoundSeq,
		Token:       uuid.New().String(),
		PromptID:    promptID,
		CzarID:      g.Czar(),
		WinnerIndex: -1,
		StartedAt:   s.now(),
	}
	g.State = model.GamePlaying
	return nil
}

// Submit plays cards from a player's hand for the current round. A
// non-empty token must match the current round.
func (s *GameService) Submit(gameID, token, playerID string, cardIDs []string) (*SubmitResult, error) {
	var res *SubmitResult
	err := s.store.update(gameID, func(g *model.Game) error {
		if token != "" && (g.Current == nil || g.Current.Token != token) {
			return ErrStaleRound
		}
		if g.State != model.GamePlaying || g.Current == nil {
			return reject("not accepting submissions")
		}
		if g.RosterIndex(playerID) < 0 {
			return reject("not in this game")
		}
		r := g.Current
		if playerID == r.CzarID {
			return reject("the czar does not submit")
		}
		if r.SubmittedBy(playerID) >= 0 {
			return reject("already submitted this round")
		}
		if pick := s.cards.PickCount(r.PromptID); len(cardIDs) != pick {
			return reject("this prompt needs %d card(s), got %d", pick, len(cardIDs))
		}
		p := s.store.player(playerID)
		if p == nil || !p.HasCards(cardIDs) {
			return reject("cards are not in your hand")
		}

		played := append([]string(nil), cardIDs...)
		p.RemoveCards(played)
		DiscardCards(&g.Answers, played...)
		r.Submissions = append(r.Submissions, &model.Submission{
			PlayerID:    playerID,
			CardIDs:     played,
			SubmittedAt: s.now(),
		})

		res = &SubmitResult{
			Round:     r.Number,
			Token:     r.Token,
			Submitted: len(r.Submissions),
			Needed:    len(g.Players) - 1,
		}
		if s.allSubmitted(g) {
			g.State = model.GameJudging
			res.EnteredJudging = true
		}
		return nil
	})
	return res, err
}

// allSubmitted reports whether every non-czar roster member has played
func (s *GameService) allSubmitted(g *model.Game) bool {
	r := g.Current
	if r == nil || len(r.Submissions) == 0 {
		return false
	}
	for _, id := range g.Players {
		if id != r.CzarID && r.SubmittedBy(id) < 0 {
			return false
		}
	}
	return true
}

// SelectWinner records the czar's pick and scores it. A non-empty token
// must match the current round.
func (s *GameService) SelectWinner(gameID, token, czarID string, index int) (*WinnerResult, error) {
	var res *WinnerResult
	err := s.store.update(gameID, func(g *model.Game) error {
		if token != "" && (g.Current == nil || g.Current.Token != token) {
			return ErrStaleRound
		}
		if g.State != model.GameJudging || g.Current == nil {
			return reject("not judging")
		}
		r := g.Current
		if czarID != r.CzarID {
			return reject("only the czar picks the winner")
		}
		if index < 0 || index >= len(r.Submissions) {
			return reject("submission %d out of range", index)
		}

		winnerID := r.Submissions[index].PlayerID
		winner := s.store.player(winnerID)
		if winner == nil {
			return ErrPlayerNotFound
		}
		winner.Score++
		r.WinnerIndex = index
		r.WinnerID = winnerID

		res = &WinnerResult{
			Round:      r.Number,
			Token:      r.Token,
			WinnerID:   winnerID,
			WinnerName: winner.Name,
			Score:      winner.Score,
		}
		if winner.Score >= g.Settings.PointsToWin {
			g.State = model.GameEnded
			res.GameEnded = true
		} else {
			g.State = model.GameRoundEnd
		}
		return nil
	})
	return res, err
}

// EndRound archives the finished round, replenishes hands, rotates the
// czar and starts the next round unless the game is over. A non-empty
// token must match the current round.
func (s *GameService) EndRound(gameID, token string) (*EndRoundResult, error) {
	var res *EndRoundResult
	err := s.store.update(gameID, func(g *model.Game) error {
		if g.State != model.GameRoundEnd && g.State != model.GameEnded {
			return reject("round is not finished")
		}
		r := g.Current
		if r == nil {
			return reject("no round to end")
		}
		if token != "" && token != r.Token {
			return ErrStaleRound
		}

		ended := s.now()
		r.EndedAt = &ended
		g.History = append(g.History, r)
		DiscardCards(&g.Prompts, r.PromptID)

		for _, sub := range r.Submissions {
			if g.RosterIndex(sub.PlayerID) < 0 {
				continue
			}
			if p := s.store.player(sub.PlayerID); p != nil {
				p.Hand = append(p.Hand, Deal(&g.Answers, len(sub.CardIDs))...)
			}
		}
		if len(g.Players) > 0 {
			g.CzarIndex = (g.CzarIndex + 1) % len(g.Players)
		}
		g.Current = nil

		res = &EndRoundResult{Archived: r.Number}
		if g.State == model.GameEnded {
			res.GameEnded = true
			return nil
		}
		if len(g.Players) < g.Settings.MinPlayers {
			g.State = model.GameLobby
			res.BackToLobby = true
			return nil
		}
		if err := s.startRound(g); err != nil {
			g.State = model.GameLobby
			res.BackToLobby = true
			return err
		}
		res.NextRound = g.Current.Number
		res.NextToken = g.Current.Token
		return nil
	})
	return res, err
}

// Leave removes a player from the roster. The player record stays in the
// directory until teardown so history keeps resolving.
func (s *GameService) Leave(gameID, playerID string) (*LeaveResult, error) {
	res := &LeaveResult{}
	err := s.store.update(gameID, func(g *model.Game) error {
		idx := g.RosterIndex(playerID)
		if idx < 0 {
			return reject("not in this game")
		}
		wasCzar := g.Current != nil && g.Current.CzarID == playerID
		heldSeat := idx == g.CzarIndex

		if p := s.store.player(playerID); p != nil {
			DiscardCards(&g.Answers, p.Hand...)
			p.Hand = nil
			p.Connected = false
		}
		g.Players = append(g.Players[:idx], g.Players[idx+1:]...)
		s.store.unbind(playerID)

		if idx < g.CzarIndex {
			g.CzarIndex--
		}
		if len(g.Players) > 0 {
			g.CzarIndex %= len(g.Players)
		} else {
			g.CzarIndex = 0
		}

		s.settle(g, wasCzar, res)
		// EndRound advances past the seat; step back so the player who
		// slid into it still gets a turn
		if heldSeat && len(g.Players) > 0 && (g.State == model.GameRoundEnd || g.State == model.GameEnded) {
			g.CzarIndex = (g.CzarIndex - 1 + len(g.Players)) % len(g.Players)
		}
		res.NoHumans = s.connectedHumans(g) == 0
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SetConnected flips the soft connectivity flag
func (s *GameService) SetConnected(gameID, playerID string, connected bool) (*LeaveResult, error) {
	res := &LeaveResult{}
	err := s.store.update(gameID, func(g *model.Game) error {
		if g.RosterIndex(playerID) < 0 {
			return reject("not in this game")
		}
		p := s.store.player(playerID)
		if p == nil {
			return ErrPlayerNotFound
		}
		p.Connected = connected
		if !connected {
			s.settle(g, false, res)
		}
		res.NoHumans = s.connectedHumans(g) == 0
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// settle repairs an in-progress game after a roster or connectivity change
func (s *GameService) settle(g *model.Game, czarLeft bool, res *LeaveResult) {
	if !g.State.InProgress() {
		return
	}
	if len(g.Players) < g.Settings.MinPlayers || s.connectedHumans(g) < s.defaults.MinHumans {
		s.voidRound(g)
		g.State = model.GameLobby
		res.BackToLobby = true
		return
	}
	if czarLeft && (g.State == model.GamePlaying || g.State == model.GameJudging) {
		s.voidRound(g)
		if err := s.startRound(g); err != nil {
			log.Printf("failed to restart round game_id=%s error=%v", g.ID, err)
			g.State = model.GameLobby
			res.BackToLobby = true
			return
		}
		res.RoundRestarted = true
		res.Token = g.Current.Token
		return
	}
	if g.State == model.GamePlaying && s.allSubmitted(g) {
		g.State = model.GameJudging
		res.EnteredJudging = true
		res.Token = g.Current.Token
	}
}

// voidRound drops the current round without archiving it
func (s *GameService) voidRound(g *model.Game) {
	if g.Current == nil {
		return
	}
	DiscardCards(&g.Prompts, g.Current.PromptID)
	g.Current = nil
}

func (s *GameService) connectedHumans(g *model.Game) int {
	n := 0
	for _, id := range g.Players {
		if p := s.store.player(id); p != nil && !p.IsAutomated() && p.Connected {
			n++
		}
	}
	return n
}

// Exists reports whether the game is still in the store
func (s *GameService) Exists(gameID string) bool {
	return s.store.exists(gameID)
}

// Teardown removes the game and its players from the store
func (s *GameService) Teardown(gameID string) bool {
	ok := s.store.remove(gameID)
	if ok {
		log.Printf("game torn down game_id=%s", gameID)
	}
	return ok
}

// GameOf returns the game the player is seated in
func (s *GameService) GameOf(playerID string) (string, bool) {
	return s.store.gameOf(playerID)
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", reject("name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}
	return name, nil
}
