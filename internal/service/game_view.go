package service

import (
	"absurdlyvisual/internal/model"
	"sort"
)

// View builds the projection of a game as seen by one player
func (s *GameService) View(gameID, playerID string) (*model.PlayerView, error) {
	var v *model.PlayerView
	err := s.store.update(gameID, func(g *model.Game) error {
		v = s.project(g, playerID)
		return nil
	})
	return v, err
}

func (s *GameService) project(g *model.Game, viewerID string) *model.PlayerView {
	v := &model.PlayerView{
		Version:      model.PlayerViewVersion,
		GameID:       g.ID,
		State:        g.State,
		Settings:     g.Settings,
		Players:      make([]model.PlayerSummary, 0, len(g.Players)),
		YourID:       viewerID,
		YourHand:     []model.CardView{},
		RoundsPlayed: len(g.History),
	}

	czarID := ""
	if g.Current != nil {
		czarID = g.Current.CzarID
	}
	for _, id := range g.Players {
		p := s.store.player(id)
		if p == nil {
			continue
		}
		v.Players = append(v.Players, model.PlayerSummary{
			ID:          p.ID,
			Name:        p.Name,
			Kind:        p.Kind,
			Score:       p.Score,
			Connected:   p.Connected,
			HandSize:    len(p.Hand),
			Personality: p.Personality,
			IsCzar:      p.ID == czarID,
		})
		if p.ID == viewerID {
			for _, cardID := range p.Hand {
				text, _ := s.cards.Text(model.CardAnswer, cardID)
				v.YourHand = append(v.YourHand, model.CardView{ID: cardID, Text: text})
			}
		}
	}

	if r := g.Current; r != nil {
		text, _ := s.cards.Text(model.CardPrompt, r.PromptID)
		rv := &model.RoundView{
			Number:          r.Number,
			Prompt:          model.CardView{ID: r.PromptID, Text: text, Pick: s.cards.PickCount(r.PromptID)},
			CzarID:          r.CzarID,
			SubmissionCount: len(r.Submissions),
			YouSubmitted:    r.SubmittedBy(viewerID) >= 0,
			WinnerID:        r.WinnerID,
		}
		if r.HasWinner() {
			idx := r.WinnerIndex
			rv.WinnerIndex = &idx
		}
		if r.Artifact != nil {
			rv.VideoURL = r.Artifact.VideoURL
			rv.AudioURL = r.Artifact.AudioURL
			rv.Narration = r.Artifact.NarrationScript
		}
		if g.State == model.GameJudging || g.State == model.GameRoundEnd || g.State == model.GameEnded {
			rv.Submissions = make([]model.SubmissionView, len(r.Submissions))
			for i, sub := range r.Submissions {
				sv := model.SubmissionView{Index: i, ImageURL: sub.ImageURL}
				for _, cardID := range sub.CardIDs {
					t, _ := s.cards.Text(model.CardAnswer, cardID)
					sv.Cards = append(sv.Cards, model.CardView{ID: cardID, Text: t})
				}
				if r.HasWinner() {
					sv.PlayerID = sub.PlayerID
				}
				rv.Submissions[i] = sv
			}
		}
		v.CurrentRound = rv
	}
	return v
}

// Snapshot returns a detached copy of the current round for background work
func (s *GameService) Snapshot(gameID string) (*model.RoundSnapshot, error) {
	var snap *model.RoundSnapshot
	err := s.store.update(gameID, func(g *model.Game) error {
		r := g.Current
		if r == nil {
			return ErrStaleRound
		}
		snap = s.snapshotRound(g, r)
		return nil
	})
	return snap, err
}

// SnapshotRound returns a detached copy of the round with the given token,
// whether it is current or already archived.
func (s *GameService) SnapshotRound(gameID, token string) (*model.RoundSnapshot, error) {
	var snap *model.RoundSnapshot
	err := s.store.update(gameID, func(g *model.Game) error {
		r := findRound(g, token)
		if r == nil {
			return ErrStaleRound
		}
		snap = s.snapshotRound(g, r)
		return nil
	})
	if err == ErrGameNotFound {
		return nil, ErrStaleRound
	}
	return snap, err
}

func (s *GameService) snapshotRound(g *model.Game, r *model.Round) *model.RoundSnapshot {
	text, _ := s.cards.Text(model.CardPrompt, r.PromptID)
	snap := &model.RoundSnapshot{
		GameID:      g.ID,
		Token:       r.Token,
		Number:      r.Number,
		State:       g.State,
		PromptText:  text,
		Pick:        s.cards.PickCount(r.PromptID),
		CzarID:      r.CzarID,
		WinnerIndex: r.WinnerIndex,
		WinnerID:    r.WinnerID,
		Submissions: make([]model.SubmissionSnapshot, len(r.Submissions)),
	}
	if g.Current != r {
		snap.State = model.GameRoundEnd
	}
	if czar := s.store.player(r.CzarID); czar != nil {
		snap.CzarKind = czar.Kind
		snap.Personality = czar.Personality
	}
	if w := s.store.player(r.WinnerID); w != nil {
		snap.WinnerName = w.Name
	}
	for i, sub := range r.Submissions {
		texts := make([]string, len(sub.CardIDs))
		for j, cardID := range sub.CardIDs {
			texts[j], _ = s.cards.Text(model.CardAnswer, cardID)
		}
		snap.Submissions[i] = model.SubmissionSnapshot{PlayerID: sub.PlayerID, AnswerTexts: texts, ImageURL: sub.ImageURL, ScenePrompt: sub.ScenePrompt}
	}
	return snap
}

// BotTurn is what an automated player needs to pick cards
type BotTurn struct {
	Token       string
	PromptText  string
	Pick        int
	Hand        []model.CardView
	Personality model.Personality
	Done        bool
}

// BotTurn returns the automated player's view of the current round
func (s *GameService) BotTurn(gameID, playerID string) (*BotTurn, error) {
	var turn *BotTurn
	err := s.store.update(gameID, func(g *model.Game) error {
		r := g.Current
		if r == nil || g.State != model.GamePlaying {
			return ErrStaleRound
		}
		p := s.store.player(playerID)
		if p == nil || g.RosterIndex(playerID) < 0 {
			return ErrPlayerNotFound
		}
		text, _ := s.cards.Text(model.CardPrompt, r.PromptID)
		turn = &BotTurn{
			Token:       r.Token,
			PromptText:  text,
			Pick:        s.cards.PickCount(r.PromptID),
			Personality: p.Personality,
			Done:        r.SubmittedBy(playerID) >= 0 || r.CzarID == playerID,
		}
		for _, cardID := range p.Hand {
			t, _ := s.cards.Text(model.CardAnswer, cardID)
			turn.Hand = append(turn.Hand, model.CardView{ID: cardID, Text: t})
		}
		return nil
	})
	return turn, err
}

// PendingBots returns automated non-czar players who still owe a submission
func (s *GameService) PendingBots(gameID string) ([]string, string, error) {
	var ids []string
	var token string
	err := s.store.update(gameID, func(g *model.Game) error {
		r := g.Current
		if r == nil || g.State != model.GamePlaying {
			return nil
		}
		token = r.Token
		for _, id := range g.Players {
			p := s.store.player(id)
			if p == nil || !p.IsAutomated() || id == r.CzarID || r.SubmittedBy(id) >= 0 {
				continue
			}
			ids = append(ids, id)
		}
		return nil
	})
	return ids, token, err
}

// AttachSubmissionImage stores a generated image on a submission of the
// round identified by token. Only media fields are written.
func (s *GameService) AttachSubmissionImage(gameID, token string, index int, prompt, url string) error {
	err := s.store.update(gameID, func(g *model.Game) error {
		r := findRound(g, token)
		if r == nil || index < 0 || index >= len(r.Submissions) {
			return ErrStaleRound
		}
		r.Submissions[index].ScenePrompt = prompt
		r.Submissions[index].ImageURL = url
		return nil
	})
	if err == ErrGameNotFound {
		return ErrStaleRound
	}
	return err
}

// AttachWinnerMedia stores the winner phase output on the round
func (s *GameService) AttachWinnerMedia(gameID, token string, artifact model.WinnerArtifact) error {
	err := s.store.update(gameID, func(g *model.Game) error {
		r := findRound(g, token)
		if r == nil || !r.HasWinner() {
			return ErrStaleRound
		}
		a := artifact
		r.Artifact = &a
		if r.WinnerIndex >= 0 && r.WinnerIndex < len(r.Submissions) {
			sub := r.Submissions[r.WinnerIndex]
			sub.AudioURL = artifact.AudioURL
			sub.VideoURL = artifact.VideoURL
		}
		return nil
	})
	if err == ErrGameNotFound {
		return ErrStaleRound
	}
	return err
}

func findRound(g *model.Game, token string) *model.Round {
	if g.Current != nil && g.Current.Token == token {
		return g.Current
	}
	for i := len(g.History) - 1; i >= 0; i-- {
		if g.History[i].Token == token {
			return g.History[i]
		}
	}
	return nil
}

// ArchivedRound returns a copy of a history entry by number
func (s *GameService) ArchivedRound(gameID string, number int) (*model.Round, error) {
	var out *model.Round
	err := s.store.update(gameID, func(g *model.Game) error {
		for _, r := range g.History {
			if r.Number == number {
				cp := *r
				cp.Submissions = make([]*model.Submission, len(r.Submissions))
				for i, sub := range r.Submissions {
					sc := *sub
					cp.Submissions[i] = &sc
				}
				if r.Artifact != nil {
					a := *r.Artifact
					cp.Artifact = &a
				}
				out = &cp
				return nil
			}
		}
		return ErrStaleRound
	})
	return out, err
}

// Members returns the roster with connection state
func (s *GameService) Members(gameID string) ([]model.PlayerSummary, error) {
	var out []model.PlayerSummary
	err := s.store.update(gameID, func(g *model.Game) error {
		for _, id := range g.Players {
			if p := s.store.player(id); p != nil {
				out = append(out, model.PlayerSummary{
					ID:        p.ID,
					Name:      p.Name,
					Kind:      p.Kind,
					Score:     p.Score,
					Connected: p.Connected,
					HandSize:  len(p.Hand),
				})
			}
		}
		return nil
	})
	return out, err
}

// Meta returns the lobby-listing summary for a game
func (s *GameService) Meta(gameID string) (*model.GameMeta, error) {
	var m *model.GameMeta
	err := s.store.update(gameID, func(g *model.Game) error {
		m = &model.GameMeta{
			ID:          g.ID,
			State:       g.State,
			PlayerCount: len(g.Players),
			MaxPlayers:  g.Settings.MaxPlayers,
			Round:       g.RoundSeq,
			Topic:       g.Settings.Topic,
			Rating:      g.Settings.Rating,
			CreatedAt:   g.CreatedAt,
		}
		return nil
	})
	return m, err
}

// Games lists every live game, newest first
func (s *GameService) Games() []model.GameMeta {
	var out []model.GameMeta
	for _, id := range s.store.gameIDs() {
		if m, err := s.Meta(id); err == nil {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Stats summarises the store
type Stats struct {
	Games           int `json:"games"`
	Players         int `json:"players"`
	ConnectedHumans int `json:"connectedHumans"`
	Automated       int `json:"automated"`
}

// Stats counts games and seated players
func (s *GameService) Stats() Stats {
	var st Stats
	for _, id := range s.store.gameIDs() {
		_ = s.store.update(id, func(g *model.Game) error {
			st.Games++
			st.Players += len(g.Players)
			for _, pid := range g.Players {
				p := s.store.player(pid)
				switch {
				case p == nil:
				case p.IsAutomated():
					st.Automated++
				case p.Connected:
					st.ConnectedHumans++
				}
			}
			return nil
		})
	}
	return st
}
