package service

import (
	"absurdlyvisual/internal/cache"
	"absurdlyvisual/internal/config"
	"absurdlyvisual/internal/model"
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
)

const cacheWriteTimeout = 5 * time.Second

// SceneWriter turns filled-in card text into a visual scene description
type SceneWriter interface {
	ScenePrompt(ctx context.Context, filled string) (string, error)
}

// FeedPublisher stores a winner video in the public feed
type FeedPublisher interface {
	Publish(ctx context.Context, entry *model.FeedEntry) (string, error)
}

// Progress stages reported with video_progress
const (
	StageStarting    = "starting"
	StagePromptReady = "prompt-ready"
	StageGenerating  = "generating"
)

// SubmissionMedia is the outcome of one fan-out task
type SubmissionMedia struct {
	Index       int    `json:"index"`
	ImageURL    string `json:"imageUrl"`
	ScenePrompt string `json:"scenePrompt,omitempty"`
	Cached      bool   `json:"cached,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// BatchResult summarises a fan-out
type BatchResult struct {
	Succeeded int               `json:"succeeded"`
	Total     int               `json:"total"`
	Results   []SubmissionMedia `json:"images"`
}

// PipelineService generates round media. It works on round snapshots and
// writes results back through GameService under the round token, so a
// slow generation never blocks or corrupts a game that has moved on.
type PipelineService struct {
	games       *GameService
	scenes      SceneWriter
	media       MediaGateway
	cache       cache.GenerationCache
	feed        FeedPublisher
	cfg         config.MediaConfig
	broadcaster Broadcaster
}

// NewPipelineService creates a new pipeline service
func NewPipelineService(games *GameService, scenes SceneWriter, media MediaGateway, genCache cache.GenerationCache, feed FeedPublisher, cfg config.MediaConfig) *PipelineService {
	if cfg.MaxParallel < 1 {
		cfg.MaxParallel = 1
	}
	return &PipelineService{
		games:       games,
		scenes:      scenes,
		media:       media,
		cache:       genCache,
		feed:        feed,
		cfg:         cfg,
		broadcaster: NopBroadcaster{},
	}
}

// SetBroadcaster sets the WebSocket broadcaster (called after hub is created)
func (s *PipelineService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// RunFanOut renders one image per submission of the round identified by
// token. Individual failures become placeholders and never cancel
// sibling tasks.
func (s *PipelineService) RunFanOut(ctx context.Context, gameID, token string) BatchResult {
	snap, err := s.games.SnapshotRound(gameID, token)
	if err != nil {
		log.Printf("fan-out skipped game_id=%s error=%v", gameID, err)
		return BatchResult{}
	}

	results := make([]SubmissionMedia, len(snap.Submissions))
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.MaxParallel)
	for i := range snap.Submissions {
		i := i
		g.Go(func() error {
			results[i] = s.renderSubmission(ctx, snap, i)
			return nil
		})
	}
	_ = g.Wait()

	batch := BatchResult{Total: len(results), Results: results}
	for _, r := range results {
		if !r.Placeholder {
			batch.Succeeded++
		}
	}

	log.Printf("fan-out done game_id=%s round=%d succeeded=%d total=%d", gameID, snap.Number, batch.Succeeded, batch.Total)
	s.broadcaster.Publish(gameID, EventSubmissionMediaReady, map[string]interface{}{
		"round":     snap.Number,
		"succeeded": batch.Succeeded,
		"total":     batch.Total,
		"images":    batch.Results,
	})
	return batch
}

func (s *PipelineService) renderSubmission(ctx context.Context, snap *model.RoundSnapshot, index int) SubmissionMedia {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("recovered from panic in image task game_id=%s index=%d: %v", snap.GameID, index, r)
		}
	}()

	sub := snap.Submissions[index]
	out := SubmissionMedia{Index: index}
	s.progress(snap, index, StageStarting)

	fp := cache.Fingerprint(snap.PromptText, sub.AnswerTexts)
	if url, ok := s.cacheGet(ctx, cache.MediaImage, fp); ok {
		out.ImageURL = url
		out.Cached = true
		s.attachImage(snap, index, "", url)
		return out
	}

	filled := FillBlanks(snap.PromptText, sub.AnswerTexts)
	scene, err := s.scenes.ScenePrompt(ctx, filled)
	if err != nil || scene == "" {
		scene = FallbackScene(filled)
	}
	out.ScenePrompt = scene
	s.progress(snap, index, StagePromptReady)

	s.progress(snap, index, StageGenerating)
	imgCtx, cancel := context.WithTimeout(ctx, s.cfg.ImageTimeout)
	url, err := s.media.GenerateImage(imgCtx, scene, "1:1")
	cancel()
	if err != nil {
		log.Printf("image generation failed game_id=%s round=%d index=%d error=%v", snap.GameID, snap.Number, index, err)
		out.ImageURL = s.cfg.ImagePlaceholderURL
		out.Placeholder = true
	} else {
		out.ImageURL = url
		s.cacheSet(ctx, cache.MediaImage, fp, url, false)
	}

	s.attachImage(snap, index, scene, out.ImageURL)
	return out
}

func (s *PipelineService) attachImage(snap *model.RoundSnapshot, index int, scene, url string) {
	if err := s.games.AttachSubmissionImage(snap.GameID, snap.Token, index, scene, url); err != nil {
		log.Printf("dropping image game_id=%s round=%d index=%d error=%v", snap.GameID, snap.Number, index, err)
	}
}

func (s *PipelineService) progress(snap *model.RoundSnapshot, index int, stage string) {
	s.broadcaster.Publish(snap.GameID, EventVideoProgress, map[string]interface{}{
		"round": snap.Number,
		"index": index,
		"stage": stage,
	})
}

// RunWinnerPhase narrates the winning card, renders its video and
// publishes it to the feed. On video failure a placeholder is attached
// and nothing is published.
func (s *PipelineService) RunWinnerPhase(ctx context.Context, gameID, token string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("recovered from panic in winner phase game_id=%s: %v", gameID, r)
		}
	}()

	snap, err := s.games.SnapshotRound(gameID, token)
	if err != nil {
		log.Printf("winner phase skipped game_id=%s error=%v", gameID, err)
		return
	}
	if snap.WinnerIndex < 0 || snap.WinnerIndex >= len(snap.Submissions) {
		return
	}
	winner := snap.Submissions[snap.WinnerIndex]
	filled := FillBlanks(snap.PromptText, winner.AnswerTexts)

	fp := cache.Fingerprint(snap.PromptText, winner.AnswerTexts)
	artifact := model.WinnerArtifact{NarrationScript: filled}
	if url, ok := s.cacheGet(ctx, cache.MediaAudio, fp); ok {
		artifact.AudioURL = url
	} else {
		narrCtx, cancel := context.WithTimeout(ctx, s.cfg.NarrationTimeout)
		narration, err := s.media.GenerateNarration(narrCtx, snap.PromptText, winner.AnswerTexts, narrationStyle(snap.Personality))
		cancel()
		if err != nil {
			log.Printf("narration failed game_id=%s round=%d error=%v", gameID, snap.Number, err)
		} else {
			artifact.NarrationScript = narration.Script
			artifact.AudioURL = narration.AudioURL
			if narration.AudioURL != "" {
				s.cacheSet(ctx, cache.MediaAudio, fp, narration.AudioURL, true)
			}
		}
	}
	s.broadcaster.Publish(gameID, EventNarrationReady, map[string]interface{}{
		"round":    snap.Number,
		"script":   artifact.NarrationScript,
		"audioUrl": artifact.AudioURL,
	})

	if url, ok := s.cacheGet(ctx, cache.MediaVideo, fp); ok {
		artifact.VideoURL = url
	} else if url, err := s.renderVideo(ctx, winner, filled); err != nil {
		log.Printf("video generation failed game_id=%s round=%d error=%v", gameID, snap.Number, err)
		artifact.VideoURL = s.cfg.VideoPlaceholderURL
		artifact.Placeholder = true
	} else {
		artifact.VideoURL = url
		s.cacheSet(ctx, cache.MediaVideo, fp, url, true)
		artifact.FeedID = s.publish(ctx, snap, winner, artifact)
	}

	if err := s.games.AttachWinnerMedia(gameID, token, artifact); err != nil {
		if errors.Is(err, ErrStaleRound) {
			log.Printf("dropping winner media game_id=%s round=%d: round gone", gameID, snap.Number)
			return
		}
		log.Printf("failed to attach winner media game_id=%s error=%v", gameID, err)
		return
	}

	s.broadcaster.Publish(gameID, EventVideoReady, map[string]interface{}{
		"round":       snap.Number,
		"videoUrl":    artifact.VideoURL,
		"audioUrl":    artifact.AudioURL,
		"narration":   artifact.NarrationScript,
		"placeholder": artifact.Placeholder,
		"feedId":      artifact.FeedID,
	})
	pushState(s.games, s.broadcaster, gameID)
}

// renderVideo reuses the scene written during the fan-out when there is one
func (s *PipelineService) renderVideo(ctx context.Context, winner model.SubmissionSnapshot, filled string) (string, error) {
	scene := winner.ScenePrompt
	if scene == "" {
		var err error
		scene, err = s.scenes.ScenePrompt(ctx, filled)
		if err != nil || scene == "" {
			scene = FallbackScene(filled)
		}
	}
	videoCtx, cancel := context.WithTimeout(ctx, s.cfg.VideoTimeout)
	defer cancel()
	return s.media.GenerateVideo(videoCtx, scene)
}

func (s *PipelineService) publish(ctx context.Context, snap *model.RoundSnapshot, winner model.SubmissionSnapshot, artifact model.WinnerArtifact) string {
	if s.feed == nil {
		return ""
	}
	entry := &model.FeedEntry{
		GameID:          snap.GameID,
		RoundNumber:     snap.Number,
		PromptText:      snap.PromptText,
		AnswerTexts:     winner.AnswerTexts,
		VideoURL:        artifact.VideoURL,
		ImageURL:        winner.ImageURL,
		AudioURL:        artifact.AudioURL,
		NarrationScript: artifact.NarrationScript,
		WinnerID:        snap.WinnerID,
		WinnerName:      snap.WinnerName,
	}
	id, err := s.feed.Publish(ctx, entry)
	if err != nil {
		log.Printf("failed to publish feed entry game_id=%s round=%d error=%v", snap.GameID, snap.Number, err)
		return ""
	}
	return id
}

func (s *PipelineService) cacheGet(ctx context.Context, kind cache.MediaKind, fp string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	url, ok, err := s.cache.Get(ctx, kind, fp)
	if err != nil {
		log.Printf("generation cache read failed kind=%s error=%v", kind, err)
		return "", false
	}
	return url, ok
}

func (s *PipelineService) cacheSet(ctx context.Context, kind cache.MediaKind, fp, url string, permanent bool) {
	if s.cache == nil {
		return
	}
	setCtx, cancel := context.WithTimeout(ctx, cacheWriteTimeout)
	defer cancel()
	if err := s.cache.Set(setCtx, kind, fp, url, permanent); err != nil {
		log.Printf("generation cache write failed kind=%s error=%v", kind, err)
	}
}

func narrationStyle(p model.Personality) string {
	if p == "" {
		return "playful"
	}
	return string(p)
}

// pushState sends each seated player their own projection of the game
func pushState(games *GameService, b Broadcaster, gameID string) {
	members, err := games.Members(gameID)
	if err != nil {
		return
	}
	for _, m := range members {
		if m.Kind == model.PlayerAutomated {
			continue
		}
		view, err := games.View(gameID, m.ID)
		if err != nil {
			return
		}
		b.PublishTo(gameID, m.ID, EventGameState, view)
	}
}
