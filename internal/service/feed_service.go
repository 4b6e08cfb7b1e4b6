package service

import (
	"absurdlyvisual/internal/model"
	"absurdlyvisual/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 50
	maxCommentLength = 500
)

// Trending modes
const (
	TrendingEngagement = "engagement"
	TrendingRandom     = "random"
)

// FeedService publishes winner videos and handles likes and comments
type FeedService struct {
	repo         repository.FeedRepo
	trendingMode string
}

// NewFeedService creates a new feed service
func NewFeedService(repo repository.FeedRepo, trendingMode string) *FeedService {
	if trendingMode != TrendingRandom {
		trendingMode = TrendingEngagement
	}
	return &FeedService{repo: repo, trendingMode: trendingMode}
}

// Publish stores a new feed entry and returns its id
func (s *FeedService) Publish(ctx context.Context, entry *model.FeedEntry) (string, error) {
	if entry.VideoURL == "" {
		return "", errors.New("feed entry needs a video")
	}
	id, err := s.repo.Insert(ctx, entry)
	if err != nil {
		return "", fmt.Errorf("failed to publish feed entry: %w", err)
	}
	return id, nil
}

// List returns entries newest first
func (s *FeedService) List(ctx context.Context, limit, offset int) ([]*model.FeedEntry, error) {
	if offset < 0 {
		offset = 0
	}
	entries, err := s.repo.List(ctx, clampLimit(limit), offset)
	return nonNil(entries), err
}

// Trending orders by likes then recency, or samples at random
func (s *FeedService) Trending(ctx context.Context, limit int) ([]*model.FeedEntry, error) {
	var entries []*model.FeedEntry
	var err error
	if s.trendingMode == TrendingRandom {
		entries, err = s.repo.Sample(ctx, clampLimit(limit))
	} else {
		entries, err = s.repo.TopLiked(ctx, clampLimit(limit))
	}
	return nonNil(entries), err
}

// Get returns a single entry
func (s *FeedService) Get(ctx context.Context, id string) (*model.FeedEntry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, repository.ErrEntryNotFound
	}
	return entry, nil
}

// ToggleLike flips userID's like on the entry
func (s *FeedService) ToggleLike(ctx context.Context, id, userID string) (*model.LikeResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, reject("userId is required")
	}
	return s.repo.ToggleLike(ctx, id, userID)
}

// AddComment attaches a comment to an entry
func (s *FeedService) AddComment(ctx context.Context, id, userID, userName, text string) (*model.FeedComment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, reject("comment is empty")
	}
	if utf8.RuneCountInString(text) > maxCommentLength {
		text = string([]rune(text)[:maxCommentLength])
	}
	userName = strings.TrimSpace(userName)
	if userName == "" {
		userName = "Anonymous"
	}

	comment := &model.FeedComment{
		EntryID:  id,
		UserID:   userID,
		UserName: userName,
		Text:     text,
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Comments returns an entry's comments, oldest first
func (s *FeedService) Comments(ctx context.Context, id string, limit int) ([]*model.FeedComment, error) {
	comments, err := s.repo.Comments(ctx, id, clampLimit(limit))
	if comments == nil {
		comments = []*model.FeedComment{}
	}
	return comments, err
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultFeedLimit
	}
	if limit > maxFeedLimit {
		return maxFeedLimit
	}
	return limit
}

func nonNil(entries []*model.FeedEntry) []*model.FeedEntry {
	if entries == nil {
		return []*model.FeedEntry{}
	}
	return entries
}
