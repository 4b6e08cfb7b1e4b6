package service

import (
	"absurdlyvisual/internal/model"
	"absurdlyvisual/internal/repository"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

// memoryFeedRepo is an in-process FeedRepo
type memoryFeedRepo struct {
	mu       sync.Mutex
	entries  []*model.FeedEntry
	comments []*model.FeedComment
	sampled  bool
}

func (r *memoryFeedRepo) Insert(ctx context.Context, entry *model.FeedEntry) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = fmt.Sprintf("e%d", len(r.entries)+1)
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.entries = append(r.entries, entry)
	return entry.ID, nil
}

func (r *memoryFeedRepo) find(id string) *model.FeedEntry {
	for _, e := range r.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (r *memoryFeedRepo) GetByID(ctx context.Context, id string) (*model.FeedEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(id), nil
}

func (r *memoryFeedRepo) sorted(less func(a, b *model.FeedEntry) bool, limit, offset int) []*model.FeedEntry {
	all := append([]*model.FeedEntry(nil), r.entries...)
	sort.SliceStable(all, func(i, j int) bool { return less(all[i], all[j]) })
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}

func (r *memoryFeedRepo) List(ctx context.Context, limit, offset int) ([]*model.FeedEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(a, b *model.FeedEntry) bool { return a.CreatedAt.After(b.CreatedAt) }, limit, offset), nil
}

func (r *memoryFeedRepo) TopLiked(ctx context.Context, limit int) ([]*model.FeedEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(a, b *model.FeedEntry) bool {
		if a.LikesCount != b.LikesCount {
			return a.LikesCount > b.LikesCount
		}
		return a.CreatedAt.After(b.CreatedAt)
	}, limit, 0), nil
}

func (r *memoryFeedRepo) Sample(ctx context.Context, limit int) ([]*model.FeedEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sampled = true
	out := append([]*model.FeedEntry(nil), r.entries...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryFeedRepo) ToggleLike(ctx context.Context, id, userID string) (*model.LikeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.find(id)
	if e == nil {
		return nil, repository.ErrEntryNotFound
	}
	for i, u := range e.LikedBy {
		if u == userID {
			e.LikedBy = append(e.LikedBy[:i], e.LikedBy[i+1:]...)
			e.LikesCount--
			return &model.LikeResult{Liked: false, LikesCount: e.LikesCount}, nil
		}
	}
	e.LikedBy = append(e.LikedBy, userID)
	e.LikesCount++
	return &model.LikeResult{Liked: true, LikesCount: e.LikesCount}, nil
}

func (r *memoryFeedRepo) AddComment(ctx context.Context, comment *model.FeedComment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.find(comment.EntryID)
	if e == nil {
		return repository.ErrEntryNotFound
	}
	comment.ID = fmt.Sprintf("c%d", len(r.comments)+1)
	e.CommentsCount++
	r.comments = append(r.comments, comment)
	return nil
}

func (r *memoryFeedRepo) Comments(ctx context.Context, entryID string, limit int) ([]*model.FeedComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.FeedComment
	for _, c := range r.comments {
		if c.EntryID == entryID && len(out) < limit {
			out = append(out, c)
		}
	}
	return out, nil
}

func seedFeed(t *testing.T, svc *FeedService, n int) []string {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		id, err := svc.Publish(context.Background(), &model.FeedEntry{
			VideoURL:  fmt.Sprintf("https://media/%d.mp4", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
		ids[i] = id
	}
	return ids
}

func TestFeedPublishRequiresVideo(t *testing.T) {
	svc := NewFeedService(&memoryFeedRepo{}, "")
	if _, err := svc.Publish(context.Background(), &model.FeedEntry{}); err == nil {
		t.Fatalf("expected an error for an entry without video")
	}
}

func TestFeedTrendingEngagement(t *testing.T) {
	ctx := context.Background()
	svc := NewFeedService(&memoryFeedRepo{}, TrendingEngagement)
	ids := seedFeed(t, svc, 3)

	for _, user := range []string{"u1", "u2"} {
		if _, err := svc.ToggleLike(ctx, ids[0], user); err != nil {
			t.Fatalf("ToggleLike failed: %v", err)
		}
	}
	if _, err := svc.ToggleLike(ctx, ids[1], "u1"); err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}

	got, err := svc.Trending(ctx, 10)
	if err != nil {
		t.Fatalf("Trending failed: %v", err)
	}
	want := []string{ids[0], ids[1], ids[2]}
	for i, e := range got {
		if e.ID != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], e.ID)
		}
	}

	latest, err := svc.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(latest) != 3 || latest[0].ID != ids[2] {
		t.Fatalf("expected newest first, got %v", latest)
	}
}

func TestFeedTrendingRandomMode(t *testing.T) {
	repo := &memoryFeedRepo{}
	svc := NewFeedService(repo, TrendingRandom)
	seedFeed(t, svc, 2)
	if _, err := svc.Trending(context.Background(), 5); err != nil {
		t.Fatalf("Trending failed: %v", err)
	}
	if !repo.sampled {
		t.Fatalf("expected random mode to sample")
	}
}

func TestFeedToggleLike(t *testing.T) {
	ctx := context.Background()
	svc := NewFeedService(&memoryFeedRepo{}, "")
	ids := seedFeed(t, svc, 1)

	res, err := svc.ToggleLike(ctx, ids[0], "u1")
	if err != nil || !res.Liked || res.LikesCount != 1 {
		t.Fatalf("expected liked with 1, got %+v err=%v", res, err)
	}
	res, err = svc.ToggleLike(ctx, ids[0], "u1")
	if err != nil || res.Liked || res.LikesCount != 0 {
		t.Fatalf("expected unliked with 0, got %+v err=%v", res, err)
	}
	if _, err := svc.ToggleLike(ctx, ids[0], " "); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejection without user, got %v", err)
	}
	if _, err := svc.ToggleLike(ctx, "missing", "u1"); !errors.Is(err, repository.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestFeedComments(t *testing.T) {
	ctx := context.Background()
	svc := NewFeedService(&memoryFeedRepo{}, "")
	ids := seedFeed(t, svc, 1)

	if _, err := svc.AddComment(ctx, ids[0], "u1", "", "   "); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected empty comment rejected, got %v", err)
	}
	c, err := svc.AddComment(ctx, ids[0], "u1", "", strings.Repeat("x", 600))
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if c.UserName != "Anonymous" || len(c.Text) != 500 {
		t.Fatalf("expected anonymous 500-char comment, got %q len=%d", c.UserName, len(c.Text))
	}

	comments, err := svc.Comments(ctx, ids[0], 0)
	if err != nil || len(comments) != 1 {
		t.Fatalf("expected 1 comment, got %d err=%v", len(comments), err)
	}
	entry, err := svc.Get(ctx, ids[0])
	if err != nil || entry.CommentsCount != 1 {
		t.Fatalf("expected comment count 1, got %+v err=%v", entry, err)
	}
	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, repository.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct{ in, want int }{{0, 20}, {-3, 20}, {10, 10}, {500, 50}}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
