package repository

import (
	"absurdlyvisual/internal/model"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrEntryNotFound = errors.New("feed entry not found")

// FeedRepo persists published winner videos and their engagement
type FeedRepo interface {
	Insert(ctx context.Context, entry *model.FeedEntry) (string, error)
	GetByID(ctx context.Context, id string) (*model.FeedEntry, error)
	List(ctx context.Context, limit, offset int) ([]*model.FeedEntry, error)
	TopLiked(ctx context.Context, limit int) ([]*model.FeedEntry, error)
	Sample(ctx context.Context, limit int) ([]*model.FeedEntry, error)
	ToggleLike(ctx context.Context, id, userID string) (*model.LikeResult, error)
	AddComment(ctx context.Context, comment *model.FeedComment) error
	Comments(ctx context.Context, entryID string, limit int) ([]*model.FeedComment, error)
}

type feedRepo struct {
	entries  *mongo.Collection
	comments *mongo.Collection
}

func NewFeedRepo(db *mongo.Database) FeedRepo {
	return &feedRepo{
		entries:  db.Collection("feed"),
		comments: db.Collection("feed_comments"),
	}
}

func (r *feedRepo) Insert(ctx context.Context, entry *model.FeedEntry) (string, error) {
	// Generate ObjectID if not provided
	if entry.ID == "" {
		entry.ID = primitive.NewObjectID().Hex()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.LikedBy == nil {
		entry.LikedBy = []string{}
	}

	if _, err := r.entries.InsertOne(ctx, entry); err != nil {
		return "", err
	}
	return entry.ID, nil
}

func (r *feedRepo) GetByID(ctx context.Context, id string) (*model.FeedEntry, error) {
	var entry model.FeedEntry
	err := r.entries.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Entry not found
		}
		return nil, err
	}
	return &entry, nil
}

func (r *feedRepo) List(ctx context.Context, limit, offset int) ([]*model.FeedEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{}, opts)
}

func (r *feedRepo) TopLiked(ctx context.Context, limit int) ([]*model.FeedEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "likesCount", Value: -1}, {Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{}, opts)
}

func (r *feedRepo) Sample(ctx context.Context, limit int) ([]*model.FeedEntry, error) {
	cursor, err := r.entries.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$sample", Value: bson.M{"size": limit}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*model.FeedEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *feedRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.FeedEntry, error) {
	cursor, err := r.entries.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*model.FeedEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ToggleLike likes the entry for userID, or unlikes it if already liked.
// Each branch is a single conditional update.
func (r *feedRepo) ToggleLike(ctx context.Context, id, userID string) (*model.LikeResult, error) {
	res, err := r.entries.UpdateOne(ctx,
		bson.M{"_id": id, "likedBy": bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{"likedBy": userID}, "$inc": bson.M{"likesCount": 1}},
	)
	if err != nil {
		return nil, err
	}
	liked := res.ModifiedCount == 1

	if !liked {
		res, err = r.entries.UpdateOne(ctx,
			bson.M{"_id": id, "likedBy": userID},
			bson.M{"$pull": bson.M{"likedBy": userID}, "$inc": bson.M{"likesCount": -1}},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, ErrEntryNotFound
		}
	}

	entry, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrEntryNotFound
	}
	return &model.LikeResult{Liked: liked, LikesCount: entry.LikesCount}, nil
}

func (r *feedRepo) AddComment(ctx context.Context, comment *model.FeedComment) error {
	res, err := r.entries.UpdateOne(ctx, bson.M{"_id": comment.EntryID}, bson.M{"$inc": bson.M{"commentsCount": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrEntryNotFound
	}

	if comment.ID == "" {
		comment.ID = primitive.NewObjectID().Hex()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	_, err = r.comments.InsertOne(ctx, comment)
	return err
}

func (r *feedRepo) Comments(ctx context.Context, entryID string, limit int) ([]*model.FeedComment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit))
	cursor, err := r.comments.Find(ctx, bson.M{"entryId": entryID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []*model.FeedComment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
