package repository

import (
	"absurdlyvisual/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RoundRepo archives finished rounds
type RoundRepo interface {
	Archive(ctx context.Context, round *model.Round) error
	ListByGame(ctx context.Context, gameID string) ([]*model.Round, error)
}

type roundRepo struct {
	collection *mongo.Collection
}

func NewRoundRepo(db *mongo.Database) RoundRepo {
	return &roundRepo{
		collection: db.Collection("rounds"),
	}
}

// Archive upserts by game and round number, so a later write carrying the
// winner media replaces the first one.
func (r *roundRepo) Archive(ctx context.Context, round *model.Round) error {
	filter := bson.M{"gameId": round.GameID, "number": round.Number}
	_, err := r.collection.ReplaceOne(ctx, filter, round, options.Replace().SetUpsert(true))
	return err
}

func (r *roundRepo) ListByGame(ctx context.Context, gameID string) ([]*model.Round, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"gameId": gameID}, options.Find().SetSort(bson.D{{Key: "number", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rounds []*model.Round
	if err = cursor.All(ctx, &rounds); err != nil {
		return nil, err
	}
	return rounds, nil
}
