package repository

import (
	"absurdlyvisual/internal/model"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CardRepo interface {
	// Catalog loading
	LoadAll(ctx context.Context, kind model.CardKind) ([]model.Card, error)
	GetByID(ctx context.Context, kind model.CardKind, id string) (*model.Card, error)

	// Seeding
	ReplaceAll(ctx context.Context, kind model.CardKind, cards []model.Card) (int, error)
}

type cardRepo struct {
	prompts *mongo.Collection
	answers *mongo.Collection
}

func NewCardRepo(db *mongo.Database) CardRepo {
	return &cardRepo{
		prompts: db.Collection("prompt_cards"),
		answers: db.Collection("answer_cards"),
	}
}

func (r *cardRepo) collection(kind model.CardKind) (*mongo.Collection, error) {
	switch kind {
	case model.CardPrompt:
		return r.prompts, nil
	case model.CardAnswer:
		return r.answers, nil
	}
	return nil, fmt.Errorf("unknown card kind %q", kind)
}

func (r *cardRepo) LoadAll(ctx context.Context, kind model.CardKind) ([]model.Card, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return nil, err
	}

	// Stable order so shuffles are the only source of randomness
	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var cards []model.Card
	if err = cursor.All(ctx, &cards); err != nil {
		return nil, err
	}
	for i := range cards {
		cards[i].Kind = kind
	}
	return cards, nil
}

func (r *cardRepo) GetByID(ctx context.Context, kind model.CardKind, id string) (*model.Card, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return nil, err
	}

	var card model.Card
	err = coll.FindOne(ctx, bson.M{"id": id}).Decode(&card)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Card not found
		}
		return nil, err
	}
	card.Kind = kind
	return &card, nil
}

func (r *cardRepo) ReplaceAll(ctx context.Context, kind model.CardKind, cards []model.Card) (int, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return 0, err
	}

	if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
		return 0, fmt.Errorf("failed to clear %s cards: %w", kind, err)
	}
	if len(cards) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, len(cards))
	for i := range cards {
		cards[i].Kind = kind
		docs[i] = cards[i]
	}
	result, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("failed to insert %s cards: %w", kind, err)
	}

	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "pack", Value: 1}}},
		{Keys: bson.D{{Key: "nsfw", Value: 1}}},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create %s card indexes: %w", kind, err)
	}
	return len(result.InsertedIDs), nil
}
