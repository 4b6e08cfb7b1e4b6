package main

import (
	"absurdlyvisual/internal/config"
	"absurdlyvisual/internal/model"
	"absurdlyvisual/internal/repository"
	"absurdlyvisual/internal/service"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// cardFile is the on-disk deck format
type cardFile struct {
	PromptCards []model.Card `json:"black_cards"`
	AnswerCards []model.Card `json:"white_cards"`
}

func main() {
	defaultPath := os.Getenv("CARDS_FILE")
	if defaultPath == "" {
		defaultPath = "data/cards.json"
	}
	path := flag.String("file", defaultPath, "path to the cards JSON file")
	flag.Parse()

	cfg := config.Load()

	deck, err := readDeck(*path)
	if err != nil {
		log.Fatalf("Failed to read deck: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	repo := repository.NewCardRepo(client.Database(cfg.MongoDatabase))

	for _, set := range []struct {
		kind  model.CardKind
		cards []model.Card
	}{
		{model.CardPrompt, deck.PromptCards},
		{model.CardAnswer, deck.AnswerCards},
	} {
		n, err := repo.ReplaceAll(ctx, set.kind, set.cards)
		if err != nil {
			log.Fatalf("Failed to import %s cards: %v", set.kind, err)
		}
		fmt.Printf("Imported %d %s cards\n", n, set.kind)

		if len(set.cards) == 0 {
			continue
		}
		// Spot-check one card round-trips
		first := set.cards[0]
		got, err := repo.GetByID(ctx, set.kind, first.ID)
		if err != nil || got == nil {
			log.Fatalf("Verification failed for %s card %s: %v", set.kind, first.ID, err)
		}
	}

	fmt.Println("Seeding complete!")
}

func readDeck(path string) (*cardFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var deck cardFile
	if err := json.Unmarshal(raw, &deck); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := validateDeck(&deck); err != nil {
		return nil, err
	}
	return &deck, nil
}

// validateDeck fills defaults and rejects cards the game cannot use
func validateDeck(deck *cardFile) error {
	seen := make(map[string]bool)
	for i := range deck.PromptCards {
		c := &deck.PromptCards[i]
		if c.Pick < 1 {
			c.Pick = max(1, service.CountBlanks(c.Text))
		}
		if c.Pick > 3 {
			return fmt.Errorf("prompt card %s asks for %d answers", c.ID, c.Pick)
		}
		if err := checkCard(c, seen); err != nil {
			return err
		}
	}
	seen = make(map[string]bool)
	for i := range deck.AnswerCards {
		if err := checkCard(&deck.AnswerCards[i], seen); err != nil {
			return err
		}
	}
	return nil
}

func checkCard(c *model.Card, seen map[string]bool) error {
	if c.ID == "" || strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("card %q is missing an id or text", c.ID)
	}
	if seen[c.ID] {
		return fmt.Errorf("duplicate card id %s", c.ID)
	}
	seen[c.ID] = true
	return nil
}
