package service

import (
	"absurdlyvisual/internal/config"
	"absurdlyvisual/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// OracleService makes decisions for automated players via Gemini. It
// returns ErrOracleUnavailable when no API key is configured; callers fall
// back to random play.
type OracleService struct {
	*geminiClient
}

// NewOracleService creates a new oracle service
func NewOracleService(cfg *config.AIConfig) *OracleService {
	return &OracleService{geminiClient: newGeminiClient(cfg)}
}

// SelectCards asks the model which answer cards to play. The result is
// not validated here.
func (s *OracleService) SelectCards(ctx context.Context, promptText string, hand []model.CardView, pick int, personality model.Personality) ([]string, error) {
	if !s.config.IsEnabled() {
		return nil, ErrOracleUnavailable
	}

	prompt := s.buildSelectPrompt(promptText, hand, pick, personality)
	response, err := s.callGemini(ctx, s.config.Models.Oracle, prompt, true)
	if err != nil {
		return nil, fmt.Errorf("failed to select cards: %w", err)
	}

	var result struct {
		Selected []int `json:"selected"`
	}
	if err := json.Unmarshal([]byte(response), &result); err != nil {
		return nil, fmt.Errorf("failed to parse selection: %w", err)
	}

	ids := make([]string, 0, len(result.Selected))
	for _, i := range result.Selected {
		if i < 0 || i >= len(hand) {
			return nil, fmt.Errorf("selection index %d out of range", i)
		}
		ids = append(ids, hand[i].ID)
	}
	return ids, nil
}

// Judge asks the model which submission is funniest
func (s *OracleService) Judge(ctx context.Context, promptText string, submissions [][]string, personality model.Personality) (int, error) {
	if !s.config.IsEnabled() {
		return -1, ErrOracleUnavailable
	}

	prompt := s.buildJudgePrompt(promptText, submissions, personality)
	response, err := s.callGemini(ctx, s.config.Models.Oracle, prompt, true)
	if err != nil {
		return -1, fmt.Errorf("failed to judge: %w", err)
	}

	var result struct {
		Winner int `json:"winner"`
	}
	if err := json.Unmarshal([]byte(response), &result); err != nil {
		return -1, fmt.Errorf("failed to parse verdict: %w", err)
	}
	return result.Winner, nil
}

// ScenePrompt turns the filled-in card into a short visual description
// suitable for image and video models.
func (s *OracleService) ScenePrompt(ctx context.Context, filled string) (string, error) {
	if !s.config.IsEnabled() {
		return FallbackScene(filled), nil
	}

	response, err := s.callGemini(ctx, s.config.Models.Prompt, s.buildScenePrompt(filled), false)
	if err != nil {
		return FallbackScene(filled), nil
	}
	scene := strings.TrimSpace(response)
	if scene == "" {
		return FallbackScene(filled), nil
	}
	return scene, nil
}

// FallbackScene is used when no model is available to write the scene
func FallbackScene(filled string) string {
	return "A humorous scene: " + truncate(filled, 100)
}

// Prompt builders
func (s *OracleService) buildSelectPrompt(promptText string, hand []model.CardView, pick int, personality model.Personality) string {
	var sb strings.Builder
	for i, c := range hand {
		sb.WriteString(fmt.Sprintf("%d: %s\n", i, c.Text))
	}
	return fmt.Sprintf(`You are playing a party card game where the funniest answer wins.
Personality: %s

Prompt card: "%s"
This prompt needs exactly %d answer card(s). Your hand:
%s
Return ONLY valid JSON: {"selected": [index, ...]} with exactly %d distinct indices from your hand, in the order they fill the blanks.`,
		personality.Instruction(), promptText, pick, sb.String(), pick)
}

func (s *OracleService) buildJudgePrompt(promptText string, submissions [][]string, personality model.Personality) string {
	var sb strings.Builder
	for i, answers := range submissions {
		sb.WriteString(fmt.Sprintf("%d: %s\n", i, FillBlanks(promptText, answers)))
	}
	return fmt.Sprintf(`You are the judge in a party card game. Pick the funniest completed card.
Personality: %s

Prompt card: "%s"
Submissions:
%s
Return ONLY valid JSON: {"winner": index}`,
		personality.Instruction(), promptText, sb.String())
}

func (s *OracleService) buildScenePrompt(filled string) string {
	return fmt.Sprintf(`Write a vivid, funny visual scene description (at most 50 words) that an image or video model can render for this party card:
"%s"
Keep it safe for work: replace anything explicit, violent or hateful with an absurd, harmless visual gag. Return only the description.`, filled)
}
