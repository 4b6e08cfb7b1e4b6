package config

import "os"

// GeminiModels defines which Gemini models to use for different tasks
type GeminiModels struct {
	// Oracle picks cards and judges for automated players (needs to be fast)
	Oracle string `json:"oracle"`

	// Prompt turns a filled-in card into a short visual scene description
	Prompt string `json:"prompt"`

	// Image renders one still per submission during judging
	Image string `json:"image"`

	// Video renders the winning combination (long-running operation)
	Video string `json:"video"`

	// TTS reads the winning card aloud
	TTS string `json:"tts"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey    string       `json:"-"` // Never serialize
	BaseURL   string       `json:"baseUrl"`
	Models    GeminiModels `json:"models"`
	Voice     string       `json:"voice"`
	TimeoutMS int          `json:"timeoutMs"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		BaseURL: getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		Models: GeminiModels{
			Oracle: getEnvOrDefault("GEMINI_MODEL_ORACLE", "gemini-2.5-flash"),
			Prompt: getEnvOrDefault("GEMINI_MODEL_PROMPT", "gemini-2.5-flash"),

			// Media models
			Image: getEnvOrDefault("GEMINI_MODEL_IMAGE", "gemini-2.5-flash-image"),
			Video: getEnvOrDefault("GEMINI_MODEL_VIDEO", "veo-3.0-fast-generate-001"),
			TTS:   getEnvOrDefault("GEMINI_MODEL_TTS", "gemini-2.5-flash-preview-tts"),
		},
		Voice:     getEnvOrDefault("GEMINI_TTS_VOICE", "Puck"),
		TimeoutMS: 10000, // 10 second default timeout
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the generateContent endpoint for a given model
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/models/" + model + ":generateContent"
}

// LongRunningEndpoint returns the predictLongRunning endpoint for a video model
func (c *AIConfig) LongRunningEndpoint(model string) string {
	return c.BaseURL + "/models/" + model + ":predictLongRunning"
}

// OperationEndpoint returns the polling endpoint for a long-running operation name
func (c *AIConfig) OperationEndpoint(name string) string {
	return c.BaseURL + "/" + name
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
