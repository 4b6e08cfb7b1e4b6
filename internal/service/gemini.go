package service

import (
	"absurdlyvisual/internal/config"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// geminiClient wraps the Gemini REST API
type geminiClient struct {
	config *config.AIConfig
	client *http.Client
}

func newGeminiClient(cfg *config.AIConfig) *geminiClient {
	return &geminiClient{
		config: cfg,
		// Media calls are bounded by their contexts, not the client
		client: &http.Client{},
	}
}

type geminiPart struct {
	Text       string `json:"text,omitempty"`
	InlineData *struct {
		MimeType string `json:"mimeType"`
		Data     string `json:"data"`
	} `json:"inlineData,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// callGemini makes a text request to the Gemini API and returns the first text part
func (c *geminiClient) callGemini(ctx context.Context, modelName, prompt string, jsonMode bool) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
	}
	if jsonMode {
		reqBody["generationConfig"] = map[string]interface{}{
			"responseMimeType": "application/json",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.config.TimeoutMS)*time.Millisecond)
	defer cancel()

	var resp geminiResponse
	if err := c.post(ctx, c.config.ModelEndpoint(modelName), reqBody, &resp); err != nil {
		return "", err
	}
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				return part.Text, nil
			}
		}
	}
	return "", fmt.Errorf("empty response from Gemini")
}

// post sends a JSON body with the API key and decodes the JSON reply into out
func (c *geminiClient) post(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s?key=%s", endpoint, c.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// get fetches a JSON resource with the API key
func (c *geminiClient) get(ctx context.Context, endpoint string, out interface{}) error {
	url := fmt.Sprintf("%s?key=%s", endpoint, c.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *geminiClient) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return json.Unmarshal(body, out)
}

// download fetches a generated file; Gemini file URIs need the key appended
func (c *geminiClient) download(ctx context.Context, uri string) ([]byte, string, error) {
	sep := "?"
	if bytes.ContainsRune([]byte(uri), '?') {
		sep = "&"
	}
	req, err := http.NewRequestWithContext(ctx, "GET", uri+sep+"key="+c.config.APIKey, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("download returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
