package service

import (
	"absurdlyvisual/internal/config"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"log"
	"strings"
	"time"
)

// BlobStore keeps generated media and hands back a public URL
type BlobStore interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// MediaGateway produces media for the content pipeline. Every call is
// bounded by ctx; on failure the pipeline substitutes a placeholder.
type MediaGateway interface {
	GenerateImage(ctx context.Context, prompt, aspectRatio string) (string, error)
	GenerateVideo(ctx context.Context, prompt string) (string, error)
	GenerateNarration(ctx context.Context, promptText string, answers []string, style string) (*Narration, error)
}

// Narration is the spoken read-out of the winning card
type Narration struct {
	Script   string `json:"script"`
	AudioURL string `json:"audioUrl,omitempty"`
}

// MediaService implements MediaGateway on Gemini image, Veo and TTS models
type MediaService struct {
	*geminiClient
	blobs        BlobStore
	pollInterval time.Duration
}

// NewMediaService creates a new media service
func NewMediaService(cfg *config.AIConfig, blobs BlobStore, pollInterval time.Duration) *MediaService {
	if pollInterval <= 0 {
		pollInterval = 15 * time.Second
	}
	return &MediaService{
		geminiClient: newGeminiClient(cfg),
		blobs:        blobs,
		pollInterval: pollInterval,
	}
}

// GenerateImage renders a still and uploads it
func (s *MediaService) GenerateImage(ctx context.Context, prompt, aspectRatio string) (string, error) {
	if !s.config.IsEnabled() {
		return "", fmt.Errorf("%w: AI not configured", ErrGenerationFailed)
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]interface{}{
			"responseModalities": []string{"IMAGE"},
			"imageConfig":        map[string]string{"aspectRatio": aspectRatio},
		},
	}

	var resp geminiResponse
	if err := s.post(ctx, s.config.ModelEndpoint(s.config.Models.Image), reqBody, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	data, mime, err := firstInline(&resp)
	if err != nil {
		return "", err
	}
	return s.upload(ctx, data, mime)
}

// GenerateVideo starts a long-running Veo operation, polls it until it is
// done or ctx expires, then stores the produced file.
func (s *MediaService) GenerateVideo(ctx context.Context, prompt string) (string, error) {
	if !s.config.IsEnabled() {
		return "", fmt.Errorf("%w: AI not configured", ErrGenerationFailed)
	}

	reqBody := map[string]interface{}{
		"instances": []map[string]string{{"prompt": prompt}},
		"parameters": map[string]interface{}{
			"aspectRatio": "16:9",
		},
	}
	var op veoOperation
	if err := s.post(ctx, s.config.LongRunningEndpoint(s.config.Models.Video), reqBody, &op); err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	log.Printf("video generation started operation=%s", op.Name)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for !op.Done {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrGenerationFailed, ctx.Err())
		case <-ticker.C:
		}
		name := op.Name
		if err := s.get(ctx, s.config.OperationEndpoint(name), &op); err != nil {
			log.Printf("video poll failed operation=%s error=%v", name, err)
			op = veoOperation{Name: name}
		}
	}
	if op.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrGenerationFailed, op.Error.Message)
	}

	samples := op.Response.GenerateVideoResponse.GeneratedSamples
	if len(samples) == 0 || samples[0].Video.URI == "" {
		return "", fmt.Errorf("%w: operation returned no video", ErrGenerationFailed)
	}
	data, mime, err := s.download(ctx, samples[0].Video.URI)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if mime == "" {
		mime = "video/mp4"
	}
	return s.upload(ctx, data, mime)
}

type veoOperation struct {
	Name     string `json:"name"`
	Done     bool   `json:"done"`
	Response struct {
		GenerateVideoResponse struct {
			GeneratedSamples []struct {
				Video struct {
					URI string `json:"uri"`
				} `json:"video"`
			} `json:"generatedSamples"`
		} `json:"generateVideoResponse"`
	} `json:"response"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateNarration reads the filled-in card aloud. The script is always
// returned; AudioURL is empty when speech synthesis fails.
func (s *MediaService) GenerateNarration(ctx context.Context, promptText string, answers []string, style string) (*Narration, error) {
	n := &Narration{Script: FillBlanks(promptText, answers)}
	if !s.config.IsEnabled() {
		return n, fmt.Errorf("%w: AI not configured", ErrGenerationFailed)
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": fmt.Sprintf("Say like %s: %s", style, n.Script)}}},
		},
		"generationConfig": map[string]interface{}{
			"responseModalities": []string{"AUDIO"},
			"speechConfig": map[string]interface{}{
				"voiceConfig": map[string]interface{}{
					"prebuiltVoiceConfig": map[string]string{"voiceName": s.config.Voice},
				},
			},
		},
	}

	var resp geminiResponse
	if err := s.post(ctx, s.config.ModelEndpoint(s.config.Models.TTS), reqBody, &resp); err != nil {
		return n, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	pcm, mime, err := firstInline(&resp)
	if err != nil {
		return n, err
	}
	data := pcm
	if strings.HasPrefix(mime, "audio/L16") || strings.HasPrefix(mime, "audio/pcm") {
		data, mime = wavFromPCM(pcm, 24000), "audio/wav"
	}
	url, err := s.upload(ctx, data, mime)
	if err != nil {
		return n, err
	}
	n.AudioURL = url
	return n, nil
}

func (s *MediaService) upload(ctx context.Context, data []byte, contentType string) (string, error) {
	url, err := s.blobs.Upload(ctx, data, contentType)
	if err != nil {
		return "", fmt.Errorf("%w: failed to upload: %v", ErrGenerationFailed, err)
	}
	return url, nil
}

func firstInline(resp *geminiResponse) ([]byte, string, error) {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, "", fmt.Errorf("%w: bad inline data: %v", ErrGenerationFailed, err)
			}
			return data, part.InlineData.MimeType, nil
		}
	}
	return nil, "", fmt.Errorf("%w: response carried no media", ErrGenerationFailed)
}

// wavFromPCM wraps 16-bit mono little-endian PCM in a RIFF header
func wavFromPCM(pcm []byte, sampleRate int) []byte {
	var buf bytes.Buffer
	size := uint32(len(pcm))
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, 36+size)
	buf.WriteString("WAVEfmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, size)
	buf.Write(pcm)
	return buf.Bytes()
}
