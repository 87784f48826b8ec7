package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"
	elevenLabsTimeout = 60 * time.Second
)

// ElevenLabs is the primary synthesis backend.
type ElevenLabs struct {
	apiKey     string
	httpClient *http.Client
	model      string
	stability  float64
	similarity float64
	voices     []string
	baseURL    string
}

type ElevenLabsOptions struct {
	Model      string
	Stability  float64
	Similarity float64
	Voices     []string
}

type elevenLabsRequest struct {
	Text          string             `json:"text"`
	ModelID       string             `json:"model_id"`
	VoiceSettings elevenLabsSettings `json:"voice_settings"`
}

type elevenLabsSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type elevenLabsError struct {
	Detail struct {
		Message string `json:"message"`
	} `json:"detail"`
}

func NewElevenLabs(apiKey string, opts ElevenLabsOptions) *ElevenLabs {
	return &ElevenLabs{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: elevenLabsTimeout,
		},
		model:      opts.Model,
		stability:  opts.Stability,
		similarity: opts.Similarity,
		voices:     opts.Voices,
		baseURL:    elevenLabsBaseURL,
	}
}

func (e *ElevenLabs) Name() string { return "elevenlabs" }

func (e *ElevenLabs) Synthesize(ctx context.Context, text string, voice int, dest string) error {
	if len(e.voices) == 0 {
		return fmt.Errorf("no voices configured")
	}
	voiceID := e.voices[voice%len(e.voices)]

	payload, err := json.Marshal(elevenLabsRequest{
		Text:    text,
		ModelID: e.model,
		VoiceSettings: elevenLabsSettings{
			Stability:       e.stability,
			SimilarityBoost: e.similarity,
		},
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", e.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr elevenLabsError
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Detail.Message != "" {
			if strings.Contains(strings.ToLower(apiErr.Detail.Message), "quota") {
				return fmt.Errorf("%w: %s", ErrQuotaExceeded, apiErr.Detail.Message)
			}
			return fmt.Errorf("elevenlabs error: %s", apiErr.Detail.Message)
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, resp.Status)
		}
		return fmt.Errorf("elevenlabs error: %s", resp.Status)
	}

	if len(body) == 0 {
		return fmt.Errorf("empty response from elevenlabs api")
	}

	if err := os.WriteFile(dest, body, 0644); err != nil {
		return fmt.Errorf("write audio file: %w", err)
	}
	return waitForFile(ctx, dest)
}
