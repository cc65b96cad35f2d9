package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"parksmart/internal/config"
	"parksmart/internal/model"
)

// ErrEmptyTranscript is returned when the speech API hears nothing
var ErrEmptyTranscript = errors.New("no speech recognized")

// SpeechClient transcribes audio through an OpenAI-compatible /audio/transcriptions endpoint
type SpeechClient struct {
	config     *config.SpeechConfig
	httpClient *http.Client
}

// NewSpeechClient creates a speech client. Callers check IsEnabled before wiring it.
func NewSpeechClient(cfg *config.SpeechConfig) *SpeechClient {
	switch {
	case !cfg.Enabled:
	case strings.Contains(cfg.APIBase, "api.openai.com"):
		log.Printf("🔧 Detected OpenAI speech provider")
	default:
		log.Printf("🔧 Using OpenAI-compatible speech format for: %s", cfg.APIBase)
	}
	return &SpeechClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *SpeechClient) IsEnabled() bool {
	return c.config.Enabled
}

// transcriptionResponse is the json response_format of the transcription API
type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads audio and returns the recognized text
func (c *SpeechClient) Transcribe(ctx context.Context, audio []byte, lang model.Language) (string, error) {
	if !c.config.Enabled {
		return "", fmt.Errorf("speech API is not enabled (missing API key)")
	}
	if len(audio) == 0 {
		return "", ErrEmptyTranscript
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "speech.webm")
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("failed to write audio: %w", err)
	}
	fields := map[string]string{
		"model":           c.config.Model,
		"language":        string(lang),
		"response_format": "json",
	}
	for k, v := range fields {
		if err := form.WriteField(k, v); err != nil {
			return "", fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("failed to close form: %w", err)
	}

	url := fmt.Sprintf("%s/audio/transcriptions", strings.TrimRight(c.config.APIBase, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result transcriptionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	text := strings.TrimSpace(result.Text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}
