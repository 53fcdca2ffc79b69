package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danivela/ai-todo-be/internal/apperr"
)

// AIServiceProvider defines the interface for the text-generation endpoints.
type AIServiceProvider interface {
	GenerateTasks(ctx context.Context, topic string) (string, error)
	SummarizeFeedback(ctx context.Context, text string) (string, error)
}

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// AIService forwards prompt templates to the Gemini generateContent API. The
// service is an opaque collaborator: its failures are surfaced as upstream
// errors, never retried.
type AIService struct {
	client  *http.Client
	apiKey  string
	model   string
	baseURL string
}

// NewAIService creates a new AIService.
func NewAIService(apiKey, model string) *AIService {
	return &AIService{
		client:  &http.Client{Timeout: 30 * time.Second},
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultGeminiBaseURL,
	}
}

// GenerateTasks asks the model for a short list of actionable tasks on a topic.
func (s *AIService) GenerateTasks(ctx context.Context, topic string) (string, error) {
	system := "You are a helpful assistant that creates actionable tasks."
	prompt := fmt.Sprintf(
		"Suggest 5 short, actionable tasks for someone working on %s. Return them as a numbered list, each under 12 words.",
		topic)
	return s.generate(ctx, system, prompt)
}

// SummarizeFeedback asks the model to condense free-form feedback.
func (s *AIService) SummarizeFeedback(ctx context.Context, text string) (string, error) {
	system := "Summarize the following student feedback in 3 crisp bullet points."
	prompt := fmt.Sprintf("Focus on actionable insights and sentiment.\n\nFeedback:\n%s", text)
	return s.generate(ctx, system, prompt)
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"system_instruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (s *AIService) generate(ctx context.Context, system, prompt string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY is not set: %w", apperr.ErrUpstream)
	}

	payload, err := json.Marshal(geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: system}}},
		Contents:          []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig:  &geminiGenerationConfig{Temperature: 0.3},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", s.baseURL, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("Text generation request failed")
		return "", fmt.Errorf("calling text generation service: %w", apperr.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		log.Error().Int("status", resp.StatusCode).Bytes("body", body).Msg("Text generation service returned an error")
		return "", fmt.Errorf("text generation service returned status %d: %w", resp.StatusCode, apperr.ErrUpstream)
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding text generation response: %w", apperr.ErrUpstream)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("text generation service returned no candidates: %w", apperr.ErrUpstream)
	}

	return out.Candidates[0].Content.Parts[0].Text, nil
}
