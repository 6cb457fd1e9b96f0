package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"ReviewIntake/internal/config"
	"ReviewIntake/internal/domain"
	"ReviewIntake/internal/ports"
)

const defaultInstruction = "You are a content moderator for business reviews. " +
	"Assess the review below for inappropriate or harmful content. " +
	`Respond only with JSON of the form {"safety_score": number, "sentiment_score": number, "action": "allow" | "flag" | "block"} ` +
	"where safety_score is 0 (safe) to 1 (very unsafe) and sentiment_score is -1 (negative) to 1 (positive)."

// GeminiClient implements ports.Moderator backed by the Gemini generateContent API.
type GeminiClient struct {
	endpoint    string
	apiKey      string
	instruction string
	httpClient  *http.Client
}

var _ ports.Moderator = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration; a nil httpClient gets one with cfg.Timeout.
func NewGeminiClient(cfg config.ModerationConfig, httpClient *http.Client) *GeminiClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &GeminiClient{
		endpoint:    cfg.Endpoint,
		apiKey:      cfg.APIKey,
		instruction: cfg.Instruction,
		httpClient:  httpClient,
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// verdict mirrors ModerationResult with optional fields so absent keys keep their defaults.
type verdict struct {
	SafetyScore    *float64 `json:"safety_score"`
	SentimentScore *float64 `json:"sentiment_score"`
	Action         *string  `json:"action"`
}

// Classify sends the review text for moderation. On any failure it returns
// the default result together with a *domain.ModerationFallback.
func (c *GeminiClient) Classify(ctx context.Context, text string) (domain.ModerationResult, error) {
	if c == nil || c.httpClient == nil || c.endpoint == "" || c.apiKey == "" {
		return fallback(domain.FallbackDisabled, fmt.Errorf("gemini client misconfigured"))
	}

	req, err := c.newRequest(ctx, text)
	if err != nil {
		return fallback(domain.FallbackTransport, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fallback(domain.FallbackTransport, fmt.Errorf("send moderation request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fallback(domain.FallbackStatus, fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(payload))))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fallback(domain.FallbackDecode, fmt.Errorf("decode response: %w", err))
	}

	answer, ok := firstText(decoded)
	if !ok {
		return fallback(domain.FallbackEmpty, fmt.Errorf("response has no candidate text"))
	}

	result, err := parseVerdict(answer)
	if err != nil {
		return fallback(domain.FallbackParse, err)
	}

	return result, nil
}

func (c *GeminiClient) newRequest(ctx context.Context, text string) (*http.Request, error) {
	endpoint, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid moderation endpoint %s: %w", c.endpoint, err)
	}
	query := endpoint.Query()
	query.Set("key", c.apiKey)
	endpoint.RawQuery = query.Encode()

	body, err := json.Marshal(generateRequest{
		Contents: []content{
			{
				Role: "user",
				Parts: []part{
					{Text: safeInstruction(c.instruction)},
					{Text: text},
				},
			},
		},
		GenerationConfig: generationConfig{ResponseMimeType: "application/json"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal moderation payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

func firstText(resp generateResponse) (string, bool) {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", false
	}
	text := resp.Candidates[0].Content.Parts[0].Text
	return text, strings.TrimSpace(text) != ""
}

// parseVerdict overlays the fields present in the model's JSON answer onto the defaults.
func parseVerdict(text string) (domain.ModerationResult, error) {
	var v verdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return domain.ModerationResult{}, fmt.Errorf("parse moderation answer: %w", err)
	}

	result := domain.DefaultModerationResult()
	if v.SafetyScore != nil {
		result.SafetyScore = *v.SafetyScore
	}
	if v.SentimentScore != nil {
		result.SentimentScore = *v.SentimentScore
	}
	if v.Action != nil {
		result.Action = domain.Action(*v.Action)
	}
	return result, nil
}

func fallback(reason string, err error) (domain.ModerationResult, error) {
	return domain.DefaultModerationResult(), &domain.ModerationFallback{Reason: reason, Err: err}
}

func safeInstruction(instruction string) string {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return defaultInstruction
	}
	return instruction
}
