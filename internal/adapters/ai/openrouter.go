package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pefitness/internal/adapters/http/perf"
)

// maxResponseBytes bounds how much of a reply is read.
const maxResponseBytes = 1 << 20

// OpenRouterConfig configures the client.
type OpenRouterConfig struct {
	BaseURL   string // e.g. https://openrouter.ai/api/v1
	Model     string
	Timeout   time.Duration
	Collector *perf.Collector // optional
}

// OpenRouterClient implements Completer for the OpenRouter chat API.
// It holds no credential; the caller passes one per call.
type OpenRouterClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
	collector  *perf.Collector
}

var _ Completer = (*OpenRouterClient)(nil)

// NewOpenRouterClient creates a client.
// PRE: cfg.BaseURL and cfg.Model are non-empty
func NewOpenRouterClient(cfg OpenRouterConfig) *OpenRouterClient {
	return &OpenRouterClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		collector:  cfg.Collector,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete posts a single user message and returns the first choice.
// PRE: credential is non-empty
// POST: exactly one outbound request; no retries
func (c *OpenRouterClient) Complete(ctx context.Context, credential, prompt string) (string, error) {
	start := time.Now()
	text, err := c.complete(ctx, credential, prompt)
	c.observe(start, err)
	return text, err
}

func (c *OpenRouterClient) complete(ctx context.Context, credential, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", &TransportError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", &TransportError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &TransportError{Err: err}
	}

	var parsed chatResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upstream := &UpstreamError{Status: resp.StatusCode}
		if decodeErr == nil && parsed.Error != nil {
			upstream.Message = parsed.Error.Message
		}
		return "", upstream
	}
	if decodeErr != nil {
		return "", &UpstreamError{Status: resp.StatusCode}
	}
	if parsed.Error != nil {
		return "", &UpstreamError{Status: resp.StatusCode, Message: parsed.Error.Message}
	}
	if len(parsed.Choices) == 0 {
		return "", &UpstreamError{Status: resp.StatusCode, Message: ErrNoChoices.Error()}
	}
	return parsed.Choices[0].Message.Content, nil
}

func (c *OpenRouterClient) observe(start time.Time, err error) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil {
		slog.Warn("completion_failed", "model", c.model, "duration_ms", durationMs, "error", err)
	} else {
		slog.Info("completion_done", "model", c.model, "duration_ms", durationMs)
	}
	if c.collector != nil {
		c.collector.Record(perf.Entry{
			Kind:       perf.KindCompletion,
			Path:       c.model,
			DurationMs: durationMs,
			Failed:     err != nil,
			Timestamp:  start,
		})
	}
}
