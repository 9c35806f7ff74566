package blogbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"blogchat/internal/domain"
)

// AskClient implements ports.AnswerClient against the blog platform's
// request/response chat endpoints.
type AskClient struct {
	cfg    Config
	client *http.Client
}

func NewAskClient(cfg Config, timeout time.Duration) *AskClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AskClient{
		cfg:    cfg.withDefaults(),
		client: &http.Client{Timeout: timeout},
	}
}

type askRequest struct {
	Text string `json:"text"`
}

type healthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// Ask sends one query and waits for the complete answer.
func (c *AskClient) Ask(ctx context.Context, text string) (domain.Answer, error) {
	body, err := json.Marshal(askRequest{Text: text})
	if err != nil {
		return domain.Answer{}, fmt.Errorf("failed to encode question: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.cfg.AskPath), bytes.NewReader(body))
	if err != nil {
		return domain.Answer{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("chat request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return domain.Answer{}, fmt.Errorf("chat endpoint returned status %d", resp.StatusCode)
	}

	var answer domain.Answer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return domain.Answer{}, fmt.Errorf("failed to decode answer: %w", err)
	}
	return answer, nil
}

// Health probes the backend health endpoint and flattens the per-service
// status map for display.
func (c *AskClient) Health(ctx context.Context) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(c.cfg.HealthPath), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health endpoint returned status %d", resp.StatusCode)
	}

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}

	result := map[string]string{"status": health.Status}
	for service, state := range health.Services {
		result[service] = state
	}
	return result, nil
}

func (c *AskClient) endpoint(path string) string {
	base := strings.TrimRight(strings.TrimSpace(c.cfg.BaseURL), "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
