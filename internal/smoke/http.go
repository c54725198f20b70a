package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/asanakit/surya/internal/domain/types"
)

// client wraps the surya HTTP API for the smoke runner.
type client struct {
	baseURL string
	http    *http.Client
}

func newClient(cfg *Config) *client {
	return &client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%s %s: status %d (%s: %s)", method, path, resp.StatusCode, apiErr.Code, apiErr.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// startSession opens a session with the configured profile.
func (c *client) startSession(ctx context.Context, cfg *Config) (string, error) {
	body := map[string]any{
		"user_profile": map[string]any{
			"level":      cfg.Level,
			"conditions": cfg.Conditions,
		},
	}
	var resp struct {
		SessionID string `json:"session_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/sessions", body, &resp); err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

// frameOutcome is the /sessions/frames response shape.
type frameOutcome struct {
	Evaluation   types.EvaluationResult `json:"evaluation"`
	SessionStats types.SessionStats     `json:"session_stats"`
}

// postFrame streams one frame into the session.
func (c *client) postFrame(ctx context.Context, sessionID, pose string, angles map[string]float64, landmarks map[string][]float64) (frameOutcome, error) {
	body := map[string]any{
		"session_id": sessionID,
		"pose_name":  pose,
		"angles":     angles,
		"landmarks":  landmarks,
	}
	var out frameOutcome
	err := c.do(ctx, http.MethodPost, "/sessions/frames", body, &out)
	return out, err
}

// sessionStats fetches the live rolling statistics.
func (c *client) sessionStats(ctx context.Context, sessionID string) (types.SessionStats, error) {
	var out types.SessionStats
	err := c.do(ctx, http.MethodGet, "/sessions/stats?session_id="+sessionID, nil, &out)
	return out, err
}

// stopSession closes the session and returns its summary.
func (c *client) stopSession(ctx context.Context, sessionID string) (types.SessionSummary, error) {
	body := map[string]any{"session_id": sessionID}
	var out types.SessionSummary
	err := c.do(ctx, http.MethodDelete, "/sessions", body, &out)
	return out, err
}
