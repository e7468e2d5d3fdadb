// services/presence_client.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// PresenceAPI is the external intra service tracking campus presence and
// evaluations. The OAuth handshake lives in the gateway; this client only
// consumes the reporting endpoints with a service token.
type PresenceAPI interface {
	TotalPresenceHours(ctx context.Context, playerID string) (float64, error)
	EvaluationIDs(ctx context.Context, playerID string) ([]int64, error)
}

type PresenceClient struct {
	baseURL      string
	serviceToken string
	httpClient   *http.Client
}

func NewPresenceClient(baseURL, serviceToken string) *PresenceClient {
	return &PresenceClient{
		baseURL:      baseURL,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// TotalPresenceHours returns the cumulative tracked presence for a player
// since epoch, in fractional hours.
func (c *PresenceClient) TotalPresenceHours(ctx context.Context, playerID string) (float64, error) {
	var payload struct {
		TotalHours float64 `json:"total_hours"`
	}
	path := fmt.Sprintf("/api/v1/players/%s/presence-hours", url.PathEscape(playerID))
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return 0, err
	}
	return payload.TotalHours, nil
}

// EvaluationIDs returns the IDs of all evaluations the player has performed.
func (c *PresenceClient) EvaluationIDs(ctx context.Context, playerID string) ([]int64, error) {
	var payload struct {
		EvaluationIDs []int64 `json:"evaluation_ids"`
	}
	path := fmt.Sprintf("/api/v1/players/%s/evaluations", url.PathEscape(playerID))
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.EvaluationIDs, nil
}

func (c *PresenceClient) getJSON(ctx context.Context, path string, out interface{}) error {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid presence service URL %q: %w", c.baseURL, err)
	}
	endpoint := base.JoinPath(path).String()

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", endpoint, err)
	}
	req.Header.Set("X-Service-Token", c.serviceToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("presence service request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("presence service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode presence service response: %w", err)
	}
	return nil
}
