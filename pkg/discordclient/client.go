/**
 * @description
 * Discord webhook client used to deliver summary messages. Each
 * aggregation run produces exactly one message; delivery failures are
 * returned to the caller to log and are never retried here.
 */
package discordclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client posts messages to a single Discord webhook URL.
type Client struct {
	webhookURL string
	username   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a webhook client. username is optional; when set it
// overrides the webhook's default display name.
func NewClient(webhookURL, username string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		webhookURL: webhookURL,
		username:   username,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// webhookPayload is the JSON body the webhook endpoint expects.
type webhookPayload struct {
	Content  string `json:"content"`
	Username string `json:"username,omitempty"`
}

// Send posts one message to the webhook. Any status of 400 or above is an
// error; the response body is logged to help diagnose rejections.
func (c *Client) Send(ctx context.Context, content string) error {
	body, err := json.Marshal(webhookPayload{Content: content, Username: c.username})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Error("webhook rejected message", "status", resp.StatusCode, "body", string(respBody))
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
