package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"partnernet-backend/internal/logger"
)

// Client talks to the chat platform's REST API. Every method is a single
// blocking POST; callers on the interaction fast path do at most one of them
// before acknowledging.
type Client struct {
	baseURL    string
	botToken   string
	httpClient *http.Client
}

func NewClient(baseURL, botToken string) *Client {
	return &Client{
		baseURL:  baseURL,
		botToken: botToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (c *Client) call(ctx context.Context, method string, body any) error {
	logger.ExternalServiceCall("chat", method)

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.botToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.ExternalServiceResult("chat", method, err)
		return fmt.Errorf("chat %s call failed: %w", method, err)
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.ExternalServiceResult("chat", method, err)
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if !result.OK {
		err := fmt.Errorf("chat %s rejected: %s", method, result.Error)
		logger.ExternalServiceResult("chat", method, err)
		return err
	}

	logger.ExternalServiceResult("chat", method, nil)
	return nil
}

// PostMessage posts a new message to a channel.
func (c *Client) PostMessage(ctx context.Context, channel, text string) error {
	return c.call(ctx, "chat.postMessage", map[string]string{
		"channel": channel,
		"text":    text,
	})
}

// UpdateMessage edits an existing message identified by channel + ts.
func (c *Client) UpdateMessage(ctx context.Context, channel, ts, text string) error {
	return c.call(ctx, "chat.update", map[string]string{
		"channel": channel,
		"ts":      ts,
		"text":    text,
	})
}

// OpenView opens a modal for the interaction identified by triggerID. The
// view's private metadata comes back unmodified on submission.
func (c *Client) OpenView(ctx context.Context, triggerID string, view ModalView) error {
	return c.call(ctx, "views.open", map[string]any{
		"trigger_id": triggerID,
		"view":       view,
	})
}
