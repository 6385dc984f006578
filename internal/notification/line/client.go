// Package line pushes text messages through the LINE Messaging API.
package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

// maxTextLength is the Messaging API limit for one text message.
const maxTextLength = 5000

type Client struct {
	apiURL string
	token  string
	target string
	http   *http.Client
	log    *logger.Logger
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

// NewClient returns nil when no access token or target is configured.
func NewClient(cfg config.LineConfig, log *logger.Logger) *Client {
	if cfg.GetLineAccessToken() == "" || cfg.GetLineTargetID() == "" {
		return nil
	}

	return &Client{
		apiURL: cfg.GetLineAPIURL(),
		token:  cfg.GetLineAccessToken(),
		target: cfg.GetLineTargetID(),
		http:   &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// Push sends one text message to the configured target.
func (c *Client) Push(ctx context.Context, text string) error {
	if c == nil {
		return nil
	}

	if r := []rune(text); len(r) > maxTextLength {
		text = string(r[:maxTextLength-1]) + "…"
	}

	body, err := json.Marshal(pushRequest{
		To:       c.target,
		Messages: []textMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("marshal line payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("line request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("line api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	c.log.Debug("line message pushed", "target", c.target)
	return nil
}
