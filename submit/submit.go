// CLAUDE:SUMMARY Submission client: POST answer payloads, tolerant JSON response decoding, failures become outcomes.
// Package submit posts answer payloads to a grading endpoint and interprets
// the response.
//
// Submit never returns an error: transport and parse failures are folded
// into an incorrect outcome with a reason, so the chain controller handles
// every submission uniformly. The grading contract is only meaningful with
// a 200 JSON body; anything else is a submission failure.
package submit

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

// Outcome is the interpreted result of one submission.
type Outcome struct {
	Correct bool            `json:"correct"`
	NextURL string          `json:"next_url,omitempty"`
	Reason  string          `json:"reason,omitempty"`
	Raw     json.RawMessage `json:"-"` // response body retained for diagnostics
}

// Config configures the Client.
type Config struct {
	// Timeout bounds one submission round-trip. Default: 45s.
	Timeout time.Duration

	UserAgent string
	Logger    *slog.Logger
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 45 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (compatible; QuizChain/1.0)"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Client posts answers to grading endpoints.
type Client struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// New creates a Client.
func New(cfg Config) *Client {
	cfg.defaults()
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: cfg.Logger,
	}
}

// CloseIdleConnections drops pooled connections. Called when the chain that
// drove the submissions ends.
func (c *Client) CloseIdleConnections() {
	c.client.CloseIdleConnections()
}

// gradeResponse is the wire shape of the grading endpoint's reply. Missing
// fields are tolerated: absent correct is false, absent url/reason are null.
type gradeResponse struct {
	Correct bool    `json:"correct"`
	URL     *string `json:"url"`
	Reason  *string `json:"reason"`
}

// Submit POSTs the serialized payload and interprets the JSON response.
func (c *Client) Submit(ctx context.Context, submitURL string, payload []byte) *Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, submitURL, bytes.NewReader(payload))
	if err != nil {
		return c.failure(submitURL, fmt.Sprintf("new request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return c.failure(submitURL, fmt.Sprintf("transport: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return c.failure(submitURL, fmt.Sprintf("read body: %v", err))
	}

	if resp.StatusCode != http.StatusOK {
		out := c.failure(submitURL, fmt.Sprintf("status %d", resp.StatusCode))
		out.Raw = body
		return out
	}

	var grade gradeResponse
	if err := json.Unmarshal(body, &grade); err != nil {
		out := c.failure(submitURL, fmt.Sprintf("non-JSON response: %v", err))
		out.Raw = body
		return out
	}

	out := &Outcome{Correct: grade.Correct, Raw: body}
	if grade.URL != nil {
		out.NextURL = *grade.URL
	}
	if grade.Reason != nil {
		out.Reason = *grade.Reason
	}
	return out
}

func (c *Client) failure(submitURL, reason string) *Outcome {
	c.logger.Error("submit: failed", "url", submitURL, "reason", reason)
	return &Outcome{Correct: false, Reason: reason}
}
