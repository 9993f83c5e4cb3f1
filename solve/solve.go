// CLAUDE:SUMMARY Reasoning backend client on google.golang.org/genai — JSON-only quiz answers with salvage parsing.
// Package solve asks an LLM to answer one quiz question from assembled
// context: the question text, file previews, and optional API data.
package solve

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/hazyhaar/quizchain/ingest"
)

// Kind classifies an answer payload.
type Kind string

const (
	KindNumber     Kind = "number"
	KindString     Kind = "string"
	KindBool       Kind = "bool"
	KindObject     Kind = "object"
	KindFileBase64 Kind = "file_base64"
)

// Answer is the backend's structured output for one question.
type Answer struct {
	Value any  `json:"answer"`
	Kind  Kind `json:"answer_type"`
}

// Request bundles everything the backend sees for one round.
type Request struct {
	Question string
	Files    []*ingest.Summary
	APIData  any // decoded JSON, or map{"text": ...} for opaque responses
}

// Config configures the Client.
type Config struct {
	APIKey string

	// Model name. Default: gemini-2.0-flash.
	Model string

	// MaxOutputTokens bounds the response. Default: 2048.
	MaxOutputTokens int32

	// APIPreviewLimit caps the serialized API data section. Default: 5000.
	APIPreviewLimit int

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Model == "" {
		c.Model = "gemini-2.0-flash"
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = 2048
	}
	if c.APIPreviewLimit <= 0 {
		c.APIPreviewLimit = 5000
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Client is a reasoning backend over the Gemini API.
type Client struct {
	cfg    Config
	client *genai.Client
	logger *slog.Logger
}

// New creates a Client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	cfg.defaults()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("solve: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("solve: create client: %w", err)
	}
	return &Client{cfg: cfg, client: client, logger: cfg.Logger}, nil
}

const systemPrompt = `You are an expert data analyst and problem solver. You solve quiz
questions that involve data sourcing, preparation, analysis, and visualization.

You receive the quiz question text, previews of downloaded data files, and
API response data when applicable. Read the question, work through the data,
and determine the answer.

OUTPUT FORMAT: return ONLY a valid JSON object with exactly these keys:
  "answer": the final answer value (number, string, boolean, object, or a
  base64-encoded string with data URI prefix for file attachments)
  "answer_type": one of "number", "string", "bool", "object", "file_base64"

Do not include explanations or any text outside the JSON object.`

// Ask submits the assembled context and parses the structured answer.
// A nil answer with nil error never occurs: unusable output is an error.
func (c *Client) Ask(ctx context.Context, req Request) (*Answer, error) {
	prompt := c.buildPrompt(req)

	temp := float32(0.1)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       &temp,
		MaxOutputTokens:   c.cfg.MaxOutputTokens,
		ResponseMIMEType:  "application/json",
	}

	result, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("solve: generate: %w", err)
	}

	content := result.Text()
	if content == "" {
		return nil, fmt.Errorf("solve: empty response")
	}

	ans, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	if !validKind(ans.Kind) {
		c.logger.Warn("solve: unknown answer_type, coercing to string", "answer_type", ans.Kind)
		ans.Kind = KindString
	}
	return ans, nil
}

// buildPrompt lays out the question, file previews, and API data in
// delimited sections.
func (c *Client) buildPrompt(req Request) string {
	var sb strings.Builder
	divider := "\n\n" + strings.Repeat("=", 50) + "\n\n"

	sb.WriteString("QUIZ QUESTION:\n")
	sb.WriteString(req.Question)
	sb.WriteString(divider)

	if len(req.Files) > 0 {
		sb.WriteString("DATA FILES:\n")
		for i, f := range req.Files {
			if i > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(f.PromptBlock())
		}
		sb.WriteString(divider)
	}

	if req.APIData != nil {
		sb.WriteString("API DATA:\n")
		sb.WriteString(formatAPIData(req.APIData, c.cfg.APIPreviewLimit))
		sb.WriteString(divider)
	}

	sb.WriteString("Return ONLY a JSON object with 'answer' and 'answer_type' keys. No other text.")
	return sb.String()
}

func formatAPIData(data any, limit int) string {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return clip(fmt.Sprint(data), limit)
	}
	return clip(string(b), limit)
}

func clip(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

func validKind(k Kind) bool {
	switch k {
	case KindNumber, KindString, KindBool, KindObject, KindFileBase64:
		return true
	default:
		return false
	}
}
