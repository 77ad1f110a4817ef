// Package responder produces the short supportive reply shown after a
// submission. The reply is generated without access to confession content:
// the upstream model only ever sees a fixed prompt.
package responder

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// FallbackMessage is returned whenever the upstream call cannot be made or
// fails, so the caller always gets a usable reply.
const FallbackMessage = "Thank you for sharing. Your words matter, and I'm here to listen without judgment."

const prompt = "Someone just shared a personal confession with me. Respond with a brief, warm, non-judgmental message (2-3 sentences) that makes them feel heard and supported, without asking questions or giving advice. Just acknowledge their courage in sharing."

const apiVersion = "2023-06-01"

type Responder interface {
	Respond(ctx context.Context) (string, error)
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Client calls the messages API. A client with an empty key degrades to
// the fallback without making network calls.
type Client struct {
	rest   *resty.Client
	apiKey string
	model  string
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		rest: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
		apiKey: apiKey,
		model:  model,
	}
}

func (c *Client) Respond(ctx context.Context) (string, error) {
	if c.apiKey == "" {
		return FallbackMessage, nil
	}

	var out messagesResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("x-api-key", c.apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetBody(messagesRequest{
			Model:     c.model,
			MaxTokens: 1024,
			Messages:  []message{{Role: "user", Content: prompt}},
		}).
		SetResult(&out).
		Post("/v1/messages")
	if err != nil {
		return FallbackMessage, fmt.Errorf("responder request: %w", err)
	}
	if resp.IsError() || len(out.Content) == 0 || out.Content[0].Text == "" {
		return FallbackMessage, fmt.Errorf("responder upstream status %d", resp.StatusCode())
	}

	return out.Content[0].Text, nil
}

// Static always answers with the fallback message. Used when no upstream
// is configured and in tests.
type Static struct{}

func (Static) Respond(ctx context.Context) (string, error) {
	return FallbackMessage, nil
}
