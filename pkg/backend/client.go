// Package backend talks to the remote chat backend: one HTTP POST
// webhook endpoint that takes the visitor's message and returns the
// assistant's reply text.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// webhookRequest is the wire shape the backend webhook expects.
type webhookRequest struct {
	Channel    string `json:"channel"`
	ExternalID string `json:"externalId"`
	From       string `json:"from"`
	Timestamp  string `json:"timestamp"`
	Type       string `json:"type"`
	Body       string `json:"body"`
}

// webhookReply carries the optional reply text. Any other shape decodes
// to an empty Text, which the caller substitutes with the fallback.
type webhookReply struct {
	Text string `json:"text"`
}

// Client posts visitor messages to the configured webhook endpoint.
type Client struct {
	http     *resty.Client
	endpoint string
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: c, endpoint: endpoint}
}

// Send posts one message and returns the reply text. A transport error,
// a non-2xx status or an unparseable body is an error; a parseable body
// without a text field returns "".
func (c *Client) Send(ctx context.Context, visitorID, text string) (string, error) {
	req := webhookRequest{
		Channel:    "website",
		ExternalID: visitorID,
		From:       visitorID,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Type:       "text",
		Body:       text,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("posting message: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("backend returned status %d", resp.StatusCode())
	}

	var reply webhookReply
	if err := json.Unmarshal(resp.Body(), &reply); err != nil {
		return "", fmt.Errorf("parsing backend reply: %w", err)
	}
	return reply.Text, nil
}
