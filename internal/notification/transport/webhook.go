package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jcmexdev/ecommerce-orders/internal/notification"
)

var (
	_ notification.ChatPoster = (*SlackWebhook)(nil)
	_ notification.SMSSender  = (*SMSGateway)(nil)
)

const defaultTimeout = 10 * time.Second

// SlackWebhook posts messages to a Slack incoming webhook.
type SlackWebhook struct {
	url    string
	client *http.Client
}

func NewSlackWebhook(url string, client *http.Client) *SlackWebhook {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &SlackWebhook{url: url, client: client}
}

func (s *SlackWebhook) Post(ctx context.Context, msg notification.ChatMessage) error {
	body := map[string]string{"text": msg.Text}
	if msg.Channel != "" {
		body["channel"] = msg.Channel
	}
	if err := postJSON(ctx, s.client, s.url, body); err != nil {
		return fmt.Errorf("slack: %w", err)
	}
	return nil
}

// SMSGateway sends text messages through an HTTP SMS provider that accepts
// {"from","to","text"} JSON bodies.
type SMSGateway struct {
	url    string
	from   string
	client *http.Client
}

func NewSMSGateway(url, from string, client *http.Client) *SMSGateway {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &SMSGateway{url: url, from: from, client: client}
}

func (g *SMSGateway) Send(ctx context.Context, msg notification.SMS) error {
	body := struct {
		From string `json:"from,omitempty"`
		To   string `json:"to"`
		Text string `json:"text"`
	}{g.from, msg.To, msg.Text}

	if err := postJSON(ctx, g.client, g.url, body); err != nil {
		return fmt.Errorf("sms: %w", err)
	}
	return nil
}

func postJSON(ctx context.Context, client *http.Client, url string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
