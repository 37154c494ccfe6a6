package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"NewsBrief/internal/ports"
)

// WebhookNotifier posts brief notifications to a configured HTTP endpoint.
// Delivery is fire-and-forget from the pipeline's perspective: callers log
// failures and move on.
type WebhookNotifier struct {
	webhookURL string
	channel    string
	recipient  string
	client     *http.Client
}

var _ ports.Notifier = (*WebhookNotifier)(nil)

// NewWebhookNotifier registers the endpoint and default routing fields.
func NewWebhookNotifier(webhookURL, channel, recipient string) *WebhookNotifier {
	return &WebhookNotifier{
		webhookURL: webhookURL,
		channel:    channel,
		recipient:  recipient,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// Send posts the notification as JSON.
func (n *WebhookNotifier) Send(ctx context.Context, notification ports.Notification) error {
	if n.webhookURL == "" {
		return fmt.Errorf("webhook notifier misconfigured")
	}

	if notification.Channel == "" {
		notification.Channel = n.channel
	}
	if notification.Recipient == "" {
		notification.Recipient = n.recipient
	}
	if notification.Priority == "" {
		notification.Priority = "normal"
	}

	body, err := json.Marshal(map[string]string{
		"channel":   notification.Channel,
		"recipient": notification.Recipient,
		"title":     notification.Title,
		"body":      notification.Body,
		"url":       notification.URL,
		"priority":  notification.Priority,
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook error: %s", resp.Status)
	}

	return nil
}
