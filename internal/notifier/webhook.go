package notifier

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"

	"github.com/pfrederiksen/fixture-sync/internal/storage"
)

const webhookTimeout = 10 * time.Second

// webhookPayload carries the message under both "text" (Slack) and "content" (Discord).
type webhookPayload struct {
	Text    string `json:"text"`
	Content string `json:"content"`
}

// WebhookNotifier posts alerts to a chat webhook
type WebhookNotifier struct {
	url    string
	client *resty.Client
}

// NewWebhookNotifier creates a notifier posting to url
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		client: resty.New().
			SetTimeout(webhookTimeout).
			SetHeader("Content-Type", "application/json"),
	}
}

// Notify posts the alert as JSON
func (n *WebhookNotifier) Notify(ctx context.Context, run *storage.Run) error {
	alert := FormatAlert(run)

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(webhookPayload{Text: alert, Content: alert}).
		Post(n.url)
	if err != nil {
		return errors.Wrap(err, "posting webhook alert")
	}
	if resp.IsError() {
		return errors.Newf("webhook returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
