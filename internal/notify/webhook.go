package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// WebhookNotifier posts the email to a mail relay over HTTP.
type WebhookNotifier struct {
	client *resty.Client
	url    string
	from   string
}

// NewWebhookNotifier constructs a notifier posting to url.
func NewWebhookNotifier(url, from string, timeout time.Duration) *WebhookNotifier {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &WebhookNotifier{client: client, url: url, from: from}
}

// SendStatusEmail implements Notifier.
func (n *WebhookNotifier) SendStatusEmail(ctx context.Context, applicationID string) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(newStatusEmail(n.from, applicationID)).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("post status email: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("mail relay responded %d", resp.StatusCode())
	}
	return nil
}
