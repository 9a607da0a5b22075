package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStreamNotifier appends the email to a Redis stream consumed by the mailer.
type RedisStreamNotifier struct {
	client *redis.Client
	stream string
	from   string
}

// NewRedisStreamNotifier constructs a notifier writing to stream.
func NewRedisStreamNotifier(client *redis.Client, stream, from string) *RedisStreamNotifier {
	return &RedisStreamNotifier{client: client, stream: stream, from: from}
}

// SendStatusEmail implements Notifier.
func (n *RedisStreamNotifier) SendStatusEmail(ctx context.Context, applicationID string) error {
	msg := newStatusEmail(n.from, applicationID)
	err := n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		Values: map[string]interface{}{
			"application_id": msg.ApplicationID,
			"from":           msg.From,
			"template":       msg.Template,
			"queued_at":      time.Now().UTC().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", n.stream, err)
	}
	return nil
}
