// Package notify delivers the "your application status changed" email through one
// of several transports. Delivery is best effort; callers log failures and move on.
package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/hiring-workflow/internal/config"
)

// Notifier sends the status email for an application.
type Notifier interface {
	SendStatusEmail(ctx context.Context, applicationID string) error
}

// StatusEmail is the message every transport carries. The mail service renders the
// body from the application id.
type StatusEmail struct {
	ApplicationID string `json:"application_id"`
	From          string `json:"from"`
	Template      string `json:"template"`
}

const statusTemplate = "application_status_changed"

func newStatusEmail(from, applicationID string) StatusEmail {
	return StatusEmail{ApplicationID: applicationID, From: from, Template: statusTemplate}
}

// New picks the transport named by cfg.Channel. rdb is only required for the redis channel.
func New(cfg config.NotificationConfig, rdb *redis.Client, logger *zap.Logger) (Notifier, error) {
	switch cfg.Channel {
	case config.ChannelWebhook:
		return NewWebhookNotifier(cfg.WebhookURL, cfg.EmailFrom, cfg.SendTimeout()), nil
	case config.ChannelRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis channel selected but redis is not configured")
		}
		return NewRedisStreamNotifier(rdb, cfg.Stream, cfg.EmailFrom), nil
	case config.ChannelLog, "":
		return NewLogNotifier(logger, cfg.EmailFrom), nil
	default:
		return nil, fmt.Errorf("unknown notification channel %q", cfg.Channel)
	}
}

// LogNotifier writes the email to the log. Used in development.
type LogNotifier struct {
	logger *zap.Logger
	from   string
}

// NewLogNotifier constructs a LogNotifier.
func NewLogNotifier(logger *zap.Logger, from string) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger, from: from}
}

// SendStatusEmail implements Notifier.
func (n *LogNotifier) SendStatusEmail(_ context.Context, applicationID string) error {
	n.logger.Info("status email",
		zap.String("from", n.from),
		zap.String("application_id", applicationID),
		zap.String("template", statusTemplate))
	return nil
}
