package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/hiring-workflow/internal/config"
	"github.com/spec-kit/hiring-workflow/internal/events"
)

// StatusEmailQueue accepts status email jobs without blocking the caller.
type StatusEmailQueue interface {
	Enqueue(applicationID string) bool
}

// NotificationService reacts to domain events. Status changes are forwarded to the
// email queue when auto-notify is on; everything else is logged.
type NotificationService struct {
	dispatcher events.Dispatcher
	queue      StatusEmailQueue
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, queue StatusEmailQueue, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		queue:      queue,
		logger:     nopIfNil(logger),
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventApplicationStatusChanged, n.handleApplicationStatusChanged)
	for _, t := range []events.EventType{
		events.EventJoinRequestCreated,
		events.EventJoinRequestResolved,
		events.EventMembershipRoleChanged,
		events.EventMembershipRemoved,
		events.EventApplicationSubmitted,
		events.EventApplicationWithdrawn,
	} {
		n.dispatcher.Subscribe(t, n.logEvent)
	}
}

func (n *NotificationService) handleApplicationStatusChanged(_ context.Context, event events.Event) error {
	n.logger.Info("ApplicationStatusChanged",
		zap.String("application_id", event.SubjectID),
		zap.Any("payload", event.Payload))
	if !n.cfg.AutoNotify || n.queue == nil {
		return nil
	}
	if !n.queue.Enqueue(event.SubjectID) {
		return fmt.Errorf("status email for %s not queued", event.SubjectID)
	}
	return nil
}

func (n *NotificationService) logEvent(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("subject_id", event.SubjectID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	return nil
}
