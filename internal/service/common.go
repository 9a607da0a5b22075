package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/spec-kit/hiring-workflow/internal/domain"
	"github.com/spec-kit/hiring-workflow/internal/events"
	"github.com/spec-kit/hiring-workflow/internal/repository"
	apperrors "github.com/spec-kit/hiring-workflow/pkg/util/errorutil"
)

var tracer = otel.Tracer("github.com/spec-kit/hiring-workflow/internal/service")

func startSpan(ctx context.Context, name string, actor domain.Actor, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("actor.id", actor.ID))
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// mapRepoError translates repository sentinels into the errors callers see.
func mapRepoError(err error, resource string, details map[string]any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, details)
	case errors.Is(err, repository.ErrStale):
		return apperrors.NewConflict(resource+" was modified concurrently, retry", details)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict(resource+" already exists", details)
	default:
		return apperrors.MapError(err)
	}
}

// roleIn returns the actor's role in the company, or MemberRoleNone.
func roleIn(ctx context.Context, memberships repository.MembershipRepository, companyID, userID string) (domain.MemberRole, error) {
	m, err := memberships.Get(ctx, companyID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.MemberRoleNone, nil
	}
	if err != nil {
		return domain.MemberRoleNone, apperrors.MapError(err)
	}
	return m.Role, nil
}

type publisher struct {
	dispatcher events.Dispatcher
	now        func() time.Time
	newID      func() string
}

func newPublisher(dispatcher events.Dispatcher, now func() time.Time, newID func() string) publisher {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return publisher{dispatcher: dispatcher, now: now, newID: newID}
}

func (p publisher) publishEvent(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = p.newID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	_ = p.dispatcher.Publish(ctx, event)
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
