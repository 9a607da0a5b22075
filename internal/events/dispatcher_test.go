package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDispatcher_DeliversToSubscribersOfType(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var got []string
	d.Subscribe(EventApplicationStatusChanged, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.SubjectID)
		return nil
	})
	d.Subscribe(EventApplicationStatusChanged, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.SubjectID)
		return nil
	})
	d.Subscribe(EventMembershipRemoved, func(_ context.Context, e Event) error {
		got = append(got, "wrong")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventApplicationStatusChanged, SubjectID: "app-1"}))
	assert.Equal(t, []string{"first:app-1", "second:app-1"}, got)
}

func TestDispatcher_HandlerErrorIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	called := false
	d.Subscribe(EventJoinRequestCreated, func(context.Context, Event) error { return errors.New("boom") })
	d.Subscribe(EventJoinRequestCreated, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "evt-1", Type: EventJoinRequestCreated})
	assert.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
}
