package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	t.Parallel()

	taskID, actorID := uuid.New(), uuid.New()
	ev, err := NewEvent(TypeTaskVerified, taskID, actorID, map[string]bool{"verified": true})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, ev.ID)
	assert.Equal(t, TypeTaskVerified, ev.Type)
	assert.Equal(t, taskID, ev.TaskID)
	assert.Equal(t, actorID, ev.ActorID)
	assert.False(t, ev.OccurredAt.IsZero())

	var payload map[string]bool
	require.NoError(t, ev.UnmarshalPayload(&payload))
	assert.True(t, payload["verified"])

	bare, err := NewEvent(TypeTaskDeleted, taskID, actorID, nil)
	require.NoError(t, err)
	assert.Nil(t, bare.Payload)

	_, err = NewEvent(TypeTaskUpdated, taskID, actorID, make(chan int))
	assert.Error(t, err)
}

func TestInMemoryEventEmitter(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	newEvent := func(t *testing.T) *Event {
		ev, err := NewEvent(TypeTaskCreated, uuid.New(), uuid.New(), nil)
		require.NoError(t, err)
		return ev
	}

	t.Run("no handlers", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(logger)
		assert.NoError(t, emitter.EmitEvent(context.Background(), newEvent(t)))
	})

	t.Run("all handlers receive the event", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(logger)
		first, second := &Recorder{}, &Recorder{}
		emitter.RegisterHandler(first)
		emitter.RegisterHandler(second)

		ev := newEvent(t)
		require.NoError(t, emitter.EmitEvent(context.Background(), ev))

		assert.Equal(t, []*Event{ev}, first.Events())
		assert.Equal(t, []*Event{ev}, second.Events())
	})

	t.Run("failing handler does not block others", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(logger)
		boom := errors.New("broker unavailable")
		after := &Recorder{}

		emitter.RegisterHandler(HandlerFunc(func(context.Context, *Event) error { return boom }))
		emitter.RegisterHandler(HandlerFunc(func(context.Context, *Event) error { return errors.New("second") }))
		emitter.RegisterHandler(after)

		err := emitter.EmitEvent(context.Background(), newEvent(t))
		assert.ErrorIs(t, err, boom)
		assert.Len(t, after.Events(), 1)
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(nil)
		assert.NoError(t, emitter.EmitEvent(context.Background(), newEvent(t)))
	})
}

func TestRecorderTypes(t *testing.T) {
	t.Parallel()

	r := &Recorder{}
	for _, typ := range []string{TypeTaskCreated, TypeTaskStatusChanged} {
		ev, err := NewEvent(typ, uuid.New(), uuid.New(), nil)
		require.NoError(t, err)
		require.NoError(t, r.HandleEvent(context.Background(), ev))
	}
	assert.Equal(t, []string{TypeTaskCreated, TypeTaskStatusChanged}, r.Types())
}
