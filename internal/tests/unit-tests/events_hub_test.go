package unit_tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibegrapher/internal/events"
)

func TestHub_DeliversToProjectTopic(t *testing.T) {
	hub := events.NewHub()
	sub := hub.Subscribe("p1")
	other := hub.Subscribe("p2")
	defer hub.Unsubscribe(other)

	hub.Publish(context.Background(), events.New(events.EventPipelineStarted, "p1", "started"))

	evt := <-sub.Events()
	assert.Equal(t, events.EventPipelineStarted, evt.Type)
	assert.Equal(t, "p1", evt.ProjectID)
	assert.Empty(t, len(other.Events()))

	hub.Unsubscribe(sub)
	_, open := <-sub.Events()
	assert.False(t, open)
}

func TestHub_FillsSessionFromContext(t *testing.T) {
	hub := events.NewHub()
	sub := hub.Subscribe("p1")
	defer hub.Unsubscribe(sub)

	ctx := events.WithSession(context.Background(), "s1")
	hub.Publish(ctx, events.New(events.EventDiffCreated, "p1", "diff ready"))

	evt := <-sub.Events()
	assert.Equal(t, "s1", evt.SessionID)
}

func TestHub_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := events.NewHub()
	sub := hub.Subscribe("p1")
	defer hub.Unsubscribe(sub)

	// Publish well past the buffer without draining; Publish must return.
	for i := 0; i < 200; i++ {
		hub.Publish(context.Background(), events.New(events.EventGeneratorResult, "p1", "step"))
	}
	assert.Equal(t, 1, hub.SubscriberCount("p1"))
}

func TestHub_UnsubscribeTwiceIsSafe(t *testing.T) {
	hub := events.NewHub()
	sub := hub.Subscribe("p1")
	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)
	require.Equal(t, 0, hub.SubscriberCount("p1"))
}
