package events

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

const subscriberBuffer = 64

// Subscriber receives every event published to one project topic.
type Subscriber struct {
	projectID string
	ch        chan PipelineEvent
}

// Events returns the subscriber's delivery channel. It is closed on
// Unsubscribe.
func (s *Subscriber) Events() <-chan PipelineEvent {
	return s.ch
}

// Hub is a topic-per-project broadcaster. Delivery is best effort: a
// subscriber that cannot keep up has events dropped rather than stalling
// the pipeline, because clients recover state from the diff store anyway.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*Subscriber]struct{})}
}

// Subscribe registers a new subscriber on the project topic.
func (h *Hub) Subscribe(projectID string) *Subscriber {
	sub := &Subscriber{projectID: projectID, ch: make(chan PipelineEvent, subscriberBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[projectID]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		h.topics[projectID] = subs
	}
	subs[sub] = struct{}{}
	return sub
}

// Unsubscribe removes the subscriber and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[sub.projectID]
	if !ok {
		return
	}
	if _, member := subs[sub]; !member {
		return
	}
	delete(subs, sub)
	close(sub.ch)
	if len(subs) == 0 {
		delete(h.topics, sub.projectID)
	}
}

// Publish delivers evt to every subscriber of its project topic and logs
// it. Fills SessionID from ctx when the event has none.
func (h *Hub) Publish(ctx context.Context, evt PipelineEvent) {
	if evt.SessionID == "" {
		evt.SessionID = SessionFromContext(ctx)
	}

	logrus.WithFields(logrus.Fields{
		"event":      evt.Type,
		"project_id": evt.ProjectID,
		"session_id": evt.SessionID,
		"role":       evt.Role,
		"attempt":    evt.Attempt,
	}).Info(evt.Message)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.topics[evt.ProjectID] {
		select {
		case sub.ch <- evt:
		default:
			logrus.WithField("project_id", evt.ProjectID).
				Warn("dropping event for slow subscriber")
		}
	}
}

// SubscriberCount reports active subscribers for a project topic.
func (h *Hub) SubscriberCount(projectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[projectID])
}
