package mocks

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// InvokerMock stands in for a model client. Responses can be scripted as a
// queue; once the queue is exhausted the last response repeats.
type InvokerMock struct {
	InvokeFunc func(ctx context.Context, messages []*schema.Message) (*schema.Message, error)

	Calls     int
	responses []string
}

func (m *InvokerMock) Invoke(ctx context.Context, messages []*schema.Message) (*schema.Message, error) {
	m.Calls++
	if m.InvokeFunc != nil {
		return m.InvokeFunc(ctx, messages)
	}
	idx := m.Calls - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	if idx < 0 {
		return schema.AssistantMessage("", nil), nil
	}
	return schema.AssistantMessage(m.responses[idx], nil), nil
}

// Respond queues canned reply contents in invocation order.
func (m *InvokerMock) Respond(contents ...string) *InvokerMock {
	m.responses = append(m.responses, contents...)
	return m
}
