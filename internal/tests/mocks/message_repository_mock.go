package mocks

import (
	"sync"

	"github.com/google/uuid"

	"vibegrapher/internal/models"
)

type MessageRepositoryMock struct {
	AppendFunc    func(sessionID string, msg *models.ConversationMessage) error
	ReadAllFunc   func(sessionID string) ([]models.ConversationMessage, error)
	GetByIDFunc   func(id string) (*models.ConversationMessage, error)
	ClearRoleFunc func(sessionID, role string) error
	ClearFunc     func(sessionID string) error
}

func (m *MessageRepositoryMock) Append(sessionID string, msg *models.ConversationMessage) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(sessionID, msg)
	}
	return nil
}

func (m *MessageRepositoryMock) ReadAll(sessionID string) ([]models.ConversationMessage, error) {
	if m.ReadAllFunc != nil {
		return m.ReadAllFunc(sessionID)
	}
	return nil, nil
}

func (m *MessageRepositoryMock) GetByID(id string) (*models.ConversationMessage, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return nil, nil
}

func (m *MessageRepositoryMock) ClearRole(sessionID, role string) error {
	if m.ClearRoleFunc != nil {
		return m.ClearRoleFunc(sessionID, role)
	}
	return nil
}

func (m *MessageRepositoryMock) Clear(sessionID string) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(sessionID)
	}
	return nil
}

// InMemoryMessages is a MessageRepositoryMock preconfigured with a real
// in-memory transcript, for tests that exercise full pipeline runs.
type InMemoryMessages struct {
	*MessageRepositoryMock

	mu       sync.Mutex
	messages map[string][]models.ConversationMessage
}

func NewInMemoryMessages() *InMemoryMessages {
	s := &InMemoryMessages{
		MessageRepositoryMock: &MessageRepositoryMock{},
		messages:              make(map[string][]models.ConversationMessage),
	}
	s.AppendFunc = func(sessionID string, msg *models.ConversationMessage) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		stored := *msg
		stored.SessionID = sessionID
		stored.Seq = len(s.messages[sessionID]) + 1
		if stored.ID == "" {
			stored.ID = uuid.NewString()
		}
		s.messages[sessionID] = append(s.messages[sessionID], stored)
		return nil
	}
	s.ReadAllFunc = func(sessionID string) ([]models.ConversationMessage, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		out := make([]models.ConversationMessage, len(s.messages[sessionID]))
		copy(out, s.messages[sessionID])
		return out, nil
	}
	s.GetByIDFunc = func(id string) (*models.ConversationMessage, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, msgs := range s.messages {
			for _, msg := range msgs {
				if msg.ID == id {
					copied := msg
					return &copied, nil
				}
			}
		}
		return nil, nil
	}
	s.ClearRoleFunc = func(sessionID, role string) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		var kept []models.ConversationMessage
		for _, msg := range s.messages[sessionID] {
			if msg.Role != role {
				kept = append(kept, msg)
			}
		}
		s.messages[sessionID] = kept
		return nil
	}
	s.ClearFunc = func(sessionID string) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.messages, sessionID)
		return nil
	}
	return s
}
