package services

import (
	"fmt"

	"github.com/google/uuid"

	"vibegrapher/internal/models"
	"vibegrapher/internal/repositories"
)

// SessionService manages pipeline sessions and their transcripts.
type SessionService struct {
	sessions repositories.SessionRepository
	messages repositories.MessageRepository
	projects repositories.ProjectRepository
}

func NewSessionService(
	sessions repositories.SessionRepository,
	messages repositories.MessageRepository,
	projects repositories.ProjectRepository,
) *SessionService {
	return &SessionService{sessions: sessions, messages: messages, projects: projects}
}

// CreateOrGet returns the session for (project, node), creating it on
// first use. One session exists per scope key.
func (s *SessionService) CreateOrGet(projectID, nodeID string) (*models.Session, error) {
	project, err := s.projects.GetByID(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}

	existing, err := s.sessions.GetByProjectAndNode(projectID, nodeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	session := &models.Session{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		NodeID:    nodeID,
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get returns a session by id.
func (s *SessionService) Get(sessionID string) (*models.Session, error) {
	session, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return session, nil
}

// Transcript returns the session's conversation in append order.
func (s *SessionService) Transcript(sessionID string) ([]models.ConversationMessage, error) {
	if _, err := s.Get(sessionID); err != nil {
		return nil, err
	}
	return s.messages.ReadAll(sessionID)
}

// Clear irreversibly wipes the session's conversation history and removes
// the session row.
func (s *SessionService) Clear(sessionID string) error {
	if _, err := s.Get(sessionID); err != nil {
		return err
	}
	if err := s.messages.Clear(sessionID); err != nil {
		return err
	}
	return s.sessions.Delete(sessionID)
}
