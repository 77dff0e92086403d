package mocks

import (
	"vibegrapher/internal/models"
)

type SessionRepositoryMock struct {
	CreateFunc              func(session *models.Session) error
	GetByIDFunc             func(id string) (*models.Session, error)
	GetByProjectAndNodeFunc func(projectID, nodeID string) (*models.Session, error)
	ListByProjectFunc       func(projectID string) ([]models.Session, error)
	DeleteFunc              func(id string) error
}

func (m *SessionRepositoryMock) Create(session *models.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(session)
	}
	return nil
}

func (m *SessionRepositoryMock) GetByID(id string) (*models.Session, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return nil, nil
}

func (m *SessionRepositoryMock) GetByProjectAndNode(projectID, nodeID string) (*models.Session, error) {
	if m.GetByProjectAndNodeFunc != nil {
		return m.GetByProjectAndNodeFunc(projectID, nodeID)
	}
	return nil, nil
}

func (m *SessionRepositoryMock) ListByProject(projectID string) ([]models.Session, error) {
	if m.ListByProjectFunc != nil {
		return m.ListByProjectFunc(projectID)
	}
	return nil, nil
}

func (m *SessionRepositoryMock) Delete(id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(id)
	}
	return nil
}
