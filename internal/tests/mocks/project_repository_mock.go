package mocks

import (
	"vibegrapher/internal/models"
)

type ProjectRepositoryMock struct {
	CreateFunc    func(project *models.Project) error
	GetByIDFunc   func(id string) (*models.Project, error)
	GetBySlugFunc func(slug string) (*models.Project, error)
	ListFunc      func(limit, offset int) ([]models.Project, error)
}

func (m *ProjectRepositoryMock) Create(project *models.Project) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(project)
	}
	return nil
}

func (m *ProjectRepositoryMock) GetByID(id string) (*models.Project, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return nil, nil
}

func (m *ProjectRepositoryMock) GetBySlug(slug string) (*models.Project, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(slug)
	}
	return nil, nil
}

func (m *ProjectRepositoryMock) List(limit, offset int) ([]models.Project, error) {
	if m.ListFunc != nil {
		return m.ListFunc(limit, offset)
	}
	return nil, nil
}
