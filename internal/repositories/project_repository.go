package repositories

import (
	"errors"

	"gorm.io/gorm"

	"vibegrapher/internal/models"
)

type ProjectRepository interface {
	Create(project *models.Project) error
	GetByID(id string) (*models.Project, error)
	GetBySlug(slug string) (*models.Project, error)
	List(limit, offset int) ([]models.Project, error)
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

func (r *projectRepository) GetByID(id string) (*models.Project, error) {
	var project models.Project
	res := r.db.Where("id = ?", id).Take(&project)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &project, nil
}

func (r *projectRepository) GetBySlug(slug string) (*models.Project, error) {
	var project models.Project
	res := r.db.Where("slug = ?", slug).Take(&project)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &project, nil
}

func (r *projectRepository) List(limit, offset int) ([]models.Project, error) {
	var projects []models.Project
	res := r.db.Order("created_at desc").Limit(limit).Offset(offset).Find(&projects)
	if res.Error != nil {
		return nil, res.Error
	}
	return projects, nil
}
