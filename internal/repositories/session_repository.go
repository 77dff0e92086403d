package repositories

import (
	"errors"

	"gorm.io/gorm"

	"vibegrapher/internal/models"
)

type SessionRepository interface {
	Create(session *models.Session) error
	GetByID(id string) (*models.Session, error)
	GetByProjectAndNode(projectID, nodeID string) (*models.Session, error)
	ListByProject(projectID string) ([]models.Session, error)
	Delete(id string) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *models.Session) error {
	return r.db.Create(session).Error
}

func (r *sessionRepository) GetByID(id string) (*models.Session, error) {
	var sess models.Session
	res := r.db.Where("id = ?", id).Take(&sess)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &sess, nil
}

func (r *sessionRepository) GetByProjectAndNode(projectID, nodeID string) (*models.Session, error) {
	var sess models.Session
	res := r.db.Where("project_id = ? AND node_id = ?", projectID, nodeID).Take(&sess)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &sess, nil
}

func (r *sessionRepository) ListByProject(projectID string) ([]models.Session, error) {
	var sessions []models.Session
	res := r.db.Where("project_id = ?", projectID).Order("updated_at desc").Find(&sessions)
	if res.Error != nil {
		return nil, res.Error
	}
	return sessions, nil
}

func (r *sessionRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Session{}).Error
}
