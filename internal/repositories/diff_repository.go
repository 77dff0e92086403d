package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"vibegrapher/internal/models"
)

// ErrStatusConflict is returned when a guarded status transition finds the
// diff no longer in the expected state. Transitions are enforced in SQL so
// two racing callers cannot both win.
var ErrStatusConflict = errors.New("diff status transition conflict")

type DiffRepository interface {
	Create(diff *models.Diff) error
	GetByID(id string) (*models.Diff, error)
	ListPendingBySession(sessionID string) ([]models.Diff, error)
	MarkRejectedByHuman(id, feedback string) error
	MarkCommitted(id, revision string) error
	UpdateCommitMessage(id, message string) error
	CacheTestResults(id, results string, ranAt time.Time) error
}

type diffRepository struct {
	db *gorm.DB
}

func NewDiffRepository(db *gorm.DB) DiffRepository {
	return &diffRepository{db: db}
}

func (r *diffRepository) Create(diff *models.Diff) error {
	if diff == nil {
		return fmt.Errorf("diff is required")
	}
	if diff.Status != models.DiffApprovedByReviewer {
		return fmt.Errorf("new diffs must start in %s, got %s", models.DiffApprovedByReviewer, diff.Status)
	}
	return r.db.Create(diff).Error
}

func (r *diffRepository) GetByID(id string) (*models.Diff, error) {
	var diff models.Diff
	res := r.db.Where("id = ?", id).Take(&diff)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &diff, nil
}

func (r *diffRepository) ListPendingBySession(sessionID string) ([]models.Diff, error) {
	var diffs []models.Diff
	res := r.db.Where("session_id = ? AND status = ?", sessionID, models.DiffApprovedByReviewer).
		Order("created_at asc").Find(&diffs)
	if res.Error != nil {
		return nil, res.Error
	}
	return diffs, nil
}

func (r *diffRepository) MarkRejectedByHuman(id, feedback string) error {
	res := r.db.Model(&models.Diff{}).
		Where("id = ? AND status = ?", id, models.DiffApprovedByReviewer).
		Updates(map[string]interface{}{
			"status":         models.DiffRejectedByHuman,
			"human_feedback": feedback,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *diffRepository) MarkCommitted(id, revision string) error {
	res := r.db.Model(&models.Diff{}).
		Where("id = ? AND status = ?", id, models.DiffApprovedByReviewer).
		Updates(map[string]interface{}{
			"status":             models.DiffCommitted,
			"committed_revision": revision,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *diffRepository) UpdateCommitMessage(id, message string) error {
	res := r.db.Model(&models.Diff{}).
		Where("id = ? AND status = ?", id, models.DiffApprovedByReviewer).
		Update("commit_message", message)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *diffRepository) CacheTestResults(id, results string, ranAt time.Time) error {
	return r.db.Model(&models.Diff{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"test_results": results,
			"tests_run_at": ranAt,
		}).Error
}
