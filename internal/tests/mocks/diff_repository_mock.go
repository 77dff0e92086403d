package mocks

import (
	"sync"
	"time"

	"vibegrapher/internal/models"
	"vibegrapher/internal/repositories"
)

type DiffRepositoryMock struct {
	CreateFunc               func(diff *models.Diff) error
	GetByIDFunc              func(id string) (*models.Diff, error)
	ListPendingBySessionFunc func(sessionID string) ([]models.Diff, error)
	MarkRejectedByHumanFunc  func(id, feedback string) error
	MarkCommittedFunc        func(id, revision string) error
	UpdateCommitMessageFunc  func(id, message string) error
	CacheTestResultsFunc     func(id, results string, ranAt time.Time) error
}

func (m *DiffRepositoryMock) Create(diff *models.Diff) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(diff)
	}
	return nil
}

func (m *DiffRepositoryMock) GetByID(id string) (*models.Diff, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return nil, nil
}

func (m *DiffRepositoryMock) ListPendingBySession(sessionID string) ([]models.Diff, error) {
	if m.ListPendingBySessionFunc != nil {
		return m.ListPendingBySessionFunc(sessionID)
	}
	return nil, nil
}

func (m *DiffRepositoryMock) MarkRejectedByHuman(id, feedback string) error {
	if m.MarkRejectedByHumanFunc != nil {
		return m.MarkRejectedByHumanFunc(id, feedback)
	}
	return nil
}

func (m *DiffRepositoryMock) MarkCommitted(id, revision string) error {
	if m.MarkCommittedFunc != nil {
		return m.MarkCommittedFunc(id, revision)
	}
	return nil
}

func (m *DiffRepositoryMock) UpdateCommitMessage(id, message string) error {
	if m.UpdateCommitMessageFunc != nil {
		return m.UpdateCommitMessageFunc(id, message)
	}
	return nil
}

func (m *DiffRepositoryMock) CacheTestResults(id, results string, ranAt time.Time) error {
	if m.CacheTestResultsFunc != nil {
		return m.CacheTestResultsFunc(id, results, ranAt)
	}
	return nil
}

// InMemoryDiffs is a DiffRepositoryMock backed by an in-memory store that
// enforces the same guarded transitions as the SQL repository.
type InMemoryDiffs struct {
	*DiffRepositoryMock

	mu    sync.Mutex
	diffs map[string]*models.Diff
}

func NewInMemoryDiffs() *InMemoryDiffs {
	s := &InMemoryDiffs{
		DiffRepositoryMock: &DiffRepositoryMock{},
		diffs:              make(map[string]*models.Diff),
	}
	s.CreateFunc = func(diff *models.Diff) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		copied := *diff
		s.diffs[diff.ID] = &copied
		return nil
	}
	s.GetByIDFunc = func(id string) (*models.Diff, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		diff, ok := s.diffs[id]
		if !ok {
			return nil, nil
		}
		copied := *diff
		return &copied, nil
	}
	s.ListPendingBySessionFunc = func(sessionID string) ([]models.Diff, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		var out []models.Diff
		for _, diff := range s.diffs {
			if diff.SessionID == sessionID && diff.Status == models.DiffApprovedByReviewer {
				out = append(out, *diff)
			}
		}
		return out, nil
	}
	s.MarkRejectedByHumanFunc = func(id, feedback string) error {
		return s.transition(id, func(diff *models.Diff) {
			diff.Status = models.DiffRejectedByHuman
			diff.HumanFeedback = feedback
		})
	}
	s.MarkCommittedFunc = func(id, revision string) error {
		return s.transition(id, func(diff *models.Diff) {
			diff.Status = models.DiffCommitted
			diff.CommittedRevision = revision
		})
	}
	s.UpdateCommitMessageFunc = func(id, message string) error {
		return s.transition(id, func(diff *models.Diff) {
			diff.CommitMessage = message
		})
	}
	s.CacheTestResultsFunc = func(id, results string, ranAt time.Time) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		diff, ok := s.diffs[id]
		if !ok {
			return repositories.ErrStatusConflict
		}
		diff.TestResults = results
		diff.TestsRunAt = &ranAt
		return nil
	}
	return s
}

func (s *InMemoryDiffs) transition(id string, mutate func(*models.Diff)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	diff, ok := s.diffs[id]
	if !ok || diff.Status != models.DiffApprovedByReviewer {
		return repositories.ErrStatusConflict
	}
	mutate(diff)
	return nil
}
