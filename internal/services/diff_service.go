package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"vibegrapher/internal/events"
	"vibegrapher/internal/llm/agents"
	"vibegrapher/internal/models"
	"vibegrapher/internal/patch"
	"vibegrapher/internal/repositories"
)

// Human review decisions.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// DiffService owns the diff lifecycle after reviewer approval: the human
// decision, the stale-base-checked commit, and commit message refinement.
type DiffService struct {
	diffs    repositories.DiffRepository
	sessions repositories.SessionRepository
	projects repositories.ProjectRepository
	messages repositories.MessageRepository
	git      *GitService
	reviewer *agents.Reviewer
	pipeline *PipelineService
	hub      *events.Hub
}

func NewDiffService(
	diffs repositories.DiffRepository,
	sessions repositories.SessionRepository,
	projects repositories.ProjectRepository,
	messages repositories.MessageRepository,
	git *GitService,
	reviewer *agents.Reviewer,
	pipeline *PipelineService,
	hub *events.Hub,
) *DiffService {
	return &DiffService{
		diffs:    diffs,
		sessions: sessions,
		projects: projects,
		messages: messages,
		git:      git,
		reviewer: reviewer,
		pipeline: pipeline,
		hub:      hub,
	}
}

// Get returns a diff by id.
func (s *DiffService) Get(diffID string) (*models.Diff, error) {
	diff, err := s.diffs.GetByID(diffID)
	if err != nil {
		return nil, err
	}
	if diff == nil {
		return nil, fmt.Errorf("diff %s: %w", diffID, ErrNotFound)
	}
	return diff, nil
}

// ListPending returns the session's diffs still awaiting a human decision.
// This is the deterministic recovery read clients use after a reconnect.
func (s *DiffService) ListPending(sessionID string) ([]models.Diff, error) {
	session, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return s.diffs.ListPendingBySession(sessionID)
}

// ReviewHuman records the human decision on a diff. Approve confirms
// nothing yet (the commit call is the confirmation); reject requires
// feedback, terminates the diff and seeds a new pipeline run with the
// feedback, returning that run's result.
func (s *DiffService) ReviewHuman(ctx context.Context, diffID, decision, feedback string) (*models.Diff, *models.PipelineResult, error) {
	diff, err := s.Get(diffID)
	if err != nil {
		return nil, nil, err
	}

	switch decision {
	case DecisionApprove:
		if diff.Terminal() {
			return nil, nil, fmt.Errorf("diff %s: %w", diffID, ErrDiffTerminal)
		}
		// Approval is confirmed at commit time; no state change here.
		return diff, nil, nil

	case DecisionReject:
		if strings.TrimSpace(feedback) == "" {
			return nil, nil, fmt.Errorf("rejection requires feedback")
		}
		session, err := s.sessions.GetByID(diff.SessionID)
		if err != nil {
			return nil, nil, err
		}
		if session == nil {
			return nil, nil, fmt.Errorf("session %s: %w", diff.SessionID, ErrNotFound)
		}
		// The rejection must not consume the diff unless the feedback run
		// can actually start.
		if s.pipeline.Busy(session.ScopeKey()) {
			return nil, nil, fmt.Errorf("%w: %s", ErrPipelineBusy, session.ScopeKey())
		}
		if err := s.diffs.MarkRejectedByHuman(diffID, feedback); err != nil {
			if errors.Is(err, repositories.ErrStatusConflict) {
				return nil, nil, fmt.Errorf("diff %s: %w", diffID, ErrDiffTerminal)
			}
			return nil, nil, err
		}

		evt := events.New(events.EventDiffRejected, diff.ProjectID, "diff rejected by human")
		evt.Role = events.RoleHuman
		evt.SessionID = diff.SessionID
		evt.Payload = map[string]any{"diff_id": diff.ID, "feedback": feedback}
		s.hub.Publish(ctx, evt)

		originalRequest, err := s.lastUserRequest(diff.SessionID)
		if err != nil {
			return nil, nil, err
		}

		// A rejected diff is never reused: the feedback starts a fresh
		// run against the same conversation context.
		prompt := agents.HumanRejectionPrompt(feedback, originalRequest)
		result, err := s.pipeline.HandleMessage(ctx, diff.SessionID, prompt, "")
		if err != nil {
			return nil, nil, err
		}

		updated, getErr := s.Get(diffID)
		if getErr != nil {
			return nil, nil, getErr
		}
		return updated, result, nil

	default:
		return nil, nil, fmt.Errorf("unknown decision %q", decision)
	}
}

// Commit applies an approved diff to the project tree. The head revision
// must still equal the diff's base revision; otherwise ErrStaleBase is
// returned and nothing is mutated.
func (s *DiffService) Commit(ctx context.Context, diffID, messageOverride string) (*models.Diff, error) {
	diff, err := s.Get(diffID)
	if err != nil {
		return nil, err
	}
	if diff.Terminal() {
		return nil, fmt.Errorf("diff %s: %w", diffID, ErrDiffTerminal)
	}
	if diff.Status != models.DiffApprovedByReviewer {
		return nil, fmt.Errorf("diff %s has status %s: %w", diffID, diff.Status, ErrDiffNotApproved)
	}

	project, err := s.projects.GetByID(diff.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", diff.ProjectID, ErrNotFound)
	}

	head, err := s.git.HeadRevision(project)
	if err != nil {
		return nil, err
	}
	if head != diff.BaseRevision {
		return nil, fmt.Errorf("%w: diff base %s, tree head %s", ErrStaleBase, diff.BaseRevision, head)
	}

	currentCode, err := s.git.CurrentCode(project)
	if err != nil {
		return nil, err
	}
	patched, err := patch.Apply(currentCode, diff.PatchText)
	if err != nil {
		return nil, fmt.Errorf("apply approved patch: %w", err)
	}

	message := strings.TrimSpace(messageOverride)
	if message == "" {
		message = diff.CommitMessage
	}

	revision, err := s.git.CommitContent(project, patched, message)
	if err != nil {
		return nil, err
	}

	if err := s.diffs.MarkCommitted(diffID, revision); err != nil {
		if errors.Is(err, repositories.ErrStatusConflict) {
			return nil, fmt.Errorf("diff %s: %w", diffID, ErrDiffTerminal)
		}
		return nil, err
	}

	// The reviewer evaluates the next request without bias from the
	// just-committed patch; the generator keeps its full memory.
	if err := s.messages.ClearRole(diff.SessionID, models.RoleReviewer); err != nil {
		return nil, err
	}

	evt := events.New(events.EventDiffCommitted, diff.ProjectID, "diff committed")
	evt.Role = events.RoleHuman
	evt.SessionID = diff.SessionID
	evt.Payload = map[string]any{"diff_id": diff.ID, "committed_revision": revision}
	s.hub.Publish(ctx, evt)

	return s.Get(diffID)
}

// RefineCommitMessage re-invokes the reviewer solely for a new commit
// message suggestion; status and patch content are untouched.
func (s *DiffService) RefineCommitMessage(ctx context.Context, diffID string) (*models.Diff, error) {
	diff, err := s.Get(diffID)
	if err != nil {
		return nil, err
	}
	if diff.Terminal() {
		return nil, fmt.Errorf("diff %s: %w", diffID, ErrDiffTerminal)
	}

	message, err := s.reviewer.SuggestCommitMessage(ctx, diff.Description, diff.PatchText)
	if err != nil {
		return nil, err
	}
	if err := s.diffs.UpdateCommitMessage(diffID, message); err != nil {
		if errors.Is(err, repositories.ErrStatusConflict) {
			return nil, fmt.Errorf("diff %s: %w", diffID, ErrDiffTerminal)
		}
		return nil, err
	}
	return s.Get(diffID)
}

// RunTests re-runs the validation gate against the diff's recorded base
// revision and caches the outcome on the diff row.
func (s *DiffService) RunTests(ctx context.Context, diffID string) (*models.Diff, error) {
	diff, err := s.Get(diffID)
	if err != nil {
		return nil, err
	}
	project, err := s.projects.GetByID(diff.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", diff.ProjectID, ErrNotFound)
	}

	base, err := s.git.FileAtRevision(project, diff.BaseRevision)
	if err != nil {
		return nil, err
	}

	gate := patch.Validate(base, diff.PatchText, project.Language)
	results, _ := json.Marshal(gate)
	if err := s.diffs.CacheTestResults(diffID, string(results), time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.Get(diffID)
}

func (s *DiffService) lastUserRequest(sessionID string) (string, error) {
	history, err := s.messages.ReadAll(sessionID)
	if err != nil {
		return "", err
	}
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == models.RoleUser {
			return history[i].Content, nil
		}
	}
	return "", nil
}
