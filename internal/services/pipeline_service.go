package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"vibegrapher/internal/events"
	"vibegrapher/internal/llm/agents"
	"vibegrapher/internal/models"
	"vibegrapher/internal/patch"
	"vibegrapher/internal/repositories"
)

// PipelineService orchestrates the generate -> validate -> review loop for
// one user message. At most one run may be active per scope key; competing
// callers get ErrPipelineBusy instead of queueing.
type PipelineService struct {
	projects  repositories.ProjectRepository
	sessions  repositories.SessionRepository
	messages  repositories.MessageRepository
	diffs     repositories.DiffRepository
	git       *GitService
	generator *agents.Generator
	reviewer  *agents.Reviewer
	hub       *events.Hub

	maxAttempts int

	mu     sync.Mutex
	active map[string]bool // scopeKey -> run in flight
}

func NewPipelineService(
	projects repositories.ProjectRepository,
	sessions repositories.SessionRepository,
	messages repositories.MessageRepository,
	diffs repositories.DiffRepository,
	git *GitService,
	generator *agents.Generator,
	reviewer *agents.Reviewer,
	hub *events.Hub,
	maxAttempts int,
) *PipelineService {
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	return &PipelineService{
		projects:    projects,
		sessions:    sessions,
		messages:    messages,
		diffs:       diffs,
		git:         git,
		generator:   generator,
		reviewer:    reviewer,
		hub:         hub,
		maxAttempts: maxAttempts,
		active:      make(map[string]bool),
	}
}

func (s *PipelineService) acquire(scopeKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[scopeKey] {
		return false
	}
	s.active[scopeKey] = true
	return true
}

func (s *PipelineService) release(scopeKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, scopeKey)
}

// Busy reports whether a run is in flight for the scope key.
func (s *PipelineService) Busy(scopeKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active[scopeKey]
}

// HandleMessage runs one pipeline invocation for a user message.
// messageID, when supplied by the client, deduplicates redelivered
// messages. The returned PipelineResult carries exactly one of: plain
// content, a diff id, or a terminal failure with the reviewer's final
// reasoning. Operational failures (model transport, git) are returned as
// errors and leave the transcript usable for a retry.
func (s *PipelineService) HandleMessage(ctx context.Context, sessionID, prompt, messageID string) (*models.PipelineResult, error) {
	session, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	project, err := s.projects.GetByID(session.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", session.ProjectID, ErrNotFound)
	}

	scopeKey := session.ScopeKey()
	if !s.acquire(scopeKey) {
		return nil, fmt.Errorf("%w: %s", ErrPipelineBusy, scopeKey)
	}
	defer s.release(scopeKey)

	ctx = events.WithSession(ctx, session.ID)
	return s.run(ctx, project, session, prompt, messageID)
}

func (s *PipelineService) run(ctx context.Context, project *models.Project, session *models.Session, prompt, messageID string) (*models.PipelineResult, error) {
	currentCode, err := s.git.CurrentCode(project)
	if err != nil {
		return nil, err
	}
	baseRevision, err := s.git.HeadRevision(project)
	if err != nil {
		return nil, err
	}

	if err := s.appendUserTurn(session.ID, prompt, messageID); err != nil {
		return nil, err
	}

	evt := events.New(events.EventPipelineStarted, project.ID, "pipeline run started")
	evt.Payload = map[string]any{"base_revision": baseRevision}
	s.hub.Publish(ctx, evt)

	totalTokens := 0
	attemptPrompt := agents.GeneratorUserPrompt(prompt, currentCode)
	lastReasoning := ""

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		history, err := s.messages.ReadAll(session.ID)
		if err != nil {
			return nil, err
		}
		// The durable user turn already carries the raw request; drop it
		// from the replayed history so the framed attempt prompt is the
		// only copy the model sees.
		if attempt == 1 && len(history) > 0 && history[len(history)-1].Role == models.RoleUser {
			history = history[:len(history)-1]
		}

		genResult, err := s.generator.Generate(ctx, history, attemptPrompt)
		if err != nil {
			s.hub.Publish(ctx, events.New(events.EventPipelineFailed, project.ID, fmt.Sprintf("generator call failed: %v", err)))
			return nil, fmt.Errorf("generator: %w", err)
		}
		totalTokens += genResult.TokenUsage

		s.publishGeneratorEvent(ctx, project.ID, attempt, genResult)
		if err := s.appendGeneratorTurn(session.ID, attempt, genResult); err != nil {
			return nil, err
		}

		if genResult.Plain != nil {
			// No patch intended; the run ends without a diff.
			return &models.PipelineResult{
				SessionID:  session.ID,
				Content:    genResult.Plain.Content,
				Attempts:   attempt,
				TokenUsage: totalTokens,
			}, nil
		}

		proposed := genResult.Patch
		gate := patch.Validate(currentCode, proposed.Patch, project.Language)
		s.publishValidationEvent(ctx, project.ID, attempt, gate)

		if !gate.Valid() {
			// Validation retries share the generator attempt budget but
			// never reach the reviewer.
			lastReasoning = gate.Error()
			attemptPrompt = agents.ValidationRetryPrompt(gate.Error(), currentCode)
			continue
		}

		review, err := s.reviewer.Review(ctx, history, prompt, proposed.Description, proposed.Patch, gate.ResultText)
		if err != nil {
			s.hub.Publish(ctx, events.New(events.EventPipelineFailed, project.ID, fmt.Sprintf("reviewer call failed: %v", err)))
			return nil, fmt.Errorf("reviewer: %w", err)
		}
		totalTokens += review.TokenUsage

		s.publishReviewEvent(ctx, project.ID, attempt, review)
		if err := s.appendReviewerTurn(session.ID, attempt, review); err != nil {
			return nil, err
		}

		if review.Approved {
			diff, err := s.createDiff(project, session, proposed, review, attemptPrompt, baseRevision)
			if err != nil {
				return nil, err
			}

			evt := events.New(events.EventDiffCreated, project.ID, "diff approved by reviewer")
			evt.Role = events.RoleReviewer
			evt.Attempt = attempt
			evt.Payload = map[string]any{"diff_id": diff.ID, "commit_message": diff.CommitMessage}
			s.hub.Publish(ctx, evt)

			return &models.PipelineResult{
				SessionID:  session.ID,
				DiffID:     diff.ID,
				Patch:      proposed.Patch,
				Attempts:   attempt,
				TokenUsage: totalTokens,
			}, nil
		}

		lastReasoning = review.Reasoning
		attemptPrompt = agents.ReviewRetryPrompt(review.Reasoning, currentCode)
	}

	// Attempt budget exhausted. The transcript keeps every attempt so a
	// follow-up message continues with full history.
	logrus.WithFields(logrus.Fields{
		"session_id": session.ID,
		"attempts":   s.maxAttempts,
	}).Warn("max attempts reached without approval")

	evt = events.New(events.EventPipelineFailed, project.ID, "max attempts reached without approval")
	evt.Payload = map[string]any{"reasoning": lastReasoning}
	s.hub.Publish(ctx, evt)

	return &models.PipelineResult{
		SessionID:  session.ID,
		Attempts:   s.maxAttempts,
		TokenUsage: totalTokens,
		Error:      fmt.Sprintf("max attempts reached without approval: %s", lastReasoning),
	}, nil
}

func (s *PipelineService) appendUserTurn(sessionID, prompt, messageID string) error {
	if messageID != "" {
		existing, err := s.messages.GetByID(messageID)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
	}
	return s.messages.Append(sessionID, &models.ConversationMessage{
		ID:      messageID,
		Role:    models.RoleUser,
		Content: prompt,
	})
}

func (s *PipelineService) appendGeneratorTurn(sessionID string, attempt int, result *agents.GeneratorResult) error {
	content := ""
	if result.Plain != nil {
		content = result.Plain.Content
	} else if result.Patch != nil {
		content = fmt.Sprintf("Proposed patch: %s\n%s", result.Patch.Description, result.Patch.Patch)
	}
	resultJSON, _ := json.Marshal(result)
	return s.messages.Append(sessionID, &models.ConversationMessage{
		ID:         uuid.NewString(),
		Role:       models.RoleGenerator,
		Content:    content,
		ResultJSON: string(resultJSON),
		Attempt:    attempt,
		TokenUsage: result.TokenUsage,
	})
}

func (s *PipelineService) appendReviewerTurn(sessionID string, attempt int, review *agents.ReviewResult) error {
	resultJSON, _ := json.Marshal(review)
	return s.messages.Append(sessionID, &models.ConversationMessage{
		ID:         uuid.NewString(),
		Role:       models.RoleReviewer,
		Content:    review.Reasoning,
		ResultJSON: string(resultJSON),
		Attempt:    attempt,
		TokenUsage: review.TokenUsage,
	})
}

func (s *PipelineService) createDiff(project *models.Project, session *models.Session, proposed *agents.ProposedPatch, review *agents.ReviewResult, generatorPrompt, baseRevision string) (*models.Diff, error) {
	diff := &models.Diff{
		ID:                uuid.NewString(),
		SessionID:         session.ID,
		ProjectID:         project.ID,
		BaseRevision:      baseRevision,
		TargetBranch:      project.DefaultBranch,
		PatchText:         proposed.Patch,
		Description:       proposed.Description,
		ReviewerReasoning: review.Reasoning,
		GeneratorPrompt:   generatorPrompt,
		CommitMessage:     review.CommitMessage,
		Status:            models.DiffApprovedByReviewer,
	}
	if err := s.diffs.Create(diff); err != nil {
		return nil, err
	}
	return diff, nil
}

func (s *PipelineService) publishGeneratorEvent(ctx context.Context, projectID string, attempt int, result *agents.GeneratorResult) {
	summary := "plain response"
	if result.Patch != nil {
		summary = "proposed patch: " + result.Patch.Description
	}
	evt := events.New(events.EventGeneratorResult, projectID, summary)
	evt.Role = events.RoleGenerator
	evt.Attempt = attempt
	s.hub.Publish(ctx, evt)
}

func (s *PipelineService) publishValidationEvent(ctx context.Context, projectID string, attempt int, gate patch.Result) {
	message := "patch validated"
	if !gate.Valid() {
		message = gate.Error()
	}
	evt := events.New(events.EventValidationResult, projectID, message)
	evt.Role = events.RoleGenerator
	evt.Attempt = attempt
	evt.Payload = map[string]any{"valid": gate.Valid(), "applies": gate.Applies}
	s.hub.Publish(ctx, evt)
}

func (s *PipelineService) publishReviewEvent(ctx context.Context, projectID string, attempt int, review *agents.ReviewResult) {
	message := "reviewer rejected patch"
	if review.Approved {
		message = "reviewer approved patch"
	}
	evt := events.New(events.EventReviewResult, projectID, message)
	evt.Role = events.RoleReviewer
	evt.Attempt = attempt
	evt.Payload = map[string]any{"approved": review.Approved, "reasoning": review.Reasoning}
	s.hub.Publish(ctx, evt)
}
