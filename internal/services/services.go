package services

import (
	"gorm.io/gorm"

	"vibegrapher/internal/events"
	"vibegrapher/internal/llm/agents"
	"vibegrapher/internal/repositories"
)

// Services aggregates all domain services backed by the database.
type Services struct {
	Projects *ProjectService
	Sessions *SessionService
	Pipeline *PipelineService
	Diffs    *DiffService
	Git      *GitService
}

// NewServices constructs the service container using repositories backed
// by db. The generator and reviewer invokers are injected so tests can
// substitute deterministic stubs for the model backends.
func NewServices(db *gorm.DB, projectsDir string, hub *events.Hub, generatorInvoker, reviewerInvoker agents.Invoker, maxAttempts int) *Services {
	projectRepo := repositories.NewProjectRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	diffRepo := repositories.NewDiffRepository(db)

	git := NewGitService(projectsDir)
	generator := agents.NewGenerator(generatorInvoker)
	reviewer := agents.NewReviewer(reviewerInvoker)

	pipeline := NewPipelineService(projectRepo, sessionRepo, messageRepo, diffRepo, git, generator, reviewer, hub, maxAttempts)
	diffs := NewDiffService(diffRepo, sessionRepo, projectRepo, messageRepo, git, reviewer, pipeline, hub)

	return &Services{
		Projects: NewProjectService(projectRepo, git),
		Sessions: NewSessionService(sessionRepo, messageRepo, projectRepo),
		Pipeline: pipeline,
		Diffs:    diffs,
		Git:      git,
	}
}
