package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"vibegrapher/internal/models"
	"vibegrapher/internal/repositories"
)

// Default source files per language for freshly created projects.
var defaultSourceFiles = map[string]string{
	"python": "main.py",
	"go":     "main.go",
}

// ProjectService creates and reads projects, initializing the backing git
// repository on create.
type ProjectService struct {
	projects repositories.ProjectRepository
	git      *GitService
}

func NewProjectService(projects repositories.ProjectRepository, git *GitService) *ProjectService {
	return &ProjectService{projects: projects, git: git}
}

// Create registers a project and initializes its repository with an empty
// initial commit of the source file.
func (s *ProjectService) Create(name, language string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}
	language = strings.TrimSpace(language)
	if language == "" {
		language = "python"
	}
	sourceFile, ok := defaultSourceFiles[language]
	if !ok {
		sourceFile = "main.txt"
	}

	slug := slugify(name)
	existing, err := s.projects.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("project slug %q already in use", slug)
	}

	project := &models.Project{
		ID:            uuid.NewString(),
		Name:          name,
		Slug:          slug,
		Language:      language,
		SourceFile:    sourceFile,
		DefaultBranch: "main",
	}
	if _, err := s.git.CreateRepository(project, ""); err != nil {
		return nil, err
	}
	if err := s.projects.Create(project); err != nil {
		return nil, err
	}
	return project, nil
}

// Get returns a project by id.
func (s *ProjectService) Get(projectID string) (*models.Project, error) {
	project, err := s.projects.GetByID(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return project, nil
}

// List returns projects, newest first.
func (s *ProjectService) List(limit, offset int) ([]models.Project, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.projects.List(limit, offset)
}

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
