package unit_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibegrapher/internal/models"
	"vibegrapher/internal/services"
	"vibegrapher/internal/tests/mocks"
)

func TestProjectCreate_InitializesRepository(t *testing.T) {
	git := services.NewGitService(t.TempDir())
	var created *models.Project
	projects := &mocks.ProjectRepositoryMock{
		CreateFunc: func(project *models.Project) error {
			created = project
			return nil
		},
	}

	svc := services.NewProjectService(projects, git)
	project, err := svc.Create("My First Project!", "")
	require.NoError(t, err)

	assert.Equal(t, "my-first-project", project.Slug)
	assert.Equal(t, "python", project.Language)
	assert.Equal(t, "main.py", project.SourceFile)
	assert.Equal(t, "main", project.DefaultBranch)
	require.NotNil(t, created)

	// The repository exists with an initial commit.
	require.NoError(t, git.ValidateRepository(project))
	head, err := git.HeadRevision(project)
	require.NoError(t, err)
	assert.Len(t, head, 40)
}

func TestProjectCreate_RequiresName(t *testing.T) {
	svc := services.NewProjectService(&mocks.ProjectRepositoryMock{}, services.NewGitService(t.TempDir()))
	_, err := svc.Create("   ", "python")
	require.Error(t, err)
}

func TestProjectCreate_DuplicateSlug(t *testing.T) {
	projects := &mocks.ProjectRepositoryMock{
		GetBySlugFunc: func(slug string) (*models.Project, error) {
			return &models.Project{Slug: slug}, nil
		},
	}
	svc := services.NewProjectService(projects, services.NewGitService(t.TempDir()))
	_, err := svc.Create("Demo", "python")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in use")
}

func TestProjectCreate_GoLanguage(t *testing.T) {
	svc := services.NewProjectService(&mocks.ProjectRepositoryMock{}, services.NewGitService(t.TempDir()))
	project, err := svc.Create("tooling", "go")
	require.NoError(t, err)
	assert.Equal(t, "main.go", project.SourceFile)
}

func TestProjectGet_Unknown(t *testing.T) {
	svc := services.NewProjectService(&mocks.ProjectRepositoryMock{}, services.NewGitService(t.TempDir()))
	_, err := svc.Get("missing")
	require.ErrorIs(t, err, services.ErrNotFound)
}
