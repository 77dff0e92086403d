package unit_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitService_CreateAndCommit(t *testing.T) {
	git, project, head := newGitProject(t)

	assert.Len(t, head, 40)
	require.NoError(t, git.ValidateRepository(project))

	code, err := git.CurrentCode(project)
	require.NoError(t, err)
	assert.Equal(t, pythonBase, code)

	current, err := git.HeadRevision(project)
	require.NoError(t, err)
	assert.Equal(t, head, current)
}

func TestGitService_CommitMovesHead(t *testing.T) {
	git, project, head := newGitProject(t)

	next, err := git.CommitContent(project, pythonPatched, "widen add")
	require.NoError(t, err)
	assert.NotEqual(t, head, next)

	current, err := git.HeadRevision(project)
	require.NoError(t, err)
	assert.Equal(t, next, current)

	code, err := git.CurrentCode(project)
	require.NoError(t, err)
	assert.Equal(t, pythonPatched, code)
}

func TestGitService_FileAtRevision(t *testing.T) {
	git, project, head := newGitProject(t)

	_, err := git.CommitContent(project, pythonPatched, "widen add")
	require.NoError(t, err)

	// The old revision still serves the old content.
	old, err := git.FileAtRevision(project, head)
	require.NoError(t, err)
	assert.Equal(t, pythonBase, old)
}

func TestGitService_OpenMissingRepo(t *testing.T) {
	git, project, _ := newGitProject(t)
	project.Slug = "does-not-exist"
	_, err := git.Open(project)
	require.Error(t, err)
}
