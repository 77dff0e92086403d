package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"vibegrapher/internal/models"
)

const (
	commitAuthorName  = "Vibegrapher"
	commitAuthorEmail = "vibegrapher@example.com"
)

// GitService manages the per-project git repositories under baseDir. The
// worktree is mutated only through CommitContent; everything else reads.
type GitService struct {
	baseDir string
}

func NewGitService(baseDir string) *GitService {
	return &GitService{baseDir: baseDir}
}

// RepoPath returns the repository directory for a project.
func (g *GitService) RepoPath(project *models.Project) string {
	return filepath.Join(g.baseDir, project.Slug)
}

// CreateRepository initializes the project repository with an initial
// commit of the project's source file and returns the head revision.
func (g *GitService) CreateRepository(project *models.Project, initialContent string) (string, error) {
	repoPath := g.RepoPath(project)
	if err := os.MkdirAll(repoPath, 0o755); err != nil {
		return "", fmt.Errorf("create repo dir: %w", err)
	}

	if _, err := git.PlainInit(repoPath, false); err != nil {
		return "", fmt.Errorf("init repository: %w", err)
	}

	return g.CommitContent(project, initialContent, "Initial commit")
}

// Open an existing project repo
func (g *GitService) Open(project *models.Project) (*git.Repository, error) {
	repo, err := git.PlainOpen(g.RepoPath(project))
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", g.RepoPath(project), err)
	}
	return repo, nil
}

// HeadRevision returns the current head commit hash for the project.
func (g *GitService) HeadRevision(project *models.Project) (string, error) {
	repo, err := g.Open(project)
	if err != nil {
		return "", err
	}
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("get HEAD reference: %w", err)
	}
	return ref.Hash().String(), nil
}

// CurrentCode reads the project's source file from the worktree.
func (g *GitService) CurrentCode(project *models.Project) (string, error) {
	data, err := os.ReadFile(filepath.Join(g.RepoPath(project), project.SourceFile))
	if err != nil {
		return "", fmt.Errorf("read source file: %w", err)
	}
	return string(data), nil
}

// CommitContent writes content to the project's source file, commits it
// and returns the new revision hash.
func (g *GitService) CommitContent(project *models.Project, content, message string) (string, error) {
	repoPath := g.RepoPath(project)
	if err := os.WriteFile(filepath.Join(repoPath, project.SourceFile), []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write source file: %w", err)
	}

	repo, err := g.Open(project)
	if err != nil {
		return "", err
	}
	w, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("get worktree: %w", err)
	}
	if _, err := w.Add(project.SourceFile); err != nil {
		return "", fmt.Errorf("stage source file: %w", err)
	}

	hash, err := w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  commitAuthorName,
			Email: commitAuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return hash.String(), nil
}

// FileAtRevision returns the project's source file content at a given
// commit, used to re-run validation against a diff's recorded base.
func (g *GitService) FileAtRevision(project *models.Project, revision string) (string, error) {
	repo, err := g.Open(project)
	if err != nil {
		return "", err
	}
	commit, err := repo.CommitObject(plumbing.NewHash(revision))
	if err != nil {
		return "", fmt.Errorf("get commit %s: %w", revision, err)
	}
	file, err := commit.File(project.SourceFile)
	if err != nil {
		return "", fmt.Errorf("get %s at %s: %w", project.SourceFile, revision, err)
	}
	return file.Contents()
}

// ValidateRepository checks that the project's repository exists and has a
// valid HEAD.
func (g *GitService) ValidateRepository(project *models.Project) error {
	repo, err := g.Open(project)
	if err != nil {
		return err
	}
	if _, err := repo.Head(); err != nil {
		return fmt.Errorf("repository is in an invalid state: %w", err)
	}
	return nil
}
