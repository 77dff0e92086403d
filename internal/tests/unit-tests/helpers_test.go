package unit_tests

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"vibegrapher/internal/models"
	"vibegrapher/internal/services"
)

const pythonBase = "def add(a):\n    return a\n"

const pythonPatch = `--- a/main.py
+++ b/main.py
@@ -1,2 +1,2 @@
-def add(a):
-    return a
+def add(a, b):
+    return a + b
`

const pythonPatched = "def add(a, b):\n    return a + b\n"

// Patch whose context lines do not match pythonBase.
const mismatchedPatch = `--- a/main.py
+++ b/main.py
@@ -1,2 +1,2 @@
-def subtract(a):
-    return a
+def subtract(a, b):
+    return a - b
`

// Patch that applies but leaves the result syntactically broken.
const brokenPatch = `--- a/main.py
+++ b/main.py
@@ -1,2 +1,2 @@
-def add(a):
-    return a
+def add(a, b):
+    return a +
`

// newGitProject initializes a real repository under a temp dir with
// pythonBase committed and returns the service, project and head revision.
func newGitProject(t *testing.T) (*services.GitService, *models.Project, string) {
	t.Helper()
	git := services.NewGitService(t.TempDir())
	project := &models.Project{
		ID:            uuid.NewString(),
		Name:          "Demo",
		Slug:          "demo",
		Language:      "python",
		SourceFile:    "main.py",
		DefaultBranch: "main",
	}
	head, err := git.CreateRepository(project, pythonBase)
	require.NoError(t, err)
	return git, project, head
}

func patchResponse(t *testing.T, patch, description string) string {
	t.Helper()
	raw, err := json.Marshal(map[string]string{
		"type":        "patch",
		"patch":       patch,
		"description": description,
	})
	require.NoError(t, err)
	return string(raw)
}

func textResponse(t *testing.T, content string) string {
	t.Helper()
	raw, err := json.Marshal(map[string]string{
		"type":    "text",
		"content": content,
	})
	require.NoError(t, err)
	return string(raw)
}

func reviewResponse(t *testing.T, approved bool, reasoning, commitMessage string) string {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"approved":       approved,
		"reasoning":      reasoning,
		"commit_message": commitMessage,
	})
	require.NoError(t, err)
	return string(raw)
}
