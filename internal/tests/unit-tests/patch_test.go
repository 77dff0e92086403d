package unit_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibegrapher/internal/patch"
)

func TestApply_RewritesFunction(t *testing.T) {
	result, err := patch.Apply(pythonBase, pythonPatch)
	require.NoError(t, err)
	assert.Equal(t, pythonPatched, result)
}

func TestApply_WithoutFileHeaders(t *testing.T) {
	headerless := "@@ -1,2 +1,2 @@\n-def add(a):\n-    return a\n+def add(a, b):\n+    return a + b\n"
	result, err := patch.Apply(pythonBase, headerless)
	require.NoError(t, err)
	assert.Equal(t, pythonPatched, result)
}

func TestApply_ContextMismatch(t *testing.T) {
	_, err := patch.Apply(pythonBase, mismatchedPatch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not apply")
}

func TestApply_EmptyPatch(t *testing.T) {
	_, err := patch.Apply(pythonBase, "   \n")
	require.Error(t, err)
}

func TestApply_MultiFileRejected(t *testing.T) {
	multi := "--- a/one.py\n+++ b/one.py\n@@ -1 +1 @@\n-x\n+y\n" +
		"--- a/two.py\n+++ b/two.py\n@@ -1 +1 @@\n-a\n+b\n"
	_, err := patch.Apply("x\n", multi)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 1")
}

func TestApply_PureInsertion(t *testing.T) {
	base := "line one\nline two\n"
	insertion := "--- a/f\n+++ b/f\n@@ -1,0 +2 @@\n+inserted\n"
	result, err := patch.Apply(base, insertion)
	require.NoError(t, err)
	assert.Equal(t, "line one\ninserted\nline two\n", result)
}

func TestValidate_ValidPatch(t *testing.T) {
	res := patch.Validate(pythonBase, pythonPatch, "python")
	assert.True(t, res.Valid())
	assert.True(t, res.Applies)
	assert.Equal(t, pythonPatched, res.ResultText)
	assert.Nil(t, res.SyntaxError)
}

func TestValidate_ApplyFailureSkipsSyntaxPass(t *testing.T) {
	res := patch.Validate(pythonBase, mismatchedPatch, "python")
	assert.False(t, res.Valid())
	assert.False(t, res.Applies)
	assert.Nil(t, res.SyntaxError)
	assert.Contains(t, res.Error(), "Failed to apply patch:")
}

func TestValidate_SyntaxErrorWithLine(t *testing.T) {
	res := patch.Validate(pythonBase, brokenPatch, "python")
	assert.True(t, res.Applies)
	require.NotNil(t, res.SyntaxError)
	assert.False(t, res.Valid())
	assert.Equal(t, 2, res.SyntaxError.Line)
	assert.Contains(t, res.Error(), "SyntaxError:")
	assert.Contains(t, res.Error(), "at line 2")
}

func TestValidate_UnknownLanguageSkipsSyntaxPass(t *testing.T) {
	res := patch.Validate(pythonBase, brokenPatch, "brainfuck")
	assert.True(t, res.Valid())
}

func TestCheckSyntax_Go(t *testing.T) {
	assert.Nil(t, patch.CheckSyntax("package main\n\nfunc main() {}\n", "go"))
	assert.NotNil(t, patch.CheckSyntax("package main\n\nfunc main() {\n", "go"))
}
