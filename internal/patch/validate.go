package patch

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
)

// SyntaxError describes the first syntax problem found in a patched text.
type SyntaxError struct {
	Message string `json:"message"`
	Line    int    `json:"line"`
}

// Result is the outcome of running the validation gate. ResultText and
// SyntaxError are only meaningful when Applies is true: a patch that does
// not apply is reported as such without a syntax pass, so errors are never
// attributed to the wrong stage.
type Result struct {
	Applies     bool         `json:"applies"`
	ResultText  string       `json:"result_text,omitempty"`
	ApplyError  string       `json:"apply_error,omitempty"`
	SyntaxError *SyntaxError `json:"syntax_error,omitempty"`
}

// Valid reports whether the patch applied and produced well-formed text.
func (r Result) Valid() bool {
	return r.Applies && r.SyntaxError == nil
}

// Error renders the gate outcome as the verbatim text fed back to the
// generator on a retry.
func (r Result) Error() string {
	if !r.Applies {
		return fmt.Sprintf("Failed to apply patch: %s", r.ApplyError)
	}
	if r.SyntaxError != nil {
		return fmt.Sprintf("SyntaxError: %s at line %d", r.SyntaxError.Message, r.SyntaxError.Line)
	}
	return ""
}

// Validate applies patchText to base and, if application succeeds, checks
// the result for syntactic well-formedness in the given language. Unknown
// languages skip the syntax pass. Pure function, safe for concurrent use.
func Validate(base, patchText, language string) Result {
	patched, err := Apply(base, patchText)
	if err != nil {
		return Result{Applies: false, ApplyError: err.Error()}
	}

	res := Result{Applies: true, ResultText: patched}
	if synErr := CheckSyntax(patched, language); synErr != nil {
		res.SyntaxError = synErr
	}
	return res
}

// CheckSyntax parses text with the tree-sitter grammar for language and
// returns the first error found, or nil. Languages without a grammar here
// are not checked.
func CheckSyntax(text, language string) *SyntaxError {
	var lang *sitter.Language
	switch language {
	case "python":
		lang = python.GetLanguage()
	case "go":
		lang = golang.GetLanguage()
	default:
		return nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(text))
	if err != nil {
		return &SyntaxError{Message: err.Error(), Line: 1}
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}

	node := firstErrorNode(root)
	if node == nil {
		node = root
	}
	msg := "invalid syntax"
	if node.IsMissing() {
		msg = fmt.Sprintf("missing %s", node.Type())
	}
	return &SyntaxError{
		Message: msg,
		Line:    int(node.StartPoint().Row) + 1,
	}
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || !child.HasError() {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	return nil
}
