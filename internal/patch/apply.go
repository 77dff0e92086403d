package patch

import (
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// Apply applies a unified diff to base and returns the patched text. The
// patch must describe a single file; hunk context lines are verified
// against base so a patch computed against different content is rejected
// instead of silently corrupting the result.
func Apply(base, patchText string) (string, error) {
	patchText = strings.TrimSpace(patchText)
	if patchText == "" {
		return "", fmt.Errorf("patch is empty")
	}

	fileDiffs, err := diff.ParseMultiFileDiff([]byte(patchText))
	if err != nil {
		// Patches without ---/+++ headers still carry hunks; retry with
		// a synthesized header before giving up.
		fileDiffs, err = diff.ParseMultiFileDiff([]byte("--- a/file\n+++ b/file\n" + patchText))
		if err != nil {
			return "", fmt.Errorf("parse patch: %w", err)
		}
	}
	if len(fileDiffs) == 0 {
		return "", fmt.Errorf("patch contains no file changes")
	}
	if len(fileDiffs) > 1 {
		return "", fmt.Errorf("patch touches %d files, expected 1", len(fileDiffs))
	}

	baseLines := strings.Split(base, "\n")
	// Treat a trailing newline as a terminator, not an extra empty line.
	trailingNewline := strings.HasSuffix(base, "\n")
	if trailingNewline {
		baseLines = baseLines[:len(baseLines)-1]
	}

	var out []string
	cursor := 0 // index into baseLines of the next unconsumed line

	for _, hunk := range fileDiffs[0].Hunks {
		start := int(hunk.OrigStartLine) - 1
		if int(hunk.OrigLines) == 0 {
			// Pure insertion: OrigStartLine points at the line after which
			// new content is added.
			start = int(hunk.OrigStartLine)
		}
		if start < cursor || start > len(baseLines) {
			return "", fmt.Errorf("hunk @@ -%d,%d @@ does not fit the base text", hunk.OrigStartLine, hunk.OrigLines)
		}

		out = append(out, baseLines[cursor:start]...)
		cursor = start

		for _, line := range strings.Split(strings.TrimSuffix(string(hunk.Body), "\n"), "\n") {
			if line == "" {
				line = " "
			}
			op, text := line[0], line[1:]
			switch op {
			case ' ':
				if cursor >= len(baseLines) || baseLines[cursor] != text {
					return "", contextMismatch(hunk.OrigStartLine, cursor, text, baseLines)
				}
				out = append(out, text)
				cursor++
			case '-':
				if cursor >= len(baseLines) || baseLines[cursor] != text {
					return "", contextMismatch(hunk.OrigStartLine, cursor, text, baseLines)
				}
				cursor++
			case '+':
				out = append(out, text)
			case '\\':
				// "\ No newline at end of file" marker
			default:
				return "", fmt.Errorf("malformed hunk line %q", line)
			}
		}
	}

	out = append(out, baseLines[cursor:]...)

	result := strings.Join(out, "\n")
	if trailingNewline && result != "" {
		result += "\n"
	}
	return result, nil
}

func contextMismatch(hunkStart int32, cursor int, want string, baseLines []string) error {
	got := "<end of file>"
	if cursor < len(baseLines) {
		got = baseLines[cursor]
	}
	return fmt.Errorf("hunk @@ -%d @@ does not apply: expected %q at line %d, found %q",
		hunkStart, want, cursor+1, got)
}
