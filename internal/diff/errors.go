package diff

import (
	"fmt"
	"strings"
)

// ValidationError reports a structurally invalid edit request, detected
// before any edit is attempted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid edit request: %s", e.Reason)
}

// OutOfRangeError reports an edit whose effective line range falls outside
// the buffer.
type OutOfRangeError struct {
	// StartLine and EndLine are effective 1-based line numbers.
	StartLine int
	EndLine   int
	// BufferLines is the buffer's line count at the time of the attempt.
	BufferLines int
}

func (e *OutOfRangeError) Error() string {
	if e.EndLine > e.StartLine {
		return fmt.Sprintf("lines %d-%d out of range, file has %d line(s)", e.StartLine, e.EndLine, e.BufferLines)
	}
	return fmt.Sprintf("line %d out of range, file has %d line(s)", e.StartLine, e.BufferLines)
}

// ContentMismatchError reports that the block found at the effective
// location does not match the search block under the active trim policy.
// Expected and Actual carry both blocks so the caller can re-derive the
// correct match; StartLine anchors their effective line numbers.
type ContentMismatchError struct {
	StartLine int
	Expected  []string
	Actual    []string
}

func (e *ContentMismatchError) Error() string {
	return fmt.Sprintf("content mismatch at line %d: file content does not match search block", e.StartLine)
}

// AnnotatedExpected returns the search block prefixed with effective line
// numbers.
func (e *ContentMismatchError) AnnotatedExpected() string {
	return annotateLines(e.Expected, e.StartLine)
}

// AnnotatedActual returns the file's block prefixed with effective line
// numbers.
func (e *ContentMismatchError) AnnotatedActual() string {
	return annotateLines(e.Actual, e.StartLine)
}

// Detail renders the mismatch with both annotated blocks.
func (e *ContentMismatchError) Detail() string {
	var b strings.Builder
	b.WriteString(e.Error())
	b.WriteString("\nExpected:\n")
	b.WriteString(e.AnnotatedExpected())
	b.WriteString("\nActual:\n")
	b.WriteString(e.AnnotatedActual())
	return b.String()
}

func annotateLines(lines []string, first int) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d | %s", first+i, line)
	}
	return b.String()
}
