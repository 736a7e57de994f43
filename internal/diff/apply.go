package diff

import (
	"errors"
	"fmt"
	"strings"
)

// splitBlock splits an edit block into lines. Unlike file splitting, a
// block keeps every line the caller sent: an empty block is one empty line,
// and a trailing newline yields a trailing empty line.
func splitBlock(block string) []string {
	block = strings.ReplaceAll(block, "\r\n", "\n")
	block = strings.ReplaceAll(block, "\r", "\n")
	return strings.Split(block, "\n")
}

// blockMatches compares extracted buffer lines against search lines. Under
// trim, both sides are stripped of leading and trailing whitespace per line
// before comparing.
func blockMatches(actual, expected []string, trim bool) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i := range actual {
		a, e := actual[i], expected[i]
		if trim {
			a, e = strings.TrimSpace(a), strings.TrimSpace(e)
		}
		if a != e {
			return false
		}
	}
	return true
}

// applied captures one successful edit for offset tracking and reporting.
type applied struct {
	lines        []string
	delta        int
	effStart     int
	searchCount  int
	replaceCount int
}

// applyEdit applies a single edit to the buffer at its offset-adjusted
// location. The input buffer is never modified; the result carries a fresh
// slice. A negative cumulative offset can push the effective start below
// line 1, which is out of range like a start beyond the buffer.
func applyEdit(lines []string, e Edit, offset int, trim bool) (*applied, error) {
	effStart := e.StartLine + offset
	if effStart < 1 || effStart > len(lines) {
		return nil, &OutOfRangeError{StartLine: effStart, EndLine: effStart, BufferLines: len(lines)}
	}

	searchLines := splitBlock(e.Search)
	effEnd := effStart + len(searchLines) - 1
	if effEnd > len(lines) {
		return nil, &OutOfRangeError{StartLine: effStart, EndLine: effEnd, BufferLines: len(lines)}
	}

	actual := lines[effStart-1 : effEnd]
	if !blockMatches(actual, searchLines, trim) {
		return nil, &ContentMismatchError{
			StartLine: effStart,
			Expected:  searchLines,
			Actual:    append([]string(nil), actual...),
		}
	}

	replaceLines := splitBlock(e.Replace)
	out := make([]string, 0, len(lines)+len(replaceLines)-len(searchLines))
	out = append(out, lines[:effStart-1]...)
	out = append(out, replaceLines...)
	out = append(out, lines[effEnd:]...)

	return &applied{
		lines:        out,
		delta:        len(replaceLines) - len(searchLines),
		effStart:     effStart,
		searchCount:  len(searchLines),
		replaceCount: len(replaceLines),
	}, nil
}

// applySequence replays edits in sorted order against the buffer, stopping
// at the first failure. It returns the resulting buffer, the per-edit apply
// records, the position in edits of the failed edit (-1 when all applied)
// and that edit's error.
func applySequence(lines []string, edits []Edit, trim bool) ([]string, []*applied, int, error) {
	cur := lines
	steps := make([]*applied, 0, len(edits))
	offset := 0
	for i, e := range edits {
		a, err := applyEdit(cur, e, offset, trim)
		if err != nil {
			return cur, steps, i, err
		}
		cur = a.lines
		offset += a.delta
		steps = append(steps, a)
	}
	return cur, steps, -1, nil
}

// Apply runs a normalized, sorted edit sequence against the buffer and
// reports per-edit results in submission order.
//
// Atomic requests with more than one edit are validated first by replaying
// the whole sequence against a copy of the buffer. If any edit fails, that
// edit is reported as failed, every other edit as aborted (a simulated
// success is not a success), and the buffer is returned untouched. Only a
// fully successful validation is committed, by replaying the identical
// sequence against the real buffer.
//
// A single edit, or a non-atomic request, applies each edit independently:
// failures are reported and skipped, and the offset accumulates only from
// edits that succeeded.
func Apply(lines []string, edits []Edit, opts Options) Outcome {
	results := make([]Result, len(edits))
	if len(edits) == 0 {
		return Outcome{Lines: lines, Results: results}
	}

	if opts.Atomic && len(edits) > 1 {
		scratch := append([]string(nil), lines...)
		_, _, failedAt, err := applySequence(scratch, edits, opts.Trim)
		if failedAt >= 0 {
			abortMsg := fmt.Sprintf("not applied: edit at line %d failed validation", edits[failedAt].StartLine)
			for i, e := range edits {
				r := Result{Index: e.Index, StartLine: e.StartLine, Status: StatusAborted, Message: abortMsg}
				if i == failedAt {
					r.Status = StatusFail
					r.Message = failMessage(err)
				}
				results[e.Index] = r
			}
			return Outcome{Lines: lines, Results: results, Aborted: true}
		}

		out, steps, _, _ := applySequence(lines, edits, opts.Trim)
		for i, a := range steps {
			e := edits[i]
			results[e.Index] = Result{Index: e.Index, StartLine: e.StartLine, Status: StatusSuccess, Message: successMessage(a)}
		}
		return Outcome{Lines: out, Results: results, Applied: len(edits)}
	}

	cur := lines
	offset := 0
	appliedCount := 0
	for _, e := range edits {
		a, err := applyEdit(cur, e, offset, opts.Trim)
		if err != nil {
			results[e.Index] = Result{Index: e.Index, StartLine: e.StartLine, Status: StatusFail, Message: failMessage(err)}
			continue
		}
		cur = a.lines
		offset += a.delta
		appliedCount++
		results[e.Index] = Result{Index: e.Index, StartLine: e.StartLine, Status: StatusSuccess, Message: successMessage(a)}
	}
	return Outcome{Lines: cur, Results: results, Applied: appliedCount}
}

func successMessage(a *applied) string {
	msg := fmt.Sprintf("Replaced %d line(s) at line %d", a.searchCount, a.effStart)
	switch {
	case a.delta > 0:
		msg += fmt.Sprintf(", added %d line(s)", a.delta)
	case a.delta < 0:
		msg += fmt.Sprintf(", removed %d line(s)", -a.delta)
	}
	return msg
}

func failMessage(err error) string {
	var mismatch *ContentMismatchError
	if errors.As(err, &mismatch) {
		return mismatch.Detail()
	}
	return err.Error()
}
