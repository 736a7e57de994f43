// Package diff applies declarative search/replace block edits to a file's
// line buffer. Each edit names the exact block expected at a 1-based line of
// the original file and the block to put there. Edits are applied in
// ascending start-line order while a running offset translates original line
// numbers into positions in the partially edited buffer, so edits in one
// request can insert or remove lines without invalidating each other.
//
// The package is pure: it never touches storage, which lets the same
// sequence run once as a dry validation pass and once for real.
package diff

// Per-edit statuses.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusAborted = "aborted"
)

// Edit is one search/replace instruction against the original file.
type Edit struct {
	// Search is the block expected at StartLine, one or more lines.
	Search string
	// Replace is the block to substitute, inserted verbatim.
	Replace string
	// StartLine is 1-based and always relative to the file as it was
	// before any edit in the same request applied.
	StartLine int
	// Index is the edit's position in the caller's submission. It orders
	// results and breaks sort ties; it never influences application
	// order beyond tie-breaking.
	Index int
}

// Result is the outcome of one edit.
type Result struct {
	// Index matches Edit.Index.
	Index int
	// StartLine echoes the original start line the caller supplied.
	StartLine int
	// Status is StatusSuccess, StatusFail or StatusAborted.
	Status string
	// Message describes the outcome, including lines added or removed on
	// success and the mismatch detail on failure.
	Message string
}

// Options control how a sequence of edits is applied.
type Options struct {
	// Atomic applies all edits or none: the sequence is simulated on a
	// copy of the buffer first and committed only if every edit would
	// succeed. With a single edit the flag has no effect.
	Atomic bool
	// Trim ignores leading and trailing whitespace per line when
	// comparing search blocks to the buffer. Replacement text is always
	// spliced in verbatim.
	Trim bool
}

// Outcome is the overall result of applying a sequence of edits.
type Outcome struct {
	// Lines is the resulting buffer. It is the input buffer when the
	// request aborted or nothing applied.
	Lines []string
	// Results holds one entry per edit, ordered by Edit.Index.
	Results []Result
	// Applied counts the edits that succeeded.
	Applied int
	// Aborted reports that an atomic request failed validation and no
	// change was made.
	Aborted bool
}
