package models

// InsertLinesRequest represents a request to insert content at an absolute
// or end-relative line position.
type InsertLinesRequest struct {
	// Path is the workspace-relative path of the file to modify.
	Path string `json:"path"`
	// Content is the text to insert; multi-line content inserts multiple
	// lines.
	Content string `json:"content"`
	// Line selects the insertion point: >= 1 inserts before that 1-based
	// line (totalLines+1 appends), 0 appends at end of file, and a negative
	// value counts back from the end (-1 inserts before the last line).
	Line int `json:"line"`
}

// InsertLinesResponse represents the response from an insert_lines
// operation.
type InsertLinesResponse struct {
	Success bool `json:"success"`
	// InsertedAt is the effective 1-based position the content landed on.
	InsertedAt int `json:"inserted_at"`
	// LinesInserted is the number of lines added.
	LinesInserted int `json:"lines_inserted"`
	// NewTotalLines is the file's line count after the insert.
	NewTotalLines int `json:"new_total_lines"`
}
