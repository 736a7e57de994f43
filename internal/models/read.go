package models

// ReadFileRequest represents a request to read a file or a line range of it.
type ReadFileRequest struct {
	// Path is the workspace-relative path of the file to read.
	Path string `json:"path"`
	// StartLine is the optional 1-based starting line for partial reads.
	StartLine int `json:"start_line,omitempty"`
	// EndLine is the optional 1-based ending line for partial reads.
	EndLine int `json:"end_line,omitempty"`
}

// RangeRequested echoes the line range a read resolved to, after defaults
// and clamping.
type RangeRequested struct {
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
}

// ReadFileResponse represents the response from a file read operation.
type ReadFileResponse struct {
	// Content is the requested range joined with newlines.
	Content string `json:"content"`
	// TotalLines is the total number of lines in the file.
	TotalLines int `json:"total_lines"`
	// RangeRequested is the effective range that was returned.
	RangeRequested *RangeRequested `json:"range_requested,omitempty"`
}
