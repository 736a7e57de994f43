package models

// FileInfo describes one file in a directory listing.
type FileInfo struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"` // RFC 3339
	Readable bool   `json:"readable"`
	Writable bool   `json:"writable"`
	// Lines is the file's line count, or -1 when the file could not be
	// counted (unreadable, too large, or not UTF-8).
	Lines int `json:"lines"`
}

// ListFilesRequest represents a request to list the workspace directory.
// The listing is non-recursive and takes no parameters.
type ListFilesRequest struct{}

// ListFilesResponse represents the response from a list_files operation.
type ListFilesResponse struct {
	Files      []FileInfo `json:"files"`
	TotalCount int        `json:"total_count"`
	Directory  string     `json:"directory"`
}
