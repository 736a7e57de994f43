package models

// WriteFileRequest represents a request to write a file's full content.
type WriteFileRequest struct {
	// Path is the workspace-relative path of the file to write.
	Path string `json:"path"`
	// Content is the complete new file content.
	Content string `json:"content"`
	// CreateDirs creates missing parent directories. Defaults to true when
	// omitted.
	CreateDirs *bool `json:"create_dirs,omitempty"`
}

// CreateDirsEnabled resolves the CreateDirs flag with its default.
func (r *WriteFileRequest) CreateDirsEnabled() bool {
	if r.CreateDirs == nil {
		return true
	}
	return *r.CreateDirs
}

// WriteFileResponse represents the response from a file write operation.
type WriteFileResponse struct {
	Success bool `json:"success"`
	// Created is true when the file did not exist before the write.
	Created bool `json:"created"`
	// BytesWritten is the size of the persisted content.
	BytesWritten int `json:"bytes_written"`
	// TotalLines is the file's line count after the write.
	TotalLines int `json:"total_lines"`
}
