package models

// ErrorDetail is the service layer's structured error: a JSON-RPC style
// code, a human-readable message, and optional context data.
type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	// Data holds additional context such as the filename, the operation,
	// or per-edit results.
	Data interface{} `json:"data,omitempty"`
}

// ErrorResponse wraps an ErrorDetail for HTTP error bodies.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
