package errors

import (
	"fmt"
	"net/http"
	"time"

	"diff-editor-server/internal/models"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Application error codes, in the JSON-RPC server-error range.
const (
	// CodeFileSystemError covers file system failures. The Data "type"
	// field narrows it to file_not_found, permission_denied,
	// file_too_large or invalid_encoding.
	CodeFileSystemError = -32001

	// CodeOperationLockFailed means the per-file lock could not be
	// acquired within the configured timeout.
	CodeOperationLockFailed = -32002

	// CodeEditApplication means one or more edits could not be applied:
	// the searched block was not found where expected, an effective line
	// fell outside the file, or an atomic request was aborted.
	CodeEditApplication = -32003
)

// Values of the "type" field inside CodeFileSystemError data.
const (
	CodeFileNotFoundType     = "file_not_found"
	CodePermissionDeniedType = "permission_denied"
	CodeFileTooLargeType     = "file_too_large"
	CodeInvalidEncodingType  = "invalid_encoding"
)

// NewErrorDetail creates an ErrorDetail with the given code, message and
// data.
func NewErrorDetail(code int, message string, data interface{}) *models.ErrorDetail {
	return &models.ErrorDetail{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// NewParseError reports invalid JSON received by the server.
func NewParseError(details string) *models.ErrorDetail {
	return NewErrorDetail(CodeParseError, "Parse error", map[string]interface{}{"details": details})
}

// NewInvalidRequestError reports a structurally invalid JSON-RPC request.
func NewInvalidRequestError(details string) *models.ErrorDetail {
	return NewErrorDetail(CodeInvalidRequest, "Invalid Request", map[string]interface{}{"details": details})
}

// NewMethodNotFoundError reports an unknown JSON-RPC method.
func NewMethodNotFoundError(methodName string) *models.ErrorDetail {
	return NewErrorDetail(CodeMethodNotFound, "Method not found", map[string]interface{}{"method": methodName})
}

// NewInvalidParamsError reports invalid method parameters. issues may carry
// per-field problems and is included verbatim in the data payload.
func NewInvalidParamsError(message string, issues map[string]interface{}) *models.ErrorDetail {
	if message == "" {
		message = "Invalid params"
	}
	data := map[string]interface{}{"details": message}
	if issues != nil {
		data["param_issues"] = issues
	}
	return NewErrorDetail(CodeInvalidParams, message, data)
}

// NewInternalError reports an unexpected server-side failure.
func NewInternalError(details string) *models.ErrorDetail {
	return NewErrorDetail(CodeInternalError, "Internal error", map[string]interface{}{"details": details})
}

// NewFileSystemError reports a generic file system failure.
func NewFileSystemError(filename, operation, details string) *models.ErrorDetail {
	return NewErrorDetail(CodeFileSystemError, "File system error", map[string]interface{}{
		"filename":  filename,
		"operation": operation,
		"details":   details,
	})
}

// NewFileNotFoundError reports a missing file. Maps to HTTP 404.
func NewFileNotFoundError(filename, operation string) *models.ErrorDetail {
	return NewErrorDetail(CodeFileSystemError, fmt.Sprintf("File '%s' not found", filename), map[string]interface{}{
		"filename":  filename,
		"operation": operation,
		"type":      CodeFileNotFoundType,
	})
}

// NewPermissionDeniedError reports an access failure. Maps to HTTP 403.
func NewPermissionDeniedError(filename, operation string) *models.ErrorDetail {
	return NewErrorDetail(CodeFileSystemError, fmt.Sprintf("Permission denied for file '%s'", filename), map[string]interface{}{
		"filename":  filename,
		"operation": operation,
		"type":      CodePermissionDeniedType,
	})
}

// NewFileTooLargeError reports a file over the configured size limit. Maps
// to HTTP 413.
func NewFileTooLargeError(filename string, maxSizeMB int) *models.ErrorDetail {
	return NewErrorDetail(CodeFileSystemError,
		fmt.Sprintf("File '%s' exceeds maximum allowed size of %d MB", filename, maxSizeMB),
		map[string]interface{}{
			"filename":    filename,
			"max_size_mb": maxSizeMB,
			"type":        CodeFileTooLargeType,
		})
}

// NewInvalidEncodingError reports content that is not valid UTF-8. Maps to
// HTTP 422.
func NewInvalidEncodingError(filename, operation string) *models.ErrorDetail {
	return NewErrorDetail(CodeFileSystemError,
		fmt.Sprintf("File '%s' is not valid UTF-8", filename),
		map[string]interface{}{
			"filename":  filename,
			"operation": operation,
			"details":   "File content is not valid UTF-8",
			"type":      CodeInvalidEncodingType,
		})
}

// NewOperationLockFailedError reports a lock acquisition failure. Maps to
// HTTP 409.
func NewOperationLockFailedError(filename, operation, details string) *models.ErrorDetail {
	return NewErrorDetail(CodeOperationLockFailed,
		fmt.Sprintf("Could not acquire lock for operation '%s' on file '%s'", operation, filename),
		map[string]interface{}{
			"filename":  filename,
			"operation": operation,
			"details":   details,
		})
}

// NewEditApplicationError reports edits that could not be applied. data
// typically carries the per-edit result list and, for content mismatches,
// the expected and actual blocks. Maps to HTTP 409.
func NewEditApplicationError(message string, data interface{}) *models.ErrorDetail {
	return NewErrorDetail(CodeEditApplication, message, data)
}

// ToErrorResponse wraps an ErrorDetail for an HTTP error body.
func ToErrorResponse(errDetail *models.ErrorDetail) *models.ErrorResponse {
	if errDetail == nil {
		return nil
	}
	return &models.ErrorResponse{Error: *errDetail}
}

// ToJSONRPCError converts an ErrorDetail into a JSON-RPC error object,
// flattening known data fields and stamping the time.
func ToJSONRPCError(errDetail *models.ErrorDetail) *models.JSONRPCError {
	if errDetail == nil {
		return nil
	}
	rpcErr := &models.JSONRPCError{
		Code:    errDetail.Code,
		Message: errDetail.Message,
	}
	if errDetail.Data == nil {
		return rpcErr
	}

	data := &models.JSONRPCErrorData{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if dataMap, ok := errDetail.Data.(map[string]interface{}); ok {
		if val, ok := dataMap["filename"].(string); ok {
			data.Filename = val
		}
		if val, ok := dataMap["operation"].(string); ok {
			data.Operation = val
		}
		if val, ok := dataMap["details"].(string); ok {
			data.Details = val
		}
		if issues, ok := dataMap["param_issues"]; ok {
			data.Details = fmt.Sprintf("%s (parameter issues: %v)", data.Details, issues)
		}
	} else {
		data.Details = fmt.Sprintf("%v", errDetail.Data)
	}
	rpcErr.Data = data
	return rpcErr
}

// MapErrorToHTTPStatus maps an ErrorDetail's code (and, for file system
// errors, its data "type") to an HTTP status code.
func MapErrorToHTTPStatus(errorCode int, errDetail *models.ErrorDetail) int {
	switch errorCode {
	case CodeParseError, CodeInvalidRequest, CodeInvalidParams:
		return http.StatusBadRequest
	case CodeMethodNotFound:
		return http.StatusNotFound
	case CodeInternalError:
		return http.StatusInternalServerError
	case CodeFileSystemError:
		if errDetail != nil {
			if dataMap, ok := errDetail.Data.(map[string]interface{}); ok {
				switch dataMap["type"] {
				case CodeFileNotFoundType:
					return http.StatusNotFound
				case CodePermissionDeniedType:
					return http.StatusForbidden
				case CodeFileTooLargeType:
					return http.StatusRequestEntityTooLarge
				case CodeInvalidEncodingType:
					return http.StatusUnprocessableEntity
				}
			}
		}
		return http.StatusInternalServerError
	case CodeOperationLockFailed:
		return http.StatusConflict
	case CodeEditApplication:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
