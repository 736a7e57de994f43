package transport

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"diff-editor-server/internal/config"
	"diff-editor-server/internal/errors"
	"diff-editor-server/internal/mcp"
	"diff-editor-server/internal/models"
	"diff-editor-server/internal/service"
)

const (
	defaultReadTimeout  = 60 * time.Second
	defaultWriteTimeout = 60 * time.Second
	defaultIdleTimeout  = 120 * time.Second

	// maxRequestSizeMB bounds a request body. File content is capped well
	// below this by the service; the headroom covers JSON escaping.
	maxRequestSizeMB = 50
)

// HTTPHandler exposes every tool as a POST endpoint and the MCP protocol on
// /mcp. Requests beyond the configured concurrency limit are rejected.
type HTTPHandler struct {
	service    service.FileOperationService
	processor  *mcp.MCPProcessor
	logger     *logrus.Logger
	maxReqSize int64
	semaphore  chan struct{}
	Server     *http.Server
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(svc service.FileOperationService, processor *mcp.MCPProcessor, cfg *config.Config, logger *logrus.Logger) *HTTPHandler {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	maxConcurrent := 1
	if cfg != nil && cfg.MaxConcurrentOps > 0 {
		maxConcurrent = cfg.MaxConcurrentOps
	}
	return &HTTPHandler{
		service:    svc,
		processor:  processor,
		logger:     logger,
		maxReqSize: int64(maxRequestSizeMB) * 1024 * 1024,
		semaphore:  make(chan struct{}, maxConcurrent),
		Server:     &http.Server{},
	}
}

// RegisterRoutes sets up the HTTP routes for the handler. The health check
// bypasses the concurrency limit.
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/apply_diff", h.withMiddleware(h.handleApplyDiff))
	mux.HandleFunc("/read_file", h.withMiddleware(h.handleReadFile))
	mux.HandleFunc("/write_file", h.withMiddleware(h.handleWriteFile))
	mux.HandleFunc("/insert_lines", h.withMiddleware(h.handleInsertLines))
	mux.HandleFunc("/search_replace", h.withMiddleware(h.handleSearchReplace))
	mux.HandleFunc("/list_files", h.withMiddleware(h.handleListFiles))
	mux.HandleFunc("/mcp", h.withMiddleware(h.handleMCP))
	mux.HandleFunc("/health", h.handleHealthCheck)
}

// withMiddleware stamps a request ID, enforces the concurrency limit and
// logs the request.
func (h *HTTPHandler) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		select {
		case h.semaphore <- struct{}{}:
			defer func() { <-h.semaphore }()
		default:
			h.logger.WithFields(logrus.Fields{
				"path":       r.URL.Path,
				"request_id": requestID,
			}).Warn("request rejected at concurrency limit")
			writeJSONErrorResponse(w, http.StatusServiceUnavailable,
				errors.NewErrorDetail(errors.CodeInternalError, "server is at its concurrent operation limit", nil))
			return
		}

		start := time.Now()
		next(w, r)
		h.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"request_id":  requestID,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("request handled")
	}
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeJSONErrorResponse(w http.ResponseWriter, httpStatusCode int, errorDetail *models.ErrorDetail) {
	if errorDetail == nil {
		errorDetail = errors.NewInternalError("an unexpected error occurred and error details were lost")
		httpStatusCode = http.StatusInternalServerError
	}
	writeJSONResponse(w, httpStatusCode, errors.ToErrorResponse(errorDetail))
}

// decodeRequest enforces POST, JSON content type, the body size cap and
// strict field checking. It writes the error response itself and reports
// whether the handler should continue. An empty body decodes to the zero
// request.
func (h *HTTPHandler) decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.Method != http.MethodPost {
		writeJSONErrorResponse(w, http.StatusMethodNotAllowed,
			errors.NewInvalidRequestError(fmt.Sprintf("method %s not allowed, use POST", r.Method)))
		return false
	}
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		writeJSONErrorResponse(w, http.StatusUnsupportedMediaType,
			errors.NewInvalidRequestError("Content-Type must be application/json"))
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxReqSize)
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case stdErrors.Is(err, io.EOF):
			return true
		case stdErrors.As(err, &maxBytesErr):
			writeJSONErrorResponse(w, http.StatusRequestEntityTooLarge,
				errors.NewInvalidRequestError(fmt.Sprintf("request body exceeds the maximum of %d MB", maxRequestSizeMB)))
		case stdErrors.As(err, &syntaxErr):
			writeJSONErrorResponse(w, http.StatusBadRequest,
				errors.NewParseError(fmt.Sprintf("invalid JSON syntax at offset %d", syntaxErr.Offset)))
		case stdErrors.As(err, &typeErr):
			writeJSONErrorResponse(w, http.StatusBadRequest,
				errors.NewParseError(fmt.Sprintf("invalid type for field '%s' at offset %d", typeErr.Field, typeErr.Offset)))
		default:
			writeJSONErrorResponse(w, http.StatusBadRequest,
				errors.NewParseError(fmt.Sprintf("failed to decode request body: %v", err)))
		}
		return false
	}
	return true
}

func (h *HTTPHandler) writeResult(w http.ResponseWriter, resp interface{}, serviceErr *models.ErrorDetail) {
	if serviceErr != nil {
		writeJSONErrorResponse(w, errors.MapErrorToHTTPStatus(serviceErr.Code, serviceErr), serviceErr)
		return
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

func (h *HTTPHandler) handleApplyDiff(w http.ResponseWriter, r *http.Request) {
	var req models.ApplyDiffRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}
	resp, serviceErr := h.service.ApplyDiff(req)
	h.writeResult(w, resp, serviceErr)
}

func (h *HTTPHandler) handleReadFile(w http.ResponseWriter, r *http.Request) {
	var req models.ReadFileRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}
	resp, serviceErr := h.service.ReadFile(req)
	h.writeResult(w, resp, serviceErr)
}

func (h *HTTPHandler) handleWriteFile(w http.ResponseWriter, r *http.Request) {
	var req models.WriteFileRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}
	resp, serviceErr := h.service.WriteFile(req)
	h.writeResult(w, resp, serviceErr)
}

func (h *HTTPHandler) handleInsertLines(w http.ResponseWriter, r *http.Request) {
	var req models.InsertLinesRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}
	resp, serviceErr := h.service.InsertLines(req)
	h.writeResult(w, resp, serviceErr)
}

func (h *HTTPHandler) handleSearchReplace(w http.ResponseWriter, r *http.Request) {
	var req models.SearchReplaceRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}
	resp, serviceErr := h.service.SearchReplace(req)
	h.writeResult(w, resp, serviceErr)
}

func (h *HTTPHandler) handleListFiles(w http.ResponseWriter, r *http.Request) {
	var req models.ListFilesRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}
	resp, serviceErr := h.service.ListFiles(req)
	h.writeResult(w, resp, serviceErr)
}

// handleMCP accepts a single JSON-RPC request per POST. Notifications are
// acknowledged with 202 and no body.
func (h *HTTPHandler) handleMCP(w http.ResponseWriter, r *http.Request) {
	var req models.JSONRPCRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	jsonResp := models.JSONRPCResponse{JSONRPC: "2.0", ID: req.ID}
	if req.JSONRPC != "2.0" {
		jsonResp.Error = errors.ToJSONRPCError(errors.NewInvalidRequestError("jsonrpc version must be \"2.0\""))
		writeJSONResponse(w, http.StatusOK, jsonResp)
		return
	}

	result, rpcErr := h.processor.ProcessRequest(req)
	if result == nil && rpcErr == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	jsonResp.Result = result
	jsonResp.Error = rpcErr
	writeJSONResponse(w, http.StatusOK, jsonResp)
}

func (h *HTTPHandler) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StartServer starts the HTTP server and blocks until it shuts down.
func (h *HTTPHandler) StartServer(port int) error {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	h.Server.Addr = fmt.Sprintf(":%d", port)
	h.Server.Handler = mux
	h.Server.ReadTimeout = defaultReadTimeout
	h.Server.WriteTimeout = defaultWriteTimeout
	h.Server.IdleTimeout = defaultIdleTimeout

	h.logger.WithField("port", port).Info("HTTP server starting")
	err := h.Server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		h.logger.WithError(err).Error("HTTP server failed")
		return err
	}
	h.logger.Info("HTTP server shut down")
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (h *HTTPHandler) Shutdown(ctx context.Context) error {
	return h.Server.Shutdown(ctx)
}
