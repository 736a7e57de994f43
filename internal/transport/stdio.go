package transport

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"diff-editor-server/internal/errors"
	"diff-editor-server/internal/mcp"
	"diff-editor-server/internal/models"
)

// maxLineBytes bounds a single JSON-RPC line. A 1 MB file payload can
// multiply several times under JSON escaping, so the limit is generous.
const maxLineBytes = 50 * 1024 * 1024

// StdioHandler speaks newline-delimited JSON-RPC over a reader/writer pair,
// one request per line, one response per line.
type StdioHandler struct {
	processor *mcp.MCPProcessor
	logger    *logrus.Logger
}

// NewStdioHandler creates a new StdioHandler.
func NewStdioHandler(processor *mcp.MCPProcessor, logger *logrus.Logger) *StdioHandler {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &StdioHandler{processor: processor, logger: logger}
}

func (h *StdioHandler) writeResponse(writer io.Writer, response models.JSONRPCResponse) {
	responseBytes, err := json.Marshal(response)
	if err != nil {
		h.logger.WithError(err).WithField("id", response.ID).Error("failed to marshal JSON-RPC response")
		fallback := models.JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      response.ID,
			Error:   errors.ToJSONRPCError(errors.NewInternalError("failed to marshal response")),
		}
		responseBytes, _ = json.Marshal(fallback)
	}
	if _, err := fmt.Fprintln(writer, string(responseBytes)); err != nil {
		h.logger.WithError(err).Error("failed to write JSON-RPC response")
	}
}

// Start reads requests line by line until input is exhausted. Notifications
// (requests without an id) produce no response line.
func (h *StdioHandler) Start(input io.Reader, output io.Writer) error {
	h.logger.Info("stdio transport started")

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(bytes.TrimSpace(lineBytes)) == 0 {
			continue
		}

		var jsonReq models.JSONRPCRequest
		if err := json.Unmarshal(lineBytes, &jsonReq); err != nil {
			h.writeResponse(output, models.JSONRPCResponse{
				JSONRPC: "2.0",
				ID:      nil,
				Error:   errors.ToJSONRPCError(errors.NewParseError(fmt.Sprintf("invalid JSON received: %v", err))),
			})
			continue
		}

		jsonResp := models.JSONRPCResponse{JSONRPC: "2.0", ID: jsonReq.ID}

		if jsonReq.JSONRPC != "2.0" {
			jsonResp.Error = errors.ToJSONRPCError(errors.NewInvalidRequestError("jsonrpc version must be \"2.0\""))
			h.writeResponse(output, jsonResp)
			continue
		}
		if jsonReq.Method == "" {
			jsonResp.Error = errors.ToJSONRPCError(errors.NewInvalidRequestError("method not specified"))
			h.writeResponse(output, jsonResp)
			continue
		}

		result, rpcErr := h.processor.ProcessRequest(jsonReq)
		if result == nil && rpcErr == nil {
			continue
		}
		if jsonReq.ID == nil {
			// A notification never gets a response, even on error.
			if rpcErr != nil {
				h.logger.WithFields(logrus.Fields{
					"method": jsonReq.Method,
					"code":   rpcErr.Code,
				}).Warn("notification failed")
			}
			continue
		}

		jsonResp.Result = result
		jsonResp.Error = rpcErr
		h.writeResponse(output, jsonResp)
	}

	if err := scanner.Err(); err != nil {
		h.logger.WithError(err).Error("stdio transport read error")
		return err
	}
	h.logger.Info("stdio transport finished")
	return nil
}
