package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"diff-editor-server/internal/errors"
	"diff-editor-server/internal/models"
	"diff-editor-server/internal/service"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "diff-editor-server"
	serverVersion   = "1.0.0"
)

// ToolCallParams represents the parameters of a tools/call request.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// MCPProcessor dispatches MCP methods onto the file operation service.
type MCPProcessor struct {
	service service.FileOperationService
}

// NewMCPProcessor creates a new MCPProcessor.
func NewMCPProcessor(svc service.FileOperationService) *MCPProcessor {
	return &MCPProcessor{service: svc}
}

// ProcessRequest handles a JSON-RPC request and returns the method result or
// a JSON-RPC error. Notifications return neither; the transport sends no
// response for them.
func (p *MCPProcessor) ProcessRequest(req models.JSONRPCRequest) (interface{}, *models.JSONRPCError) {
	switch req.Method {
	case "initialize":
		return &models.InitializeResponse{
			ProtocolVersion: protocolVersion,
			Capabilities:    models.Capabilities{Tools: models.ToolsCapabilities{}},
			ServerInfo: models.ServerInfo{
				Name:        serverName,
				Version:     serverVersion,
				Description: "Line-oriented file editing tools for coding agents",
			},
		}, nil
	case "notifications/initialized":
		return nil, nil
	case "tools/list":
		return &models.ToolsListResponse{Tools: ToolDefinitions()}, nil
	case "tools/call":
		var params ToolCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, errors.ToJSONRPCError(errors.NewInvalidParamsError(
				"invalid parameters for tools/call: "+err.Error(), nil))
		}
		result, rpcErr := p.handleToolCall(params.Name, params.Arguments)
		if rpcErr != nil {
			// The typed nil must not reach the interface return: an error
			// response carries no result member.
			return nil, rpcErr
		}
		return result, nil
	default:
		return nil, errors.ToJSONRPCError(errors.NewMethodNotFoundError(req.Method))
	}
}

// handleToolCall dispatches a tool invocation by name. Service failures come
// back as tool results with IsError set, not as JSON-RPC errors.
func (p *MCPProcessor) handleToolCall(toolName string, toolArgs json.RawMessage) (*models.MCPToolResult, *models.JSONRPCError) {
	if len(toolArgs) == 0 {
		toolArgs = json.RawMessage("{}")
	}

	switch toolName {
	case "apply_diff":
		var req models.ApplyDiffRequest
		if err := json.Unmarshal(toolArgs, &req); err != nil {
			return nil, invalidToolParams(toolName, err)
		}
		resp, serviceErr := p.service.ApplyDiff(req)
		if serviceErr != nil {
			return toolError(serviceErr), nil
		}
		return toolText(formatApplyDiffResult(req.Path, resp)), nil
	case "read_file":
		var req models.ReadFileRequest
		if err := json.Unmarshal(toolArgs, &req); err != nil {
			return nil, invalidToolParams(toolName, err)
		}
		resp, serviceErr := p.service.ReadFile(req)
		if serviceErr != nil {
			return toolError(serviceErr), nil
		}
		return toolText(formatReadFileResult(req.Path, resp)), nil
	case "write_file":
		var req models.WriteFileRequest
		if err := json.Unmarshal(toolArgs, &req); err != nil {
			return nil, invalidToolParams(toolName, err)
		}
		resp, serviceErr := p.service.WriteFile(req)
		if serviceErr != nil {
			return toolError(serviceErr), nil
		}
		return toolText(formatWriteFileResult(req.Path, resp)), nil
	case "insert_lines":
		var req models.InsertLinesRequest
		if err := json.Unmarshal(toolArgs, &req); err != nil {
			return nil, invalidToolParams(toolName, err)
		}
		resp, serviceErr := p.service.InsertLines(req)
		if serviceErr != nil {
			return toolError(serviceErr), nil
		}
		return toolText(formatInsertLinesResult(req.Path, resp)), nil
	case "search_replace":
		var req models.SearchReplaceRequest
		if err := json.Unmarshal(toolArgs, &req); err != nil {
			return nil, invalidToolParams(toolName, err)
		}
		resp, serviceErr := p.service.SearchReplace(req)
		if serviceErr != nil {
			return toolError(serviceErr), nil
		}
		return toolText(formatSearchReplaceResult(req.Path, resp)), nil
	case "list_files":
		var req models.ListFilesRequest
		if err := json.Unmarshal(toolArgs, &req); err != nil {
			return nil, invalidToolParams(toolName, err)
		}
		resp, serviceErr := p.service.ListFiles(req)
		if serviceErr != nil {
			return toolError(serviceErr), nil
		}
		return toolText(formatListFilesResult(resp)), nil
	default:
		return &models.MCPToolResult{
			Content: []models.MCPToolContent{{Type: "text", Text: fmt.Sprintf("Error: Unknown tool '%s'.", toolName)}},
			IsError: true,
		}, nil
	}
}

func invalidToolParams(toolName string, err error) *models.JSONRPCError {
	return errors.ToJSONRPCError(errors.NewInvalidParamsError(
		fmt.Sprintf("invalid parameters for %s: %v", toolName, err), nil))
}

func toolText(text string) *models.MCPToolResult {
	return &models.MCPToolResult{
		Content: []models.MCPToolContent{{Type: "text", Text: text}},
	}
}

func toolError(serviceErr *models.ErrorDetail) *models.MCPToolResult {
	return &models.MCPToolResult{
		Content: []models.MCPToolContent{{Type: "text", Text: formatToolError(serviceErr)}},
		IsError: true,
	}
}

// formatToolError renders a service error for a tool result.
func formatToolError(serviceErr *models.ErrorDetail) string {
	if serviceErr == nil {
		return "Error: An unexpected error occurred, but no details were provided."
	}
	return fmt.Sprintf("Error: %s (Code: %d)", serviceErr.Message, serviceErr.Code)
}

func formatApplyDiffResult(path string, resp *models.ApplyDiffResponse) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("File: %s\n", path))
	if resp.Success {
		builder.WriteString("Status: All edits applied.\n")
	} else {
		builder.WriteString(fmt.Sprintf("Status: %d of %d edits failed.\n", resp.EditsFailed, len(resp.Results)))
	}
	builder.WriteString(fmt.Sprintf("Edits Applied: %d\n", resp.EditsApplied))
	builder.WriteString(fmt.Sprintf("Edits Failed: %d\n", resp.EditsFailed))
	builder.WriteString(fmt.Sprintf("New Total Lines: %d\n", resp.NewTotalLines))
	if len(resp.Results) > 0 {
		builder.WriteString("\nResults:\n")
		for i, r := range resp.Results {
			builder.WriteString(fmt.Sprintf("- edit %d at line %d: %s: %s\n", i+1, r.StartLine, r.Status, r.Message))
		}
	}
	return builder.String()
}

func formatReadFileResult(path string, resp *models.ReadFileResponse) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("File: %s\n", path))
	builder.WriteString(fmt.Sprintf("Total Lines: %d\n", resp.TotalLines))
	if resp.RangeRequested != nil {
		builder.WriteString(fmt.Sprintf("Range: lines %d-%d\n", resp.RangeRequested.StartLine, resp.RangeRequested.EndLine))
	}
	builder.WriteString(fmt.Sprintf("\nContent:\n%s", resp.Content))
	return builder.String()
}

func formatWriteFileResult(path string, resp *models.WriteFileResponse) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("File: %s\n", path))
	if resp.Created {
		builder.WriteString("Status: File created successfully.\n")
	} else {
		builder.WriteString("Status: File overwritten successfully.\n")
	}
	builder.WriteString(fmt.Sprintf("Bytes Written: %d\n", resp.BytesWritten))
	builder.WriteString(fmt.Sprintf("Total Lines: %d\n", resp.TotalLines))
	return builder.String()
}

func formatInsertLinesResult(path string, resp *models.InsertLinesResponse) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("File: %s\n", path))
	builder.WriteString("Status: Content inserted successfully.\n")
	builder.WriteString(fmt.Sprintf("Inserted At: line %d\n", resp.InsertedAt))
	builder.WriteString(fmt.Sprintf("Lines Inserted: %d\n", resp.LinesInserted))
	builder.WriteString(fmt.Sprintf("New Total Lines: %d\n", resp.NewTotalLines))
	return builder.String()
}

func formatSearchReplaceResult(path string, resp *models.SearchReplaceResponse) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("File: %s\n", path))
	builder.WriteString(fmt.Sprintf("Replacements: %d\n", resp.Replacements))
	builder.WriteString(fmt.Sprintf("New Total Lines: %d\n", resp.NewTotalLines))
	if resp.Diff != "" {
		builder.WriteString(fmt.Sprintf("\nDiff:\n%s", resp.Diff))
	}
	return builder.String()
}

func formatListFilesResult(resp *models.ListFilesResponse) string {
	if len(resp.Files) == 0 {
		return fmt.Sprintf("No files found in directory: %s", resp.Directory)
	}
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Directory: %s\nTotal files: %d\n\n", resp.Directory, resp.TotalCount))
	builder.WriteString("Files:\n")
	for _, f := range resp.Files {
		builder.WriteString(fmt.Sprintf("- Name: %s\n", f.Name))
		builder.WriteString(fmt.Sprintf("  Size: %d bytes\n", f.Size))
		builder.WriteString(fmt.Sprintf("  Modified: %s\n", f.Modified))
		builder.WriteString(fmt.Sprintf("  Readable: %t\n", f.Readable))
		builder.WriteString(fmt.Sprintf("  Writable: %t\n", f.Writable))
		if f.Lines == -1 {
			builder.WriteString("  Lines: (error or too large to count)\n")
		} else {
			builder.WriteString(fmt.Sprintf("  Lines: %d\n", f.Lines))
		}
	}
	return builder.String()
}
