package models

// MCPToolContent is one content block of a tool result.
type MCPToolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// MCPToolResult is the result of a tools/call invocation. Tool-level
// failures set IsError and describe the problem in Content; they are not
// JSON-RPC errors.
type MCPToolResult struct {
	Content []MCPToolContent `json:"content"`
	IsError bool             `json:"isError"`
}
