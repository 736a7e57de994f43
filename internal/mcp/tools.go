package mcp

import "diff-editor-server/internal/models"

func stringSchema(desc string) models.Schema {
	return models.Schema{"type": "string", "description": desc}
}

func intSchema(desc string) models.Schema {
	return models.Schema{"type": "integer", "description": desc}
}

func boolSchema(desc string, def bool) models.Schema {
	return models.Schema{"type": "boolean", "description": desc, "default": def}
}

// stringOrArraySchema accepts a single string or an array of strings, the
// scalar form being shorthand for a one-element array.
func stringOrArraySchema(desc string) models.Schema {
	return models.Schema{
		"description": desc,
		"anyOf": []interface{}{
			map[string]interface{}{"type": "string"},
			map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		},
	}
}

func intOrArraySchema(desc string) models.Schema {
	return models.Schema{
		"description": desc,
		"anyOf": []interface{}{
			map[string]interface{}{"type": "integer"},
			map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "integer"}},
		},
	}
}

func objectSchema(properties models.Schema, required ...string) models.Schema {
	s := models.Schema{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// ToolDefinitions returns the definitions of every tool the server exposes,
// in the order they are advertised.
func ToolDefinitions() []models.ToolDefinition {
	return []models.ToolDefinition{
		{
			Name: "apply_diff",
			Description: "Apply one or more search/replace block edits to a file. " +
				"Each edit names the 1-based line where its search block is expected to start; " +
				"the block is verified against the file before it is replaced. " +
				"Line numbers always refer to the original file, edits to earlier lines shift later ones automatically. " +
				"By default the whole batch is atomic: one failing edit prevents all of them.",
			InputSchema: objectSchema(models.Schema{
				"path":            stringSchema("Workspace-relative path of the file to edit"),
				"search_content":  stringOrArraySchema("Exact content expected at each start line, one block per edit"),
				"replace_content": stringOrArraySchema("Replacement content for each edit, inserted verbatim"),
				"start_line":      intOrArraySchema("1-based line in the original file where each search block starts"),
				"atomic":          boolSchema("Apply all edits or none", true),
				"trim":            boolSchema("Ignore leading and trailing whitespace when matching search blocks", false),
			}, "path", "search_content", "replace_content", "start_line"),
			Annotations: models.ToolAnnotations{DestructiveHint: true},
		},
		{
			Name: "read_file",
			Description: "Read a file's content, optionally restricted to a line range. " +
				"Reports the total line count and the effective range returned.",
			InputSchema: objectSchema(models.Schema{
				"path":       stringSchema("Workspace-relative path of the file to read"),
				"start_line": intSchema("Optional 1-based first line of the range"),
				"end_line":   intSchema("Optional 1-based last line of the range, clamped to the file length"),
			}, "path"),
			Annotations: models.ToolAnnotations{ReadOnlyHint: true},
		},
		{
			Name: "write_file",
			Description: "Create or overwrite a file with the given content. " +
				"Missing parent directories are created unless create_dirs is false.",
			InputSchema: objectSchema(models.Schema{
				"path":        stringSchema("Workspace-relative path of the file to write"),
				"content":     stringSchema("Complete new file content"),
				"create_dirs": boolSchema("Create missing parent directories", true),
			}, "path", "content"),
			Annotations: models.ToolAnnotations{DestructiveHint: true},
		},
		{
			Name: "insert_lines",
			Description: "Insert content before a line of an existing file. " +
				"line 0 appends at end of file and negative values count back from the end.",
			InputSchema: objectSchema(models.Schema{
				"path":    stringSchema("Workspace-relative path of the file to modify"),
				"content": stringSchema("Text to insert; multi-line content inserts multiple lines"),
				"line":    intSchema("1-based insertion point, 0 to append, negative to count from the end"),
			}, "path", "content", "line"),
			Annotations: models.ToolAnnotations{DestructiveHint: true},
		},
		{
			Name: "search_replace",
			Description: "Find and replace text across a whole file, literally or by regular expression. " +
				"Returns the number of replacements and a patch of the change.",
			InputSchema: objectSchema(models.Schema{
				"path":           stringSchema("Workspace-relative path of the file to modify"),
				"search":         stringSchema("Literal text or Go regular expression to find"),
				"replace":        stringSchema("Substitution text; $1, $2 reference capture groups in regex mode"),
				"use_regex":      boolSchema("Treat search as a regular expression", false),
				"case_sensitive": boolSchema("Match case in literal mode; ignored in regex mode", true),
				"all":            boolSchema("Replace every occurrence instead of only the first", true),
			}, "path", "search", "replace"),
			Annotations: models.ToolAnnotations{DestructiveHint: true},
		},
		{
			Name: "list_files",
			Description: "List the files of the working directory with size, modification time, " +
				"permissions and line count. Hidden files and directories are omitted.",
			InputSchema: objectSchema(models.Schema{}),
			Annotations: models.ToolAnnotations{ReadOnlyHint: true},
		},
	}
}
