package models

// SearchReplaceRequest represents a whole-file string or regex
// search-and-replace.
type SearchReplaceRequest struct {
	// Path is the workspace-relative path of the file to modify.
	Path string `json:"path"`
	// Search is the literal text or regular expression to find.
	Search string `json:"search"`
	// Replace is the substitution text. In regex mode it may reference
	// capture groups with $1, $2, ...
	Replace string `json:"replace"`
	// UseRegex treats Search as a Go regular expression.
	UseRegex bool `json:"use_regex,omitempty"`
	// CaseSensitive controls literal matching. Defaults to true when
	// omitted; ignored in regex mode.
	CaseSensitive *bool `json:"case_sensitive,omitempty"`
	// All replaces every occurrence. Defaults to true when omitted; false
	// replaces only the first.
	All *bool `json:"all,omitempty"`
}

// CaseSensitiveEnabled resolves the CaseSensitive flag with its default.
func (r *SearchReplaceRequest) CaseSensitiveEnabled() bool {
	if r.CaseSensitive == nil {
		return true
	}
	return *r.CaseSensitive
}

// AllEnabled resolves the All flag with its default.
func (r *SearchReplaceRequest) AllEnabled() bool {
	if r.All == nil {
		return true
	}
	return *r.All
}

// SearchReplaceResponse represents the response from a search_replace
// operation.
type SearchReplaceResponse struct {
	Success bool `json:"success"`
	// Replacements is the number of occurrences that were replaced.
	Replacements int `json:"replacements"`
	// NewTotalLines is the file's line count after the operation.
	NewTotalLines int `json:"new_total_lines"`
	// Diff is a textual patch of the change, empty when nothing matched.
	Diff string `json:"diff,omitempty"`
}
