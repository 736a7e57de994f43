package models

import (
	"encoding/json"
	"fmt"
)

// FlexibleStrings accepts either a single JSON string or an array of strings.
// A bare string decodes to a one-element slice, so callers downstream always
// see the array form.
type FlexibleStrings []string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexibleStrings) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*f = FlexibleStrings{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected a string or an array of strings")
	}
	*f = FlexibleStrings(many)
	return nil
}

// FlexibleInts accepts either a single JSON integer or an array of integers.
type FlexibleInts []int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexibleInts) UnmarshalJSON(data []byte) error {
	var single int
	if err := json.Unmarshal(data, &single); err == nil {
		*f = FlexibleInts{single}
		return nil
	}
	var many []int
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected an integer or an array of integers")
	}
	*f = FlexibleInts(many)
	return nil
}

// ApplyDiffRequest represents a request to apply one or more search/replace
// edits to a file. search_content, replace_content and start_line must have
// the same length once scalars are broadcast to one-element arrays.
type ApplyDiffRequest struct {
	// Path is the workspace-relative path of the file to edit.
	Path string `json:"path"`
	// SearchContent holds the block(s) expected at each start line.
	SearchContent FlexibleStrings `json:"search_content"`
	// ReplaceContent holds the block(s) to substitute, inserted verbatim.
	ReplaceContent FlexibleStrings `json:"replace_content"`
	// StartLine holds the 1-based line in the original file where each
	// search block is expected to begin.
	StartLine FlexibleInts `json:"start_line"`
	// Atomic selects all-or-nothing application. Defaults to true when
	// omitted.
	Atomic *bool `json:"atomic,omitempty"`
	// Trim relaxes matching to ignore leading/trailing whitespace per line.
	Trim bool `json:"trim,omitempty"`
}

// AtomicEnabled resolves the Atomic flag with its default.
func (r *ApplyDiffRequest) AtomicEnabled() bool {
	if r.Atomic == nil {
		return true
	}
	return *r.Atomic
}

// EditResult reports the outcome of a single edit, in the caller's
// submission order.
type EditResult struct {
	// Status is "success", "fail" or "aborted".
	Status string `json:"status"`
	// StartLine echoes the original start line the caller supplied.
	StartLine int `json:"start_line"`
	// Message describes what happened, including lines added or removed.
	Message string `json:"message"`
}

// ApplyDiffResponse represents the response from an apply_diff operation.
type ApplyDiffResponse struct {
	// Success is true only when every requested edit was applied.
	Success bool `json:"success"`
	// Results lists one entry per requested edit, in submission order.
	Results []EditResult `json:"results"`
	// EditsApplied counts the edits that committed.
	EditsApplied int `json:"edits_applied"`
	// EditsFailed counts the edits that failed or were aborted.
	EditsFailed int `json:"edits_failed"`
	// NewTotalLines is the file's line count after the operation.
	NewTotalLines int `json:"new_total_lines"`
}
