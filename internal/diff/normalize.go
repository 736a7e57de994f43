package diff

import (
	"fmt"
	"sort"
)

// Normalize builds the edit list from the request's parallel arrays. The
// request model has already broadcast bare scalars to one-element arrays;
// here the three arrays must have equal length and every start line must be
// at least 1. Each edit is tagged with its submission index, then the list
// is sorted ascending by start line, stable so edits sharing a start line
// keep submission order. The sorted order is the application order that the
// offset arithmetic in this package depends on.
func Normalize(search, replace []string, startLines []int) ([]Edit, error) {
	if len(search) != len(replace) || len(search) != len(startLines) {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("search_content, replace_content and start_line must have the same length, got %d/%d/%d",
				len(search), len(replace), len(startLines)),
		}
	}

	edits := make([]Edit, 0, len(search))
	for i := range search {
		if startLines[i] < 1 {
			return nil, &ValidationError{
				Reason: fmt.Sprintf("start_line must be >= 1, got %d at position %d", startLines[i], i),
			}
		}
		edits = append(edits, Edit{
			Search:    search[i],
			Replace:   replace[i],
			StartLine: startLines[i],
			Index:     i,
		})
	}

	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].StartLine < edits[j].StartLine
	})
	return edits, nil
}
