// Package page computes pagination windows over result lists.
package page

// Window describes one page of a result list.
type Window struct {
	Index int // zero-based page index
	Size  int
	Total int // length of the full result list
}

// Count returns the number of pages needed for Total items.
func (w Window) Count() int {
	if w.Size <= 0 || w.Total <= 0 {
		return 0
	}
	return (w.Total + w.Size - 1) / w.Size
}

// HasNext reports whether a page follows this one.
func (w Window) HasNext() bool {
	return w.Index >= 0 && w.Index < w.Count()-1
}

// Paginate returns the items of the zero-based page pageIndex.
// An out-of-range page, a negative index or a non-positive size yields an empty slice.
func Paginate[T any](items []T, pageIndex, pageSize int) []T {
	if pageIndex < 0 || pageSize <= 0 || len(items) == 0 {
		return []T{}
	}
	// Compare before multiplying: pageIndex*pageSize may overflow.
	if pageIndex > (len(items)-1)/pageSize {
		return []T{}
	}
	start := pageIndex * pageSize
	end := start + min(pageSize, len(items)-start)
	return items[start:end:end]
}
