package models

// PageRequest selects a zero-based page of a fixed size.
type PageRequest struct {
	Page int
	Size int
}

// Page is one page of results plus the metadata needed to rebuild
// pagination headers. Operations that re-resolve a page's content (such
// as the eager member fetch) replace Content while preserving the rest.
type Page[T any] struct {
	Content       []T
	TotalElements int64
	Page          int
	Size          int
}
