// Package domain holds types shared by the domain subpackages.
package domain

// ListFilter controls pagination for list queries.
type ListFilter struct {
	Limit  int
	Offset int
}

// Normalize clamps filter values to sane defaults.
func (f *ListFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 200 {
		f.Limit = 200
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// ListResult is a paginated query result.
type ListResult[T any] struct {
	Items  []T
	Total  int64
	Limit  int
	Offset int
}
