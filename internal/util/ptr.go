// Package util holds small helpers shared by gmsctl packages.
package util

// Ptr returns a pointer to a copy of v, for optional request fields.
func Ptr[T any](v T) *T {
	return &v
}
