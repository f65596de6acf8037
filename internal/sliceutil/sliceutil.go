// Package sliceutil holds small generic helpers over slices.
package sliceutil

// Map returns fn applied to every element of slice, in order.
func Map[T any, U any](slice []T, fn func(T) U) []U {
	mapped := make([]U, len(slice))
	for i, elem := range slice {
		mapped[i] = fn(elem)
	}
	return mapped
}

// Compact returns the non-nil elements of slice, in order.
func Compact[T any](slice []*T) []*T {
	out := make([]*T, 0, len(slice))
	for _, elem := range slice {
		if elem != nil {
			out = append(out, elem)
		}
	}
	return out
}
