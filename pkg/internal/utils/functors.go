package utils

// Chunk splits elems into consecutive slices of at most size elements. The returned slices
// share the backing array of elems.
func Chunk[T any](elems []T, size int) [][]T {
	if size <= 0 || len(elems) <= size {
		if len(elems) == 0 {
			return nil
		}
		return [][]T{elems}
	}
	out := make([][]T, 0, (len(elems)+size-1)/size)
	for start := 0; start < len(elems); start += size {
		end := start + size
		if end > len(elems) {
			end = len(elems)
		}
		out = append(out, elems[start:end:end])
	}
	return out
}

// Filter returns a new slice holding only the elements of elems that satisfy f().
func Filter[T any](elems []T, f func(T) bool) []T {
	var result []T
	for _, v := range elems {
		if f(v) {
			result = append(result, v)
		}
	}
	return result
}

func Contains[T comparable](slice []T, element T) bool {
	for _, v := range slice {
		if v == element {
			return true
		}
	}
	return false
}
