// Package batch splits ordered photo sets into fixed-size request batches.
package batch

import "fmt"

// Partition splits items into consecutive slices of at most size elements,
// preserving order. The final slice may be shorter. The returned slices share
// the backing array of items.
func Partition[T any](items []T, size int) [][]T {
	if size <= 0 {
		panic(fmt.Sprintf("batch: invalid batch size %d", size))
	}
	if len(items) == 0 {
		return nil
	}

	batches := make([][]T, 0, Count(len(items), size))
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end:end])
	}
	return batches
}

// Count returns the number of batches Partition produces for n items.
func Count(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}
