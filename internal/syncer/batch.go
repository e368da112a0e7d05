package syncer

import "iter"

// Batch partitions items into contiguous chunks of at most size elements,
// preserving order. The last chunk holds the remainder. Chunks are subslices
// of items, not copies, and the returned sequence can be ranged over more
// than once.
func Batch[T any](items []T, size int) (iter.Seq[[]T], error) {
	if size <= 0 {
		return nil, ErrInvalidBatchSize
	}
	return func(yield func([]T) bool) {
		for i := 0; i < len(items); i += size {
			end := min(i+size, len(items))
			if !yield(items[i:end]) {
				return
			}
		}
	}, nil
}
