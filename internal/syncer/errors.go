package syncer

import (
	"errors"
	"fmt"
)

// ErrInvalidBatchSize reports a non-positive batch size. Batch sizes come
// from compiled-in marketplace limits, so hitting this is a programmer error.
var ErrInvalidBatchSize = errors.New("batch size must be positive")

// RejectedError is a non-2xx marketplace response. Size identifies the
// rejected batch for diagnostics; remaining batches of the run are not
// attempted.
type RejectedError struct {
	Marketplace string
	Kind        string // "list", "stocks" or "prices"
	Status      int
	Body        string
	Size        int
}

func (e *RejectedError) Error() string {
	if e.Size > 0 {
		return fmt.Sprintf("%s: %s batch of %d rejected: http %d: %s",
			e.Marketplace, e.Kind, e.Size, e.Status, e.Body)
	}
	return fmt.Sprintf("%s: %s rejected: http %d: %s", e.Marketplace, e.Kind, e.Status, e.Body)
}
