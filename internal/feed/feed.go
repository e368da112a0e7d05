// Package feed fetches and normalizes the vendor stock feed that drives a
// sync run. One Record per watch model, keyed by the vendor product code.
package feed

import (
	"context"
	"fmt"
)

// Record is one row of the vendor feed. All fields are raw tokens as they
// appear in the spreadsheet; Quantity and Price use vendor conventions that
// NormalizeQuantity and NormalizePrice decode.
type Record struct {
	Code     string
	Quantity string
	Price    string
}

// Source fetches a fresh copy of the vendor feed. Implementations must not
// cache between calls: every sync run works from a fresh snapshot.
type Source interface {
	Fetch(ctx context.Context) ([]Record, error)
}

// FormatError reports a quantity or price token that could not be decoded.
// Reconciliation aborts on it rather than shipping a guessed value.
type FormatError struct {
	Field string
	Token string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed %s token %q", e.Field, e.Token)
}
