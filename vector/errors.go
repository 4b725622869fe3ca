package vector

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingUserID is returned when an operation is invoked without a
	// resolvable user id. Operations never silently default to a shared
	// namespace.
	ErrMissingUserID = errors.New("vector: user id is required")

	// ErrCountMismatch is returned when the vectors and metadata slices
	// passed to AddVectors have different lengths.
	ErrCountMismatch = errors.New("vector: vectors and metadata count mismatch")
)

// DimensionMismatchError indicates a vector whose length differs from the
// store's configured embedding dimension. The whole batch operation is
// rejected; nothing is written.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("vector: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}
