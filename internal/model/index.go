package model

import "fmt"

// ErrIndexOutOfRange reports an item or slide number outside [-length, length).
type ErrIndexOutOfRange struct {
	Index  int
	Length int
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("index %d out of range for length %d", e.Index, e.Length)
}

// NormalizeIndex resolves an index against a sequence of the given length.
// A negative index counts from the end, applied once; anything still outside
// [0, length) afterwards is rejected, never clamped. The result is idempotent
// under re-normalization.
func NormalizeIndex(index, length int) (int, error) {
	normalized := index
	if normalized < 0 {
		normalized += length
	}
	if normalized < 0 || normalized >= length {
		return 0, &ErrIndexOutOfRange{Index: index, Length: length}
	}
	return normalized, nil
}
