package diff

import (
	"errors"
	"fmt"

	"github.com/dshills/ropecore/internal/engine/text"
)

// Errors returned by diff operations.
var (
	// ErrLengthMismatch indicates diffs or texts whose lengths do not line up.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrBadOriginal indicates an original text that is not the diff's base.
	ErrBadOriginal = errors.New("original text does not match diff base")
)

// LengthMismatchError reports the two lengths that failed to line up.
type LengthMismatchError struct {
	Op    string
	Left  text.Length
	Right text.Length
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("diff %s: %v: %v vs %v", e.Op, ErrLengthMismatch, e.Left, e.Right)
}

// Unwrap returns ErrLengthMismatch.
func (e *LengthMismatchError) Unwrap() error {
	return ErrLengthMismatch
}

func mismatch(op string, left, right text.Length) error {
	return &LengthMismatchError{Op: op, Left: left, Right: right}
}
