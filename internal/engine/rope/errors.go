package rope

import (
	"errors"
	"fmt"
)

// Errors carried by rope panics and returned by FromReader.
var (
	// ErrOutOfRange indicates a position or cursor move past either end.
	ErrOutOfRange = errors.New("position out of range")

	// ErrNotCharAligned indicates a byte offset inside a UTF-8 sequence.
	ErrNotCharAligned = errors.New("offset not on a char boundary")

	// ErrNotGraphemeAligned indicates a byte offset inside a grapheme cluster.
	ErrNotGraphemeAligned = errors.New("offset not on a grapheme boundary")

	// ErrShapeMismatch indicates edit operations that do not span the rope.
	ErrShapeMismatch = errors.New("edit does not match rope length")

	// ErrInvalidUTF8 indicates input that is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid UTF-8")
)

func fail(err error, format string, args ...any) {
	panic(fmt.Errorf("%w: "+format, append([]any{err}, args...)...))
}
