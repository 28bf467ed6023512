package cursor

import "errors"

// ErrMergeUndefined is carried by the panic raised when two touching
// cursors of equal length and opposite direction must be merged.
var ErrMergeUndefined = errors.New("merge of opposite cursors is undefined")
