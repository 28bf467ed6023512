package cache

import "errors"

// ErrCacheDesync indicates a cache whose line count differs from its text.
var ErrCacheDesync = errors.New("cache out of sync with text")
