// Package cache holds per-line data derived from a rope and keeps it
// aligned with the text as diffs are applied.
//
// Every cache is a vector with one entry per line of the text. Entries are
// marked dirty when an edit touches their line and are recomputed lazily by
// Refresh. Invalidation consumes the operation ranges of a diff:
//
//   - an insert of k line breaks in line L marks L dirty and splices k
//     fresh dirty lines after it
//   - a delete spanning lines L..M drops lines L+1..M and marks L dirty
//
// Caches must see every diff applied to their text, in order. A cache
// whose line count no longer matches the text is desynchronized; Check
// and Refresh panic with ErrCacheDesync in that case.
//
// Three caches are provided on top of the generic Lines type:
//
//   - IndentCache: leading whitespace per line in visual columns, plus
//     the indentation of the nearest non-blank lines above and below
//   - DecorationCache: column spans carrying a message ID, such as
//     diagnostics, optionally derived from a DecorationSource
//   - TokenCache: tokens from a pluggable Tokenizer, with end-of-line
//     state carried into the following line
//
// Caches are not safe for concurrent use.
package cache
