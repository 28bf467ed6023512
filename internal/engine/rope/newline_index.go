package rope

import "sort"

// MaxInlineNewlines is the number of newline positions stored inline.
const MaxInlineNewlines = 4

// NewlineIndex records the byte offsets of line feeds within a chunk.
// Chunks with few newlines, the common case for source code, keep the
// positions inline without allocating.
type NewlineIndex struct {
	inline    [MaxInlineNewlines]int32
	count     int32
	positions []int32 // only when count > MaxInlineNewlines
}

// ComputeNewlineIndex scans s and builds its newline index.
func ComputeNewlineIndex(s string) NewlineIndex {
	var idx NewlineIndex
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' {
			continue
		}
		if idx.count < MaxInlineNewlines {
			idx.inline[idx.count] = int32(i)
		} else {
			if idx.positions == nil {
				idx.positions = append(make([]int32, 0, 2*MaxInlineNewlines), idx.inline[:]...)
			}
			idx.positions = append(idx.positions, int32(i))
		}
		idx.count++
	}
	return idx
}

// Count returns the number of newlines.
func (idx *NewlineIndex) Count() int {
	return int(idx.count)
}

// Position returns the byte offset of the nth newline (0-indexed), or -1.
func (idx *NewlineIndex) Position(n int) int {
	if n < 0 || n >= int(idx.count) {
		return -1
	}
	return int(idx.all()[n])
}

// LineStart returns the offset just past the nth newline (1-indexed).
// Line 0 starts at 0. Returns -1 if the chunk has fewer newlines.
func (idx *NewlineIndex) LineStart(line int) int {
	if line == 0 {
		return 0
	}
	pos := idx.Position(line - 1)
	if pos < 0 {
		return -1
	}
	return pos + 1
}

// CountBefore returns the number of newlines at offsets < offset.
func (idx *NewlineIndex) CountBefore(offset int) int {
	all := idx.all()
	return sort.Search(len(all), func(i int) bool { return int(all[i]) >= offset })
}

// NewlineBefore returns the last newline at an offset < offset, or -1.
func (idx *NewlineIndex) NewlineBefore(offset int) int {
	n := idx.CountBefore(offset)
	if n == 0 {
		return -1
	}
	return idx.Position(n - 1)
}

// NewlineAfter returns the first newline at an offset >= offset, or -1.
func (idx *NewlineIndex) NewlineAfter(offset int) int {
	return idx.Position(idx.CountBefore(offset))
}

func (idx *NewlineIndex) all() []int32 {
	if idx.count <= MaxInlineNewlines {
		return idx.inline[:idx.count]
	}
	return idx.positions
}
