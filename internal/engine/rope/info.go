package rope

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/ropecore/internal/engine/grapheme"
)

// Info is the summary of a span of text. It forms a commutative monoid
// under Add with the zero value as identity.
type Info struct {
	// Bytes is the UTF-8 byte count.
	Bytes int

	// Lines is the number of line feeds. CR LF counts once.
	Lines int

	// Chars is the number of Unicode scalar values.
	Chars int

	// Graphemes is the number of grapheme clusters.
	Graphemes int
}

// InfoOf computes the summary of s.
func InfoOf(s string) Info {
	info := Info{Bytes: len(s), Lines: strings.Count(s, "\n")}
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		info.Chars = len(s)
		info.Graphemes = len(s) - strings.Count(s, "\r\n")
		return info
	}
	info.Chars = utf8.RuneCountInString(s)
	info.Graphemes = grapheme.Count(s)
	return info
}

// Add combines two summaries.
func (i Info) Add(other Info) Info {
	return Info{
		Bytes:     i.Bytes + other.Bytes,
		Lines:     i.Lines + other.Lines,
		Chars:     i.Chars + other.Chars,
		Graphemes: i.Graphemes + other.Graphemes,
	}
}

// Sub removes a summary previously added with Add.
func (i Info) Sub(other Info) Info {
	return Info{
		Bytes:     i.Bytes - other.Bytes,
		Lines:     i.Lines - other.Lines,
		Chars:     i.Chars - other.Chars,
		Graphemes: i.Graphemes - other.Graphemes,
	}
}

// IsEmpty reports whether the summary describes no text.
func (i Info) IsEmpty() bool {
	return i.Bytes == 0
}
