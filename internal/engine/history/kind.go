package history

// Kind classifies an edit for coalescing.
type Kind uint8

const (
	// KindOther is any edit that stands alone.
	KindOther Kind = iota
	// KindInsert is typed text.
	KindInsert
	// KindSpace is typed whitespace.
	KindSpace
	// KindNewline is an inserted line break.
	KindNewline
	// KindBackspace deletes before the cursor.
	KindBackspace
	// KindDelete deletes after the cursor.
	KindDelete
	// KindTab is an indentation change.
	KindTab
	// KindCut removes a selection to the clipboard.
	KindCut
	// KindPaste inserts clipboard text.
	KindPaste
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindOther:
		return "other"
	case KindInsert:
		return "insert"
	case KindSpace:
		return "space"
	case KindNewline:
		return "newline"
	case KindBackspace:
		return "backspace"
	case KindDelete:
		return "delete"
	case KindTab:
		return "tab"
	case KindCut:
		return "cut"
	case KindPaste:
		return "paste"
	default:
		return "unknown"
	}
}

// Coalesces reports whether consecutive edits of this kind merge into one
// undo entry.
func (k Kind) Coalesces() bool {
	switch k {
	case KindInsert, KindSpace, KindBackspace, KindDelete:
		return true
	default:
		return false
	}
}
