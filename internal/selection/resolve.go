package selection

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docmark/internal/highlight"
)

// Anchor is one end of a selection: a leaf node and a byte offset into its text.
type Anchor struct {
	Node   string `json:"node"`
	Offset int    `json:"offset"`
}

// Selection is a raw user selection. Start and End may be given in either order.
type Selection struct {
	Start Anchor `json:"start"`
	End   Anchor `json:"end"`
}

// Resolve turns sel into a candidate over content. Leading and trailing
// whitespace is trimmed and the offsets shrink to match the trimmed text.
func Resolve(ix *Index, content string, sel Selection) (highlight.Candidate, error) {
	a, err := ix.Position(sel.Start)
	if err != nil {
		return highlight.Candidate{}, err
	}
	b, err := ix.Position(sel.End)
	if err != nil {
		return highlight.Candidate{}, err
	}
	return Trim(content, min(a, b), max(a, b))
}

// Trim validates [start, end) against content and strips surrounding
// whitespace from it.
func Trim(content string, start, end int) (highlight.Candidate, error) {
	if start < 0 || end > len(content) || start > end {
		return highlight.Candidate{}, fmt.Errorf("selection [%d,%d) in %d bytes: %w", start, end, len(content), highlight.ErrOutOfBounds)
	}
	if start == end {
		return highlight.Candidate{}, highlight.ErrEmptySelection
	}

	raw := content[start:end]
	for start < end {
		r, size := utf8.DecodeRuneInString(content[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(content[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	if start == end {
		return highlight.Candidate{}, fmt.Errorf("selection %q is blank: %w", raw, highlight.ErrEmptySelection)
	}
	return highlight.Candidate{Start: start, End: end, Text: content[start:end]}, nil
}
