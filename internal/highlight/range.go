// Package highlight holds the highlight interval engine: per-document range
// sets under an overlap policy, duplicate detection, segmentation for
// rendering and the cross-document registry.
package highlight

import (
	"fmt"
	"sort"
)

// Range is a half-open [Start, End) byte interval into a document's content
// together with the text it covers.
type Range struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// NewRange builds a Range over content, deriving its text.
func NewRange(content string, start, end int) (Range, error) {
	if start < 0 || end > len(content) || start >= end {
		return Range{}, fmt.Errorf("range [%d,%d) in %d bytes: %w", start, end, len(content), ErrOutOfBounds)
	}
	return Range{Start: start, End: end, Text: content[start:end]}, nil
}

// Len returns the width of the range in bytes.
func (r Range) Len() int { return r.End - r.Start }

// Overlaps reports whether r and o share at least one position.
func (r Range) Overlaps(o Range) bool {
	return r.End > o.Start && r.Start < o.End
}

// Touches reports whether r and o overlap or are directly adjacent.
func (r Range) Touches(o Range) bool {
	return r.End >= o.Start && r.Start <= o.End
}

// SameSpan reports whether r and o cover exactly the same positions.
func (r Range) SameSpan(o Range) bool {
	return r.Start == o.Start && r.End == o.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Candidate is a proposed highlight that has not been accepted yet.
type Candidate struct {
	Start int
	End   int
	Text  string
}

// Range converts the candidate to a Range.
func (c Candidate) Range() Range {
	return Range{Start: c.Start, End: c.End, Text: c.Text}
}

func sortRanges(rs []Range) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].Start < rs[j].Start })
}
