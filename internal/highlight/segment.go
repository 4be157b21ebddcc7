package highlight

// SegmentKind tags a piece of document text for rendering.
type SegmentKind string

const (
	Plain     SegmentKind = "plain"
	Highlight SegmentKind = "highlight"
)

// Segment is a contiguous piece of document text. Range is set only for
// highlight segments.
type Segment struct {
	Kind  SegmentKind `json:"kind"`
	Text  string      `json:"text"`
	Range *Range      `json:"range,omitempty"`
}

// Segments partitions content into plain and highlighted pieces. ranges must
// be sorted by Start and non-overlapping; bounds are clamped into the
// content. Concatenating the returned texts yields content exactly.
func Segments(content string, ranges []Range) []Segment {
	if len(ranges) == 0 {
		return []Segment{{Kind: Plain, Text: content}}
	}

	out := make([]Segment, 0, 2*len(ranges)+1)
	last := 0
	for _, r := range ranges {
		start := clamp(r.Start, last, len(content))
		end := clamp(r.End, start, len(content))
		if start > last {
			out = append(out, Segment{Kind: Plain, Text: content[last:start]})
		}
		if end == start {
			continue
		}
		hr := Range{Start: start, End: end, Text: content[start:end]}
		out = append(out, Segment{Kind: Highlight, Text: hr.Text, Range: &hr})
		last = end
	}
	if last < len(content) {
		out = append(out, Segment{Kind: Plain, Text: content[last:]})
	}
	if len(out) == 0 {
		out = append(out, Segment{Kind: Plain, Text: content})
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
