package selection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/docmark/internal/highlight"
)

// ErrDuplicateNodeID is returned when a render tree reuses a node ID.
var ErrDuplicateNodeID = errors.New("duplicate node id")

type leaf struct {
	start int // absolute offset of the leaf's first byte
	width int // 0 for control and skipped leaves
	text  string
}

// Index is a flat view of a render tree, built once per tree: every leaf is
// mapped to the absolute offset where its text begins.
type Index struct {
	leaves  map[string]leaf
	counted []string // IDs of leaves with non-zero width, in document order
	length  int
}

// NewIndex walks root in document order. Leaves under a control node and
// blank leaves not marked Preserve get width 0; every other leaf advances
// the running offset by its text length.
func NewIndex(root *Node) (*Index, error) {
	ix := &Index{leaves: make(map[string]leaf)}
	seen := make(map[string]bool)

	var walk func(n *Node, control bool) error
	walk = func(n *Node, control bool) error {
		if n == nil {
			return nil
		}
		if n.ID != "" {
			if seen[n.ID] {
				return fmt.Errorf("%w: %q", ErrDuplicateNodeID, n.ID)
			}
			seen[n.ID] = true
		}
		control = control || n.Control

		if n.IsLeaf() {
			l := leaf{start: ix.length, text: n.Text}
			if !control && counts(n) {
				l.width = len(n.Text)
				ix.length += l.width
				if n.ID != "" {
					ix.counted = append(ix.counted, n.ID)
				}
			}
			if n.ID != "" {
				ix.leaves[n.ID] = l
			}
			return nil
		}

		for _, c := range n.Children {
			if err := walk(c, control); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(root, false); err != nil {
		return nil, err
	}
	return ix, nil
}

func counts(n *Node) bool {
	if n.Text == "" {
		return false
	}
	return n.Preserve || strings.TrimSpace(n.Text) != ""
}

// Len returns the number of content bytes the tree accounts for.
func (ix *Index) Len() int { return ix.length }

// Position converts an anchor into an absolute offset. An anchor inside a
// zero-width leaf resolves to the offset where that leaf sits.
func (ix *Index) Position(a Anchor) (int, error) {
	l, ok := ix.leaves[a.Node]
	if !ok {
		return 0, fmt.Errorf("anchor node %q is not a text leaf under the root: %w", a.Node, highlight.ErrOutOfBounds)
	}
	if a.Offset < 0 || a.Offset > len(l.text) {
		return 0, fmt.Errorf("anchor offset %d outside node %q (%d bytes): %w", a.Offset, a.Node, len(l.text), highlight.ErrOutOfBounds)
	}
	if l.width == 0 {
		return l.start, nil
	}
	return l.start + a.Offset, nil
}

// AnchorAt returns an anchor addressing absolute offset pos. Offsets on a
// leaf boundary resolve to the end of the earlier leaf, except offset 0.
func (ix *Index) AnchorAt(pos int) (Anchor, bool) {
	if pos < 0 || pos > ix.length {
		return Anchor{}, false
	}
	for _, id := range ix.counted {
		l := ix.leaves[id]
		if pos >= l.start && pos <= l.start+l.width {
			return Anchor{Node: id, Offset: pos - l.start}, true
		}
	}
	return Anchor{}, false
}

// Anchors returns, for each range, a selection over ix covering it. Ranges
// past the end of the index get a zero Selection.
func Anchors(ix *Index, ranges []highlight.Range) []Selection {
	out := make([]Selection, len(ranges))
	for i, r := range ranges {
		start, ok := ix.AnchorAt(r.Start)
		if !ok {
			continue
		}
		end, ok := ix.AnchorAt(r.End)
		if !ok {
			continue
		}
		out[i] = Selection{Start: start, End: end}
	}
	return out
}
