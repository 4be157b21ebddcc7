// Package selection turns a user's text selection, expressed as anchors into
// a tree of text-bearing render nodes, into absolute offsets within a
// document's content.
package selection

import (
	"fmt"

	"github.com/dgallion1/docmark/internal/highlight"
)

// Node is one node of a render tree. Leaves carry text; a node marked
// Control, and everything below it, belongs to an interactive affordance and
// has no width. Preserve marks a leaf as document content even when it holds
// only whitespace; unmarked blank leaves are treated as host formatting.
type Node struct {
	ID       string  `json:"id,omitempty"`
	Text     string  `json:"text,omitempty"`
	Control  bool    `json:"control,omitempty"`
	Preserve bool    `json:"preserve,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// RemoveGlyph is the text of the remove control attached to each highlight.
const RemoveGlyph = "×"

// BuildRenderTree lays segments out the way the view renders them: plain
// segments become content leaves, each highlight becomes a container holding
// its text leaf and a remove control. Leaf IDs are stable for a given
// segment list so a client can address them in anchors.
func BuildRenderTree(segments []highlight.Segment) *Node {
	root := &Node{ID: "root"}
	for i, seg := range segments {
		switch seg.Kind {
		case highlight.Highlight:
			id := fmt.Sprintf("h%d", i)
			root.Children = append(root.Children, &Node{
				ID: id,
				Children: []*Node{
					{ID: id + ".t", Text: seg.Text, Preserve: true},
					{ID: id + ".x", Control: true, Children: []*Node{
						{ID: id + ".x.t", Text: RemoveGlyph},
					}},
				},
			})
		default:
			root.Children = append(root.Children, &Node{
				ID:       fmt.Sprintf("p%d", i),
				Text:     seg.Text,
				Preserve: true,
			})
		}
	}
	return root
}

// RemoveTarget returns the range a remove control refers to, given the
// control's node ID in a tree built from segments.
func RemoveTarget(segments []highlight.Segment, controlID string) (highlight.Range, bool) {
	for i, seg := range segments {
		if seg.Kind != highlight.Highlight || seg.Range == nil {
			continue
		}
		id := fmt.Sprintf("h%d", i)
		if controlID == id+".x" || controlID == id+".x.t" {
			return *seg.Range, true
		}
	}
	return highlight.Range{}, false
}
