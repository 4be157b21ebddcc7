package highlight

import (
	"fmt"
	"strings"
)

// Policy decides what happens when a new range intersects existing ones.
type Policy string

const (
	// RejectOverlap refuses any range that intersects an existing one.
	RejectOverlap Policy = "reject-overlap"
	// MergeUnion replaces intersecting or adjacent ranges with their union.
	MergeUnion Policy = "merge-union"
	// SplitTruncate deletes intersecting ranges and keeps the new one as-is.
	SplitTruncate Policy = "split-truncate"
)

// Policies lists every supported policy.
var Policies = []Policy{RejectOverlap, MergeUnion, SplitTruncate}

// ParsePolicy accepts a policy name, case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	p := Policy(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Policies {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown overlap policy %q", s)
}
