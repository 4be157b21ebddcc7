package highlight

import "fmt"

// Change describes the effect of one accepted insert: the ranges that leave
// the set and the range that enters it.
type Change struct {
	Added   Range
	Removed []Range
}

// Store owns the highlight ranges of one document. The set is kept sorted by
// Start and pairwise non-overlapping after every mutation.
//
// Store is not safe for concurrent use; callers serialize access per document.
type Store struct {
	content string
	policy  Policy
	ranges  []Range
}

// NewStore creates an empty store over content.
func NewStore(content string, policy Policy) *Store {
	if policy == "" {
		policy = RejectOverlap
	}
	return &Store{content: content, policy: policy}
}

// Content returns the document text the ranges index into.
func (s *Store) Content() string { return s.content }

// Policy returns the overlap policy applied on insert.
func (s *Store) Policy() Policy { return s.policy }

// Len returns the number of committed ranges.
func (s *Store) Len() int { return len(s.ranges) }

// List returns a copy of the ranges, sorted by Start.
func (s *Store) List() []Range {
	out := make([]Range, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// Plan computes what inserting [start, end) would do without mutating the
// store. The returned Change can be handed to Apply unchanged.
func (s *Store) Plan(start, end int) (Change, error) {
	r, err := NewRange(s.content, start, end)
	if err != nil {
		return Change{}, err
	}

	switch s.policy {
	case RejectOverlap:
		for _, e := range s.ranges {
			if r.Overlaps(e) {
				return Change{}, fmt.Errorf("%s intersects %s: %w", r, e, ErrOverlapRejected)
			}
		}
		return Change{Added: r}, nil

	case MergeUnion:
		lo, hi := r.Start, r.End
		var removed []Range
		for _, e := range s.ranges {
			if !r.Touches(e) {
				continue
			}
			removed = append(removed, e)
			lo = min(lo, e.Start)
			hi = max(hi, e.End)
		}
		merged, err := NewRange(s.content, lo, hi)
		if err != nil {
			return Change{}, err
		}
		return Change{Added: merged, Removed: removed}, nil

	case SplitTruncate:
		var removed []Range
		for _, e := range s.ranges {
			if r.Overlaps(e) {
				removed = append(removed, e)
			}
		}
		return Change{Added: r, Removed: removed}, nil
	}
	return Change{}, fmt.Errorf("unknown overlap policy %q", s.policy)
}

// Apply commits a Change produced by Plan.
func (s *Store) Apply(c Change) {
	for _, r := range c.Removed {
		s.delete(r.Start, r.End)
	}
	s.ranges = append(s.ranges, c.Added)
	sortRanges(s.ranges)
}

// Insert plans and applies in one step. On error the store is unchanged.
func (s *Store) Insert(start, end int) (Change, error) {
	c, err := s.Plan(start, end)
	if err != nil {
		return Change{}, err
	}
	s.Apply(c)
	return c, nil
}

// Remove deletes the range spanning exactly [start, end).
func (s *Store) Remove(start, end int) (Range, bool) {
	return s.delete(start, end)
}

// MatchText returns every range whose normalized text equals normalized.
func (s *Store) MatchText(normalized string) []Range {
	var out []Range
	for _, r := range s.ranges {
		if Normalize(r.Text) == normalized {
			out = append(out, r)
		}
	}
	return out
}

// RemoveByText deletes every range whose normalized text equals
// Normalize(text) and returns them in Start order.
func (s *Store) RemoveByText(text string) []Range {
	matched := s.MatchText(Normalize(text))
	for _, r := range matched {
		s.delete(r.Start, r.End)
	}
	return matched
}

func (s *Store) delete(start, end int) (Range, bool) {
	for i, r := range s.ranges {
		if r.Start == start && r.End == end {
			s.ranges = append(s.ranges[:i], s.ranges[i+1:]...)
			return r, true
		}
	}
	return Range{}, false
}
