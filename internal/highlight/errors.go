package highlight

import (
	"errors"
	"fmt"
)

// Selection errors
var (
	// ErrEmptySelection indicates the trimmed selection has zero length.
	ErrEmptySelection = errors.New("empty selection")

	// ErrOutOfBounds indicates resolved offsets fall outside the document
	// or start is not before end.
	ErrOutOfBounds = errors.New("offsets out of bounds")
)

// Store errors
var (
	// ErrOverlapRejected indicates the candidate intersects an existing range
	// and the active policy is reject-overlap.
	ErrOverlapRejected = errors.New("overlaps an existing highlight")

	// ErrNotFound indicates a remove request matched nothing.
	ErrNotFound = errors.New("highlight not found")

	// ErrDuplicateText is matched by every *DuplicateError via errors.Is.
	ErrDuplicateText = errors.New("duplicate highlight text")
)

// Where tells which document already holds a duplicate.
type Where int

const (
	SameDocument Where = iota + 1
	OtherDocument
)

func (w Where) String() string {
	switch w {
	case SameDocument:
		return "same_document"
	case OtherDocument:
		return "other_document"
	}
	return "unknown"
}

// DuplicateError reports a candidate whose normalized text is already highlighted.
type DuplicateError struct {
	Text       string
	Where      Where
	DocumentID string // document holding the existing highlight
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%q is already highlighted (%s)", e.Text, e.Where)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicateText
}
