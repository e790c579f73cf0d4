package converter

import (
	"errors"
	"fmt"
)

const (
	// MinHeaderFields is the shortest header that still has fields 1 and 2 to swap.
	MinHeaderFields = 3
	// MinDataFields is the shortest data row that still has fields 1 and 2
	// to swap once the leading identifier column is dropped.
	MinDataFields = 4
)

// ErrMalformedRow matches every *MalformedRowError via errors.Is.
var ErrMalformedRow = errors.New("malformed row")

// MalformedRowError reports a row with too few fields for the column shuffle.
type MalformedRowError struct {
	Path   string
	Line   int
	Fields int
	Want   int
}

func (e *MalformedRowError) Error() string {
	loc := "row"
	if e.Path != "" {
		loc = fmt.Sprintf("%s:%d", e.Path, e.Line)
	} else if e.Line > 0 {
		loc = fmt.Sprintf("line %d", e.Line)
	}
	return fmt.Sprintf("%s: %s has %d fields, need at least %d", ErrMalformedRow, loc, e.Fields, e.Want)
}

func (e *MalformedRowError) Is(target error) bool {
	return target == ErrMalformedRow
}

// TransformHeader swaps the header fields at index 1 and 2. No field is dropped.
func TransformHeader(fields []string) ([]string, error) {
	if len(fields) < MinHeaderFields {
		return nil, &MalformedRowError{Fields: len(fields), Want: MinHeaderFields}
	}
	out := make([]string, len(fields))
	copy(out, fields)
	out[1], out[2] = out[2], out[1]
	return out, nil
}

// TransformDataRow drops the first field, then swaps the fields now at
// index 1 and 2.
func TransformDataRow(fields []string) ([]string, error) {
	if len(fields) < MinDataFields {
		return nil, &MalformedRowError{Fields: len(fields), Want: MinDataFields}
	}
	out := make([]string, len(fields)-1)
	copy(out, fields[1:])
	out[1], out[2] = out[2], out[1]
	return out, nil
}
