package fanin

import (
	"errors"
	"fmt"
)

// ErrData matches every DataError through errors.Is.
var ErrData = errors.New("data invariant violated")

// DataError reports a violated fan-in invariant: a gap in sibling indices,
// a malformed sibling result or conflicting entries for one entity. It is
// always fatal for the reduction.
type DataError struct {
	Group  string
	Index  int
	Entity string
	Reason string
}

func (e *DataError) Error() string {
	msg := fmt.Sprintf("group %q index %d: %s", e.Group, e.Index, e.Reason)
	if e.Entity != "" {
		msg += fmt.Sprintf(" (entity %q)", e.Entity)
	}
	return msg
}

// Is makes errors.Is(err, ErrData) hold for any DataError.
func (e *DataError) Is(target error) bool {
	return target == ErrData
}
