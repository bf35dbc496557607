package bstable

import (
	"context"
	"fmt"
)

// CheckEventType is one of the six check
// and uncheck events of the widget.
type CheckEventType int

const (
	EventCheck CheckEventType = iota
	EventCheckAll
	EventCheckSome
	EventUncheck
	EventUncheckAll
	EventUncheckSome
)

var checkEventNames = [...]string{
	EventCheck:       "check",
	EventCheckAll:    "check-all",
	EventCheckSome:   "check-some",
	EventUncheck:     "uncheck",
	EventUncheckAll:  "uncheck-all",
	EventUncheckSome: "uncheck-some",
}

// ParseCheckEventType parses the widget event name
// like "check-all" with or without ".bs.table" suffix.
func ParseCheckEventType(name string) (CheckEventType, error) {
	for t, n := range checkEventNames {
		if name == n || name == n+".bs.table" {
			return CheckEventType(t), nil
		}
	}
	return 0, fmt.Errorf("invalid check event type %q", name)
}

func (t CheckEventType) String() string {
	if t < 0 || int(t) >= len(checkEventNames) {
		return fmt.Sprintf("CheckEventType(%d)", int(t))
	}
	return checkEventNames[t]
}

// Checked returns true for the check events
// and false for the uncheck events.
func (t CheckEventType) Checked() bool {
	return t <= EventCheckSome
}

// IsSingleRow returns true for the events affecting one row.
func (t CheckEventType) IsSingleRow() bool {
	return t == EventCheck || t == EventUncheck
}

// CheckEvent is a check or uncheck event of the widget.
// Single row events carry Row, the others Rows.
type CheckEvent struct {
	Type CheckEventType
	Row  Row
	Rows []Row
}

// AffectedRows returns the rows affected by the event.
func (e *CheckEvent) AffectedRows() []Row {
	if e.Type.IsSingleRow() {
		if e.Row == nil {
			return e.Rows
		}
		return []Row{e.Row}
	}
	return e.Rows
}

// CheckFunc receives the rows affected by any
// check or uncheck event and if they were checked.
type CheckFunc func(ctx context.Context, rows []Row, checked bool) error
