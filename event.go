package bstable

import (
	"context"
	"strings"
)

// Event is a DOM event raised within a cell of a column.
type Event struct {
	// Type of the DOM event like "click".
	Type  string
	Value any
	Row   Row
	// Index of the row within the current page.
	Index int
}

// EventFunc handles an Event of a column.
type EventFunc func(ctx context.Context, event *Event) error

// EventKey returns the key of a column event handler
// for an event type and a CSS class selector in the
// form "click .some-class".
// A missing leading dot of className is added.
func EventKey(eventType, className string) string {
	if !strings.HasPrefix(className, ".") {
		className = "." + className
	}
	return eventType + " " + className
}
