package bstable

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned by every Table operation
	// invoked before Init was called with a non empty element ID.
	ErrNotInitialized = errors.New("table must be initialized with Init(elementID)")

	// ErrFormatterWithActions is returned when a column
	// has a formatter and actions at the same time.
	ErrFormatterWithActions = errors.New("column can't have a formatter and actions at the same time")

	// ErrUnknownColumn is returned when a column
	// referenced by field or index does not exist.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrNoEventHandler is returned when an event
	// is triggered for which no handler is registered.
	ErrNoEventHandler = errors.New("no event handler")

	// ErrNoFetchFunc is returned when data is requested
	// from a table without a fetch function.
	ErrNoFetchFunc = errors.New("no fetch function set")

	// ErrNoWidget is returned by the imperative Table methods
	// when no Widget handle was set.
	ErrNoWidget = errors.New("no widget handle set")
)

// FetchError wraps an error returned by a FetchFunc
// or by the normalization of its result.
// The widget still receives an empty result
// of the current pagination mode.
type FetchError struct {
	ElementID string
	Params    map[string]any
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching data for table %s: %s", e.ElementID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
