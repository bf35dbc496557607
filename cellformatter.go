package bstable

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"reflect"
)

// Cell is the data passed to a CellFormatter.
type Cell struct {
	// Field of the column, or the column index
	// as string for columns without field.
	Field string
	Value any
	Row   Row
	// Index of the row within the current page.
	Index int
}

// CellFormatter is an interface for formatting table cells as strings.
type CellFormatter interface {
	// FormatCell formats a cell as string
	// or returns a wrapped errors.ErrUnsupported error if
	// it doesn't support formatting the value of the cell.
	// The raw result indicates if the returned string
	// is already HTML and can be used as is or if it
	// has to be escaped.
	FormatCell(ctx context.Context, cell *Cell) (str string, raw bool, err error)
}

// CellFormatterFunc implements CellFormatter for a function.
type CellFormatterFunc func(ctx context.Context, cell *Cell) (str string, raw bool, err error)

func (f CellFormatterFunc) FormatCell(ctx context.Context, cell *Cell) (str string, raw bool, err error) {
	return f(ctx, cell)
}

// PrintfCellFormatter implements CellFormatter by calling
// fmt.Sprintf with this type's string value as format.
type PrintfCellFormatter string

func (format PrintfCellFormatter) FormatCell(ctx context.Context, cell *Cell) (str string, raw bool, err error) {
	return fmt.Sprintf(string(format), cell.Value), false, nil
}

// PrintfRawCellFormatter implements CellFormatter by calling
// fmt.Sprintf with this type's string value as format.
// The result will be indicated to be raw HTML.
type PrintfRawCellFormatter string

func (format PrintfRawCellFormatter) FormatCell(ctx context.Context, cell *Cell) (str string, raw bool, err error) {
	return fmt.Sprintf(string(format), cell.Value), true, nil
}

// RawCellString implements CellFormatter by returning
// the underlying string as raw HTML.
type RawCellString string

func (rawStr RawCellString) FormatCell(ctx context.Context, cell *Cell) (str string, raw bool, err error) {
	return string(rawStr), true, nil
}

// FormatCellHTML formats the cell with the passed formatter
// and returns the result as HTML.
// Results that are not raw get HTML escaped.
// If formatter is nil or returns errors.ErrUnsupported
// then the cell value is formatted with fmt.Sprint,
// nil values result in an empty string.
func FormatCellHTML(ctx context.Context, formatter CellFormatter, cell *Cell) (template.HTML, error) {
	if formatter != nil {
		str, raw, err := formatter.FormatCell(ctx, cell)
		if err == nil {
			if !raw {
				str = template.HTMLEscapeString(str)
			}
			return template.HTML(str), nil //#nosec G203
		}
		if !errors.Is(err, errors.ErrUnsupported) {
			return "", err
		}
	}
	return template.HTML(template.HTMLEscapeString(sprintValue(cell.Value))), nil //#nosec G203
}

// sprintValue formats val with fmt.Sprint after dereferencing
// pointers and returns an empty string for nil.
func sprintValue(val any) string {
	v := reflect.ValueOf(val)
	if ValueIsNil(v) {
		return ""
	}
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	return fmt.Sprint(v.Interface())
}
