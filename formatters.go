package bstable

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/domonda/go-types/date"
	"github.com/google/safehtml/template"
)

var anchorTemplate = template.Must(template.New("anchor").Parse(
	`<a class="{{.Class}}" href="{{.Href}}">{{.Text}}</a>`,
))

// AnchorFormatter wraps truthy cell values in an HTML anchor
// with the CSS class className.
// If href is empty, the anchor links to "#"
// and is expected to be handled by a click binding.
// Falsy values are returned as text.
func AnchorFormatter(className, href string) CellFormatter {
	if href == "" {
		href = "#"
	}
	return CellFormatterFunc(func(ctx context.Context, cell *Cell) (str string, raw bool, err error) {
		if IsFalsy(cell.Value) {
			return sprintValue(cell.Value), false, nil
		}
		html, err := anchorTemplate.ExecuteToHTML(struct {
			Class string
			Href  string
			Text  string
		}{
			Class: className,
			Href:  href,
			Text:  sprintValue(cell.Value),
		})
		if err != nil {
			return "", false, err
		}
		return html.String(), true, nil
	})
}

// BooleanFormatter returns trueText for cell values
// that are the boolean true and falseText for all other values.
func BooleanFormatter(trueText, falseText string) CellFormatter {
	return CellFormatterFunc(func(ctx context.Context, cell *Cell) (str string, raw bool, err error) {
		v := reflect.ValueOf(cell.Value)
		if v.Kind() == reflect.Pointer && !v.IsNil() {
			v = v.Elem()
		}
		if v.Kind() == reflect.Bool && v.Bool() {
			return trueText, false, nil
		}
		return falseText, false, nil
	})
}

// DateFormatter parses string cell values with the time layout
// inputLayout and formats them with outputLayout.
// time.Time values are formatted directly.
// Falsy values are returned as text.
func DateFormatter(inputLayout, outputLayout string) CellFormatter {
	return CellFormatterFunc(func(ctx context.Context, cell *Cell) (str string, raw bool, err error) {
		if IsFalsy(cell.Value) {
			return sprintValue(cell.Value), false, nil
		}
		switch v := cell.Value.(type) {
		case time.Time:
			return v.Format(outputLayout), false, nil
		case *time.Time:
			return v.Format(outputLayout), false, nil
		case string:
			t, err := time.Parse(inputLayout, v)
			if err != nil {
				return "", false, fmt.Errorf("column %s row %d: %w", cell.Field, cell.Index, err)
			}
			return t.Format(outputLayout), false, nil
		}
		return "", false, fmt.Errorf("column %s row %d: can't format %T as date", cell.Field, cell.Index, cell.Value)
	})
}

// ISO8601DateFormatter parses ISO 8601 string cell values
// with or without time and formats them with outputLayout.
// Date only values are interpreted as midnight UTC.
// time.Time and date.Date values are formatted directly.
// Falsy values are returned as text.
func ISO8601DateFormatter(outputLayout string) CellFormatter {
	return CellFormatterFunc(func(ctx context.Context, cell *Cell) (str string, raw bool, err error) {
		if IsFalsy(cell.Value) {
			return sprintValue(cell.Value), false, nil
		}
		switch v := cell.Value.(type) {
		case time.Time:
			return v.Format(outputLayout), false, nil
		case *time.Time:
			return v.Format(outputLayout), false, nil
		case date.Date:
			return v.MidnightUTC().Format(outputLayout), false, nil
		case string:
			t, err := parseISO8601(v)
			if err != nil {
				return "", false, fmt.Errorf("column %s row %d: %w", cell.Field, cell.Index, err)
			}
			return t.Format(outputLayout), false, nil
		}
		return "", false, fmt.Errorf("column %s row %d: can't format %T as date", cell.Field, cell.Index, cell.Value)
	})
}

func parseISO8601(str string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, str); err == nil {
			return t, nil
		}
	}
	d, err := date.Normalize(str)
	if err != nil {
		return time.Time{}, fmt.Errorf("can't parse %q as ISO 8601 date: %w", str, err)
	}
	return d.MidnightUTC(), nil
}

// DefaultFormatter returns defaultText for falsy
// cell values and the formatted value otherwise.
func DefaultFormatter(defaultText string) CellFormatter {
	return CellFormatterFunc(func(ctx context.Context, cell *Cell) (str string, raw bool, err error) {
		if IsFalsy(cell.Value) {
			return defaultText, false, nil
		}
		return sprintValue(cell.Value), false, nil
	})
}
