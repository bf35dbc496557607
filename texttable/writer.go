// Package texttable writes the data of a bstable.Config
// as plain text table for terminals.
//
// The columns are the data columns of the table,
// see bstable.Config.ExportColumns.
package texttable

import (
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/olekukonko/tablewriter"

	"github.com/domonda/go-bstable"
)

// Writer renders rows with github.com/olekukonko/tablewriter.
// The With* methods return modified copies.
type Writer struct {
	border   bool
	rowLine  bool
	nilValue string
}

func NewWriter() *Writer {
	return &Writer{border: true}
}

func (w *Writer) clone() *Writer {
	c := *w
	return &c
}

// Write renders the data columns of config for rows to dest
// with the column titles as header.
// Cell alignment follows the alignment of the columns.
func (w *Writer) Write(ctx context.Context, dest io.Writer, config *bstable.Config, rows []bstable.Row) error {
	cols := config.ExportColumns()
	records := make([][]string, len(rows))
	for rowIndex, row := range rows {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		record := make([]string, len(cols))
		for i, col := range cols {
			val, err := config.ExportValue(ctx, col, row, rowIndex)
			if err != nil {
				return fmt.Errorf("row %d column %d: %w", rowIndex, col, err)
			}
			record[i] = w.valueString(val)
		}
		records[rowIndex] = record
	}

	alignment := make([]int, len(cols))
	for i, col := range cols {
		alignment[i] = tableAlignment(config.Columns[col].Align)
	}

	table := tablewriter.NewWriter(dest)
	table.SetHeader(config.ExportTitles())
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(w.border)
	table.SetRowLine(w.rowLine)
	table.SetColumnAlignment(alignment)
	table.AppendBulk(records)
	table.Render()
	return nil
}

func tableAlignment(align bstable.Align) int {
	switch align {
	case bstable.AlignLeft:
		return tablewriter.ALIGN_LEFT
	case bstable.AlignCenter:
		return tablewriter.ALIGN_CENTER
	case bstable.AlignRight:
		return tablewriter.ALIGN_RIGHT
	}
	return tablewriter.ALIGN_DEFAULT
}

func (w *Writer) valueString(val any) string {
	v := reflect.ValueOf(val)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return w.nilValue
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return w.nilValue
	}
	if b, ok := v.Interface().([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(v.Interface())
}

// WithBorder sets if the table is framed by a border.
func (w *Writer) WithBorder(border bool) *Writer {
	mod := w.clone()
	mod.border = border
	return mod
}

// WithRowLine sets if rows are separated by lines.
func (w *Writer) WithRowLine(rowLine bool) *Writer {
	mod := w.clone()
	mod.rowLine = rowLine
	return mod
}

// WithNilValue sets the text of nil values.
func (w *Writer) WithNilValue(nilValue string) *Writer {
	mod := w.clone()
	mod.nilValue = nilValue
	return mod
}

func (w *Writer) Border() bool {
	return w.border
}

func (w *Writer) RowLine() bool {
	return w.rowLine
}

func (w *Writer) NilValue() string {
	return w.nilValue
}
