package bstable

import (
	"context"
	"errors"
)

// ExportColumns returns the indices of the columns
// holding data, that is all columns except
// checkbox columns and columns without field.
func (c *Config) ExportColumns() []int {
	var cols []int
	for i := range c.Columns {
		if c.Columns[i].Checkbox || c.Columns[i].Field == "" {
			continue
		}
		cols = append(cols, i)
	}
	return cols
}

// ExportTitles returns the titles of the ExportColumns
// falling back to the field for columns without title.
func (c *Config) ExportTitles() []string {
	cols := c.ExportColumns()
	titles := make([]string, len(cols))
	for i, col := range cols {
		titles[i] = c.Columns[col].Title
		if titles[i] == "" {
			titles[i] = c.Columns[col].Field
		}
	}
	return titles
}

// ExportValue returns the value of the column at colIndex for a plain
// text export of row. Text results of the column formatter are returned
// as string, for raw HTML results or without formatter
// the unformatted value is returned.
func (c *Config) ExportValue(ctx context.Context, colIndex int, row Row, rowIndex int) (any, error) {
	column := &c.Columns[colIndex]
	field := column.DataField(colIndex)
	value := row[field]
	if column.Formatter == nil {
		return value, nil
	}
	str, raw, err := column.Formatter.FormatCell(ctx, &Cell{Field: field, Value: value, Row: row, Index: rowIndex})
	switch {
	case errors.Is(err, errors.ErrUnsupported) || raw:
		return value, nil
	case err != nil:
		return nil, err
	}
	return str, nil
}
