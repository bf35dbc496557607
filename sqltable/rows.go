package sqltable

import (
	"context"
	"database/sql"
	"slices"

	"github.com/domonda/go-bstable"
)

var _ Rows = &sql.Rows{}

// Rows abstracts the methods of *sql.Rows used by ScanRows
// so that results can be mocked in tests.
type Rows interface {
	// Columns returns the names of the columns in the result set.
	Columns() ([]string, error)

	// Scan copies the column values from the current row into dest.
	Scan(dest ...any) error

	// Close closes the Rows, it is idempotent.
	Close() error

	// Next prepares the next result row for reading with Scan.
	Next() bool

	// Err returns the error, if any, that was encountered during iteration.
	Err() error
}

// ScanRows reads all rows into table rows keyed by the column names
// and closes rows.
// Byte slice values are copied.
func ScanRows(ctx context.Context, rows Rows) ([]bstable.Row, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	result := []bstable.Row{}
	for rows.Next() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		scannedValues := make([]any, len(columns))
		valueScanners := make([]any, len(columns))
		for i := range valueScanners {
			valueScanners[i] = valueScanner{&scannedValues[i]}
		}
		err = rows.Scan(valueScanners...)
		if err != nil {
			return result, err
		}
		row := make(bstable.Row, len(columns))
		for i, column := range columns {
			row[column] = scannedValues[i]
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

var _ sql.Scanner = new(valueScanner)

type valueScanner struct {
	dest *any
}

// Scan implements the database/sql.Scanner interface.
func (s valueScanner) Scan(src any) error {
	if b, ok := src.([]byte); ok {
		// Copy bytes because they won't be valid after this method call
		src = slices.Clone(b)
	}
	*s.dest = src
	return nil
}
