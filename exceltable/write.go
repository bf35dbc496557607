// Package exceltable exports the data of a bstable.Config
// as Excel workbook and reads rows from Excel sheets.
//
// The package uses the excelize library (github.com/xuri/excelize/v2).
//
// Example usage:
//
//	err := exceltable.NewWriter().
//	    WithSheetName("People").
//	    Write(ctx, w, config, rows)
//
//	rows, err := exceltable.ReadRows(file, false)
package exceltable

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/domonda/go-bstable"
)

// ContentType of the written workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Writer writes table rows as single sheet XLSX workbook
// with the column titles as first row.
//
// Writer is immutable after creation - all With* methods return
// a new Writer instance with the modified configuration.
type Writer struct {
	sheetName string
	boldTitle bool
}

func NewWriter() *Writer {
	return &Writer{
		sheetName: "Sheet1",
		boldTitle: true,
	}
}

// Write writes rows of the table described by config to dest.
// Numbers, booleans and times are written as native cell values,
// text results of column formatters as strings.
func (w *Writer) Write(ctx context.Context, dest io.Writer, config *bstable.Config, rows []bstable.Row) (err error) {
	f := excelize.NewFile()
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if w.sheetName != "Sheet1" {
		err = f.SetSheetName("Sheet1", w.sheetName)
		if err != nil {
			return err
		}
	}

	titles := config.ExportTitles()
	titleRow := make([]any, len(titles))
	for i, title := range titles {
		titleRow[i] = title
	}
	err = f.SetSheetRow(w.sheetName, "A1", &titleRow)
	if err != nil {
		return err
	}
	if w.boldTitle && len(titles) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		lastCell, err := excelize.CoordinatesToCellName(len(titles), 1)
		if err != nil {
			return err
		}
		err = f.SetCellStyle(w.sheetName, "A1", lastCell, style)
		if err != nil {
			return err
		}
	}

	cols := config.ExportColumns()
	for rowIndex, row := range rows {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		values := make([]any, len(cols))
		for i, col := range cols {
			val, err := config.ExportValue(ctx, col, row, rowIndex)
			if err != nil {
				return fmt.Errorf("row %d column %d: %w", rowIndex, col, err)
			}
			values[i] = cellValue(val)
		}
		cell, err := excelize.CoordinatesToCellName(1, rowIndex+2)
		if err != nil {
			return err
		}
		err = f.SetSheetRow(w.sheetName, cell, &values)
		if err != nil {
			return err
		}
	}

	return f.Write(dest)
}

// cellValue returns val dereferenced or as string
// if it is not a type supported by excelize.
func cellValue(val any) any {
	v := reflect.ValueOf(val)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return v.Interface()
	}
	switch x := v.Interface().(type) {
	case time.Time:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v.Interface())
}

// WithSheetName returns a new writer that names the sheet sheetName.
func (w *Writer) WithSheetName(sheetName string) *Writer {
	mod := *w
	mod.sheetName = sheetName
	return &mod
}

// WithBoldTitle returns a new writer that formats
// the title row bold or not.
func (w *Writer) WithBoldTitle(boldTitle bool) *Writer {
	mod := *w
	mod.boldTitle = boldTitle
	return &mod
}

func (w *Writer) SheetName() string {
	return w.sheetName
}
