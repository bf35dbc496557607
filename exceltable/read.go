package exceltable

import (
	"errors"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/domonda/go-bstable"
)

// ReadRows reads the first sheet of an Excel file
// and returns its rows keyed by the values of the first row.
// Empty rows and columns at the edges are removed.
//
// If rawCellStrings is true, cell values are returned as raw strings
// without the number format of the cell applied.
func ReadRows(reader io.Reader, rawCellStrings bool) (rows []bstable.Row, err error) {
	f, e := excelize.OpenReader(reader)
	if e != nil {
		return nil, e
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrSheetNotExist{SheetName: "<FirstSheet>"}
	}
	return readSheet(f, sheet, rawCellStrings)
}

// ReadSheetRows reads the sheet with the passed name like ReadRows.
func ReadSheetRows(reader io.Reader, sheet string, rawCellStrings bool) (rows []bstable.Row, err error) {
	f, e := excelize.OpenReader(reader)
	if e != nil {
		return nil, e
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	if idx, e := f.GetSheetIndex(sheet); e != nil || idx < 0 {
		return nil, ErrSheetNotExist{SheetName: sheet}
	}
	return readSheet(f, sheet, rawCellStrings)
}

func readSheet(f *excelize.File, sheet string, rawCellStrings bool) ([]bstable.Row, error) {
	cells, err := f.GetRows(sheet, excelize.Options{RawCellValue: rawCellStrings})
	if err != nil {
		return nil, err
	}
	cells = removeEmptyRows(cells)
	numCols := removeEmptyColumns(cells)
	if len(cells) == 0 || numCols == 0 {
		return nil, ErrEmptySheet
	}
	keys := cells[0]
	rows := make([]bstable.Row, len(cells)-1)
	for i, rowCells := range cells[1:] {
		row := make(bstable.Row, len(keys))
		for col, key := range keys {
			if key == "" {
				continue
			}
			if col < len(rowCells) {
				row[key] = rowCells[col]
			} else {
				row[key] = ""
			}
		}
		rows[i] = row
	}
	return rows, nil
}

func isEmptyRow(row []string) bool {
	for _, str := range row {
		if strings.TrimSpace(str) != "" {
			return false
		}
	}
	return true
}

// removeEmptyRows removes empty rows at the start and end.
func removeEmptyRows(rows [][]string) [][]string {
	for len(rows) > 0 && isEmptyRow(rows[0]) {
		rows = rows[1:]
	}
	for len(rows) > 0 && isEmptyRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

// removeEmptyColumns removes empty columns at the left and
// trailing empty cells from every row and returns the
// number of remaining columns.
func removeEmptyColumns(rows [][]string) (numCols int) {
	left := -1
	for _, row := range rows {
		for col, str := range row {
			if strings.TrimSpace(str) != "" {
				if left < 0 || col < left {
					left = col
				}
				break
			}
		}
	}
	if left < 0 {
		return 0
	}
	for i, row := range rows {
		row = row[min(left, len(row)):]
		for len(row) > 0 && strings.TrimSpace(row[len(row)-1]) == "" {
			row = row[:len(row)-1]
		}
		rows[i] = row
		numCols = max(numCols, len(row))
	}
	return numCols
}
