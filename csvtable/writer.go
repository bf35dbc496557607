// Package csvtable exports the data of a bstable.Config as CSV.
//
// The exported columns are the data columns of the table,
// see bstable.Config.ExportColumns. Text results of column formatters
// are exported, cells of columns with HTML formatters or without
// formatter get their plain value.
package csvtable

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/domonda/go-bstable"
)

// Encoder is an interface to encode byte strings.
type Encoder interface {
	Bytes([]byte) ([]byte, error)
}

// EncoderFunc implements the Encoder interface for a function.
type EncoderFunc func([]byte) ([]byte, error)

func (f EncoderFunc) Bytes(data []byte) ([]byte, error) {
	return f(data)
}

type Padding int

const (
	NoPadding Padding = iota
	AlignLeft
	AlignRight
	AlignCenter
)

// Writer writes table rows as CSV.
//
// Writer is immutable after creation - all With* methods return
// a new Writer instance with the modified configuration.
type Writer struct {
	padding          Padding
	headerRow        bool
	quoteAllFields   bool
	quoteEmptyFields bool
	escapeQuotes     string
	nilValue         string
	delimiter        rune
	newLine          string
	encoder          Encoder
}

func NewWriter() *Writer {
	return &Writer{
		padding:          NoPadding,
		headerRow:        true,
		quoteAllFields:   false,
		quoteEmptyFields: false,
		escapeQuotes:     `""`,
		nilValue:         "",
		delimiter:        ';',
		newLine:          "\r\n",
		encoder:          nil,
	}
}

func (w *Writer) clone() *Writer {
	c := new(Writer)
	*c = *w
	return c
}

// Write writes rows of the table described by config to dest.
func (w *Writer) Write(ctx context.Context, dest io.Writer, config *bstable.Config, rows []bstable.Row) error {
	records, err := w.Strings(ctx, config, rows)
	if err != nil {
		return err
	}

	var colRuneCount []int
	if w.padding != NoPadding {
		colRuneCount = columnWidths(records)
	}

	rowBuf := bytes.NewBuffer(make([]byte, 0, 1024))
	for _, record := range records {
		err = w.writeRecord(rowBuf, record, colRuneCount)
		if err != nil {
			return err
		}
		_, err = dest.Write(rowBuf.Bytes())
		if err != nil {
			return err
		}
		rowBuf.Reset()
	}
	return nil
}

// Strings returns the escaped CSV fields of rows
// including the header row if enabled.
func (w *Writer) Strings(ctx context.Context, config *bstable.Config, rows []bstable.Row) ([][]string, error) {
	cols := config.ExportColumns()
	records := make([][]string, 0, len(rows)+1)
	if w.headerRow {
		titles := config.ExportTitles()
		for i := range titles {
			titles[i] = w.escapeString(titles[i])
		}
		records = append(records, titles)
	}
	for rowIndex, row := range rows {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		record := make([]string, len(cols))
		for i, col := range cols {
			val, err := config.ExportValue(ctx, col, row, rowIndex)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", rowIndex, col, err)
			}
			record[i] = w.escapeString(w.valueString(val))
		}
		records = append(records, record)
	}
	return records, nil
}

func (w *Writer) writeRecord(rowBuf *bytes.Buffer, record []string, colRuneCount []int) error {
	for col, str := range record {
		if col > 0 {
			_, err := rowBuf.WriteRune(w.delimiter)
			if err != nil {
				return err
			}
		}
		var padLeft, padRight int
		if colRuneCount != nil {
			padTotal := colRuneCount[col] - utf8.RuneCountInString(str)
			switch w.padding {
			case AlignLeft:
				padRight = padTotal
			case AlignRight:
				padLeft = padTotal
			case AlignCenter:
				padLeft = padTotal / 2
				padRight = (padTotal + 1) / 2
			}
		}
		rowBuf.WriteString(strings.Repeat(" ", padLeft))
		rowBuf.WriteString(str)
		rowBuf.WriteString(strings.Repeat(" ", padRight))
	}
	_, err := rowBuf.WriteString(w.newLine)
	if err != nil {
		return err
	}

	if w.encoder == nil {
		return nil
	}

	// Read, encode, and write back the buffered row
	encoded, err := w.encoder.Bytes(rowBuf.Bytes())
	if err != nil {
		return err
	}
	rowBuf.Reset()
	_, err = rowBuf.Write(encoded)
	return err
}

func columnWidths(records [][]string) []int {
	var widths []int
	for _, record := range records {
		for col, str := range record {
			if col >= len(widths) {
				widths = append(widths, 0)
			}
			widths[col] = max(widths[col], utf8.RuneCountInString(str))
		}
	}
	return widths
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

func (w *Writer) escapeString(str string) string {
	// Just in case remove all \r,
	// \n alone is valid within quotes
	str = strings.ReplaceAll(str, "\r", "")
	switch {
	case w.quoteAllFields || strings.ContainsRune(str, w.delimiter) || strings.ContainsRune(str, '\n'):
		return `"` + strings.ReplaceAll(str, `"`, w.escapeQuotes) + `"`
	case w.quoteEmptyFields && str == "":
		return `""`
	}
	return strings.ReplaceAll(str, `"`, w.escapeQuotes)
}

// WithHeaderRow returns a new writer that writes
// the column titles as first row, the default is true.
func (w *Writer) WithHeaderRow(headerRow bool) *Writer {
	mod := w.clone()
	mod.headerRow = headerRow
	return mod
}

func (w *Writer) WithPadding(padding Padding) *Writer {
	mod := w.clone()
	mod.padding = padding
	return mod
}

func (w *Writer) WithQuoteAllFields(quoteAllFields bool) *Writer {
	mod := w.clone()
	mod.quoteAllFields = quoteAllFields
	return mod
}

func (w *Writer) WithQuoteEmptyFields(quoteEmptyFields bool) *Writer {
	mod := w.clone()
	mod.quoteEmptyFields = quoteEmptyFields
	return mod
}

func (w *Writer) WithNilValue(nilValue string) *Writer {
	mod := w.clone()
	mod.nilValue = nilValue
	return mod
}

func (w *Writer) WithEscapeQuotes(escapeQuotes string) *Writer {
	mod := w.clone()
	mod.escapeQuotes = escapeQuotes
	return mod
}

func (w *Writer) WithDelimiter(delimiter rune) *Writer {
	mod := w.clone()
	mod.delimiter = delimiter
	return mod
}

func (w *Writer) WithNewLine(newLine string) *Writer {
	mod := w.clone()
	mod.newLine = newLine
	return mod
}

func (w *Writer) WithEncoder(encoder Encoder) *Writer {
	mod := w.clone()
	mod.encoder = encoder
	return mod
}

func (w *Writer) HeaderRow() bool {
	return w.headerRow
}

func (w *Writer) QuoteAllFields() bool {
	return w.quoteAllFields
}

func (w *Writer) QuoteEmptyFields() bool {
	return w.quoteEmptyFields
}

func (w *Writer) Delimiter() rune {
	return w.delimiter
}

func (w *Writer) EscapeQuotes() string {
	return w.escapeQuotes
}

func (w *Writer) NilValue() string {
	return w.nilValue
}

func (w *Writer) NewLine() string {
	return w.newLine
}

func (w *Writer) Encoder() Encoder {
	return w.encoder
}
