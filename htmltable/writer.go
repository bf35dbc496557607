// Package htmltable writes the declarative HTML markup
// of a bootstrap-table widget for a bstable.Config.
//
// The markup consists of a table element with data attributes
// for the widget options, a header row with one th element per column
// carrying the column attributes and optionally pre-rendered body rows.
// Cells of columns with formatter are rendered by the formatter,
// all other cell values are HTML escaped.
//
// Example usage:
//
//	table := bstable.NewTable("#people")
//	table.AddColumn("name", "Name")
//	config, err := table.Build()
//	...
//	err = htmltable.NewWriter().
//	    WithTableClass("table table-striped").
//	    WithDataURL("/people/data").
//	    Write(ctx, os.Stdout, config, nil)
package htmltable

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/domonda/go-bstable"
)

// Writer writes tables as bootstrap-table HTML markup.
//
// Writer is immutable after creation - all With* methods return
// a new Writer instance with the modified configuration.
type Writer struct {
	tableClass     string
	dataURL        string
	nilValue       template.HTML
	headerTemplate *template.Template
	rowTemplate    *template.Template
	footerTemplate *template.Template
}

// NewWriter creates a new Writer with the default templates.
func NewWriter() *Writer {
	return &Writer{
		tableClass:     "",
		dataURL:        "",
		nilValue:       "",
		headerTemplate: HeaderTemplate,
		rowTemplate:    RowTemplate,
		footerTemplate: FooterTemplate,
	}
}

// Write writes the markup of the table described by config
// with rows pre-rendered as body rows.
// rows can be nil for tables loading their data from DataURL.
func (w *Writer) Write(ctx context.Context, dest io.Writer, config *bstable.Config, rows []bstable.Row) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	templData := &RowTemplateContext{
		TemplateContext: w.templateContext(config),
		RawCells:        make([]template.HTML, len(config.Columns)),
	}

	err := w.headerTemplate.Execute(dest, templData.TemplateContext)
	if err != nil {
		return err
	}

	for rowIndex, row := range rows {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		for col := range config.Columns {
			column := &config.Columns[col]
			if column.Formatter == nil && row[column.DataField(col)] == nil {
				templData.RawCells[col] = w.nilValue
				continue
			}
			templData.RawCells[col], err = config.FormatCellHTML(ctx, col, row, rowIndex)
			if err != nil {
				return fmt.Errorf("row %d column %d: %w", rowIndex, col, err)
			}
		}
		templData.RowIndex = rowIndex
		err = w.rowTemplate.Execute(dest, templData)
		if err != nil {
			return err
		}
	}

	return w.footerTemplate.Execute(dest, templData.TemplateContext)
}

func (w *Writer) templateContext(config *bstable.Config) TemplateContext {
	templCtx := TemplateContext{
		ID:             strings.TrimPrefix(config.ElementID, "#"),
		TableClass:     w.tableClass,
		DataURL:        w.dataURL,
		SidePagination: string(config.SidePagination()),
		Columns:        make([]ColumnContext, len(config.Columns)),
	}
	if pagination, ok := config.Options["pagination"].(bool); ok {
		templCtx.Pagination = pagination
	}
	if uniqueID, ok := config.Options["uniqueId"].(string); ok {
		templCtx.UniqueID = uniqueID
	}
	for i, column := range config.Columns {
		templCtx.Columns[i] = ColumnContext{
			Field:    column.Field,
			Title:    column.Title,
			Checkbox: column.Checkbox,
			Align:    string(column.Align),
			VAlign:   string(column.VAlign),
			Width:    column.Width,
		}
		if column.Sortable != nil {
			templCtx.Columns[i].Sortable = strconv.FormatBool(*column.Sortable)
		}
	}
	return templCtx
}

func (w *Writer) clone() *Writer {
	c := new(Writer)
	*c = *w
	return c
}

// WithTableClass returns a new writer with the specified CSS class for the table element.
func (w *Writer) WithTableClass(tableClass string) *Writer {
	mod := w.clone()
	mod.tableClass = tableClass
	return mod
}

// WithDataURL returns a new writer that sets the URL
// the widget loads its data from as data-url attribute.
func (w *Writer) WithDataURL(dataURL string) *Writer {
	mod := w.clone()
	mod.dataURL = dataURL
	return mod
}

// WithNilValue returns a new writer with the specified HTML
// to use for nil values of columns without formatter.
func (w *Writer) WithNilValue(nilValue template.HTML) *Writer {
	mod := w.clone()
	mod.nilValue = nilValue
	return mod
}

// WithTemplate returns a new writer with custom templates.
// The header and footer templates receive a TemplateContext,
// the row template a RowTemplateContext.
func (w *Writer) WithTemplate(headerTemplate, rowTemplate, footerTemplate *template.Template) *Writer {
	mod := w.clone()
	mod.headerTemplate = headerTemplate
	mod.rowTemplate = rowTemplate
	mod.footerTemplate = footerTemplate
	return mod
}

// TableClass returns the CSS class configured for the table element.
func (w *Writer) TableClass() string {
	return w.tableClass
}

// DataURL returns the configured data URL.
func (w *Writer) DataURL() string {
	return w.dataURL
}

// NilValue returns the HTML configured to be rendered for nil values.
func (w *Writer) NilValue() template.HTML {
	return w.nilValue
}
