package bstable

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Config is the resolved configuration of a table widget
// returned by Table.Build.
//
// Options and Columns marshal to the JSON options of the widget.
// The functions of the table are executed by the methods
// Fetch, Ajax, QueryParams, DispatchCheck, FormatRows and TriggerEvent.
// A Config can be used concurrently as long as
// Options and Columns are not modified.
type Config struct {
	ElementID string
	Options   Options
	Columns   []ColumnConfig

	fetch           FetchFunc
	queryParams     QueryParamsFunc
	onCheck         CheckFunc
	responseHandler ResponseHandler
	onFetchError    FetchErrorFunc
	logger          logrus.FieldLogger
	total           *atomic.Int64
}

// WidgetOptions returns a copy of the options
// with the columns set as "columns".
func (c *Config) WidgetOptions() Options {
	options := c.Options.Clone()
	if options == nil {
		options = make(Options)
	}
	if len(c.Columns) > 0 {
		options["columns"] = c.Columns
	}
	return options
}

// MarshalJSON implements json.Marshaler
// by marshalling WidgetOptions.
func (c *Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.WidgetOptions())
}

// SidePagination returns the pagination mode.
func (c *Config) SidePagination() SidePagination {
	return c.Options.SidePagination()
}

// EmptyFetchData returns the empty result of the pagination mode.
func (c *Config) EmptyFetchData() any {
	return EmptyFetchData(c.SidePagination())
}

// HasFetchFunc returns if the table has a fetch function.
func (c *Config) HasFetchFunc() bool {
	return c.fetch != nil
}

// Total returns the row count of the last fetch.
func (c *Config) Total() int64 {
	if c.total == nil {
		return 0
	}
	return c.total.Load()
}

func (c *Config) setTotal(total int64) {
	if c.total != nil {
		c.total.Store(total)
	}
}

func (c *Config) log() logrus.FieldLogger {
	if c.logger == nil {
		return logrus.StandardLogger()
	}
	return c.logger
}

// QueryParams returns the pagination parameters of page
// deep merged with the result of the table's QueryParamsFunc.
// Keys of the QueryParamsFunc result take precedence.
func (c *Config) QueryParams(page PageParams) map[string]any {
	var custom map[string]any
	if c.queryParams != nil {
		custom = c.queryParams()
	}
	return MergeQueryParams(page, custom)
}

// Fetch calls the fetch function of the table with params
// and returns its result normalized for the pagination mode,
// see NormalizeFetchResult, and post-processed by the response handler.
// The total row count of the result is stored, see Total.
//
// If the fetch function or the normalization fails, then the empty
// result of the pagination mode is returned together with a *FetchError.
// The error is also logged and passed to the table's FetchErrorFunc.
func (c *Config) Fetch(ctx context.Context, params map[string]any) (data any, err error) {
	if c.fetch == nil {
		return c.EmptyFetchData(), ErrNoFetchFunc
	}
	mode := c.SidePagination()
	start := time.Now()
	result, err := c.fetch(ctx, params)
	if err == nil {
		data, err = NormalizeFetchResult(result, mode)
	}
	if err != nil {
		fetchErr := &FetchError{ElementID: c.ElementID, Params: params, Err: err}
		c.log().WithError(err).WithFields(logrus.Fields{
			"table":  c.ElementID,
			"params": params,
		}).Warn("Fetching table data failed, passing empty result to widget")
		if c.onFetchError != nil {
			c.onFetchError(ctx, fetchErr)
		}
		data, err = c.EmptyFetchData(), fetchErr
	}
	switch d := data.(type) {
	case FetchResult:
		c.setTotal(d.Total)
	case []Row:
		c.setTotal(int64(len(d)))
	}
	c.log().WithFields(logrus.Fields{
		"table":    c.ElementID,
		"total":    c.Total(),
		"duration": time.Since(start),
	}).Debug("Fetched table data")
	if c.responseHandler != nil {
		data = c.responseHandler(data)
	}
	return data, err
}

// Ajax runs Fetch for the request data and passes the result
// to the Success function of the request.
// Success is also called with the empty result of a failed fetch,
// the error of which is returned.
func (c *Config) Ajax(ctx context.Context, req AjaxRequest) error {
	data, err := c.Fetch(ctx, req.Data)
	if req.Success != nil {
		req.Success(data)
	}
	return err
}

// DispatchCheck passes the rows affected by event
// to the CheckFunc of the table.
func (c *Config) DispatchCheck(ctx context.Context, event *CheckEvent) error {
	if c.onCheck == nil {
		return nil
	}
	return c.onCheck(ctx, event.AffectedRows(), event.Type.Checked())
}

// Column returns the column with field
// or a column index as field for columns without field.
func (c *Config) Column(field string) (*ColumnConfig, int, error) {
	for i := range c.Columns {
		if c.Columns[i].Field == field {
			return &c.Columns[i], i, nil
		}
	}
	if i, err := strconv.Atoi(field); err == nil && i >= 0 && i < len(c.Columns) && c.Columns[i].Field == "" {
		return &c.Columns[i], i, nil
	}
	return nil, -1, fmt.Errorf("%w %q in table %s", ErrUnknownColumn, field, c.ElementID)
}

// TriggerEvent calls the handler of the column with field
// registered for the event type and className.
// event.Value is set from the row if nil.
func (c *Config) TriggerEvent(ctx context.Context, field, className string, event *Event) error {
	column, index, err := c.Column(field)
	if err != nil {
		return err
	}
	if event.Value == nil && event.Row != nil {
		event.Value = event.Row[column.DataField(index)]
	}
	return column.Trigger(ctx, className, event)
}

// FormatRows returns copies of rows where the values of all columns
// with formatter are replaced by the formatted HTML strings.
// Results of formatters that are not raw are HTML escaped.
// The index of a row within rows is passed as Cell.Index.
func (c *Config) FormatRows(ctx context.Context, rows []Row) ([]Row, error) {
	formatted := make([]Row, len(rows))
	for r, row := range rows {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if row == nil {
			continue
		}
		formattedRow := make(Row, len(row)+1)
		for key, val := range row {
			formattedRow[key] = val
		}
		for i := range c.Columns {
			column := &c.Columns[i]
			if column.Formatter == nil {
				continue
			}
			field := column.DataField(i)
			cell := Cell{Field: field, Value: row[field], Row: row, Index: r}
			html, err := FormatCellHTML(ctx, column.Formatter, &cell)
			if err != nil {
				return nil, fmt.Errorf("table %s: %w", c.ElementID, err)
			}
			formattedRow[field] = string(html)
		}
		formatted[r] = formattedRow
	}
	return formatted, nil
}

// FormatCellHTML returns the HTML of the cell of the column at colIndex.
// Columns without formatter get their value HTML escaped.
func (c *Config) FormatCellHTML(ctx context.Context, colIndex int, row Row, rowIndex int) (template.HTML, error) {
	column := &c.Columns[colIndex]
	field := column.DataField(colIndex)
	return FormatCellHTML(ctx, column.Formatter, &Cell{Field: field, Value: row[field], Row: row, Index: rowIndex})
}
