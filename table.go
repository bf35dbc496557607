package bstable

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Table accumulates the settings and columns of a table widget.
// Build resolves everything into a Config.
//
// Init must be called with the element ID of the widget before
// any other method. Setters called on an uninitialized table
// don't change it and record ErrNotInitialized, which is returned
// by Err and Build. The imperative widget methods return it directly.
//
// A Table must not be used concurrently.
type Table struct {
	elementID       string
	options         Options
	columns         []ColumnSpec
	fetch           FetchFunc
	queryParams     QueryParamsFunc
	onCheck         CheckFunc
	responseHandler ResponseHandler
	onFetchError    FetchErrorFunc
	keyGenerator    KeyGenerator
	widget          Widget
	logger          logrus.FieldLogger
	total           *atomic.Int64
	err             error
}

// New returns a new Table with DefaultOptions
// that has to be initialized with Init.
func New() *Table {
	return &Table{
		options:      DefaultOptions(),
		keyGenerator: GenerateUniqueID,
		logger:       logrus.StandardLogger(),
		total:        new(atomic.Int64),
	}
}

// NewTable returns a new Table initialized with elementID.
func NewTable(elementID string) *Table {
	return New().Init(elementID)
}

// Init sets the element ID of the widget, like "#users".
func (t *Table) Init(elementID string) *Table {
	t.elementID = elementID
	return t
}

// ElementID returns the element ID set with Init.
func (t *Table) ElementID() string {
	return t.elementID
}

// Err returns the first precondition error
// recorded by a setter.
func (t *Table) Err() error {
	return t.err
}

func (t *Table) checkElement() error {
	if t.elementID == "" {
		return ErrNotInitialized
	}
	return nil
}

// modify calls apply if the table is initialized
// or records ErrNotInitialized otherwise.
func (t *Table) modify(apply func()) *Table {
	if err := t.checkElement(); err != nil {
		if t.err == nil {
			t.err = err
		}
		return t
	}
	apply()
	return t
}

// SetFetchFunc sets the function loading the table data.
// See Config.Fetch for how its result is passed to the widget.
func (t *Table) SetFetchFunc(fetch FetchFunc) *Table {
	return t.modify(func() { t.fetch = fetch })
}

// SetDataList sets static rows for client side use without fetch function.
func (t *Table) SetDataList(rows []Row) *Table {
	return t.modify(func() { t.options["data"] = cloneValue(rows) })
}

// SetOptions deep merges options over the current options.
func (t *Table) SetOptions(options map[string]any) *Table {
	return t.modify(func() { t.options.Merge(options) })
}

// SetSidePagination sets the pagination mode.
func (t *Table) SetSidePagination(mode SidePagination) *Table {
	return t.modify(func() { t.options["sidePagination"] = string(mode) })
}

// SetQueryParamsFunc sets the function returning additional
// query parameters, see Config.QueryParams.
func (t *Table) SetQueryParamsFunc(queryParams QueryParamsFunc) *Table {
	return t.modify(func() { t.queryParams = queryParams })
}

// OnCheckRows sets the function called for all
// six check and uncheck events of the widget.
func (t *Table) OnCheckRows(onCheck CheckFunc) *Table {
	return t.modify(func() { t.onCheck = onCheck })
}

// SetResponseHandler sets the function post-processing
// the normalized fetch data before it is passed to the widget.
func (t *Table) SetResponseHandler(handler ResponseHandler) *Table {
	return t.modify(func() { t.responseHandler = handler })
}

// OnFetchError sets a function that is called with every failed fetch.
func (t *Table) OnFetchError(onFetchError FetchErrorFunc) *Table {
	return t.modify(func() { t.onFetchError = onFetchError })
}

// SetKeyGenerator sets the generator used by SetDataUniqueID,
// GenerateUniqueID is the default.
func (t *Table) SetKeyGenerator(generator KeyGenerator) *Table {
	return t.modify(func() { t.keyGenerator = generator })
}

// SetWidget sets the handle of the rendered widget
// used by the imperative methods like Refresh.
func (t *Table) SetWidget(widget Widget) *Table {
	return t.modify(func() { t.widget = widget })
}

// SetLogger sets the logger, logrus.StandardLogger() is the default.
func (t *Table) SetLogger(logger logrus.FieldLogger) *Table {
	return t.modify(func() { t.logger = logger })
}

// AddColumn appends a new Column for field and title and returns it
// for further configuration.
func (t *Table) AddColumn(field, title string) *Column {
	column := NewColumn(field, title)
	t.modify(func() { t.columns = append(t.columns, column) })
	return column
}

// AddColumns appends column specs which can be
// Column builders or plain ColumnConfig values.
func (t *Table) AddColumns(columns ...ColumnSpec) *Table {
	return t.modify(func() { t.columns = append(t.columns, columns...) })
}

// SetColumns replaces all column specs.
func (t *Table) SetColumns(columns []ColumnSpec) *Table {
	return t.modify(func() { t.columns = slices.Clone(columns) })
}

// Columns returns the column specs in order.
func (t *Table) Columns() []ColumnSpec {
	return slices.Clone(t.columns)
}

// Options returns a copy of the current options.
func (t *Table) Options() Options {
	return t.options.Clone()
}

// SidePagination returns the pagination mode.
func (t *Table) SidePagination() SidePagination {
	return t.options.SidePagination()
}

// EmptyFetchData returns the empty result of the current pagination mode.
func (t *Table) EmptyFetchData() any {
	return EmptyFetchData(t.SidePagination())
}

// Total returns the row count of the last fetch.
// The counter is shared with all Configs built from the table.
func (t *Table) Total() int64 {
	return t.total.Load()
}

// SetDataUniqueID sets a generated key under keyName in row.
func (t *Table) SetDataUniqueID(row Row, keyName string) {
	if row != nil {
		row[keyName] = t.keyGenerator()
	}
}

// SetDataListUniqueID sets a generated key under keyName in every row.
func (t *Table) SetDataListUniqueID(rows []Row, keyName string) {
	for _, row := range rows {
		t.SetDataUniqueID(row, keyName)
	}
}

// Build resolves all column specs to their plain form and returns
// the configuration of the widget.
// Calling Build again resolves the same accumulated state again.
func (t *Table) Build() (*Config, error) {
	if err := t.checkElement(); err != nil {
		return nil, err
	}
	if t.err != nil {
		return nil, t.err
	}
	var (
		columns = make([]ColumnConfig, len(t.columns))
		errs    []error
	)
	for i, spec := range t.columns {
		column, err := spec.ColumnConfig()
		if err != nil {
			errs = append(errs, fmt.Errorf("column %d: %w", i, err))
			continue
		}
		columns[i] = column
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &Config{
		ElementID:       t.elementID,
		Options:         t.options.Clone(),
		Columns:         columns,
		fetch:           t.fetch,
		queryParams:     t.queryParams,
		onCheck:         t.onCheck,
		responseHandler: t.responseHandler,
		onFetchError:    t.onFetchError,
		logger:          t.logger,
		total:           t.total,
	}, nil
}

func (t *Table) call(ctx context.Context, method string, args ...any) (any, error) {
	if err := t.checkElement(); err != nil {
		return nil, err
	}
	if t.widget == nil {
		return nil, ErrNoWidget
	}
	result, err := t.widget.Call(ctx, t.elementID, method, args...)
	if err != nil {
		return nil, fmt.Errorf("table %s: %s: %w", t.elementID, method, err)
	}
	return result, nil
}

// Refresh makes the widget load its data again.
func (t *Table) Refresh(ctx context.Context) error {
	_, err := t.call(ctx, "refresh")
	return err
}

// Search reloads the data starting at the first page.
//
// With server side pagination a widget that shows rows
// is sent to page 1 which loads the data from the server,
// an empty widget is refreshed because selecting page 1
// of an empty table doesn't load anything.
// With client side pagination page 1 is selected
// and the widget refreshed.
func (t *Table) Search(ctx context.Context) error {
	if t.SidePagination() == ServerSidePagination {
		data, err := t.call(ctx, "getData")
		if err != nil {
			return err
		}
		if lenOf(data) > 0 {
			_, err = t.call(ctx, "selectPage", 1)
			return err
		}
		return t.Refresh(ctx)
	}
	if _, err := t.call(ctx, "selectPage", 1); err != nil {
		return err
	}
	return t.Refresh(ctx)
}

// GetRowByUniqueID returns the row with the unique ID
// or nil if the widget has no such row.
func (t *Table) GetRowByUniqueID(ctx context.Context, uniqueID any) (Row, error) {
	result, err := t.call(ctx, "getRowByUniqueId", uniqueID)
	if err != nil || result == nil {
		return nil, err
	}
	row, ok := asMap(result)
	if !ok {
		return nil, fmt.Errorf("table %s: getRowByUniqueId returned %T", t.elementID, result)
	}
	return row, nil
}

// CurrentPage returns the current page number of the widget
// or -1 if the widget options have no page number.
func (t *Table) CurrentPage(ctx context.Context) (int, error) {
	result, err := t.call(ctx, "getOptions")
	if err != nil {
		return -1, err
	}
	options, ok := asMap(result)
	if !ok {
		return -1, nil
	}
	page, ok, err := ParamInt(options, "pageNumber")
	if err != nil || !ok {
		return -1, err
	}
	return page, nil
}

// UpdateByUniqueID replaces the row with the unique ID.
func (t *Table) UpdateByUniqueID(ctx context.Context, uniqueID any, row Row) error {
	_, err := t.call(ctx, "updateByUniqueId", map[string]any{"id": uniqueID, "row": row})
	return err
}

// RemoveByUniqueID removes the row with the unique ID.
func (t *Table) RemoveByUniqueID(ctx context.Context, uniqueID any) error {
	_, err := t.call(ctx, "removeByUniqueId", uniqueID)
	return err
}

// AppendDataList appends rows to the widget.
func (t *Table) AppendDataList(ctx context.Context, rows []Row) error {
	_, err := t.call(ctx, "append", rows)
	return err
}

// AppendData appends one row to the widget.
func (t *Table) AppendData(ctx context.Context, row Row) error {
	return t.AppendDataList(ctx, []Row{row})
}

// Clear removes all rows from the widget.
func (t *Table) Clear(ctx context.Context) error {
	_, err := t.call(ctx, "removeAll")
	return err
}

// Destroy removes the widget.
func (t *Table) Destroy(ctx context.Context) error {
	_, err := t.call(ctx, "destroy")
	return err
}

func lenOf(data any) int {
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return v.Len()
	}
	return 0
}
