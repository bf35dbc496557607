package bstable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
)

// FetchFunc loads the data of a table for the passed query parameters,
// see Config.QueryParams.
//
// In server side pagination mode the result must describe
// the total row count and the rows of the requested page,
// in client side pagination mode it must contain all rows.
// Accepted result types are FetchResult, *FetchResult, []Row,
// []any of maps, slices of structs, maps with "total" and "rows"
// keys and DataEnvelope implementations wrapping any of those.
type FetchFunc func(ctx context.Context, params map[string]any) (result any, err error)

// ResponseHandler post-processes the normalized data
// before it is passed to the widget.
type ResponseHandler func(data any) any

// FetchErrorFunc is called with every failed fetch.
type FetchErrorFunc func(ctx context.Context, err *FetchError)

// FetchResult is the data of one page in server side pagination mode.
type FetchResult struct {
	Total int64 `json:"total"`
	Rows  []Row `json:"rows"`
}

// DataEnvelope is implemented by responses wrapping the table data,
// like the decoded body of an HTTP response.
type DataEnvelope interface {
	ResponseData() any
}

// Envelope is a DataEnvelope for data
// wrapped in a "data" JSON object member.
type Envelope struct {
	Data any `json:"data"`
}

func (e Envelope) ResponseData() any {
	return e.Data
}

// AjaxRequest is the request the widget passes
// to its data loading function.
type AjaxRequest struct {
	// Data holds the query parameters.
	Data map[string]any
	// Success receives the normalized data.
	Success func(data any)
}

// EmptyFetchData returns the empty result for a pagination mode:
// FetchResult{Total: 0, Rows: []Row{}} for server side pagination
// and []Row{} for client side pagination.
func EmptyFetchData(mode SidePagination) any {
	if mode == ClientSidePagination {
		return []Row{}
	}
	return FetchResult{Total: 0, Rows: []Row{}}
}

// NormalizeFetchResult converts result to the shape expected
// for the pagination mode: FetchResult for server side
// and []Row for client side pagination.
func NormalizeFetchResult(result any, mode SidePagination) (any, error) {
	if env, ok := result.(DataEnvelope); ok {
		result = env.ResponseData()
	} else if m, ok := asMap(result); ok {
		// Decoded response body with the table data under "data"
		if data, ok := m["data"]; ok && data != nil && m["rows"] == nil {
			result = data
		}
	}
	if mode == ClientSidePagination {
		if res, ok := asFetchResult(result); ok {
			return nonNilRows(res.Rows), nil
		}
		return rowsOf(result)
	}
	if res, ok := asFetchResult(result); ok {
		res.Rows = nonNilRows(res.Rows)
		return res, nil
	}
	if m, ok := asMap(result); ok {
		_, hasTotal := m["total"]
		_, hasRows := m["rows"]
		if !hasTotal && !hasRows {
			return nil, errors.New("server side pagination data needs total and rows")
		}
		total, err := totalOf(m["total"])
		if err != nil {
			return nil, err
		}
		rows, err := rowsOf(m["rows"])
		if err != nil {
			return nil, err
		}
		return FetchResult{Total: total, Rows: rows}, nil
	}
	rows, err := rowsOf(result)
	if err != nil {
		return nil, err
	}
	return FetchResult{Total: int64(len(rows)), Rows: rows}, nil
}

func asFetchResult(result any) (FetchResult, bool) {
	switch r := result.(type) {
	case FetchResult:
		return r, true
	case *FetchResult:
		if r != nil {
			return *r, true
		}
	}
	return FetchResult{}, false
}

func nonNilRows(rows []Row) []Row {
	if rows == nil {
		return []Row{}
	}
	return rows
}

func rowsOf(data any) ([]Row, error) {
	switch d := data.(type) {
	case nil:
		return []Row{}, nil
	case []Row:
		return nonNilRows(d), nil
	case []any:
		rows := make([]Row, len(d))
		for i, elem := range d {
			row, ok := asMap(elem)
			if !ok && elem != nil {
				var err error
				row, err = RowFromStruct(elem, &DefaultStructFieldNaming)
				if err != nil {
					return nil, fmt.Errorf("row %d: %w", i, err)
				}
			}
			rows[i] = row
		}
		return rows, nil
	}
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Slice && derefType(v.Type().Elem()).Kind() == reflect.Struct {
		return RowsFromStructs(data, &DefaultStructFieldNaming)
	}
	return nil, fmt.Errorf("unsupported table data type %T", data)
}

func totalOf(val any) (int64, error) {
	switch t := val.(type) {
	case nil:
		return 0, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case uint:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint64:
		return int64(t), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("total row count %v is not an integer", t)
		}
		return int64(t), nil
	case json.Number:
		return t.Int64()
	}
	return 0, fmt.Errorf("unsupported total row count type %T", val)
}
