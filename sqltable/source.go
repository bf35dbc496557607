// Package sqltable loads table data from SQL databases.
//
// Source implements a bstable.FetchFunc that translates
// the paging, search and sort parameters of the widget
// into a SELECT statement and a COUNT query:
//
//	source := &sqltable.Source{
//		DB:            db,
//		Table:         "people",
//		Columns:       []string{"id", "name", "email"},
//		SearchColumns: []string{"name", "email"},
//		DefaultSort:   "id",
//		Flavor:        sqlbuilder.SQLite,
//	}
//	table.SetFetchFunc(source.Fetch)
package sqltable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/huandu/go-sqlbuilder"

	"github.com/domonda/go-bstable"
)

// ErrInvalidFilter is returned for filter parameters
// that are not a single string, number or boolean.
var ErrInvalidFilter = errors.New("invalid filter parameter")

// Source selects the rows of a database table or view.
type Source struct {
	DB *sql.DB
	// Table is the name of the table or view.
	Table string
	// Columns are selected in order and are the
	// only columns the widget may sort by.
	Columns []string
	// SearchColumns are matched with LIKE against the search parameter.
	SearchColumns []string
	// FilterColumns are compared for equality against
	// query parameters with the same name, like the ones
	// added by a bstable.QueryParamsFunc.
	FilterColumns []string
	// DefaultSort is used when the widget sends no sort column.
	DefaultSort string
	// Flavor of the SQL dialect, sqlbuilder.DefaultFlavor if zero.
	Flavor sqlbuilder.Flavor
}

var _ bstable.FetchFunc = new(Source).Fetch

// Fetch selects the page described by the query parameters
// limit, offset, search, sort and order and returns it as
// bstable.FetchResult with the total count of matching rows.
// A limit of zero selects all rows.
func (s *Source) Fetch(ctx context.Context, params map[string]any) (any, error) {
	limit, _, err := bstable.ParamInt(params, "limit")
	if err != nil {
		return nil, err
	}
	offset, _, err := bstable.ParamInt(params, "offset")
	if err != nil {
		return nil, err
	}

	countQuery, countArgs, err := s.CountQuery(params)
	if err != nil {
		return nil, err
	}
	var total int64
	err = s.DB.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("counting rows of %s: %w", s.Table, err)
	}

	query, args, err := s.SelectQuery(params, limit, offset)
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting rows of %s: %w", s.Table, err)
	}
	result, err := ScanRows(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("scanning rows of %s: %w", s.Table, err)
	}
	return bstable.FetchResult{Total: total, Rows: result}, nil
}

// SelectQuery returns the SELECT statement with its arguments
// for the page of rows matching params.
func (s *Source) SelectQuery(params map[string]any, limit, offset int) (query string, args []any, err error) {
	sb := s.newSelectBuilder()
	sb.Select(s.Columns...)
	sb.From(s.Table)
	if err := s.where(sb, params); err != nil {
		return "", nil, err
	}

	sortColumn := bstable.ParamString(params, "sort")
	if sortColumn == "" {
		sortColumn = s.DefaultSort
	}
	if sortColumn != "" {
		if !slices.Contains(s.Columns, sortColumn) {
			return "", nil, fmt.Errorf("%w %q in %s", bstable.ErrUnknownColumn, sortColumn, s.Table)
		}
		sb.OrderBy(sortColumn)
		switch order := strings.ToLower(bstable.ParamString(params, "order")); order {
		case "", "asc":
			sb.Asc()
		case "desc":
			sb.Desc()
		default:
			return "", nil, fmt.Errorf("invalid sort order %q", order)
		}
	}
	if limit > 0 {
		sb.Limit(limit)
		if offset > 0 {
			sb.Offset(offset)
		}
	}
	query, args = sb.Build()
	return query, args, nil
}

// CountQuery returns the query counting all rows matching params.
func (s *Source) CountQuery(params map[string]any) (query string, args []any, err error) {
	if s.Table == "" {
		return "", nil, errors.New("no table name")
	}
	sb := s.newSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(s.Table)
	if err := s.where(sb, params); err != nil {
		return "", nil, err
	}
	query, args = sb.Build()
	return query, args, nil
}

func (s *Source) newSelectBuilder() *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.NewSelectBuilder()
	if s.Flavor != 0 {
		sb.SetFlavor(s.Flavor)
	}
	return sb
}

func (s *Source) where(sb *sqlbuilder.SelectBuilder, params map[string]any) error {
	if search := bstable.ParamString(params, "search"); search != "" && len(s.SearchColumns) > 0 {
		pattern := "%" + likeEscaper.Replace(search) + "%"
		escape := ` ESCAPE '\'`
		if s.Flavor == sqlbuilder.MySQL {
			escape = ` ESCAPE '\\'`
		}
		conds := make([]string, len(s.SearchColumns))
		for i, column := range s.SearchColumns {
			conds[i] = column + " LIKE " + sb.Var(pattern) + escape
		}
		sb.Where(sb.Or(conds...))
	}
	for _, column := range s.FilterColumns {
		value, ok := params[column]
		if !ok || value == nil {
			continue
		}
		if !isScalar(value) {
			return fmt.Errorf("%w: %s must be a string, number or boolean, got %T", ErrInvalidFilter, column, value)
		}
		sb.Where(sb.Equal(column, value))
	}
	return nil
}

// likeEscaper escapes the LIKE wildcards of search texts
// for the escape character backslash.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func isScalar(value any) bool {
	switch reflect.ValueOf(value).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
