package bstable

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// QueryParamsFunc returns additional query parameters
// that are merged over the built in pagination parameters.
type QueryParamsFunc func() map[string]any

// PageParams are the parameters the widget sends
// with every data request.
type PageParams struct {
	Limit  int
	Offset int
	Search string
	Sort   string
	Order  string
}

// Map returns the parameters as map.
// limit and offset are always present,
// search, sort and order only if not empty.
func (p PageParams) Map() map[string]any {
	m := map[string]any{
		"limit":  p.Limit,
		"offset": p.Offset,
	}
	if p.Search != "" {
		m["search"] = p.Search
	}
	if p.Sort != "" {
		m["sort"] = p.Sort
	}
	if p.Order != "" {
		m["order"] = p.Order
	}
	return m
}

// MergeQueryParams deep merges custom over the parameters of page.
// Keys of custom take precedence.
func MergeQueryParams(page PageParams, custom map[string]any) map[string]any {
	return Options(page.Map()).Merge(custom)
}

// ParamInt returns the integer value of a query parameter.
// Numbers and numeric strings are accepted.
func ParamInt(params map[string]any, key string) (int, bool, error) {
	val, ok := params[key]
	if !ok || val == nil {
		return 0, false, nil
	}
	switch v := val.(type) {
	case string:
		if v == "" {
			return 0, false, nil
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, false, fmt.Errorf("query parameter %s: %w", key, err)
		}
		return i, true, nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, false, fmt.Errorf("query parameter %s: %w", key, err)
		}
		return int(i), true, nil
	}
	i, err := totalOf(val)
	if err != nil {
		return 0, false, fmt.Errorf("query parameter %s: %w", key, err)
	}
	return int(i), true, nil
}

// ParamString returns the string value of a query parameter.
func ParamString(params map[string]any, key string) string {
	switch v := params[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
