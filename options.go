package bstable

import "slices"

// Row is one data row of a table keyed by column field.
type Row = map[string]any

// SidePagination is the pagination mode of the widget.
type SidePagination string

const (
	// ServerSidePagination delegates slicing and filtering
	// to the fetch function which also reports the total row count.
	ServerSidePagination SidePagination = "server"

	// ClientSidePagination lets the widget hold all rows
	// and paginate them itself.
	ClientSidePagination SidePagination = "client"
)

// Options holds the widget options.
// Nested maps are deep merged by Merge.
type Options map[string]any

// DefaultOptions returns a new copy of the options
// every Table starts with.
func DefaultOptions() Options {
	return Options{
		"mobileResponsive":   true,
		"minWidth":           752,
		"striped":            true,
		"pagination":         true,
		"sidePagination":     string(ServerSidePagination),
		"showColumns":        true,
		"pageList":           []any{},
		"pageSize":           10,
		"paginationPreText":  "Previous",
		"paginationNextText": "Next",
		"sortable":           true,
	}
}

// Merge deep merges src into o.
// Values of src overwrite values of o except when both
// values are maps, then they are merged recursively.
// Maps and slices of src are copied, so later changes
// to src don't affect o.
func (o Options) Merge(src map[string]any) Options {
	for key, srcVal := range src {
		if srcMap, ok := asMap(srcVal); ok {
			if dstMap, ok := asMap(o[key]); ok {
				merged := cloneMap(dstMap)
				Options(merged).Merge(srcMap)
				o[key] = merged
				continue
			}
		}
		o[key] = cloneValue(srcVal)
	}
	return o
}

// Clone returns a deep copy of the options.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}
	return Options(cloneMap(o))
}

// SidePagination returns the pagination mode
// defaulting to ServerSidePagination.
func (o Options) SidePagination() SidePagination {
	switch s := o["sidePagination"].(type) {
	case SidePagination:
		return s
	case string:
		if s == string(ClientSidePagination) {
			return ClientSidePagination
		}
	}
	return ServerSidePagination
}

func asMap(val any) (map[string]any, bool) {
	switch m := val.(type) {
	case map[string]any:
		return m, m != nil
	case Options:
		return m, m != nil
	}
	return nil, false
}

func cloneMap(m map[string]any) map[string]any {
	c := make(map[string]any, len(m))
	for key, val := range m {
		c[key] = cloneValue(val)
	}
	return c
}

func cloneValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		if v == nil {
			return v
		}
		return cloneMap(v)
	case Options:
		return v.Clone()
	case []any:
		if v == nil {
			return v
		}
		c := make([]any, len(v))
		for i := range v {
			c[i] = cloneValue(v[i])
		}
		return c
	case []Row:
		if v == nil {
			return v
		}
		c := make([]Row, len(v))
		for i := range v {
			c[i] = cloneMap(v[i])
		}
		return c
	case []string:
		return slices.Clone(v)
	}
	return val
}
