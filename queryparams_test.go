package bstable

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestMergeQueryParams(t *testing.T) {
	tests := []struct {
		name   string
		page   PageParams
		custom map[string]any
		want   map[string]any
	}{
		{
			name: "page only",
			page: PageParams{Limit: 10, Offset: 20},
			want: map[string]any{"limit": 10, "offset": 20},
		},
		{
			name: "search sort order",
			page: PageParams{Limit: 10, Search: "al", Sort: "name", Order: "desc"},
			want: map[string]any{"limit": 10, "offset": 0, "search": "al", "sort": "name", "order": "desc"},
		},
		{
			name:   "custom keys added",
			page:   PageParams{Limit: 5},
			custom: map[string]any{"tenant": "acme"},
			want:   map[string]any{"limit": 5, "offset": 0, "tenant": "acme"},
		},
		{
			name:   "custom keys win",
			page:   PageParams{Limit: 10, Offset: 20, Search: "x"},
			custom: map[string]any{"limit": 100, "search": nil},
			want:   map[string]any{"limit": 100, "offset": 20, "search": nil},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeQueryParams(tt.page, tt.custom)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("MergeQueryParams() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfig_QueryParams(t *testing.T) {
	calls := 0
	config, err := NewTable("#t").
		SetQueryParamsFunc(func() map[string]any {
			calls++
			return map[string]any{"offset": 0, "filter": map[string]any{"team": "blue"}}
		}).
		Build()
	require.NoError(t, err)

	got := config.QueryParams(PageParams{Limit: 10, Offset: 30})
	require.Equal(t, map[string]any{"limit": 10, "offset": 0, "filter": map[string]any{"team": "blue"}}, got)
	require.Equal(t, 1, calls, "called for every request")

	config, err = NewTable("#t").Build()
	require.NoError(t, err)
	require.Equal(t, map[string]any{"limit": 10, "offset": 30}, config.QueryParams(PageParams{Limit: 10, Offset: 30}))
}

func TestParamInt(t *testing.T) {
	params := map[string]any{
		"int":      7,
		"float":    25.0,
		"fraction": 2.5,
		"string":   "12",
		"empty":    "",
		"invalid":  "ten",
		"number":   json.Number("40"),
		"nil":      nil,
	}
	tests := []struct {
		key     string
		want    int
		wantOK  bool
		wantErr bool
	}{
		{key: "int", want: 7, wantOK: true},
		{key: "float", want: 25, wantOK: true},
		{key: "fraction", wantErr: true},
		{key: "string", want: 12, wantOK: true},
		{key: "empty"},
		{key: "invalid", wantErr: true},
		{key: "number", want: 40, wantOK: true},
		{key: "nil"},
		{key: "missing"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok, err := ParamInt(params, tt.key)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, got)
		})
	}

	require.Equal(t, "12", ParamString(params, "string"))
	require.Equal(t, "7", ParamString(params, "int"))
	require.Equal(t, "", ParamString(params, "missing"))
}
