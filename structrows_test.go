package bstable

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type Address struct {
	City string `json:"city"`
}

type customer struct {
	ID   int    `json:"id"`
	Name string `json:"name" title:"Customer"`
	*Address
	Notes  string `json:"-"`
	secret string
}

func TestRowFromStruct(t *testing.T) {
	row, err := RowFromStruct(customer{ID: 1, Name: "Alice", Address: &Address{City: "Vienna"}, Notes: "n"}, &DefaultStructFieldNaming)
	require.NoError(t, err)
	require.Equal(t, Row{"id": 1, "name": "Alice", "city": "Vienna"}, row)

	row, err = RowFromStruct(&customer{ID: 2}, &DefaultStructFieldNaming)
	require.NoError(t, err)
	require.Equal(t, Row{"id": 2, "name": "", "city": nil}, row, "fields of nil embedded pointers are nil")

	row, err = RowFromStruct(customer{ID: 3}, nil)
	require.NoError(t, err)
	require.Equal(t, Row{"ID": 3, "Name": "", "City": nil, "Notes": ""}, row)

	row, err = RowFromStruct((*customer)(nil), nil)
	require.NoError(t, err)
	require.Nil(t, row)

	_, err = RowFromStruct(42, nil)
	require.Error(t, err)
}

func TestRowsFromStructs(t *testing.T) {
	rows, err := RowsFromStructs([2]*customer{{ID: 1, Name: "Alice"}}, &DefaultStructFieldNaming)
	require.NoError(t, err)
	require.Equal(t, []Row{{"id": 1, "name": "Alice", "city": nil}, nil}, rows)

	_, err = RowsFromStructs([]int{1}, nil)
	require.Error(t, err)
	_, err = RowsFromStructs(customer{}, nil)
	require.Error(t, err)
}

func TestColumnsFromStruct(t *testing.T) {
	columns, err := ColumnsFromStruct(reflect.TypeOf(&customer{}), &DefaultStructFieldNaming)
	require.NoError(t, err)

	var configs []ColumnConfig
	for _, column := range columns {
		config, err := column.Build()
		require.NoError(t, err)
		configs = append(configs, config)
	}
	require.Equal(t, []ColumnConfig{
		{Field: "id", Title: "ID"},
		{Field: "name", Title: "Customer"},
		{Field: "city", Title: "City"},
	}, configs)

	_, err = ColumnsFromStruct(reflect.TypeOf(""), nil)
	require.Error(t, err)
}
