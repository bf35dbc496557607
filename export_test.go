package bstable

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig_Export(t *testing.T) {
	table := NewTable("#people").AddColumns(
		ColumnConfig{Field: "state", Checkbox: true},
		ColumnConfig{Field: "name", Title: "Name"},
		NewColumn("email", "").Formatter(AnchorFormatter("mail", "")),
		NewColumn("active", "Status").Formatter(BooleanFormatter("Active", "Inactive")),
		NewColumn("score", "Score").FormatterFunc(func(ctx context.Context, cell *Cell) (string, bool, error) {
			if cell.Value == nil {
				return "", false, errors.ErrUnsupported
			}
			if cell.Value == -1 {
				return "", false, errors.New("invalid score")
			}
			return "", false, errors.Join(errors.New("plain"), errors.ErrUnsupported)
		}),
		NewColumn("", "Actions").AddAction("fa fa-edit", "Edit", nil),
	)
	config, err := table.Build()
	require.NoError(t, err)

	require.Equal(t, []int{1, 2, 3, 4}, config.ExportColumns())
	require.Equal(t, []string{"Name", "email", "Status", "Score"}, config.ExportTitles())

	ctx := context.Background()
	row := Row{"state": true, "name": "Alice", "email": "alice@example.com", "active": true, "score": 7}
	var values []any
	for _, col := range config.ExportColumns() {
		val, err := config.ExportValue(ctx, col, row, 0)
		require.NoError(t, err)
		values = append(values, val)
	}
	require.Equal(t, []any{"Alice", "alice@example.com", "Active", 7}, values, "raw HTML and unsupported formatter results export the value")

	_, err = config.ExportValue(ctx, 4, Row{"score": -1}, 0)
	require.EqualError(t, err, "invalid score")
}
