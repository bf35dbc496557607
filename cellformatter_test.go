package bstable

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatCellHTML(t *testing.T) {
	unsupported := CellFormatterFunc(func(ctx context.Context, cell *Cell) (string, bool, error) {
		return "", false, fmt.Errorf("value %T: %w", cell.Value, errors.ErrUnsupported)
	})
	failing := CellFormatterFunc(func(ctx context.Context, cell *Cell) (string, bool, error) {
		return "", false, errors.New("failed")
	})
	number := 5
	tests := []struct {
		name      string
		formatter CellFormatter
		value     any
		want      template.HTML
		wantErr   bool
	}{
		{name: "nil formatter", formatter: nil, value: "<b>", want: "&lt;b&gt;"},
		{name: "nil formatter nil value", formatter: nil, value: nil, want: ""},
		{name: "nil formatter pointer", formatter: nil, value: &number, want: "5"},
		{name: "escaped", formatter: PrintfCellFormatter("<%v>"), value: 1, want: "&lt;1&gt;"},
		{name: "raw", formatter: PrintfRawCellFormatter("<b>%v</b>"), value: 1, want: "<b>1</b>"},
		{name: "raw string", formatter: RawCellString("<br>"), value: "ignored", want: "<br>"},
		{name: "unsupported falls back to value", formatter: unsupported, value: "a&b", want: "a&amp;b"},
		{name: "error", formatter: failing, value: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatCellHTML(context.Background(), tt.formatter, &Cell{Value: tt.value})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
