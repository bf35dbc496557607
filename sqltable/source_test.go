package sqltable

import (
	"context"
	"database/sql"
	"testing"

	"github.com/huandu/go-sqlbuilder"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/domonda/go-bstable"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Every connection would open its own in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE people (
			id      INTEGER PRIMARY KEY,
			name    TEXT NOT NULL,
			email   TEXT,
			team    TEXT NOT NULL,
			avatar  BLOB
		);
		INSERT INTO people (id, name, email, team, avatar) VALUES
			(1, 'Alice', 'alice@example.com', 'red', x'0102'),
			(2, 'Bob', NULL, 'blue', NULL),
			(3, 'Carol', 'carol@example.com', 'red', NULL),
			(4, 'Dave', 'dave@example.org', 'blue', NULL),
			(5, 'Eve', 'eve@example.org', 'red', NULL);
	`)
	require.NoError(t, err)
	return db
}

func newTestSource(db *sql.DB) *Source {
	return &Source{
		DB:            db,
		Table:         "people",
		Columns:       []string{"id", "name", "email"},
		SearchColumns: []string{"name", "email"},
		FilterColumns: []string{"team"},
		DefaultSort:   "id",
		Flavor:        sqlbuilder.SQLite,
	}
}

func names(rows []bstable.Row) []any {
	result := make([]any, len(rows))
	for i, row := range rows {
		result[i] = row["name"]
	}
	return result
}

func TestSource_Fetch(t *testing.T) {
	ctx := context.Background()
	source := newTestSource(openTestDB(t))

	tests := []struct {
		name      string
		params    map[string]any
		wantTotal int64
		wantNames []any
		wantErr   bool
	}{
		{
			name:      "all rows",
			params:    map[string]any{"limit": 0, "offset": 0},
			wantTotal: 5,
			wantNames: []any{"Alice", "Bob", "Carol", "Dave", "Eve"},
		},
		{
			name:      "page",
			params:    map[string]any{"limit": 2, "offset": 2},
			wantTotal: 5,
			wantNames: []any{"Carol", "Dave"},
		},
		{
			name:      "last partial page",
			params:    map[string]any{"limit": 2, "offset": 4},
			wantTotal: 5,
			wantNames: []any{"Eve"},
		},
		{
			name:      "sort desc",
			params:    map[string]any{"limit": 3, "offset": 0, "sort": "name", "order": "desc"},
			wantTotal: 5,
			wantNames: []any{"Eve", "Dave", "Carol"},
		},
		{
			name:      "search",
			params:    map[string]any{"limit": 10, "offset": 0, "search": "example.org"},
			wantTotal: 2,
			wantNames: []any{"Dave", "Eve"},
		},
		{
			name:      "search without match",
			params:    map[string]any{"limit": 10, "offset": 0, "search": "zzz"},
			wantTotal: 0,
			wantNames: []any{},
		},
		{
			name:      "search underscore is literal",
			params:    map[string]any{"limit": 10, "offset": 0, "search": "_"},
			wantTotal: 0,
			wantNames: []any{},
		},
		{
			name:      "search percent is literal",
			params:    map[string]any{"limit": 10, "offset": 0, "search": "%"},
			wantTotal: 0,
			wantNames: []any{},
		},
		{
			name:      "search backslash is literal",
			params:    map[string]any{"limit": 10, "offset": 0, "search": `\`},
			wantTotal: 0,
			wantNames: []any{},
		},
		{
			name:      "filter",
			params:    map[string]any{"limit": 10, "offset": 0, "team": "blue"},
			wantTotal: 2,
			wantNames: []any{"Bob", "Dave"},
		},
		{
			name:      "string params",
			params:    map[string]any{"limit": "1", "offset": "1"},
			wantTotal: 5,
			wantNames: []any{"Bob"},
		},
		{
			name:    "filter with object value",
			params:  map[string]any{"limit": 10, "team": map[string]any{"$ne": "red"}},
			wantErr: true,
		},
		{
			name:    "filter with array value",
			params:  map[string]any{"limit": 10, "team": []any{"red", "blue"}},
			wantErr: true,
		},
		{
			name:    "unknown sort column",
			params:  map[string]any{"limit": 10, "sort": "password"},
			wantErr: true,
		},
		{
			name:    "invalid order",
			params:  map[string]any{"limit": 10, "sort": "name", "order": "up"},
			wantErr: true,
		},
		{
			name:    "invalid limit",
			params:  map[string]any{"limit": "ten"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := source.Fetch(ctx, tt.params)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			result, ok := got.(bstable.FetchResult)
			require.True(t, ok, "result type %T", got)
			require.Equal(t, tt.wantTotal, result.Total)
			require.Equal(t, tt.wantNames, names(result.Rows))
		})
	}
}

func TestSource_FetchUnknownSortColumn(t *testing.T) {
	source := newTestSource(openTestDB(t))
	_, err := source.Fetch(context.Background(), map[string]any{"sort": "password"})
	require.ErrorIs(t, err, bstable.ErrUnknownColumn)
}

func TestSource_SearchWildcards(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO people (id, name, email, team) VALUES (6, 'Fay_Lee', 'fay%lee@example.com', 'red')`)
	require.NoError(t, err)
	source := newTestSource(db)

	for _, search := range []string{"_", "y_L", "%", "y%l"} {
		got, err := source.Fetch(context.Background(), map[string]any{"limit": 10, "search": search})
		require.NoError(t, err, "search %q", search)
		result := got.(bstable.FetchResult)
		require.Equal(t, int64(1), result.Total, "search %q", search)
		require.Equal(t, "Fay_Lee", result.Rows[0]["name"], "search %q", search)
	}
}

func TestSource_FilterValueType(t *testing.T) {
	source := newTestSource(openTestDB(t))
	_, err := source.Fetch(context.Background(), map[string]any{"team": map[string]any{"$gt": ""}})
	require.ErrorIs(t, err, ErrInvalidFilter)
	require.ErrorContains(t, err, "team")

	_, _, err = source.CountQuery(map[string]any{"team": []string{"red"}})
	require.ErrorIs(t, err, ErrInvalidFilter)

	got, err := source.Fetch(context.Background(), map[string]any{"team": "red", "limit": 0})
	require.NoError(t, err)
	require.Equal(t, int64(3), got.(bstable.FetchResult).Total)
}

func TestSource_NullValues(t *testing.T) {
	source := newTestSource(openTestDB(t))
	got, err := source.Fetch(context.Background(), map[string]any{"limit": 1, "offset": 1})
	require.NoError(t, err)
	row := got.(bstable.FetchResult).Rows[0]
	require.Equal(t, "Bob", row["name"])
	require.Contains(t, row, "email")
	require.Nil(t, row["email"])
}

func TestSource_SelectQuery(t *testing.T) {
	source := &Source{
		Table:         "people",
		Columns:       []string{"id", "name"},
		SearchColumns: []string{"name"},
		Flavor:        sqlbuilder.PostgreSQL,
	}
	query, args, err := source.SelectQuery(map[string]any{"search": "al", "sort": "name", "order": "desc"}, 10, 20)
	require.NoError(t, err)
	require.Contains(t, query, "SELECT id, name FROM people")
	require.Contains(t, query, `name LIKE $1 ESCAPE '\'`)
	require.Contains(t, query, "ORDER BY name DESC")
	require.Contains(t, query, "LIMIT $2 OFFSET $3")
	require.Equal(t, []any{"%al%", 10, 20}, args)

	_, _, err = (&Source{}).CountQuery(nil)
	require.Error(t, err)
}

func TestScanRows(t *testing.T) {
	db := openTestDB(t)
	rows, err := db.QueryContext(context.Background(), "SELECT id, avatar FROM people WHERE id = 1")
	require.NoError(t, err)

	result, err := ScanRows(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, int64(1), result[0]["id"])
	require.Equal(t, []byte{1, 2}, result[0]["avatar"])

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	rows, err = db.QueryContext(context.Background(), "SELECT id FROM people")
	require.NoError(t, err)
	_, err = ScanRows(canceled, rows)
	require.ErrorIs(t, err, context.Canceled)
}
