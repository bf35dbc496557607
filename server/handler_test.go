package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fortytw2/leaktest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/domonda/go-bstable"
	"github.com/domonda/go-bstable/exceltable"
)

var people = []bstable.Row{
	{"id": 1, "name": "Alice", "active": true},
	{"id": 2, "name": "Bob", "active": false},
	{"id": 3, "name": "Carol", "active": true},
}

type recorder struct {
	fetches atomic.Int32
	checked [][]bstable.Row
	actions []string
}

func newTestHandler(t *testing.T, fetchErr error, options ...Option) (*Handler, *recorder) {
	t.Helper()

	rec := new(recorder)
	logger, _ := logtest.NewNullLogger()
	table := bstable.NewTable("#people").
		SetLogger(logger).
		SetFetchFunc(func(ctx context.Context, params map[string]any) (any, error) {
			rec.fetches.Add(1)
			if fetchErr != nil {
				return nil, fetchErr
			}
			offset, _, err := bstable.ParamInt(params, "offset")
			if err != nil {
				return nil, err
			}
			limit, _, err := bstable.ParamInt(params, "limit")
			if err != nil {
				return nil, err
			}
			end := min(offset+limit, len(people))
			if limit == 0 {
				end = len(people)
			}
			return map[string]any{"total": len(people), "rows": people[min(offset, end):end]}, nil
		}).
		SetQueryParamsFunc(func() map[string]any {
			return map[string]any{"tenant": "acme"}
		}).
		OnCheckRows(func(ctx context.Context, rows []bstable.Row, checked bool) error {
			rec.checked = append(rec.checked, rows)
			return nil
		})
	table.AddColumn("", "").Checkbox(true)
	table.AddColumn("name", "Name")
	table.AddColumn("active", "Status").Formatter(bstable.BooleanFormatter("Active", "Inactive"))
	table.AddColumn("", "Actions").
		AddAction("icon-edit", "Edit", func(ctx context.Context, index int, row bstable.Row, actionIndex int) error {
			rec.actions = append(rec.actions, "edit "+bstable.ParamString(row, "name"))
			return nil
		}).
		AddAction("icon-fail", "Fail", func(ctx context.Context, index int, row bstable.Row, actionIndex int) error {
			return errors.New("action failed")
		})
	config, err := table.Build()
	require.NoError(t, err)

	options = append([]Option{WithLogger(logger), WithBasePath("/people/")}, options...)
	handler, err := NewHandler(config, options...)
	require.NoError(t, err)
	return handler, rec
}

func serve(handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestHandler_Config(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	res := serve(handler, http.MethodGet, "/config", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "application/json", res.Header().Get("Content-Type"))

	var options map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &options))
	require.Equal(t, "/people/data", options["url"])
	require.Equal(t, "server", options["sidePagination"])
	require.Len(t, options["columns"], 4)
}

func TestHandler_Data(t *testing.T) {
	t.Run("page", func(t *testing.T) {
		handler, _ := newTestHandler(t, nil)

		res := serve(handler, http.MethodGet, "/data?limit=2&offset=1", "")
		require.Equal(t, http.StatusOK, res.Code)
		require.Empty(t, res.Header().Get(FetchErrorHeader))

		var result struct {
			Total int              `json:"total"`
			Rows  []map[string]any `json:"rows"`
		}
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &result))
		require.Equal(t, 3, result.Total)
		require.Len(t, result.Rows, 2)
		require.Equal(t, "Bob", result.Rows[0]["name"])
		require.Equal(t, "Inactive", result.Rows[0]["active"])
		require.Equal(t, "Active", result.Rows[1]["active"])
		require.Contains(t, result.Rows[1]["3"], "action-1")
	})

	t.Run("fetch error", func(t *testing.T) {
		handler, rec := newTestHandler(t, errors.New("database down"), WithCacheSize(8))

		for range 2 {
			res := serve(handler, http.MethodGet, "/data?limit=10", "")
			require.Equal(t, http.StatusOK, res.Code)
			require.Equal(t, FetchErrorMessage, res.Header().Get(FetchErrorHeader))
			require.NotContains(t, res.Body.String(), "database down")
			require.JSONEq(t, `{"total":0,"rows":[]}`, res.Body.String())
		}
		require.Equal(t, int32(2), rec.fetches.Load(), "failed fetches are not cached")
	})

	t.Run("invalid params", func(t *testing.T) {
		handler, rec := newTestHandler(t, nil)

		for _, query := range []string{
			"limit=x",
			"offset=-1",
			"limit=100000",
			"order=sideways",
		} {
			res := serve(handler, http.MethodGet, "/data?"+query, "")
			require.Equal(t, http.StatusBadRequest, res.Code, query)
		}
		require.Zero(t, rec.fetches.Load())
	})
}

func TestHandler_Cache(t *testing.T) {
	registry := prometheus.NewRegistry()
	handler, rec := newTestHandler(t, nil, WithCacheSize(8), WithRegisterer(registry))

	first := serve(handler, http.MethodGet, "/data?limit=2", "")
	second := serve(handler, http.MethodGet, "/data?limit=2", "")
	require.Equal(t, first.Body.String(), second.Body.String())
	require.Equal(t, int32(1), rec.fetches.Load())
	require.Equal(t, 1.0, testutil.ToFloat64(handler.metrics.cacheHits))

	serve(handler, http.MethodGet, "/data?limit=2&offset=2", "")
	require.Equal(t, int32(2), rec.fetches.Load())

	handler.Invalidate()
	serve(handler, http.MethodGet, "/data?limit=2", "")
	require.Equal(t, int32(3), rec.fetches.Load())

	require.Equal(t, 4.0, testutil.ToFloat64(handler.metrics.requests.WithLabelValues("data", "200")))
}

func TestHandler_Check(t *testing.T) {
	handler, rec := newTestHandler(t, nil)

	res := serve(handler, http.MethodPost, "/check", `{"type":"check","row":{"id":1}}`)
	require.Equal(t, http.StatusNoContent, res.Code)
	res = serve(handler, http.MethodPost, "/check", `{"type":"uncheck-all.bs.table","rows":[{"id":1},{"id":2}]}`)
	require.Equal(t, http.StatusNoContent, res.Code)

	require.Len(t, rec.checked, 2)
	require.Len(t, rec.checked[0], 1)
	require.Len(t, rec.checked[1], 2)

	res = serve(handler, http.MethodPost, "/check", `{"type":"toggle"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
	res = serve(handler, http.MethodPost, "/check", `not json`)
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestHandler_Action(t *testing.T) {
	handler, rec := newTestHandler(t, nil, WithCacheSize(8))

	serve(handler, http.MethodGet, "/data?limit=2", "")
	require.Equal(t, int32(1), rec.fetches.Load())

	res := serve(handler, http.MethodPost, "/action", `{"field":"3","class":"action-0","index":0,"row":{"name":"Alice"}}`)
	require.Equal(t, http.StatusNoContent, res.Code)
	require.Equal(t, []string{"edit Alice"}, rec.actions)

	serve(handler, http.MethodGet, "/data?limit=2", "")
	require.Equal(t, int32(2), rec.fetches.Load(), "actions invalidate the cache")

	res = serve(handler, http.MethodPost, "/action", `{"field":"3","class":"action-1","index":0,"row":{}}`)
	require.Equal(t, http.StatusInternalServerError, res.Code)

	res = serve(handler, http.MethodPost, "/action", `{"field":"3","class":"action-7","index":0,"row":{}}`)
	require.Equal(t, http.StatusNotFound, res.Code)

	res = serve(handler, http.MethodPost, "/action", `{"field":"unknown","class":"action-0","index":0,"row":{}}`)
	require.Equal(t, http.StatusNotFound, res.Code)
}

func TestHandler_Table(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	res := serve(handler, http.MethodGet, "/table", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `data-url='/people/data'`)
	require.Contains(t, res.Body.String(), `<th data-field='name'>Name</th>`)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	res := serve(handler, http.MethodDelete, "/data", "")
	require.Equal(t, http.StatusMethodNotAllowed, res.Code)
}

func TestHandler_RateLimit(t *testing.T) {
	defer leaktest.Check(t)()

	handler, rec := newTestHandler(t, nil, WithRateLimit(0.001, 2))
	require.Equal(t, http.StatusOK, serve(handler, http.MethodGet, "/data?limit=1", "").Code)
	require.Equal(t, http.StatusOK, serve(handler, http.MethodGet, "/config", "").Code)
	res := serve(handler, http.MethodGet, "/data?limit=1", "")
	require.Equal(t, http.StatusTooManyRequests, res.Code)
	require.Contains(t, res.Body.String(), ErrRateLimited.Error())
	require.Equal(t, int32(1), rec.fetches.Load(), "limited requests don't fetch")

	_, err := NewHandler(&bstable.Config{}, WithRateLimit(0, 1))
	require.Error(t, err)
}

func TestHandler_RequestLogging(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	handler, _ := newTestHandler(t, nil, WithLogger(logger))

	serve(handler, http.MethodPost, "/check", `{"type":"toggle"}`)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, logrus.WarnLevel, entry.Level)
	require.Equal(t, "check", entry.Data["endpoint"])
	require.Equal(t, "#people", entry.Data["table"])
}

func TestHandler_ErrorAfterWrite(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	handler, _ := newTestHandler(t, nil, WithLogger(logger))
	handler.handle("GET /stream", "stream", func(w http.ResponseWriter, r *http.Request) (int, error) {
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Name\r\nAlice\r\n")
		return http.StatusInternalServerError, errors.New("writer closed")
	})

	res := serve(handler, http.MethodGet, "/stream", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "text/csv", res.Header().Get("Content-Type"))
	require.Equal(t, "Name\r\nAlice\r\n", res.Body.String(), "no error text appended")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, "Response already written", entry.Message)
	require.Equal(t, "stream", entry.Data["endpoint"])
}

func TestParsePageParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/data?limit=25&offset=50&search=al&sort=name&order=DESC", nil)
	page, err := ParsePageParams(req)
	require.NoError(t, err)
	require.Equal(t, bstable.PageParams{Limit: 25, Offset: 50, Search: "al", Sort: "name", Order: "desc"}, page)
}

func TestHandler_Export(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	res := serve(handler, http.MethodGet, "/export", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, `attachment; filename="people.csv"`, res.Header().Get("Content-Disposition"))
	require.Equal(t, "Name;Status\r\nAlice;Active\r\nBob;Inactive\r\nCarol;Active\r\n", res.Body.String())

	res = serve(handler, http.MethodGet, "/export?format=xlsx", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, exceltable.ContentType, res.Header().Get("Content-Type"))
	rows, err := exceltable.ReadRows(res.Body, true)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "Carol", rows[2]["Name"])

	res = serve(handler, http.MethodGet, "/export?format=pdf", "")
	require.Equal(t, http.StatusBadRequest, res.Code)

	failing, _ := newTestHandler(t, errors.New("database down"))
	res = serve(failing, http.MethodGet, "/export", "")
	require.Equal(t, http.StatusBadGateway, res.Code)
}
