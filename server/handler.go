// Package server serves the data and event callbacks
// of a bstable.Config over HTTP for the table widget
// running in the browser.
//
// Endpoints relative to the handler:
//
//	GET  /config  widget options as JSON
//	GET  /data    page data for the query parameters limit, offset, search, sort and order
//	POST /check   check and uncheck events
//	POST /action  click events of row actions
//	GET  /table   table markup written by htmltable
//	GET  /export  all rows as CSV or XLSX file selected by the query parameter format
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/domonda/go-bstable"
	"github.com/domonda/go-bstable/htmltable"
)

// FetchErrorHeader is set to FetchErrorMessage on data responses
// with the empty result of a failed fetch.
// The error itself is only logged.
const FetchErrorHeader = "X-Fetch-Error"

// FetchErrorMessage is the value of the FetchErrorHeader.
const FetchErrorMessage = "fetch failed"

// ErrRateLimited is returned with status 429
// when a request exceeds the rate limit of the handler.
var ErrRateLimited = errors.New("too many table requests")

// Handler serves one table configuration.
type Handler struct {
	config   *bstable.Config
	logger   logrus.FieldLogger
	basePath string
	writer   *htmltable.Writer
	cache    *lru.Cache[uint64, []byte]
	metrics  *metrics
	limiter  *rate.Limiter
	mux      *http.ServeMux
}

// Option configures a Handler.
type Option func(*Handler) error

// WithLogger sets the logger, logrus.StandardLogger() is the default.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(h *Handler) error {
		h.logger = logger
		return nil
	}
}

// WithBasePath sets the path the handler is mounted at.
// It is used to tell the widget where to load its data from.
func WithBasePath(basePath string) Option {
	return func(h *Handler) error {
		h.basePath = strings.TrimSuffix(basePath, "/")
		return nil
	}
}

// WithCacheSize enables caching of the size most recently
// served data responses keyed by their query parameters.
// Responses of failed fetches are not cached.
func WithCacheSize(size int) Option {
	return func(h *Handler) error {
		cache, err := lru.New[uint64, []byte](size)
		if err != nil {
			return err
		}
		h.cache = cache
		return nil
	}
}

// WithRegisterer registers the metrics of the handler.
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(h *Handler) error {
		return h.metrics.register(registerer)
	}
}

// WithRateLimit limits the requests of all endpoints
// to perSecond with bursts of up to burst requests.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(h *Handler) error {
		if perSecond <= 0 {
			return fmt.Errorf("invalid rate limit %v", perSecond)
		}
		h.limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, burst))
		return nil
	}
}

// WithHTMLWriter sets the writer used for the /table endpoint.
func WithHTMLWriter(writer *htmltable.Writer) Option {
	return func(h *Handler) error {
		h.writer = writer
		return nil
	}
}

// NewHandler returns a Handler serving config.
func NewHandler(config *bstable.Config, options ...Option) (*Handler, error) {
	h := &Handler{
		config:  config,
		logger:  logrus.StandardLogger(),
		writer:  htmltable.NewWriter(),
		metrics: newMetrics(),
		mux:     http.NewServeMux(),
	}
	for _, option := range options {
		if err := option(h); err != nil {
			return nil, err
		}
	}
	h.handle("GET /config", "config", h.serveConfig)
	h.handle("GET /data", "data", h.serveData)
	h.handle("POST /check", "check", h.serveCheck)
	h.handle("POST /action", "action", h.serveAction)
	h.handle("GET /table", "table", h.serveTable)
	h.handle("GET /export", "export", h.serveExport)
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Invalidate removes all cached data responses.
func (h *Handler) Invalidate() {
	if h.cache != nil {
		h.cache.Purge()
	}
}

// DataURL returns the URL of the data endpoint.
func (h *Handler) DataURL() string {
	return h.basePath + "/data"
}

func (h *Handler) handle(pattern, endpoint string, serve func(http.ResponseWriter, *http.Request) (int, error)) {
	h.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var (
			rw     = &responseWriter{ResponseWriter: w}
			status int
			err    error
		)
		if h.limiter != nil && !h.limiter.Allow() {
			status, err = http.StatusTooManyRequests, ErrRateLimited
		} else {
			status, err = serve(rw, r)
		}
		log := h.logger.WithFields(logrus.Fields{
			"table":    h.config.ElementID,
			"endpoint": endpoint,
			"status":   status,
			"duration": time.Since(start),
		})
		if err != nil {
			log = log.WithError(err)
			if status >= http.StatusInternalServerError {
				log.Error("Table request failed")
			} else {
				log.Warn("Invalid table request")
			}
			if rw.written {
				// Too late for an error response
				log.Warn("Response already written")
			} else {
				http.Error(w, err.Error(), status)
			}
		} else {
			log.Debug("Served table request")
		}
		h.metrics.requests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	})
}

func (h *Handler) serveConfig(w http.ResponseWriter, r *http.Request) (int, error) {
	options := h.config.WidgetOptions()
	if _, ok := options["url"]; !ok && h.config.HasFetchFunc() {
		options["url"] = h.DataURL()
	}
	return writeJSON(w, http.StatusOK, options)
}

func (h *Handler) serveData(w http.ResponseWriter, r *http.Request) (int, error) {
	page, err := ParsePageParams(r)
	if err != nil {
		return http.StatusBadRequest, err
	}
	if !h.config.HasFetchFunc() {
		return http.StatusNotFound, bstable.ErrNoFetchFunc
	}
	params := h.config.QueryParams(page)

	key, err := cacheKey(params)
	if err != nil {
		return http.StatusBadRequest, err
	}
	if h.cache != nil {
		if body, ok := h.cache.Get(key); ok {
			h.metrics.cacheHits.Inc()
			return writeRawJSON(w, http.StatusOK, body)
		}
	}

	var data any
	start := time.Now()
	fetchErr := h.config.Ajax(r.Context(), bstable.AjaxRequest{
		Data:    params,
		Success: func(d any) { data = d },
	})
	h.metrics.fetchDuration.Observe(time.Since(start).Seconds())
	if fetchErr != nil {
		h.metrics.fetchErrors.Inc()
		h.logger.WithError(fetchErr).WithField("table", h.config.ElementID).Warn("Serving empty table data")
		w.Header().Set(FetchErrorHeader, FetchErrorMessage)
	}

	data, err = formatData(r.Context(), h.config, data)
	if err != nil {
		return http.StatusInternalServerError, err
	}
	body, err := json.Marshal(data)
	if err != nil {
		return http.StatusInternalServerError, err
	}
	if h.cache != nil && fetchErr == nil {
		h.cache.Add(key, body)
	}
	return writeRawJSON(w, http.StatusOK, body)
}

// formatData formats the rows of data if it has
// one of the normalized fetch result types.
func formatData(ctx context.Context, config *bstable.Config, data any) (any, error) {
	switch d := data.(type) {
	case bstable.FetchResult:
		rows, err := config.FormatRows(ctx, d.Rows)
		if err != nil {
			return nil, err
		}
		return bstable.FetchResult{Total: d.Total, Rows: rows}, nil
	case []bstable.Row:
		return config.FormatRows(ctx, d)
	}
	return data, nil
}

// CheckRequest is the body of a check request.
type CheckRequest struct {
	// Type is the widget event name like "check-all".
	Type string        `json:"type"`
	Row  bstable.Row   `json:"row,omitempty"`
	Rows []bstable.Row `json:"rows,omitempty"`
}

func (h *Handler) serveCheck(w http.ResponseWriter, r *http.Request) (int, error) {
	var req CheckRequest
	if err := decodeJSON(r, &req); err != nil {
		return http.StatusBadRequest, err
	}
	eventType, err := bstable.ParseCheckEventType(req.Type)
	if err != nil {
		return http.StatusBadRequest, err
	}
	event := &bstable.CheckEvent{Type: eventType, Row: req.Row, Rows: req.Rows}
	if err := h.config.DispatchCheck(r.Context(), event); err != nil {
		return http.StatusInternalServerError, err
	}
	w.WriteHeader(http.StatusNoContent)
	return http.StatusNoContent, nil
}

// ActionRequest is the body of an action request.
type ActionRequest struct {
	// Field of the column or the column index for columns without field.
	Field string `json:"field"`
	// Class is the CSS class of the clicked element like "action-0".
	Class string      `json:"class"`
	Index int         `json:"index"`
	Value any         `json:"value,omitempty"`
	Row   bstable.Row `json:"row"`
}

func (h *Handler) serveAction(w http.ResponseWriter, r *http.Request) (int, error) {
	var req ActionRequest
	if err := decodeJSON(r, &req); err != nil {
		return http.StatusBadRequest, err
	}
	event := &bstable.Event{Type: "click", Value: req.Value, Row: req.Row, Index: req.Index}
	err := h.config.TriggerEvent(r.Context(), req.Field, req.Class, event)
	switch {
	case errors.Is(err, bstable.ErrUnknownColumn), errors.Is(err, bstable.ErrNoEventHandler):
		return http.StatusNotFound, err
	case err != nil:
		return http.StatusInternalServerError, err
	}
	// Row actions usually change data
	h.Invalidate()
	w.WriteHeader(http.StatusNoContent)
	return http.StatusNoContent, nil
}

func (h *Handler) serveTable(w http.ResponseWriter, r *http.Request) (int, error) {
	writer := h.writer
	if h.config.HasFetchFunc() && writer.DataURL() == "" {
		writer = writer.WithDataURL(h.DataURL())
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := writer.Write(r.Context(), w, h.config, nil); err != nil {
		return http.StatusInternalServerError, err
	}
	return http.StatusOK, nil
}

// responseWriter remembers if the status or body
// of a response has been written.
type responseWriter struct {
	http.ResponseWriter
	written bool
}

func (w *responseWriter) WriteHeader(status int) {
	w.written = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}

// Unwrap is used by http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
