package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	_ "modernc.org/sqlite"

	"github.com/domonda/go-bstable"
	"github.com/domonda/go-bstable/server"
	"github.com/domonda/go-bstable/sqltable"
)

// sourceParams are the flags describing the database table
// the rows are loaded from.
type sourceParams struct {
	db            string
	table         string
	searchColumns []string
	filterColumns []string
	sort          string
}

func (p *sourceParams) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.db, "db", "", "SQLite database file")
	cmd.Flags().StringVar(&p.table, "table", "", "database table or view")
	cmd.Flags().StringSliceVar(&p.searchColumns, "search-columns", nil, "columns matched against the search text")
	cmd.Flags().StringSliceVar(&p.filterColumns, "filter-columns", nil, "columns filtered by query parameters of the same name")
	cmd.Flags().StringVar(&p.sort, "sort", "", "default sort column")
}

func (p *sourceParams) openDB(ctx context.Context) (*sql.DB, error) {
	if p.db == "" {
		return nil, errors.New("no database file specified")
	}
	db, err := sql.Open("sqlite", p.db)
	if err != nil {
		return nil, err
	}
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// newConfig builds the table of tp with a sqltable.Source
// for the database table as fetch function.
func (p *sourceParams) newConfig(ctx context.Context, tp *tableParams, db *sql.DB, logger logrus.FieldLogger) (*bstable.Config, error) {
	if p.table == "" {
		return nil, errors.New("no database table specified")
	}
	if len(tp.columns) == 0 {
		return nil, errors.New("no columns specified")
	}
	table, err := tp.newTable(ctx, logger)
	if err != nil {
		return nil, err
	}
	source := &sqltable.Source{
		DB:            db,
		Table:         p.table,
		Columns:       tp.fields(),
		SearchColumns: p.searchColumns,
		FilterColumns: p.filterColumns,
		DefaultSort:   p.sort,
		Flavor:        sqlbuilder.SQLite,
	}
	table.SetFetchFunc(source.Fetch)
	return table.Build()
}

type serveParams struct {
	tableParams
	sourceParams
	addr      string
	cacheSize int
	rateLimit float64
	metrics   bool
}

func newServeCommand(global *globalParams) *cobra.Command {
	params := new(serveParams)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a SQLite table to a table widget",
		Long: `Serve the rows of a SQLite table or view with server side pagination.

The table endpoints are served under /table/,
Prometheus metrics under /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(global.logLevel, global.logFormat)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, params, logger)
		},
	}
	params.tableParams.addFlags(cmd)
	params.sourceParams.addFlags(cmd)
	cmd.Flags().StringVar(&params.addr, "addr", "localhost:8080", "listen address")
	cmd.Flags().IntVar(&params.cacheSize, "cache-size", 0, "number of cached data responses, 0 disables the cache")
	cmd.Flags().Float64Var(&params.rateLimit, "rate-limit", 0, "requests per second, 0 disables the limit")
	cmd.Flags().BoolVar(&params.metrics, "metrics", true, "serve Prometheus metrics")
	return cmd
}

func newHandler(ctx context.Context, params *serveParams, db *sql.DB, logger logrus.FieldLogger, registry prometheus.Registerer) (*server.Handler, error) {
	config, err := params.newConfig(ctx, &params.tableParams, db, logger)
	if err != nil {
		return nil, err
	}

	options := []server.Option{
		server.WithLogger(logger),
		server.WithBasePath("/table"),
	}
	if params.cacheSize > 0 {
		options = append(options, server.WithCacheSize(params.cacheSize))
	}
	if params.rateLimit > 0 {
		options = append(options, server.WithRateLimit(params.rateLimit, int(params.rateLimit)))
	}
	if registry != nil {
		options = append(options, server.WithRegisterer(registry))
	}
	return server.NewHandler(config, options...)
}

func serve(ctx context.Context, params *serveParams, logger *logrus.Logger) error {
	db, err := params.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	mux := http.NewServeMux()
	var registerer prometheus.Registerer
	if params.metrics {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		registerer = registry
	}
	handler, err := newHandler(ctx, params, db, logger, registerer)
	if err != nil {
		return err
	}
	mux.Handle("/table/", http.StripPrefix("/table", handler))

	srv := &http.Server{
		Addr:              params.addr,
		Handler:           otelhttp.NewHandler(mux, "bstable"),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()
	logger.WithFields(logrus.Fields{
		"addr":  params.addr,
		"table": params.table,
		"db":    params.db,
	}).Info("Serving table")

	select {
	case err = <-errs:
		return err
	case <-ctx.Done():
	}
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
