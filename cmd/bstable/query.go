package main

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/domonda/go-bstable"
	"github.com/domonda/go-bstable/csvtable"
	"github.com/domonda/go-bstable/texttable"
)

type queryParams struct {
	tableParams
	sourceParams
	limit  int
	offset int
	search string
	order  string
	format string
}

func newQueryCommand(global *globalParams) *cobra.Command {
	params := new(queryParams)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print one page of a SQLite table",
		Long: `Print one page of a SQLite table or view the way
the serve command would pass it to the table widget.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains([]string{"text", "csv", "json"}, params.format) {
				return fmt.Errorf("invalid output format %q", params.format)
			}
			logger, err := newLogger(global.logLevel, global.logFormat)
			if err != nil {
				return err
			}
			logger.SetOutput(cmd.ErrOrStderr())

			ctx := cmd.Context()
			db, err := params.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			config, err := params.newConfig(ctx, &params.tableParams, db, logger)
			if err != nil {
				return err
			}

			data, err := config.Fetch(ctx, config.QueryParams(bstable.PageParams{
				Limit:  params.limit,
				Offset: params.offset,
				Search: params.search,
				Order:  params.order,
			}))
			if err != nil {
				return err
			}
			var rows []bstable.Row
			switch d := data.(type) {
			case bstable.FetchResult:
				rows = d.Rows
			case []bstable.Row:
				rows = d
			}

			out := cmd.OutOrStdout()
			switch params.format {
			case "csv":
				return csvtable.NewWriter().Write(ctx, out, config, rows)
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(data)
			default:
				return texttable.NewWriter().Write(ctx, out, config, rows)
			}
		},
	}
	params.tableParams.addFlags(cmd)
	params.sourceParams.addFlags(cmd)
	cmd.Flags().IntVar(&params.limit, "limit", 10, "number of rows, 0 for all rows")
	cmd.Flags().IntVar(&params.offset, "offset", 0, "number of skipped rows")
	cmd.Flags().StringVar(&params.search, "search", "", "search text matched against the search columns")
	cmd.Flags().StringVar(&params.order, "order", "", "sort order: asc or desc")
	cmd.Flags().StringVarP(&params.format, "output", "o", "text", "output format: text, csv or json")
	return cmd
}
