package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	fs "github.com/ungerik/go-fs"

	"github.com/domonda/go-bstable"
)

type globalParams struct {
	logLevel  string
	logFormat string
	config    string
}

func newRootCommand() *cobra.Command {
	params := new(globalParams)
	root := &cobra.Command{
		Use:           "bstable",
		Short:         "Configure and serve bootstrap-table widgets",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return applyEnvironment(cmd)
		},
	}
	root.PersistentFlags().StringVar(&params.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&params.logFormat, "log-format", "json", "log format: text, json or json-pretty")
	root.PersistentFlags().StringVar(&params.config, "config", "", "YAML, JSON or TOML file with flag values")

	root.AddCommand(
		newConfigCommand(params),
		newServeCommand(params),
		newQueryCommand(params),
		newIDCommand(),
	)
	return root
}

// tableParams are the flags describing a table.
type tableParams struct {
	element        string
	columns        []string
	optionsFile    string
	sidePagination string
}

func (p *tableParams) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.element, "element", "#table", "element ID of the table widget")
	cmd.Flags().StringSliceVar(&p.columns, "columns", nil, "columns as field or field:title")
	cmd.Flags().StringVar(&p.optionsFile, "options", "", "JSON or YAML file with widget options")
	cmd.Flags().StringVar(&p.sidePagination, "side-pagination", string(bstable.ServerSidePagination), "pagination mode: server or client")
}

// newTable returns a table configured by the params.
func (p *tableParams) newTable(ctx context.Context, logger logrus.FieldLogger) (*bstable.Table, error) {
	mode := bstable.SidePagination(p.sidePagination)
	if mode != bstable.ServerSidePagination && mode != bstable.ClientSidePagination {
		return nil, fmt.Errorf("invalid side pagination %q", p.sidePagination)
	}
	table := bstable.NewTable(p.element).
		SetLogger(logger).
		SetSidePagination(mode)
	if p.optionsFile != "" {
		if err := table.LoadOptionsFile(ctx, fs.File(p.optionsFile)); err != nil {
			return nil, err
		}
	}
	for _, column := range p.columns {
		field, title, _ := strings.Cut(column, ":")
		if title == "" {
			title = field
		}
		table.AddColumn(field, title)
	}
	return table, table.Err()
}

func (p *tableParams) fields() []string {
	fields := make([]string, len(p.columns))
	for i, column := range p.columns {
		fields[i], _, _ = strings.Cut(column, ":")
	}
	return fields
}
