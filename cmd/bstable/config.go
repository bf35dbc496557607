package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

type configParams struct {
	tableParams
	output string
	url    string
}

func newConfigCommand(global *globalParams) *cobra.Command {
	params := new(configParams)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the widget options of a table",
		Long: `Print the widget options of a table built from flags
and an optional options file as JSON or YAML.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(global.logLevel, global.logFormat)
			if err != nil {
				return err
			}
			logger.SetOutput(cmd.ErrOrStderr())

			table, err := params.newTable(cmd.Context(), logger)
			if err != nil {
				return err
			}
			if params.url != "" {
				table.SetOptions(map[string]any{"url": params.url})
			}
			config, err := table.Build()
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(config, "", "  ")
			if err != nil {
				return err
			}
			switch params.output {
			case "json":
			case "yaml":
				data, err = yaml.JSONToYAML(data)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("invalid output format %q", params.output)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	params.addFlags(cmd)
	cmd.Flags().StringVarP(&params.output, "output", "o", "json", "output format: json or yaml")
	cmd.Flags().StringVar(&params.url, "url", "", "URL the widget loads its data from")
	return cmd
}
