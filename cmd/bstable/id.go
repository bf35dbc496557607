package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/domonda/go-bstable"
)

func newIDCommand() *cobra.Command {
	var (
		count int
		uuid  bool
	)
	cmd := &cobra.Command{
		Use:   "id",
		Short: "Print generated unique row IDs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return errors.New("count must be at least 1")
			}
			var generate bstable.KeyGenerator = bstable.GenerateUniqueID
			if uuid {
				generate = bstable.UUIDv4
			}
			for range count {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), generate()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of IDs")
	cmd.Flags().BoolVar(&uuid, "uuid", false, "generate RFC 4122 version 4 UUIDs")
	return cmd
}
