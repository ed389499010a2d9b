package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emberhq/ember/pkg/core"
)

var countFilters []string

var countCmd = &cobra.Command{
	Use:   "count [collection]",
	Short: "Count documents via a server-side aggregation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		filters, err := parseFilters(countFilters)
		if err != nil {
			fatal("Invalid --filter", err)
		}

		ctx := context.Background()
		store, err := openStore(ctx)
		if err != nil {
			fatal("Failed to connect", err)
		}
		defer store.Close()

		total, err := store.Count(ctx, core.QuerySpec{Collection: args[0], Filters: filters})
		if err != nil {
			fatal("Count failed", err)
		}
		fmt.Println(total)
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
	countCmd.Flags().StringArrayVar(&countFilters, "filter", nil, "Filter as lookup=value (repeatable)")
}
