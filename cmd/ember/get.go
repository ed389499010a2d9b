package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emberhq/ember"
)

var getCmd = &cobra.Command{
	Use:   "get [collection] [id]",
	Short: "Read a document by primary key",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store, err := openStore(ctx)
		if err != nil {
			fatal("Failed to connect", err)
		}
		defer store.Close()

		doc, err := store.Get(ctx, args[0], args[1])
		if err != nil {
			if ember.IsDoesNotExist(err) {
				fmt.Fprintf(os.Stderr, "Document %s/%s does not exist\n", args[0], args[1])
				os.Exit(1)
			}
			fatal("Failed to read document", err)
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(doc.Data); err != nil {
			fatal("Failed to encode JSON", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
