package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emberhq/ember"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [collection] [id]",
	Short: "Delete a document by primary key",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store, err := openStore(ctx)
		if err != nil {
			fatal("Failed to connect", err)
		}
		defer store.Close()

		if err := store.Delete(ctx, args[0], args[1]); err != nil {
			if ember.IsDoesNotExist(err) {
				fmt.Fprintf(os.Stderr, "Document %s/%s does not exist\n", args[0], args[1])
				os.Exit(1)
			}
			fatal("Failed to delete document", err)
		}
		fmt.Printf("Document %s/%s deleted.\n", args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
