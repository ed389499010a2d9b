package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emberhq/ember/pkg/core"
)

var setData string

var setCmd = &cobra.Command{
	Use:   "set [collection] [id]",
	Short: "Write a document",
	Long:  `Create or overwrite the document at the given primary key with the JSON object passed via --data.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		var data core.Data
		if err := json.Unmarshal([]byte(setData), &data); err != nil {
			fatal("Invalid --data, expected a JSON object", err)
		}

		ctx := context.Background()
		store, err := openStore(ctx)
		if err != nil {
			fatal("Failed to connect", err)
		}
		defer store.Close()

		if err := store.Set(ctx, args[0], args[1], data); err != nil {
			fatal("Failed to write document", err)
		}
		fmt.Printf("Document %s/%s written.\n", args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
	setCmd.Flags().StringVar(&setData, "data", "", "Document fields as a JSON object")
	setCmd.MarkFlagRequired("data")
}
