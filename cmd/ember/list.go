package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/emberhq/ember/pkg/core"
)

var (
	listFilters []string
	listOrder   []string
	listLimit   int
	listGlob    string
	listJSON    bool
)

var listCmd = &cobra.Command{
	Use:   "list [collection]",
	Short: "List documents in a collection",
	Long: `List documents, optionally filtered, ordered and limited.

Filters use the lookup syntax: --filter "price__gt=10" --filter "name=Mouse".
The part before "=" is the field path with an optional operator suffix; the
part after is parsed as JSON, falling back to a plain string.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		spec := core.QuerySpec{Collection: args[0], Limit: listLimit}

		filters, err := parseFilters(listFilters)
		if err != nil {
			fatal("Invalid --filter", err)
		}
		spec.Filters = filters

		for _, field := range listOrder {
			desc := false
			name := field
			if after, ok := strings.CutPrefix(field, "-"); ok {
				desc = true
				name = after
			}
			spec.Orders = append(spec.Orders, core.Order{
				FieldPath:  strings.ReplaceAll(name, "__", "."),
				Descending: desc,
			})
		}

		ctx := context.Background()
		store, err := openStore(ctx)
		if err != nil {
			fatal("Failed to connect", err)
		}
		defer store.Close()

		var docs []core.Document
		for doc, err := range store.Run(ctx, spec) {
			if err != nil {
				fatal("Query failed", err)
			}
			if listGlob != "" {
				match, err := doublestar.Match(listGlob, doc.ID)
				if err != nil {
					fatal("Invalid --glob pattern", err)
				}
				if !match {
					continue
				}
			}
			docs = append(docs, doc)
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(docs); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		for _, doc := range docs {
			fmt.Println(doc.ID)
		}
	},
}

// parseFilters converts "lookup=value" pairs into query predicates. Values
// are decoded as JSON so numbers, booleans and arrays keep their types; bare
// words stay strings.
func parseFilters(pairs []string) ([]core.Filter, error) {
	var out []core.Filter
	for _, pair := range pairs {
		lookup, raw, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("%q is not of the form lookup=value", pair)
		}
		fieldPath, op, err := core.ParseLookup(lookup)
		if err != nil {
			return nil, err
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		out = append(out, core.Filter{FieldPath: fieldPath, Op: op, Value: value})
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringArrayVar(&listFilters, "filter", nil, "Filter as lookup=value (repeatable)")
	listCmd.Flags().StringArrayVar(&listOrder, "order", nil, "Order by field, prefix with - for descending (repeatable)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of documents")
	listCmd.Flags().StringVar(&listGlob, "glob", "", "Keep only document IDs matching the glob pattern")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output full documents as JSON")
}
