package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emberhq/ember"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of ember",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ember version %s\n", strings.TrimSpace(ember.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
