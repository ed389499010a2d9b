package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/emberhq/ember"
	"github.com/emberhq/ember/pkg/core"
)

var (
	verbose    bool
	project    string
	database   string
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ember",
	Short: "A schema-aware document ODM for Cloud Firestore",
	Long: `Ember maps Firestore collections onto declared schemas.
The CLI operates on raw documents: point reads and writes, filtered
listings and aggregation counts against a project's collections.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// openStore resolves the effective configuration (file first, flags win)
// and connects to Firestore.
func openStore(ctx context.Context) (core.Store, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if project != "" {
		cfg.Project = project
	}
	if database != "" {
		cfg.Database = database
	}
	if cfg.Project == "" {
		return nil, fmt.Errorf("no project configured; pass --project or set it in %s", defaultConfigFile)
	}

	var opts []ember.Option
	if cfg.Database != "" {
		opts = append(opts, ember.WithDatabase(cfg.Database))
	}
	opts = append(opts, ember.WithLogger(slog.Default()))
	return ember.Open(ctx, cfg.Project, opts...)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&project, "project", "", "Google Cloud project ID")
	rootCmd.PersistentFlags().StringVar(&database, "database", "", "Firestore database (defaults to the project default)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ./ember.yaml)")
}
