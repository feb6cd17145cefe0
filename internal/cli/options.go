package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lazypower/condense/internal/config"
	"github.com/lazypower/condense/internal/reduce"
	"github.com/lazypower/condense/internal/store"
)

// reductionFlags registers the option flags shared by reduce and batch.
// Flag polarity follows the command line convention of naming the
// non-default behavior; defaults come from the loaded config.
func reductionFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("strip-docstrings", false, "elide docstrings from the reduced text")
	cmd.Flags().Bool("compact-strings", false, "compact multi-line string literals to escaped single-line form")
	cmd.Flags().Bool("keep-blank-lines", false, "keep blank lines in the reduced text")
	cmd.Flags().Bool("keep-inline-whitespace", false, "keep inline whitespace runs as written")
}

// resolveOptions layers command line flags over the config defaults.
func resolveOptions(cmd *cobra.Command, base reduce.Options) reduce.Options {
	opts := base
	if v, _ := cmd.Flags().GetBool("strip-docstrings"); v {
		opts.PreserveDocstrings = false
	}
	if v, _ := cmd.Flags().GetBool("compact-strings"); v {
		opts.CompactMultilineStrings = true
	}
	if v, _ := cmd.Flags().GetBool("keep-blank-lines"); v {
		opts.StripBlankLines = false
	}
	if v, _ := cmd.Flags().GetBool("keep-inline-whitespace"); v {
		opts.CollapseInlineWhitespace = false
	}
	return opts
}

// loadConfig reads the config file named by --config, or the default
// location when the flag is absent.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// openDB opens the map archive database. Resolution order: CONDENSE_DB
// environment variable, config file, default path.
func openDB(cfg config.Config) (*store.DB, error) {
	dbPath := os.Getenv("CONDENSE_DB")
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	return store.Open(dbPath)
}
