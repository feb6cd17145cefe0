package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/lazypower/condense/internal/engine"
	"github.com/lazypower/condense/internal/store"
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Reduce every Python file under a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().Int("workers", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().Bool("store", false, "also archive maps in the database")
	batchCmd.Flags().Bool("json", false, "print per-file reports as JSON")
	batchCmd.Flags().String("config", "", "config file path")
	reductionFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	persist, _ := cmd.Flags().GetBool("store")
	var db *store.DB
	if persist {
		db, err = openDB(cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
	}

	eng := engine.New(db, resolveOptions(cmd, cfg.Reduce))
	workers, _ := cmd.Flags().GetInt("workers")

	results, err := eng.ReduceDir(cmd.Context(), args[0], workers)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return json.NewEncoder(os.Stdout).Encode(results)
	}

	var failed int
	var origBytes, redBytes int
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "  %s: %v\n", r.Path, r.Err)
			continue
		}
		origBytes += r.Report.Stats.OriginalBytes
		redBytes += r.Report.Stats.ReducedBytes
		fmt.Printf("%s -> %s\n", r.Path, r.Report.OutPath)
	}

	fmt.Printf("%d file(s) reduced, %d failed\n", len(results)-failed, failed)
	if origBytes > 0 {
		fmt.Printf("  %d -> %d bytes (%.1f%% saved)\n", origBytes, redBytes,
			100*float64(origBytes-redBytes)/float64(origBytes))
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	return nil
}
