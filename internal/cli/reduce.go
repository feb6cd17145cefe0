package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lazypower/condense/internal/engine"
	"github.com/lazypower/condense/internal/store"
)

var reduceCmd = &cobra.Command{
	Use:   "reduce <file.py>",
	Short: "Reduce a Python file to its token-cheap form",
	Long: "Reduce strips removable trivia from a Python source file, writing the\n" +
		"reduced text and a sidecar reduction map that can replay the removal\n" +
		"byte-exactly.",
	Args: cobra.ExactArgs(1),
	RunE: runReduce,
}

func init() {
	reduceCmd.Flags().StringP("out", "o", "", "output path for the reduced text (default <file>.reduced.py)")
	reduceCmd.Flags().String("map", "", "output path for the reduction map (default <file>.map.json)")
	reduceCmd.Flags().Bool("store", false, "also archive the map in the database")
	reduceCmd.Flags().Bool("json", false, "print the file report as JSON")
	reduceCmd.Flags().String("config", "", "config file path")
	reductionFlags(reduceCmd)
}

func runReduce(cmd *cobra.Command, args []string) error {
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

	outPath, _ := cmd.Flags().GetString("out")
	mapPath, _ := cmd.Flags().GetString("map")

	report, err := eng.ReduceFile(args[0], outPath, mapPath, persist)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return json.NewEncoder(os.Stdout).Encode(report)
	}

	fmt.Printf("%s -> %s\n", report.Path, report.OutPath)
	fmt.Printf("  map: %s\n", report.MapPath)
	if report.MapID != "" {
		fmt.Printf("  archived: %s\n", report.MapID)
	}
	printStats(report.Stats)
	return nil
}

func printStats(s engine.Stats) {
	fmt.Printf("  %d -> %d bytes (%.1f%% saved), ~%d -> ~%d tokens\n",
		s.OriginalBytes, s.ReducedBytes, s.SavedPercent,
		s.OriginalTokens, s.ReducedTokens)
}
