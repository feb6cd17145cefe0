package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lazypower/condense/internal/engine"
	"github.com/lazypower/condense/internal/reduce"
)

var reconstructCmd = &cobra.Command{
	Use:   "reconstruct <file.reduced.py>",
	Short: "Reconstruct original source from reduced text and its map",
	Long: "Reconstruct replays a reduction map against reduced text. Unedited\n" +
		"input reproduces the original bytes exactly; edited input is reconciled\n" +
		"by token alignment and unresolved removals are reported, never invented.",
	Args: cobra.ExactArgs(1),
	RunE: runReconstruct,
}

func init() {
	reconstructCmd.Flags().StringP("out", "o", "", "output path (default <file>.out.py)")
	reconstructCmd.Flags().String("map", "", "reduction map path (default <file>.map.json)")
	reconstructCmd.Flags().Bool("json", false, "print the file report as JSON")
	reconstructCmd.Flags().String("config", "", "config file path")
}

func runReconstruct(cmd *cobra.Command, args []string) error {
	mapPath, _ := cmd.Flags().GetString("map")
	if mapPath == "" {
		mapPath = defaultMapPath(args[0])
	}
	outPath, _ := cmd.Flags().GetString("out")

	eng := engine.New(nil, reduce.DefaultOptions())
	report, err := eng.ReconstructFile(args[0], mapPath, outPath)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return json.NewEncoder(os.Stdout).Encode(report)
	}

	fmt.Printf("%s -> %s\n", report.Path, report.OutPath)
	for _, d := range report.Discrepancies {
		fmt.Fprintf(os.Stderr, "  dropped %s edit %d: %s\n", d.Type, d.EditIndex, d.Reason)
	}
	if n := len(report.Discrepancies); n > 0 {
		fmt.Fprintf(os.Stderr, "  %d removal(s) could not be replayed\n", n)
	}
	return nil
}

// defaultMapPath maps foo.reduced.py to foo.map.json, falling back to
// the plain sidecar name when the input lacks the .reduced infix.
func defaultMapPath(reducedPath string) string {
	base := reducedPath
	if ext := ".reduced.py"; len(base) > len(ext) && base[len(base)-len(ext):] == ext {
		return base[:len(base)-len(ext)] + ".map.json"
	}
	return engine.MapPath(reducedPath)
}
