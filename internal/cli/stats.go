package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show map archive totals",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().Bool("json", false, "print stats as JSON")
	statsCmd.Flags().String("config", "", "config file path")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	s, err := db.GetArchiveStats()
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return json.NewEncoder(os.Stdout).Encode(s)
	}

	fmt.Printf("archive: %s\n", db.Path)
	fmt.Printf("  maps: %d\n", s.Count)
	fmt.Printf("  original bytes: %d\n", s.OriginalBytes)
	fmt.Printf("  reduced bytes:  %d\n", s.ReducedBytes)
	if s.OriginalBytes > 0 {
		fmt.Printf("  saved: %.1f%%\n",
			100*float64(s.OriginalBytes-s.ReducedBytes)/float64(s.OriginalBytes))
	}
	return nil
}
