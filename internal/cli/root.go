package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var baseDir string
var configPath string

var rootCmd = &cobra.Command{
	Use:   "athena-bridge",
	Short: "CAP integrity and relay pipeline",
	Long: "Accepts Contextual Advisory Payload records from upstream producers,\n" +
		"proves their authenticity and structure against a hash-pinned schema,\n" +
		"and relays them to the downstream bridge with a retained audit trail.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseDir, "base-dir", ".", "Deployment root holding schemas/, archive/, and cap_record.json")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to bridge.yaml (default <base-dir>/bridge.yaml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
