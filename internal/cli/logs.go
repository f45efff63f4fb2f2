package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/falconforge/athena-bridge/internal/archive"
	"github.com/falconforge/athena-bridge/internal/config"
)

var logsFormat string

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().StringVarP(&logsFormat, "format", "f", "text", "Output format (text|json)")
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print retained audit records, newest first",
	RunE:  runLogs,
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(baseDir, configPath)
	if err != nil {
		return err
	}

	w := archive.NewWriter(cfg.ArchiveDir, cfg.Retain)
	entries, err := w.List()
	if err != nil {
		return fmt.Errorf("list audit records: %w", err)
	}

	switch logsFormat {
	case "json":
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		if len(entries) == 0 {
			fmt.Println("No audit records retained.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%-20s %-4s manifest=%s schema=%s\n  %s\n",
				e.Runtime, e.Status, e.ManifestVersion, shortHash(e.SchemaHash), e.Verdict)
		}
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12] + "..."
	}
	return h
}
