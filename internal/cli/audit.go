package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/falconforge/athena-bridge/internal/archive"
	"github.com/falconforge/athena-bridge/internal/auditor"
	"github.com/falconforge/athena-bridge/internal/config"
)

func init() {
	rootCmd.AddCommand(auditCmd)
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run the offline integrity check",
	Long: "Verifies the local schema artifact against the integrity manifest.\n" +
		"On digest mismatch, fetches the canonical copy once, replaces the\n" +
		"local file atomically, and re-verifies. Always archives one audit\n" +
		"record, then prunes retention.\n\n" +
		"Exit code 0 on PASS, 1 on FAIL. Use in cron to keep a tamper-evidence trail.",
	RunE: runAudit,
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(baseDir, configPath)
	if err != nil {
		return err
	}

	runner := &auditor.Runner{
		ManifestPath: cfg.ManifestPath,
		SchemaPath:   cfg.SchemaPath,
		RecordPath:   cfg.RecordPath,
		ArtifactName: cfg.ArtifactName,
		CanonicalURL: cfg.CanonicalSchemaURL,
		BaseDir:      baseDir,
		Archive:      archive.NewWriter(cfg.ArchiveDir, cfg.Retain),
		Progress:     os.Stderr,
	}

	rep := runner.Run(cmd.Context())

	fmt.Fprintf(os.Stderr, "\n%s: %s\n", rep.Status, rep.Verdict)
	if rep.Status != auditor.StatusPass {
		os.Exit(1)
	}
	return nil
}
