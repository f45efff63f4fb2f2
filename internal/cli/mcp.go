package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/falconforge/athena-bridge/internal/config"
	"github.com/falconforge/athena-bridge/internal/mcp"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server on stdio",
	Long: "Exposes CAP validation and the integrity audit as MCP tools so agent\n" +
		"tooling can dry-run records and check artifact integrity without\n" +
		"touching the HTTP intake path.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(baseDir, configPath)
	if err != nil {
		return err
	}

	srv, err := mcp.New(baseDir, cfg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return srv.Run(cmd.Context())
}
