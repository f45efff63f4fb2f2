// Package mcp exposes the CAP pipeline to agent tooling over the Model
// Context Protocol: one tool validates a record against the pinned
// schema without relaying it, another runs the integrity auditor.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/falconforge/athena-bridge/internal/archive"
	"github.com/falconforge/athena-bridge/internal/auditor"
	"github.com/falconforge/athena-bridge/internal/config"
	"github.com/falconforge/athena-bridge/internal/schema"
)

// Server wraps the MCP SDK server around the validation and audit paths.
type Server struct {
	mcpServer *mcpsdk.Server
	store     *schema.Store
	cfg       *config.Config
	baseDir   string
}

// New creates an MCP server with the schema loaded and tools registered.
func New(baseDir string, cfg *config.Config) (*Server, error) {
	store, err := schema.NewStore(cfg.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	s := &Server{
		store:   store,
		cfg:     cfg,
		baseDir: baseDir,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "athena-bridge",
			Version: "2.0.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "athena_validate",
		Description: "Validate a CAP record JSON document against the pinned schema without relaying it. Returns required-field and structural violations.",
	}, s.handleValidate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "athena_integrity",
		Description: "Run the offline integrity audit: verify the local schema against the manifest, self-heal from the canonical source on mismatch, and archive an audit record.",
	}, s.handleIntegrity)
}

func (s *Server) newRunner() *auditor.Runner {
	return &auditor.Runner{
		ManifestPath: s.cfg.ManifestPath,
		SchemaPath:   s.cfg.SchemaPath,
		RecordPath:   s.cfg.RecordPath,
		ArtifactName: s.cfg.ArtifactName,
		CanonicalURL: s.cfg.CanonicalSchemaURL,
		BaseDir:      s.baseDir,
		Archive:      archive.NewWriter(s.cfg.ArchiveDir, s.cfg.Retain),
	}
}
