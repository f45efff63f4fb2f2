package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/falconforge/athena-bridge/internal/auditor"
	"github.com/falconforge/athena-bridge/internal/cap"
	"github.com/falconforge/athena-bridge/internal/schema"
)

// ValidateInput defines parameters for the athena_validate tool.
type ValidateInput struct {
	Record string `json:"record" jsonschema:"CAP record as a JSON document string"`
}

// ValidateOutput reports the validation verdict.
type ValidateOutput struct {
	Valid     bool     `json:"valid"`
	CAPID     string   `json:"cap_id,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	Violation string   `json:"violation,omitempty"`
}

// IntegrityInput is empty; the audit uses the configured paths.
type IntegrityInput struct{}

// IntegrityOutput summarizes one auditor run.
type IntegrityOutput struct {
	Status          string `json:"status"`
	Verdict         string `json:"verdict"`
	ManifestVersion string `json:"manifest_version"`
	SchemaHash      string `json:"schema_hash"`
	Repaired        bool   `json:"repaired"`
}

func (s *Server) handleValidate(ctx context.Context, req *mcpsdk.CallToolRequest, input ValidateInput) (*mcpsdk.CallToolResult, ValidateOutput, error) {
	raw := []byte(input.Record)

	record, instance, err := cap.Parse(raw)
	if err != nil {
		out := ValidateOutput{Errors: []string{err.Error()}}
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}

	out := ValidateOutput{CAPID: record.CAPID}
	if err := record.CheckRequired(); err != nil {
		out.Errors = append(out.Errors, err.Error())
	}
	if v := schema.Validate(s.store.Current(), instance); v != nil {
		out.Violation = v.Message
	}

	out.Valid = len(out.Errors) == 0 && out.Violation == ""
	return nil, out, nil
}

func (s *Server) handleIntegrity(ctx context.Context, req *mcpsdk.CallToolRequest, input IntegrityInput) (*mcpsdk.CallToolResult, IntegrityOutput, error) {
	rep := s.newRunner().Run(ctx)

	out := IntegrityOutput{
		Status:          rep.Status,
		Verdict:         rep.Verdict,
		ManifestVersion: rep.ManifestVersion,
		SchemaHash:      rep.SchemaHash,
		Repaired:        rep.Repaired,
	}
	if rep.Status != auditor.StatusPass {
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}
	return nil, out, nil
}
