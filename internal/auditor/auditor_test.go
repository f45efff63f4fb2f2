package auditor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/falconforge/athena-bridge/internal/archive"
	"github.com/falconforge/athena-bridge/internal/digest"
)

const testSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["cap_id", "domain"],
	"properties": {
		"cap_id": {"type": "string"},
		"domain": {"type": "string"}
	}
}`

const validRecord = `{"cap_id": "x1", "domain": "ops"}`

// fixture lays out a deployment root: schema, manifest pinning its
// digest, CAP record, and archive dir.
type fixture struct {
	dir     string
	runner  *Runner
	fetches int
}

func newFixture(t *testing.T, schemaContent, recordContent string) *fixture {
	t.Helper()
	dir := t.TempDir()

	schemaPath := filepath.Join(dir, "schema.json")
	if err := os.WriteFile(schemaPath, []byte(schemaContent), 0600); err != nil {
		t.Fatal(err)
	}

	manifest := map[string]any{
		"version": "3.5",
		"modules": []map[string]string{
			{"name": "schema.json", "sha256": digest.SumBytes([]byte(testSchema))},
		},
	}
	manifestData, _ := json.Marshal(manifest)
	manifestPath := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(manifestPath, manifestData, 0600); err != nil {
		t.Fatal(err)
	}

	recordPath := filepath.Join(dir, "cap_record.json")
	if err := os.WriteFile(recordPath, []byte(recordContent), 0600); err != nil {
		t.Fatal(err)
	}

	f := &fixture{dir: dir}
	f.runner = &Runner{
		ManifestPath: manifestPath,
		SchemaPath:   schemaPath,
		RecordPath:   recordPath,
		ArtifactName: "schema.json",
		CanonicalURL: "https://canonical.example/schema.json",
		BaseDir:      dir,
		Archive:      archive.NewWriter(filepath.Join(dir, "logs"), 10),
		Fetch: func(ctx context.Context, url string) ([]byte, error) {
			f.fetches++
			return []byte(testSchema), nil
		},
	}
	return f
}

func TestRunPassesWithoutFetch(t *testing.T) {
	f := newFixture(t, testSchema, validRecord)

	for i := 0; i < 2; i++ {
		rep := f.runner.Run(context.Background())
		if rep.Status != StatusPass {
			t.Fatalf("run %d: expected PASS, got %s (%s)", i, rep.Status, rep.Verdict)
		}
		if rep.Repaired {
			t.Errorf("run %d: matching schema must not be repaired", i)
		}
	}
	if f.fetches != 0 {
		t.Errorf("matching schema must never trigger a fetch, got %d", f.fetches)
	}

	entries, err := f.runner.Archive.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected one audit record per run, got %d", len(entries))
	}
	if entries[0].ManifestVersion != "3.5" {
		t.Errorf("audit record must carry manifest version, got %q", entries[0].ManifestVersion)
	}
}

func TestRunRepairsCorruptedSchema(t *testing.T) {
	f := newFixture(t, `{"type":"object","comment":"stale"}`, validRecord)

	rep := f.runner.Run(context.Background())
	if rep.Status != StatusPass {
		t.Fatalf("expected PASS after repair, got %s (%s)", rep.Status, rep.Verdict)
	}
	if !rep.Repaired {
		t.Error("report must flag the repair")
	}
	if f.fetches != 1 {
		t.Fatalf("exactly one fetch per repair, got %d", f.fetches)
	}

	restored, err := os.ReadFile(f.runner.SchemaPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(restored) != testSchema {
		t.Error("local schema must be replaced with canonical content")
	}
	if rep.SchemaHash != digest.Hex(digest.SumBytes([]byte(testSchema))) {
		t.Errorf("report hash must reflect the repaired artifact, got %s", rep.SchemaHash)
	}
}

func TestRunFailsWhenCanonicalStillMismatches(t *testing.T) {
	f := newFixture(t, `{"type":"object","comment":"stale"}`, validRecord)
	f.runner.Fetch = func(ctx context.Context, url string) ([]byte, error) {
		f.fetches++
		return []byte(`{"type":"object","comment":"also wrong"}`), nil
	}

	rep := f.runner.Run(context.Background())
	if rep.Status != StatusFail {
		t.Fatalf("expected FAIL, got %s", rep.Status)
	}
	if !strings.Contains(rep.Verdict, "still mismatched") {
		t.Errorf("verdict must name the post-fetch mismatch: %s", rep.Verdict)
	}
	if f.fetches != 1 {
		t.Fatalf("repair must not loop: expected 1 fetch, got %d", f.fetches)
	}
}

func TestRunFailsOnFetchError(t *testing.T) {
	f := newFixture(t, `corrupted`, validRecord)
	f.runner.Fetch = func(ctx context.Context, url string) ([]byte, error) {
		return nil, fmt.Errorf("canonical fetch failed: connection refused")
	}

	rep := f.runner.Run(context.Background())
	if rep.Status != StatusFail {
		t.Fatalf("expected FAIL, got %s", rep.Status)
	}
	if !strings.Contains(rep.Verdict, "canonical fetch failed") {
		t.Errorf("verdict must carry the fetch failure: %s", rep.Verdict)
	}
}

func TestRunFailsOnRecordViolationWithoutRefetch(t *testing.T) {
	f := newFixture(t, testSchema, `{"cap_id": "x1"}`)

	rep := f.runner.Run(context.Background())
	if rep.Status != StatusFail {
		t.Fatalf("expected FAIL for record violation, got %s", rep.Status)
	}
	if !strings.Contains(rep.Verdict, "CAP validation error") {
		t.Errorf("verdict must name the validation failure: %s", rep.Verdict)
	}
	if f.fetches != 0 {
		t.Errorf("a record violation is not grounds to re-fetch the schema, got %d fetches", f.fetches)
	}
}

func TestRunWritesSentinelRecordOnMissingManifest(t *testing.T) {
	f := newFixture(t, testSchema, validRecord)
	f.runner.ManifestPath = filepath.Join(f.dir, "absent_manifest.json")

	rep := f.runner.Run(context.Background())
	if rep.Status != StatusFail {
		t.Fatalf("expected FAIL, got %s", rep.Status)
	}

	entries, err := f.runner.Archive.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("audit record must be written even on fatal failure, got %d", len(entries))
	}
	if entries[0].ManifestVersion != archive.UnknownVersion {
		t.Errorf("expected sentinel manifest version, got %q", entries[0].ManifestVersion)
	}
	if entries[0].SchemaHash != archive.NoHash {
		t.Errorf("expected sentinel schema hash, got %q", entries[0].SchemaHash)
	}
}

func TestVerdictRedactsWorkspaceRoot(t *testing.T) {
	f := newFixture(t, testSchema, validRecord)
	f.runner.RecordPath = filepath.Join(f.dir, "missing_record.json")

	rep := f.runner.Run(context.Background())
	if rep.Status != StatusFail {
		t.Fatalf("expected FAIL, got %s", rep.Status)
	}
	if strings.Contains(rep.Verdict, f.dir) {
		t.Errorf("verdict must not leak the deployment root: %s", rep.Verdict)
	}
	if !strings.Contains(rep.Verdict, "<workspace>") {
		t.Errorf("redacted verdict must use the placeholder: %s", rep.Verdict)
	}
}
