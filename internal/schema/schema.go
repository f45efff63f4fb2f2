// Package schema owns the pinned CAP schema and its integrity manifest.
// The manifest is the trust baseline: it names each trusted artifact and
// the content digest it must carry. The schema document itself is loaded
// once, resolved, and treated as immutable for the life of the process.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/jsonschema-go/jsonschema"
)

// Sentinel errors for the store's failure taxonomy.
var (
	ErrNotFound        = errors.New("artifact not found")
	ErrMalformed       = errors.New("artifact malformed")
	ErrUnknownArtifact = errors.New("unknown artifact in manifest")
)

// Document is a loaded, resolved CAP schema ready for validation.
// It is immutable after LoadDocument returns and safe for concurrent use.
type Document struct {
	resolved *jsonschema.Resolved
}

// LoadDocument reads and resolves a JSON Schema from path.
// Returns ErrNotFound if the file is absent, ErrMalformed if the
// content is not valid JSON or not a usable schema.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read schema: %w", err)
	}

	var s jsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	resolved, err := s.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return &Document{resolved: resolved}, nil
}

// ModuleEntry pins one trusted artifact to its expected content digest.
type ModuleEntry struct {
	Name   string `json:"name"`
	SHA256 string `json:"sha256"`
}

// Manifest is the signed list of trusted artifacts and their digests.
type Manifest struct {
	Version string        `json:"version"`
	Modules []ModuleEntry `json:"modules"`
}

// LoadManifest reads the integrity manifest from path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return &m, nil
}

// DigestFor returns the expected "SHA256:<hex>" digest for the named
// artifact. First match wins: duplicate names are a configuration
// defect, not a runtime error. Returns ErrUnknownArtifact on a miss.
func (m *Manifest) DigestFor(name string) (string, error) {
	for _, mod := range m.Modules {
		if mod.Name == name {
			return mod.SHA256, nil
		}
	}
	return "", fmt.Errorf("%w: %q (manifest version %s)", ErrUnknownArtifact, name, m.Version)
}
