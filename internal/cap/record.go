// Package cap defines the Contextual Advisory Payload record, the
// structured handoff artifact between the upstream producer and the
// downstream bridge. The pipeline never mutates a record after receipt;
// it only proves validity and forwards the original bytes.
package cap

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record is a CAP record as received from the producer. Outputs,
// CAPExtensions, and Integrity are opaque to this pipeline: Integrity
// carries producer-side checksums and signatures that only the
// downstream consumer interprets.
type Record struct {
	CAPID           string          `json:"cap_id"`
	Timestamp       string          `json:"timestamp"`
	Domain          string          `json:"domain"`
	ContextMode     string          `json:"context_mode"`
	AdvisorOfRecord string          `json:"advisor_of_record"`
	Outputs         json.RawMessage `json:"outputs"`
	CAPExtensions   json.RawMessage `json:"cap_extensions"`
	Integrity       json.RawMessage `json:"integrity"`
}

// Parse decodes raw into both the typed record and a generic instance.
// Both views come from the same bytes, so schema validation later runs
// against exactly the payload that was signature-verified.
func Parse(raw []byte) (*Record, any, error) {
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, nil, fmt.Errorf("parse CAP record: %w", err)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, nil, fmt.Errorf("parse CAP record: %w", err)
	}
	return &rec, instance, nil
}

// ValidationError collects all required-field failures for a record.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("CAP record invalid: missing or empty %s", strings.Join(e.Fields, ", "))
}

// CheckRequired verifies that every required scalar field is present
// and non-empty. Returns nil if valid, or a *ValidationError naming
// every offending field.
func (r *Record) CheckRequired() error {
	ve := &ValidationError{}

	required := []struct {
		name  string
		value string
	}{
		{"cap_id", r.CAPID},
		{"timestamp", r.Timestamp},
		{"domain", r.Domain},
		{"context_mode", r.ContextMode},
		{"advisor_of_record", r.AdvisorOfRecord},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			ve.Fields = append(ve.Fields, f.name)
		}
	}

	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}
