// Package intake composes the online CAP pipeline: signature check,
// payload parse, schema validation, then relay. The orchestrator is the
// only place a client-facing error can originate, and every outcome,
// success or failure, carries a fresh correlation id.
package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/falconforge/athena-bridge/internal/cap"
	"github.com/falconforge/athena-bridge/internal/relay"
	"github.com/falconforge/athena-bridge/internal/schema"
	"github.com/falconforge/athena-bridge/internal/signature"
)

// Kind classifies a client-facing intake failure.
type Kind string

const (
	// Unauthorized means the signature was missing or did not verify.
	Unauthorized Kind = "unauthorized"
	// MalformedPayload means the body was unparsable or a required
	// scalar field was missing or empty.
	MalformedPayload Kind = "malformed_payload"
	// SchemaViolation means the record failed structural validation.
	SchemaViolation Kind = "schema_violation"
	// SchemaUnavailable means no schema document is loaded; the
	// service cannot judge records until the artifact is restored.
	SchemaUnavailable Kind = "schema_unavailable"
)

// Failure is a structured client-facing error. It never carries a
// stack trace.
type Failure struct {
	Kind      Kind   `json:"error"`
	Message   string `json:"message"`
	TraceID   string `json:"trace_id"`
	Timestamp string `json:"timestamp"`
}

// Response reports a validated record and the informational relay
// outcome. A relay failure is embedded here, never escalated into a
// request-level error.
type Response struct {
	Status      string        `json:"status"`
	TraceID     string        `json:"trace_id"`
	Timestamp   string        `json:"timestamp"`
	RelayResult relay.Outcome `json:"relay_result"`
}

// Orchestrator wires the per-request pipeline. The schema store is
// read-only shared state; everything else is per-request.
type Orchestrator struct {
	Secret string
	Store  *schema.Store
	Relay  *relay.Dispatcher
}

// Process runs the fixed pipeline order over one raw request body,
// short-circuiting on the first failure. The raw bytes are read once by
// the caller and never re-serialized: signature verification and schema
// validation both see the exact payload the producer signed.
func (o *Orchestrator) Process(ctx context.Context, raw []byte, signatureHex string) (*Response, *Failure) {
	traceID := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	fail := func(kind Kind, message string) (*Response, *Failure) {
		return nil, &Failure{Kind: kind, Message: message, TraceID: traceID, Timestamp: now}
	}

	if !signature.Verify(o.Secret, raw, signatureHex) {
		return fail(Unauthorized, "missing or invalid signature")
	}

	record, instance, err := cap.Parse(raw)
	if err != nil {
		return fail(MalformedPayload, err.Error())
	}
	if err := record.CheckRequired(); err != nil {
		return fail(MalformedPayload, err.Error())
	}

	if o.Store == nil {
		return fail(SchemaUnavailable, "schema document not loaded")
	}
	doc := o.Store.Current()
	if doc == nil {
		return fail(SchemaUnavailable, "schema document not loaded")
	}
	if v := schema.Validate(doc, instance); v != nil {
		return fail(SchemaViolation, v.Message)
	}

	outcome := o.Relay.Dispatch(ctx, raw)

	return &Response{
		Status:      fmt.Sprintf("CAP %s validated", record.CAPID),
		TraceID:     traceID,
		Timestamp:   now,
		RelayResult: outcome,
	}, nil
}
