package athenabridge

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/falconforge/athena-bridge/internal/signature"
)

func testRecord() Record {
	return Record{
		CAPID:           "x1",
		Timestamp:       "2024-01-01T00:00:00Z",
		Domain:          "ops",
		ContextMode:     "auto",
		AdvisorOfRecord: "a1",
		Outputs:         map[string]any{},
		CAPExtensions:   map[string]any{},
		Integrity:       map[string]any{},
	}
}

func TestSubmitSignsExactBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !signature.Verify("shared-secret", body, r.Header.Get(SignatureHeader)) {
			t.Error("signature must verify against the exact bytes sent")
		}
		w.Write([]byte(`{"status":"CAP x1 validated","trace_id":"t","timestamp":"now","relay_result":{"relay":"skipped","reason":"endpoint not set"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithSecret("shared-secret"))
	receipt, err := c.Submit(context.Background(), testRecord())
	if err != nil {
		t.Fatal(err)
	}
	if receipt.RelayResult.Relay != "skipped" {
		t.Errorf("unexpected relay result: %+v", receipt.RelayResult)
	}
}

func TestSubmitSurfacesRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"unauthorized","message":"missing or invalid signature","trace_id":"t-1"}`))
	}))
	defer srv.Close()

	c := New(srv.URL) // no secret: unsigned submission
	_, err := c.Submit(context.Background(), testRecord())

	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected *RejectedError, got %v", err)
	}
	if rejected.StatusCode != http.StatusUnauthorized || rejected.Kind != "unauthorized" {
		t.Errorf("unexpected rejection: %+v", rejected)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"status":"alive"}`))
	}))
	defer srv.Close()

	if err := New(srv.URL).Health(context.Background()); err != nil {
		t.Fatal(err)
	}
}
