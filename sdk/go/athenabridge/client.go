// Package athenabridge is the producer-side client for the CAP intake
// endpoint. It signs the exact bytes it sends, so the bridge's
// signature check sees the same payload the producer authenticated.
package athenabridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/falconforge/athena-bridge/internal/signature"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body.
const SignatureHeader = "X-Athena-Signature"

const defaultTimeout = 15 * time.Second

// Record is a CAP record as submitted by a producer.
type Record struct {
	CAPID           string `json:"cap_id"`
	Timestamp       string `json:"timestamp"`
	Domain          string `json:"domain"`
	ContextMode     string `json:"context_mode"`
	AdvisorOfRecord string `json:"advisor_of_record"`
	Outputs         any    `json:"outputs"`
	CAPExtensions   any    `json:"cap_extensions"`
	Integrity       any    `json:"integrity"`
}

// RelayResult mirrors the bridge's relay outcome classification.
type RelayResult struct {
	Relay            string `json:"relay"`
	Reason           string `json:"reason,omitempty"`
	DownstreamStatus int    `json:"downstream_status,omitempty"`
	DownstreamBody   string `json:"downstream_body,omitempty"`
	Message          string `json:"message,omitempty"`
}

// Receipt is the bridge's answer for an accepted record.
type Receipt struct {
	Status      string      `json:"status"`
	TraceID     string      `json:"trace_id"`
	Timestamp   string      `json:"timestamp"`
	RelayResult RelayResult `json:"relay_result"`
}

// RejectedError is returned when the bridge refuses a record.
type RejectedError struct {
	StatusCode int
	Kind       string
	Message    string
	TraceID    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("athenabridge: record rejected (HTTP %d, %s): %s", e.StatusCode, e.Kind, e.Message)
}

// Client submits CAP records to a bridge intake endpoint.
type Client struct {
	baseURL string
	cfg     clientConfig
}

// New creates a client for the bridge at baseURL.
func New(baseURL string, opts ...Option) *Client {
	cfg := clientConfig{
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(&cfg)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		cfg:     cfg,
	}
}

// Submit signs and posts a record to the bridge. Returns the receipt on
// acceptance, or a *RejectedError when the bridge refused the record.
func (c *Client) Submit(ctx context.Context, rec Record) (*Receipt, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("athenabridge: marshal record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cap", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("athenabridge: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.secret != "" {
		req.Header.Set(SignatureHeader, signature.Sign(c.cfg.secret, body))
	}

	resp, err := c.cfg.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("athenabridge: submit: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("athenabridge: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Kind    string `json:"error"`
			Message string `json:"message"`
			TraceID string `json:"trace_id"`
		}
		_ = json.Unmarshal(respBody, &failure)
		return nil, &RejectedError{
			StatusCode: resp.StatusCode,
			Kind:       failure.Kind,
			Message:    failure.Message,
			TraceID:    failure.TraceID,
		}
	}

	var receipt Receipt
	if err := json.Unmarshal(respBody, &receipt); err != nil {
		return nil, fmt.Errorf("athenabridge: decode receipt: %w", err)
	}
	return &receipt, nil
}

// Health checks the bridge liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("athenabridge: create request: %w", err)
	}
	resp, err := c.cfg.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("athenabridge: health: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("athenabridge: health: HTTP %d", resp.StatusCode)
	}
	return nil
}
