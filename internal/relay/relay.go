// Package relay forwards validated CAP records to the downstream
// bridge endpoint. The outcome of every dispatch is classified into a
// closed set of states and reported back; relay never fails a request.
package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// State classifies the terminal outcome of one relay attempt.
type State string

const (
	// Skipped means no downstream endpoint is configured. Valid,
	// non-error terminal state.
	Skipped State = "skipped"
	// Success means the downstream answered HTTP 200.
	Success State = "success"
	// Failed means the downstream answered a non-200 status.
	Failed State = "failed"
	// Error means the request never produced an HTTP response
	// (DNS, refused connection, timeout, TLS).
	Error State = "error"
)

// Outcome is the result of a single dispatch. It is always embedded in
// the intake response, never silently dropped.
type Outcome struct {
	Relay   State  `json:"relay"`
	Reason  string `json:"reason,omitempty"`
	Status  int    `json:"downstream_status,omitempty"`
	Body    string `json:"downstream_body,omitempty"`
	Message string `json:"message,omitempty"`
}

// dispatchTimeout bounds the outbound call so one slow downstream
// cannot stall the intake path.
const dispatchTimeout = 12 * time.Second

// maxResponseBytes caps how much downstream body is captured.
const maxResponseBytes = 64 << 10

// Dispatcher posts CAP records to the configured bridge.
type Dispatcher struct {
	Endpoint string
	Token    string
	Client   *http.Client
}

// NewDispatcher creates a dispatcher for the given bridge endpoint.
// An empty endpoint is the legal "relay disabled" configuration.
func NewDispatcher(endpoint, token string) *Dispatcher {
	return &Dispatcher{
		Endpoint: endpoint,
		Token:    token,
		Client:   &http.Client{Timeout: dispatchTimeout},
	}
}

// Dispatch forwards the raw record bytes to <endpoint>/cap with bearer
// credentials. Exactly one outbound call per invocation; retry policy,
// if any, belongs to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) Outcome {
	if d.Endpoint == "" {
		return Outcome{Relay: Skipped, Reason: "endpoint not set"}
	}

	url := strings.TrimRight(d.Endpoint, "/") + "/cap"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Outcome{Relay: Error, Message: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if d.Token != "" {
		req.Header.Set("Authorization", "Bearer "+d.Token)
	}

	client := d.Client
	if client == nil {
		client = &http.Client{Timeout: dispatchTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Outcome{Relay: Error, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode == http.StatusOK {
		return Outcome{Relay: Success, Status: resp.StatusCode, Body: string(respBody)}
	}
	return Outcome{Relay: Failed, Status: resp.StatusCode, Body: string(respBody)}
}
