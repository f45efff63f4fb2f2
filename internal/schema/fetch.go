package schema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNetwork classifies canonical-fetch transport failures:
// timeout, TLS failure, refused connection, or a non-2xx response.
var ErrNetwork = errors.New("canonical fetch failed")

// fetchTimeout bounds a single canonical fetch.
const fetchTimeout = 10 * time.Second

// maxArtifactBytes caps how much canonical content is accepted.
const maxArtifactBytes = 4 << 20 // 4MB

var fetchClient = &http.Client{Timeout: fetchTimeout}

// FetchCanonical retrieves the trusted copy of an artifact from its
// canonical URL. The default transport performs full certificate
// validation; there is deliberately no knob to disable it.
func FetchCanonical(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	resp, err := fetchClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrNetwork, resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArtifactBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}
	if len(data) > maxArtifactBytes {
		return nil, fmt.Errorf("%w: artifact exceeds %d bytes", ErrNetwork, maxArtifactBytes)
	}
	return data, nil
}
