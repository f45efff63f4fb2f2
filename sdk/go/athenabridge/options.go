package athenabridge

import "net/http"

// Option configures a Client at creation time.
type Option func(*clientConfig)

type clientConfig struct {
	secret     string
	httpClient *http.Client
}

// WithSecret sets the shared HMAC secret used to sign submissions.
// Without it, requests go out unsigned and a secured bridge rejects them.
func WithSecret(secret string) Option {
	return func(c *clientConfig) { c.secret = secret }
}

// WithHTTPClient overrides the default 15s-timeout HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}
