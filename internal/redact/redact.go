// Package redact strips deployment-specific detail from text that is
// persisted or displayed. Audit verdicts must never leak the local
// filesystem layout of the host they ran on.
package redact

import "strings"

// Placeholder replaces a redacted workspace root in diagnostic text.
const Placeholder = "<workspace>"

// Root replaces every occurrence of the base directory in s with
// Placeholder. Trailing separators on base are ignored so "/srv/athena"
// and "/srv/athena/" redact identically. An empty base is a no-op.
func Root(s, base string) string {
	base = strings.TrimRight(base, "/")
	if base == "" {
		return s
	}
	return strings.ReplaceAll(s, base, Placeholder)
}

// Secret masks a credential for display. Short values are fully
// masked; longer ones keep the first four characters as a hint.
func Secret(s string) string {
	if s == "" {
		return "(unset)"
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***"
}
