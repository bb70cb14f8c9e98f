package service

import "net/url"

// ResolveToken extracts a session token from a scanned payload. A payload
// that parses as an absolute URL yields its "token" query parameter; anything
// else is treated as a raw token and returned unchanged. Never fails: a
// malformed URL falls through to the raw-payload branch. Token shape is not
// validated here; the check-in processor owns that.
func ResolveToken(scannedPayload string) string {
	parsed, err := url.Parse(scannedPayload)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return scannedPayload
	}
	if token := parsed.Query().Get("token"); token != "" {
		return token
	}
	return scannedPayload
}
