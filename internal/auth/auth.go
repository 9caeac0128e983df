// Package auth validates the shared bearer token presented at connect time.
package auth

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"
)

// Extract pulls the bearer credential from transport-level headers and
// query parameters. Sources are checked in order:
//
//  1. Authorization: Bearer <token>
//  2. Authorization: <token> (raw)
//  3. X-Auth-Token header
//  4. token query parameter
//
// Returns the empty string if no credential is present.
func Extract(header http.Header, query url.Values) string {
	if auth := header.Get("Authorization"); auth != "" {
		if rest, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(rest)
		}
		if rest, ok := strings.CutPrefix(auth, "bearer "); ok {
			return strings.TrimSpace(rest)
		}
		return strings.TrimSpace(auth)
	}

	if token := header.Get("X-Auth-Token"); token != "" {
		return token
	}

	return query.Get("token")
}

// Authenticator compares presented credentials against the configured
// shared secret.
type Authenticator struct {
	secret string
}

// New creates an Authenticator. An empty secret enables open mode, in
// which every connection is authorized.
func New(secret string) *Authenticator {
	return &Authenticator{secret: secret}
}

// Open reports whether authentication is disabled.
func (a *Authenticator) Open() bool {
	return a.secret == ""
}

// Authorize extracts the credential from the request and compares it to
// the shared secret. The comparison is constant-time.
func (a *Authenticator) Authorize(header http.Header, query url.Values) bool {
	if a.Open() {
		return true
	}
	provided := Extract(header, query)
	return subtle.ConstantTimeCompare([]byte(provided), []byte(a.secret)) == 1
}
