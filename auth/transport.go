package auth

import "net/http"

// HeaderTransport injects a fixed header into outgoing requests. The
// legacy CMR token header (Echo-Token) is the usual use.
type HeaderTransport struct {
	Name  string
	Value string
	Base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *HeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	name := t.Name
	if name == "" {
		name = "Authorization"
	}
	if t.Value != "" {
		clone.Header.Set(name, t.Value)
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// BearerTokenTransport injects a bearer token.
type BearerTokenTransport struct {
	Token string
	Base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *BearerTokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.Token != "" {
		clone.Header.Set("Authorization", "Bearer "+t.Token)
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}
