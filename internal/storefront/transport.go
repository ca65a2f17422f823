package storefront

import "net/http"

// bearerTransport attaches the session token as a bearer credential on
// every outgoing request. Requests made before login, or after logout,
// carry no Authorization header at all.
type bearerTransport struct {
	tokens TokenSource
	base   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens != nil {
		if token := t.tokens.Token(); token != "" {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
