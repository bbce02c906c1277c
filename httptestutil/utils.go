// Package httptestutil contains utilities for use in HTTP tests, particular when using
// httptest.Server.
//
// Inspect() can be used to intercept and inspect the traffic to and from an httptest.Server.
// Client() returns an apiclient.Client which sends its calls to the server.
package httptestutil

import (
	"net/http/httptest"

	"github.com/ThalesGroup/apiclient"
)

// Client creates an apiclient.Client which is pre-configured to send requests to
// the test server.  The Client is configured with the server's base URL, and
// the server's TLS certs (if using a TLS server).  Additional options are applied
// after those.
func Client(ts *httptest.Server, opts ...apiclient.Option) *apiclient.Client {
	return apiclient.MustNew(ts.Client(), append([]apiclient.Option{apiclient.BaseURL(ts.URL)}, opts...)...)
}

// Inspect installs and returns an Inspector.  The Inspector captures exchanges with the
// test server.  It's useful in tests to inspect the incoming requests and request bodies
// and the outgoing responses and response bodies.
//
// Inspect wraps and replaces the server's Handler.  It should be called after the real
// Handler has been installed.
func Inspect(ts *httptest.Server) *Inspector {
	i := NewInspector(0)
	ts.Config.Handler = i.Wrap(ts.Config.Handler)
	return i
}
