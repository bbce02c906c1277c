/*
Package apiclient is a base for typed HTTP API clients.  It runs every call through one
pipeline, so concrete clients only supply payload types and the behavior which differs
from the defaults.

	c, err := apiclient.New(http.DefaultClient,
	    apiclient.BaseURL("https://api.example.com/v1/"),
	    apiclient.BearerAuth(token),
	)
	if err != nil { return err }

	// body-less calls
	err = c.Delete(ctx, "items/42")

	// typed calls
	item, err := apiclient.GetAs[Item](ctx, c, "items/42")

	// typed calls with a transform: decode an envelope, return its payload
	id, err := apiclient.GetTransform(ctx, c, "items/42",
	    func(resp *http.Response, env Envelope) (int, error) {
	        return env.Data.ID, nil
	    })

# Pipeline

Each call goes through these steps, in order:

 1. An empty or whitespace url fails with ErrInvalidArgument, before any I/O.
 2. The url is rewritten by the client's URLFormatter (identity by default).
 3. A transport is acquired.
 4. The request is sent through the client's Middleware and the transport.
 5. The response is checked by the client's ResponseValidator.  By default, any
    non-2XX status fails with an ErrHTTPStatus error, which carries the status code
    and body.
 6. Typed calls decode the body with the client's Unmarshaler, and apply a TransformFunc.
 7. The response body is drained and closed.

Whatever fails, whatever was acquired is released.  If the context is done at any
point, the call fails with an ErrCanceled error.  Errors are never retried, logged, or
swallowed by the pipeline.

# Transports

A client either owns one transport for its lifetime:

	c, err := apiclient.New(httpClient)

...or resolves a named transport from a Factory on every call:

	c, err := apiclient.NewWithFactory(registry, apiclient.TransportName("billing"))

The clients package has a Factory which builds and pools *http.Clients from
configuration.  The httpclient package builds individual *http.Clients.

# Extension points

Concrete clients customize the pipeline with Options:

	apiclient.WithURLFormatter(signer)                // rewrite urls, e.g. to sign them
	apiclient.QueryParams(AuthParams{Token: token})   // add query params to every url
	apiclient.WithResponseValidator(mapAPIErrors)     // map responses to errors
	apiclient.WithUnmarshaler(myCodec)                // decode bodies
	apiclient.Use(apiclient.LogRequests(logger))      // transport middleware

Retries, timeouts, and rate limiting are transport concerns.  Configure them on the
transport or install them as Middleware.
*/
package apiclient
