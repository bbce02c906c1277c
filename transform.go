package apiclient

import "net/http"

// TransformFunc maps a validated response and its decoded body to the value returned
// to the caller.  It lets a client decode into one shape, e.g. an envelope, and return
// another, e.g. the envelope's payload.
//
// resp.Body holds the bytes already read by the client, and is closed by the
// client after the transform returns.
type TransformFunc[TResponse, TReturn any] func(resp *http.Response, v TResponse) (TReturn, error)

// Identity returns the TransformFunc which returns the decoded body unchanged.
func Identity[T any]() TransformFunc[T, T] {
	return func(_ *http.Response, v T) (T, error) {
		return v, nil
	}
}
