package apiclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// Receive runs the client's pipeline for an arbitrary method, decodes the validated
// response body into a TResponse, and returns the result of applying fn to it.
//
// body may be nil.  If fn is nil, the call fails with an ErrInvalidArgument error.
//
// The body is decoded with the client's Unmarshaler, except when TResponse is []byte
// or string, in which case the raw body is used.  Decoding errors are returned as is.
// On any error, the zero value of TReturn is returned.
func Receive[TResponse, TReturn any](ctx context.Context, c *Client, method, url string, body interface{}, fn TransformFunc[TResponse, TReturn]) (TReturn, error) {
	var result TReturn
	if fn == nil {
		return result, argumentError("transform")
	}

	err := c.do(ctx, method, url, body, func(resp *http.Response) error {
		data, err := readBody(resp)
		if err != nil {
			return err
		}

		var v TResponse
		switch p := any(&v).(type) {
		case *[]byte:
			*p = data
		case *string:
			*p = string(data)
		default:
			if err := c.unmarshaler().Unmarshal(data, resp.Header.Get(HeaderContentType), &v); err != nil {
				return err
			}
		}

		// the transform gets a re-readable copy of the body.  The original is
		// still closed by do().
		raw := *resp
		raw.Body = io.NopCloser(bytes.NewReader(data))

		r, err := fn(&raw, v)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		var zero TReturn
		return zero, err
	}
	return result, nil
}

// GetAs sends a GET request and returns the response body decoded as T.
func GetAs[T any](ctx context.Context, c *Client, url string) (T, error) {
	return Receive[T, T](ctx, c, http.MethodGet, url, nil, Identity[T]())
}

// GetTransform sends a GET request, decodes the response body as TResponse, and
// returns the result of fn.
func GetTransform[TResponse, TReturn any](ctx context.Context, c *Client, url string, fn TransformFunc[TResponse, TReturn]) (TReturn, error) {
	return Receive[TResponse, TReturn](ctx, c, http.MethodGet, url, nil, fn)
}

// DeleteAs sends a DELETE request and returns the response body decoded as T.
func DeleteAs[T any](ctx context.Context, c *Client, url string) (T, error) {
	return Receive[T, T](ctx, c, http.MethodDelete, url, nil, Identity[T]())
}

// DeleteTransform sends a DELETE request, decodes the response body as TResponse, and
// returns the result of fn.
func DeleteTransform[TResponse, TReturn any](ctx context.Context, c *Client, url string, fn TransformFunc[TResponse, TReturn]) (TReturn, error) {
	return Receive[TResponse, TReturn](ctx, c, http.MethodDelete, url, nil, fn)
}

// PostAs sends request in a POST request, and returns the response body decoded as TResponse.
func PostAs[TRequest, TResponse any](ctx context.Context, c *Client, url string, request TRequest) (TResponse, error) {
	return Receive[TResponse, TResponse](ctx, c, http.MethodPost, url, request, Identity[TResponse]())
}

// PostTransform sends request in a POST request, decodes the response body as TResponse,
// and returns the result of fn.
func PostTransform[TRequest, TResponse, TReturn any](ctx context.Context, c *Client, url string, request TRequest, fn TransformFunc[TResponse, TReturn]) (TReturn, error) {
	return Receive[TResponse, TReturn](ctx, c, http.MethodPost, url, request, fn)
}
