package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ansel1/merry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ResponseValidator enforces success semantics on a response, before the body is
// decoded.  It is invoked once per response.  Returning an error fails the call; the
// pipeline still closes the response.
//
// Implementations may read the response body, but if they do and the call is a typed
// call, they must replace resp.Body with a reader over the same bytes.
type ResponseValidator interface {
	ValidateResponse(ctx context.Context, resp *http.Response) error
}

// ResponseValidatorFunc adapts a function to the ResponseValidator interface.
type ResponseValidatorFunc func(ctx context.Context, resp *http.Response) error

// ValidateResponse implements ResponseValidator.
func (f ResponseValidatorFunc) ValidateResponse(ctx context.Context, resp *http.Response) error {
	return f(ctx, resp)
}

// Apply implements Option.  A ResponseValidatorFunc installs itself as the client's validator.
func (f ResponseValidatorFunc) Apply(c *Client) error {
	c.ResponseValidator = f
	return nil
}

// EnsureSuccess returns the default ResponseValidator.  It returns an ErrHTTPStatus error if the
// response's status code is not between 200 and 299.  The error carries the status code and
// the response body.
func EnsureSuccess() ResponseValidator {
	return ResponseValidatorFunc(func(_ context.Context, resp *http.Response) error {
		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			return nil
		}
		return statusError(resp)
	})
}

// ExpectCode returns a ResponseValidator which fails if the response's status code does not
// match code.  The error is an ErrHTTPStatus error.
func ExpectCode(code int) ResponseValidator {
	return ResponseValidatorFunc(func(_ context.Context, resp *http.Response) error {
		if resp.StatusCode == code {
			return nil
		}
		return merry.Appendf(statusError(resp), "expected: %d", code)
	})
}

// statusError reads what it can of the body.  A failed read is appended to the
// message, and the partial body is kept.
func statusError(resp *http.Response) error {
	body, err := readBody(resp)
	serr := NewHTTPStatusError(resp.StatusCode, body)
	if err != nil {
		return merry.Append(serr, err.Error())
	}
	return serr
}

// ObserveResponses decorates next, counting every validated response with an
// OpenTelemetry counter named "apiclient.responses".  Each measurement carries the
// status code and whether next accepted the response.  The result of next is returned
// unchanged.  A nil meter fails with an ErrInvalidArgument error.
func ObserveResponses(next ResponseValidator, meter metric.Meter) (ResponseValidator, error) {
	if meter == nil {
		return nil, argumentError("meter")
	}
	if next == nil {
		next = EnsureSuccess()
	}
	counter, err := meter.Int64Counter("apiclient.responses",
		metric.WithDescription("Responses received, by status code and outcome"),
	)
	if err != nil {
		return nil, merry.Prepend(err, "creating apiclient.responses counter")
	}

	return ResponseValidatorFunc(func(ctx context.Context, resp *http.Response) error {
		err := next.ValidateResponse(ctx, resp)
		counter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("http.status_code", strconv.Itoa(resp.StatusCode)),
			attribute.Bool("success", err == nil),
		))
		return err
	}), nil
}
