package apiclient

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Middleware can be used to wrap Doers with additional functionality.  It is
// transport-level configuration: retries, logging, and tracing belong here,
// not in the client pipeline.
//
//     loggingMiddleware := func(next Doer) Doer {
//         return DoerFunc(func(req *http.Request) (*http.Response, error) {
//             logRequest(req)
//             return next.Do(req)
//         })
//     }
//
// Middleware can be applied to a Client with the Use() option:
//
//     c.Apply(apiclient.Use(loggingMiddleware))
//
// Middleware itself is an Option, so it can also be applied directly:
//
//     c.Apply(Middleware(loggingMiddleware))
//
type Middleware func(Doer) Doer

// Apply implements Option
func (m Middleware) Apply(c *Client) error {
	c.Middleware = append(c.Middleware, m)
	return nil
}

// Wrap applies a set of middleware to a Doer.  The returned Doer will invoke
// the middleware in the order of the arguments.
func Wrap(d Doer, m ...Middleware) Doer {
	for i := len(m) - 1; i > -1; i-- {
		d = m[i](d)
	}
	return d
}

// LogRequests logs one event per exchange to logger: the method, url, status code,
// and duration.  Exchanges which fail in the transport are logged at error level,
// non-2XX responses at warn level, and the rest at debug level.
func LogRequests(logger zerolog.Logger) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.Do(req)

			var evt *zerolog.Event
			switch {
			case err != nil:
				evt = logger.Error().Err(err)
			case resp != nil && (resp.StatusCode < 200 || resp.StatusCode > 299):
				evt = logger.Warn()
			default:
				evt = logger.Debug()
			}

			evt = evt.Str("method", req.Method).
				Str("url", req.URL.String()).
				Dur("duration", time.Since(start))
			if resp != nil {
				evt = evt.Int("status", resp.StatusCode)
			}
			if id := req.Header.Get(HeaderRequestID); id != "" {
				evt = evt.Str("request_id", id)
			}
			evt.Msg("http request")

			return resp, err
		})
	}
}

// RequestID sets the X-Request-Id header on each request to a new random UUID, unless
// the request already has one.
func RequestID() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(HeaderRequestID) == "" {
				// requests must not be modified in place
				req = req.Clone(req.Context())
				req.Header.Set(HeaderRequestID, uuid.New().String())
			}
			return next.Do(req)
		})
	}
}

// Trace starts an OpenTelemetry client span around each exchange, using a tracer from tp.
// The span records the method, url, and status code.  Transport errors and 5XX
// responses mark the span as failed.
//
// A nil tp falls back on the global provider, otel.GetTracerProvider().
func Trace(tp trace.TracerProvider) Middleware {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer("github.com/ThalesGroup/apiclient")

	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			ctx, span := tracer.Start(req.Context(), "HTTP "+req.Method,
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					attribute.String("http.request.method", req.Method),
					attribute.String("url.full", req.URL.String()),
				),
			)
			defer span.End()

			resp, err := next.Do(req.WithContext(ctx))
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return resp, err
			}
			if resp != nil {
				span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
				if resp.StatusCode >= 500 {
					span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
				}
			}
			return resp, nil
		})
	}
}
