package apiclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ansel1/merry"
)

// Client is the base for typed HTTP API clients.
//
// Every call made through a Client runs the same pipeline:
//
//     1. reject an empty url
//     2. rewrite the url with the URLFormatter
//     3. acquire a transport (a fixed Doer, or one resolved from a Factory)
//     4. send the request through the Middleware and the transport
//     5. check the response with the ResponseValidator
//     6. typed calls: decode the body with the Unmarshaler and apply a TransformFunc
//     7. close the response
//
// Steps are aborted as soon as one fails, but whatever was acquired is always released.
// The context is checked between steps: once it is done, the call fails with an
// ErrCanceled error.
//
// A Client is constructed with New() (fixed transport) or NewWithFactory() (named
// transport resolved on each call), and configured with Options:
//
//     c, err := apiclient.New(http.DefaultClient,
//         apiclient.BaseURL("https://api.example.com/v1/"),
//         apiclient.BearerAuth(token),
//     )
//
// Concrete clients usually embed a *Client and expose business methods built on the
// typed functions:
//
//     type ItemsClient struct{ *apiclient.Client }
//
//     func (c *ItemsClient) Item(ctx context.Context, id string) (Item, error) {
//         return apiclient.GetAs[Item](ctx, c.Client, "items/"+id)
//     }
//
// The body-less calls are methods: Get(), Delete(), Post() and Send().  The typed calls
// are generic functions, since methods can't take type parameters: GetAs(), GetTransform(),
// DeleteAs(), DeleteTransform(), PostAs(), PostTransform() and Receive().
//
// The exported fields may be set directly after construction, but must not be
// modified while calls are in flight.  The Client holds no other state, so concurrent
// calls are independent of each other.  Concurrent use of the transport is the
// transport's concern.
type Client struct {
	transport Transport

	// URLFormatter rewrites the url of every call.  Defaults to IdentityFormatter.
	URLFormatter URLFormatter

	// ResponseValidator checks every response.  Defaults to EnsureSuccess().
	ResponseValidator ResponseValidator

	// Header supplies the request headers.  If the Content-Type header
	// is explicitly set here, it will override the Content-Type header
	// supplied by the Marshaler.
	Header http.Header

	// Marshaler will be used to marshal request bodies.  It is only used if
	// the body is not a string, []byte, or io.Reader.  Defaults to
	// DefaultMarshaler, which marshals to JSON.
	Marshaler Marshaler

	// Unmarshaler decodes response bodies in the typed calls.  Defaults to
	// DefaultUnmarshaler, which unmarshals multiple content types based on
	// the Content-Type response header.
	Unmarshaler Unmarshaler

	// Middleware wraps the transport.  Middleware will be invoked in the order
	// it is in this slice.
	Middleware []Middleware

	// set by the TransportName option, consumed by NewWithFactory
	transportName *string
}

// New returns a Client which sends every call with d, applying all options.
// d is used for the lifetime of the client.
func New(d Doer, opts ...Option) (*Client, error) {
	t, err := FixedTransport(d)
	if err != nil {
		return nil, err
	}
	return NewWithTransport(t, opts...)
}

// MustNew is like New, but panics if an error occurs.
func MustNew(d Doer, opts ...Option) *Client {
	c, err := New(d, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// NewWithFactory returns a Client which resolves its transport from f on every call,
// applying all options.  The transport is resolved using f.DefaultName(), unless the
// TransportName option is passed.
func NewWithFactory(f Factory, opts ...Option) (*Client, error) {
	if f == nil {
		return nil, argumentError("transport factory")
	}
	c := &Client{}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}

	var name string
	if c.transportName != nil {
		name = *c.transportName
	}
	t, err := FactoryTransport(f, name)
	if err != nil {
		return nil, err
	}
	c.transport = t
	c.transportName = nil
	return c, nil
}

// NewWithTransport returns a Client which uses the transport strategy t.
func NewWithTransport(t Transport, opts ...Option) (*Client, error) {
	if t.kind == 0 {
		return nil, argumentError("transport")
	}
	c := &Client{transport: t}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	if c.transportName != nil {
		return nil, merry.Here(ErrInvalidArgument).Append("transport name can only be set on factory clients")
	}
	return c, nil
}

// Transport returns the client's transport strategy.
func (c *Client) Transport() Transport {
	return c.transport
}

// Headers returns the Header, initializing it if necessary.  Never returns nil.
func (c *Client) Headers() http.Header {
	if c.Header == nil {
		c.Header = http.Header{}
	}
	return c.Header
}

// Get sends a GET request to url, validates the response, and discards the body.
func (c *Client) Get(ctx context.Context, url string) error {
	return c.Send(ctx, http.MethodGet, url, nil)
}

// Delete sends a DELETE request to url, validates the response, and discards the body.
func (c *Client) Delete(ctx context.Context, url string) error {
	return c.Send(ctx, http.MethodDelete, url, nil)
}

// Post sends body to url in a POST request, validates the response, and discards
// the response body.
//
// If body is a string, []byte, or io.Reader, it is sent as is.  Any other value is
// marshaled with the client's Marshaler.
func (c *Client) Post(ctx context.Context, url string, body interface{}) error {
	return c.Send(ctx, http.MethodPost, url, body)
}

// Send sends a request with an arbitrary method, validates the response, and discards
// the response body.  body may be nil.
func (c *Client) Send(ctx context.Context, method, url string, body interface{}) error {
	return c.do(ctx, method, url, body, nil)
}

// do runs the pipeline.  If handle is not nil, it is invoked with the validated response.
// The response body, and the transport, are released before do returns, on every path.
func (c *Client) do(ctx context.Context, method, rawURL string, body interface{}, handle func(*http.Response) error) error {
	if strings.TrimSpace(rawURL) == "" {
		return argumentError("url")
	}
	if ctx.Err() != nil {
		return canceledError(ctx)
	}

	u, err := c.urlFormatter().FormatURL(ctx, rawURL)
	if err != nil {
		if ctx.Err() != nil {
			return canceledError(ctx)
		}
		return merry.Prepend(err, "formatting url")
	}
	if strings.TrimSpace(u) == "" {
		return argumentError("formatted url")
	}

	req, err := c.newRequest(ctx, method, u, body)
	if err != nil {
		return err
	}

	if ctx.Err() != nil {
		return canceledError(ctx)
	}

	doer, release, err := c.transport.Acquire(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return canceledError(ctx)
		}
		return err
	}
	defer release()

	resp, err := Wrap(doer, c.Middleware...).Do(req)
	if resp != nil && resp.Body != nil {
		defer drain(resp.Body)
	}

	switch {
	case ctx.Err() != nil:
		return canceledError(ctx)
	case err != nil:
		return merry.Prepend(err, "sending request")
	case resp == nil:
		return merry.New("transport returned a nil response")
	}

	if resp.Body == nil {
		resp.Body = http.NoBody
	}

	if err := c.responseValidator().ValidateResponse(ctx, resp); err != nil {
		if ctx.Err() != nil {
			return canceledError(ctx)
		}
		return err
	}

	if handle == nil {
		return nil
	}

	if err := handle(resp); err != nil {
		if ctx.Err() != nil {
			return canceledError(ctx)
		}
		return err
	}
	return nil
}

// newRequest returns a new http.Request.
//
// If body is a struct, it will be marshaled into the request body using
// c.Marshaler.  The Marshaler will also set the Content-Type header, unless
// this header is already explicitly set in c.Header.
func (c *Client) newRequest(ctx context.Context, method, u string, body interface{}) (*http.Request, error) {
	bodyData, ct, err := c.getRequestBody(body)
	if err != nil {
		return nil, merry.Prepend(err, "marshaling request body")
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyData)
	if err != nil {
		return nil, merry.Prepend(err, "creating request")
	}

	// if we marshaled the body, use our content type
	if ct != "" {
		req.Header.Set(HeaderContentType, ct)
	}

	// requests get their own copies of the values, since middleware may add to them
	for k, v := range c.Header {
		req.Header[k] = append([]string(nil), v...)
	}

	return req, nil
}

// getRequestBody returns the io.Reader which should be used as the body
// of a new request.
func (c *Client) getRequestBody(body interface{}) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		return v, "", nil
	case string:
		return strings.NewReader(v), "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	default:
		marshaler := c.Marshaler
		if marshaler == nil {
			marshaler = DefaultMarshaler
		}
		b, ct, err := marshaler.Marshal(body)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(b), ct, nil
	}
}

func (c *Client) urlFormatter() URLFormatter {
	if c.URLFormatter == nil {
		return IdentityFormatter
	}
	return c.URLFormatter
}

func (c *Client) responseValidator() ResponseValidator {
	if c.ResponseValidator == nil {
		return EnsureSuccess()
	}
	return c.ResponseValidator
}

func (c *Client) unmarshaler() Unmarshaler {
	if c.Unmarshaler == nil {
		return DefaultUnmarshaler
	}
	return c.Unmarshaler
}

// readBody reads the whole response body.  It does not close the body.  On a read
// error, what was read so far is returned along with the error.
func readBody(resp *http.Response) ([]byte, error) {
	if resp == nil || resp.Body == nil {
		return nil, nil
	}

	// check if we have a content length hint.  Pre-sizing
	// the buffer saves time
	var cl int64
	if cls := resp.Header.Get("Content-Length"); cls != "" {
		cl, _ = strconv.ParseInt(cls, 10, 0)
	}

	if cl <= 0 {
		body, err := io.ReadAll(resp.Body)
		return body, merry.Prepend(err, "reading response body")
	}

	buf := bytes.Buffer{}
	buf.Grow(int(cl))
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return buf.Bytes(), merry.Prepend(err, "reading response body")
	}
	return buf.Bytes(), nil
}

// drain discards what is left of the body, so keepAlive connections can be reused,
// then closes it.
func drain(r io.ReadCloser) {
	defer func(r io.ReadCloser) {
		_ = r.Close()
	}(r)

	_, _ = io.Copy(io.Discard, io.LimitReader(r, 4096))
}
