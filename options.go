package apiclient

import (
	"encoding/base64"
	"strings"

	"github.com/ansel1/merry"
)

// HTTP constants.
const (
	HeaderAccept        = "Accept"
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-Id"

	MediaTypeJSON = "application/json"
	MediaTypeXML  = "application/xml"
	MediaTypeForm = "application/x-www-form-urlencoded"
)

// Option applies some setting to a Client.  Options are passed to the constructors,
// or applied later with Client.Apply().
type Option interface {

	// Apply modifies the Client argument.  The Client pointer will never be nil.
	// Returning an error will stop applying the rest of the Options, and the error
	// will float up to the original caller.
	Apply(*Client) error
}

// OptionFunc adapts a function to the Option interface.
type OptionFunc func(*Client) error

// Apply implements Option.
func (f OptionFunc) Apply(c *Client) error {
	return f(c)
}

// Apply applies the options to the receiver.
func (c *Client) Apply(opts ...Option) error {
	for _, o := range opts {
		if o == nil {
			continue
		}
		err := o.Apply(c)
		if err != nil {
			return merry.Prepend(err, "applying options")
		}
	}
	return nil
}

// TransportName sets the name of the transport a factory client resolves on each
// call.  It is only valid with NewWithFactory().  name must not be blank.
func TransportName(name string) Option {
	return OptionFunc(func(c *Client) error {
		if strings.TrimSpace(name) == "" {
			return argumentError("transport name")
		}
		c.transportName = &name
		return nil
	})
}

// WithURLFormatter sets Client.URLFormatter.  If nil, the client reverts
// to the IdentityFormatter.
func WithURLFormatter(f URLFormatter) Option {
	return OptionFunc(func(c *Client) error {
		c.URLFormatter = f
		return nil
	})
}

// AddURLFormatter chains f after the client's current URLFormatter.
func AddURLFormatter(f URLFormatter) Option {
	return OptionFunc(func(c *Client) error {
		if c.URLFormatter == nil {
			c.URLFormatter = f
			return nil
		}
		c.URLFormatter = ChainFormatters(c.URLFormatter, f)
		return nil
	})
}

// BaseURL resolves every url relative to base.  See BaseURLFormatter.
// The formatter is chained after any formatter already installed.
func BaseURL(base string) Option {
	return OptionFunc(func(c *Client) error {
		f, err := BaseURLFormatter(base)
		if err != nil {
			return err
		}
		return AddURLFormatter(f).Apply(c)
	})
}

// QueryParams adds params to the query string of every url.  See QueryParamsFormatter.
// The formatter is chained after any formatter already installed.
func QueryParams(params ...interface{}) Option {
	return OptionFunc(func(c *Client) error {
		f, err := QueryParamsFormatter(params...)
		if err != nil {
			return err
		}
		return AddURLFormatter(f).Apply(c)
	})
}

// WithResponseValidator sets Client.ResponseValidator.  If nil, the client
// reverts to EnsureSuccess().
func WithResponseValidator(v ResponseValidator) Option {
	return OptionFunc(func(c *Client) error {
		c.ResponseValidator = v
		return nil
	})
}

// AddHeader adds a header value, using Header.Add()
func AddHeader(key, value string) Option {
	return OptionFunc(func(c *Client) error {
		c.Headers().Add(key, value)
		return nil
	})
}

// Header sets a header value, using Header.Set()
func Header(key, value string) Option {
	return OptionFunc(func(c *Client) error {
		c.Headers().Set(key, value)
		return nil
	})
}

// DeleteHeader deletes a header key, using Header.Del()
func DeleteHeader(key string) Option {
	return OptionFunc(func(c *Client) error {
		c.Header.Del(key)
		return nil
	})
}

// BasicAuth sets the Authorization header to "Basic <encoded username and password>".
// If username and password are empty, it deletes the Authorization header.
func BasicAuth(username, password string) Option {
	if username == "" && password == "" {
		return DeleteHeader(HeaderAuthorization)
	}
	return Header(HeaderAuthorization, "Basic "+basicAuth(username, password))
}

// basicAuth returns the base64 encoded username:password for basic auth copied
// from net/http.
func basicAuth(username, password string) string {
	auth := username + ":" + password
	return base64.StdEncoding.EncodeToString([]byte(auth))
}

// BearerAuth sets the Authorization header to "Bearer <token>".
// If the token is empty, it deletes the Authorization header.
func BearerAuth(token string) Option {
	if token == "" {
		return DeleteHeader(HeaderAuthorization)
	}
	return Header(HeaderAuthorization, "Bearer "+token)
}

// Accept sets the Accept header.
func Accept(accept string) Option {
	return Header(HeaderAccept, accept)
}

// ContentType sets the Content-Type header.
func ContentType(contentType string) Option {
	return Header(HeaderContentType, contentType)
}

// WithMarshaler sets Client.Marshaler
func WithMarshaler(m Marshaler) Option {
	return OptionFunc(func(c *Client) error {
		c.Marshaler = m
		return nil
	})
}

// WithUnmarshaler sets Client.Unmarshaler
func WithUnmarshaler(m Unmarshaler) Option {
	return OptionFunc(func(c *Client) error {
		c.Unmarshaler = m
		return nil
	})
}

func joinOpts(opts ...Option) Option {
	return OptionFunc(func(c *Client) error {
		for _, opt := range opts {
			err := opt.Apply(c)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// JSON sets Client.Marshaler and Client.Unmarshaler to the JSONMarshaler.
// If the arg is true, the generated JSON will be indented.
// The Accept header is set to "application/json".
func JSON(indent bool) Option {
	m := &JSONMarshaler{Indent: indent}
	return joinOpts(
		WithMarshaler(m),
		WithUnmarshaler(m),
		Accept(MediaTypeJSON),
	)
}

// XML sets Client.Marshaler and Client.Unmarshaler to the XMLMarshaler.
// If the arg is true, the generated XML will be indented.
// The Accept header is set to "application/xml".
func XML(indent bool) Option {
	m := &XMLMarshaler{Indent: indent}
	return joinOpts(
		WithMarshaler(m),
		WithUnmarshaler(m),
		Accept(MediaTypeXML),
	)
}

// Form sets Client.Marshaler to the FormMarshaler,
// which marshals the body into form-urlencoded.
func Form() Option {
	return WithMarshaler(&FormMarshaler{})
}

// Use appends middleware to Client.Middleware.  Middleware
// is invoked in the order added.
func Use(m ...Middleware) Option {
	return OptionFunc(func(c *Client) error {
		c.Middleware = append(c.Middleware, m...)
		return nil
	})
}
