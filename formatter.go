package apiclient

import (
	"context"
	"net/url"

	"github.com/ansel1/merry"
	goquery "github.com/google/go-querystring/query"
)

// URLFormatter rewrites the target URL of a request.  It is invoked once per call,
// before the transport is acquired, and may perform I/O (e.g. refreshing a token
// which is then added to the query string).  It should honor the context.
type URLFormatter interface {
	FormatURL(ctx context.Context, rawURL string) (string, error)
}

// URLFormatterFunc adapts a function to the URLFormatter interface.
type URLFormatterFunc func(ctx context.Context, rawURL string) (string, error)

// FormatURL implements URLFormatter.
func (f URLFormatterFunc) FormatURL(ctx context.Context, rawURL string) (string, error) {
	return f(ctx, rawURL)
}

// Apply implements Option.  A URLFormatterFunc installs itself as the client's formatter.
func (f URLFormatterFunc) Apply(c *Client) error {
	c.URLFormatter = f
	return nil
}

// IdentityFormatter is the default URLFormatter.  It returns the url unchanged.
// nolint:gochecknoglobals
var IdentityFormatter URLFormatter = URLFormatterFunc(func(_ context.Context, rawURL string) (string, error) {
	return rawURL, nil
})

// ChainFormatters returns a URLFormatter which applies each formatter in order, feeding
// the output of one into the next.  nil formatters are skipped.
func ChainFormatters(formatters ...URLFormatter) URLFormatter {
	return URLFormatterFunc(func(ctx context.Context, rawURL string) (string, error) {
		var err error
		for _, f := range formatters {
			if f == nil {
				continue
			}
			rawURL, err = f.FormatURL(ctx, rawURL)
			if err != nil {
				return "", err
			}
		}
		return rawURL, nil
	})
}

// BaseURLFormatter resolves urls as references relative to a base URL, using
// the standard lib's url.URL.ResolveReference() method.  For example:
//
//     f, _ := BaseURLFormatter("http://test.com/api/")
//     f.FormatURL(ctx, "users/bob")          // http://test.com/api/users/bob
//     f.FormatURL(ctx, "/users/bob")         // http://test.com/users/bob
//     f.FormatURL(ctx, "http://b.io/users")  // http://b.io/users
//
// Returns an error if base is not a valid URL.
func BaseURLFormatter(base string) (URLFormatter, error) {
	b, err := url.Parse(base)
	if err != nil {
		return nil, merry.Prepend(err, "invalid base url")
	}
	return URLFormatterFunc(func(_ context.Context, rawURL string) (string, error) {
		ref, err := url.Parse(rawURL)
		if err != nil {
			return "", merry.Prepend(err, "invalid url")
		}
		return b.ResolveReference(ref).String(), nil
	}), nil
}

// QueryParamsFormatter returns a URLFormatter which merges params into the query
// string of each url, in addition to any query params already encoded in the url.
// The arguments may be either map[string][]string, url.Values, or a struct.
//
// If the arg is a struct, the struct is marshaled into a url.Values object using
// the github.com/google/go-querystring/query package.  Structs should tag
// their members with the "url" tag, e.g.:
//
//     type AuthParams struct {
//         Token string `url:"access_token"`
//     }
//
// An error will be returned if marshaling the struct fails.
func QueryParamsFormatter(params ...interface{}) (URLFormatter, error) {
	merged := url.Values{}
	for _, p := range params {
		values, err := toValues(p)
		if err != nil {
			return nil, err
		}
		for key, vs := range values {
			for _, v := range vs {
				merged.Add(key, v)
			}
		}
	}

	return URLFormatterFunc(func(_ context.Context, rawURL string) (string, error) {
		if len(merged) == 0 {
			return rawURL, nil
		}
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", merry.Prepend(err, "invalid url")
		}
		existing := u.Query()
		for key, vs := range merged {
			for _, v := range vs {
				existing.Add(key, v)
			}
		}
		u.RawQuery = existing.Encode()
		return u.String(), nil
	}), nil
}

func toValues(v interface{}) (url.Values, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case map[string][]string:
		return url.Values(t), nil
	case url.Values:
		return t, nil
	case map[string]string:
		values := url.Values{}
		for key, value := range t {
			values.Set(key, value)
		}
		return values, nil
	default:
		values, err := goquery.Values(v)
		if err != nil {
			return nil, merry.Prepend(err, "invalid query struct")
		}
		return values, nil
	}
}
