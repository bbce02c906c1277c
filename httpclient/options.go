package httpclient

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/ansel1/merry"
)

// Timeout sets the client's overall request timeout.
func Timeout(d time.Duration) Option {
	return func(b *Builder) error {
		if d < 0 {
			return merry.Errorf("negative timeout: %v", d)
		}
		b.Client().Timeout = d
		return nil
	}
}

// NoRedirects makes the client return redirect responses instead of following them.
func NoRedirects() Option {
	return func(b *Builder) error {
		b.Client().CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
		return nil
	}
}

// MaxRedirects makes the client fail after following max redirects.
func MaxRedirects(max int) Option {
	return func(b *Builder) error {
		if max < 0 {
			return merry.Errorf("negative max redirects: %d", max)
		}
		b.Client().CheckRedirect = func(_ *http.Request, via []*http.Request) error {
			if len(via) >= max {
				return merry.Errorf("stopped after max %d requests", len(via))
			}
			return nil
		}
		return nil
	}
}

// CookieJar gives the client a cookie jar.  opts may be nil.
func CookieJar(opts *cookiejar.Options) Option {
	return func(b *Builder) error {
		jar, err := cookiejar.New(opts)
		if err != nil {
			return merry.Prepend(err, "creating cookie jar")
		}
		b.Client().Jar = jar
		return nil
	}
}

// ProxyURL sends every request through the proxy at proxyURL.
func ProxyURL(proxyURL string) Option {
	return func(b *Builder) error {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return merry.Prepend(err, "invalid proxy url")
		}
		b.Transport().Proxy = http.ProxyURL(u)
		return nil
	}
}

// ProxyFunc sets the function choosing the proxy of each request.
func ProxyFunc(f func(*http.Request) (*url.URL, error)) Option {
	return func(b *Builder) error {
		b.Transport().Proxy = f
		return nil
	}
}

// MaxIdleConnsPerHost sizes the transport's idle connection pool per host.
func MaxIdleConnsPerHost(n int) Option {
	return func(b *Builder) error {
		b.Transport().MaxIdleConnsPerHost = n
		return nil
	}
}

// SkipVerify disables verification of server certificates.
func SkipVerify(skip bool) Option {
	return func(b *Builder) error {
		b.TLSConfig().InsecureSkipVerify = skip
		return nil
	}
}

// WrapTransport decorates the client's transport with f, e.g. to add tracing or
// retries.  It can be combined with the other options in any order.
func WrapTransport(f func(http.RoundTripper) http.RoundTripper) Option {
	return func(b *Builder) error {
		if f == nil {
			return merry.New("nil transport wrapper")
		}
		b.Wrap(f)
		return nil
	}
}
