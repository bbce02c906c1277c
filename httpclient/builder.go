// Package httpclient builds the *http.Client instances used as transports behind
// apiclient.Clients.
//
// A client is described either by a Config, usually loaded from a file, or by a list
// of Options.  Both start from a private copy of http.DefaultTransport, so building
// a client never changes global state:
//
//     c, err := httpclient.NewFromConfig(httpclient.Config{Timeout: 10 * time.Second},
//         httpclient.WrapTransport(func(next http.RoundTripper) http.RoundTripper {
//             return &retrying{next: next}
//         }),
//     )
//
package httpclient

import (
	"crypto/tls"
	"net/http"

	"github.com/ansel1/merry"
)

// Builder accumulates the settings of a client while Options run.
type Builder struct {
	client    http.Client
	transport *http.Transport
	wrappers  []func(http.RoundTripper) http.RoundTripper
}

// Option configures a client under construction.
type Option func(*Builder) error

// Client returns the client being built.  Options may set any of its fields except
// Transport, which is managed with Transport() and Wrap().
func (b *Builder) Client() *http.Client {
	return &b.client
}

// Transport returns the base transport, creating it from http.DefaultTransport on first
// use.  Options may call it in any order relative to WrapTransport.
func (b *Builder) Transport() *http.Transport {
	if b.transport == nil {
		b.transport = http.DefaultTransport.(*http.Transport).Clone()
	}
	return b.transport
}

// TLSConfig returns the base transport's TLS config, creating it if needed.
func (b *Builder) TLSConfig() *tls.Config {
	t := b.Transport()
	if t.TLSClientConfig == nil {
		t.TLSClientConfig = &tls.Config{}
	}
	return t.TLSClientConfig
}

// Wrap adds a decorator around the transport.  Decorators are applied when the client
// is built, in the order they were added, so the last one added is the outermost.
func (b *Builder) Wrap(f func(http.RoundTripper) http.RoundTripper) {
	b.wrappers = append(b.wrappers, f)
}

func (b *Builder) build() *http.Client {
	c := b.client
	if b.transport != nil {
		c.Transport = b.transport
	}
	if len(b.wrappers) > 0 {
		rt := http.RoundTripper(b.Transport())
		for _, w := range b.wrappers {
			rt = w(rt)
		}
		c.Transport = rt
	}
	return &c
}

// New builds a *http.Client from opts.  Nil options are skipped.
//
// With no options, the client behaves like http.DefaultClient and has a nil
// Transport.  Once an option touches the transport, the client gets its own copy of
// http.DefaultTransport.
func New(opts ...Option) (*http.Client, error) {
	var b Builder
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&b); err != nil {
			return nil, merry.Prepend(err, "building http client")
		}
	}
	return b.build(), nil
}

// NewFromConfig builds a *http.Client from cfg.  opts are applied after the settings
// from cfg, so they take precedence.
func NewFromConfig(cfg Config, opts ...Option) (*http.Client, error) {
	return New(append(cfg.Options(), opts...)...)
}
