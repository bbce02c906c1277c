// Package clients is a registry of named *http.Client transports.
//
// A Registry builds each named client lazily from its httpclient.Config, pools it, and
// serves it to apiclient.Clients created with apiclient.NewWithFactory:
//
//     cfg, err := clients.LoadConfig("transports.yml")
//     reg, err := clients.NewRegistry(cfg, clients.WithLogger(logger))
//     c, err := apiclient.NewWithFactory(reg, apiclient.TransportName("billing"))
//
package clients

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"github.com/ThalesGroup/apiclient"
	"github.com/ThalesGroup/apiclient/httpclient"
	"github.com/ansel1/merry"
	"github.com/rs/zerolog"
)

// ErrUnknownTransport is returned when a name isn't configured in the Registry.
var ErrUnknownTransport = merry.New("unknown transport")

// Registry is an apiclient.Factory and apiclient.Releaser.  It is safe for
// concurrent use.
type Registry struct {
	mu      sync.Mutex
	cfg     Config
	clients map[string]*http.Client
	inUse   map[string]int
	opts    []httpclient.Option
	log     zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry's logger.  By default, the registry doesn't log.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) {
		r.log = l
	}
}

// WithClientOptions adds httpclient Options which are applied to every client the
// registry builds, after the settings from the client's httpclient.Config.
func WithClientOptions(opts ...httpclient.Option) Option {
	return func(r *Registry) {
		r.opts = append(r.opts, opts...)
	}
}

// NewRegistry validates the config and returns a new Registry.  No clients are
// built until they are first requested.
func NewRegistry(cfg Config, opts ...Option) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Registry{
		cfg:     cfg,
		clients: map[string]*http.Client{},
		inUse:   map[string]int{},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// DefaultName implements apiclient.Factory.
func (r *Registry) DefaultName() string {
	if r.cfg.Default == "" {
		return apiclient.DefaultTransportName
	}
	return r.cfg.Default
}

// Names returns the configured transport names, sorted.  The default name is always
// included.
func (r *Registry) Names() []string {
	names := []string{r.DefaultName()}
	for name := range r.cfg.Transports {
		if name != r.DefaultName() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Transport implements apiclient.Factory.  The client for a name is built on first
// use and reused afterward.  The default name resolves even if it isn't configured,
// to a client with default settings.
func (r *Registry) Transport(ctx context.Context, name string) (apiclient.Doer, error) {
	if err := ctx.Err(); err != nil {
		return nil, merry.Wrap(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[name]
	if !ok {
		tc, configured := r.cfg.Transports[name]
		if !configured && name != r.DefaultName() {
			return nil, merry.Here(ErrUnknownTransport).Appendf("%q", name)
		}
		var err error
		c, err = httpclient.NewFromConfig(tc, r.opts...)
		if err != nil {
			return nil, merry.Prependf(err, "building transport %q", name)
		}
		r.clients[name] = c
		r.log.Debug().
			Str("transport", name).
			Dur("timeout", tc.Timeout).
			Bool("skip_verify", tc.SkipVerify).
			Msg("transport created")
	}
	r.inUse[name]++
	return c, nil
}

// Release implements apiclient.Releaser.
func (r *Registry) Release(name string, _ apiclient.Doer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inUse[name] > 0 {
		r.inUse[name]--
	}
}

// InUse returns the number of acquisitions of the named transport which haven't been
// released yet.
func (r *Registry) InUse(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inUse[name]
}

// CloseIdleConnections closes the idle connections of every client built so far.
func (r *Registry) CloseIdleConnections() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		c.CloseIdleConnections()
	}
}
