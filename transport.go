package apiclient

import (
	"context"
	"strings"

	"github.com/ansel1/merry"
)

// DefaultTransportName is the name FactoryFunc reports as its default.
const DefaultTransportName = "default"

// Factory resolves named transports.  A Client constructed with a Factory asks it
// for a transport at the start of every call, and never keeps the result past that
// call.  The factory may hand out pooled transports it continues to own.
type Factory interface {
	// DefaultName is the name used when a client is not given one.
	DefaultName() string

	// Transport returns a transport for name.
	Transport(ctx context.Context, name string) (Doer, error)
}

// Releaser is an optional interface for a Factory.  If implemented, Release is called
// once per resolved transport, after the call using it has finished.
type Releaser interface {
	Release(name string, d Doer)
}

// FactoryFunc adapts a function to the Factory interface.  Its default name is
// DefaultTransportName.
type FactoryFunc func(ctx context.Context, name string) (Doer, error)

// DefaultName implements Factory.
func (f FactoryFunc) DefaultName() string {
	return DefaultTransportName
}

// Transport implements Factory.
func (f FactoryFunc) Transport(ctx context.Context, name string) (Doer, error) {
	return f(ctx, name)
}

type transportKind int

const (
	fixedTransport transportKind = iota + 1
	factoryTransport
)

// Transport is the strategy a Client uses to obtain its Doer.  It is either a fixed
// Doer, bound once and used for every call, or a Factory and name, resolved per call.
// The zero value is invalid.
type Transport struct {
	kind    transportKind
	doer    Doer
	factory Factory
	name    string
}

// FixedTransport returns a Transport which always uses d.
func FixedTransport(d Doer) (Transport, error) {
	if d == nil {
		return Transport{}, argumentError("transport")
	}
	return Transport{kind: fixedTransport, doer: d}, nil
}

// FactoryTransport returns a Transport which resolves the transport called name from f
// on each call.  If name is empty, f.DefaultName() is used.
func FactoryTransport(f Factory, name string) (Transport, error) {
	if f == nil {
		return Transport{}, argumentError("transport factory")
	}
	if name == "" {
		name = f.DefaultName()
	}
	if strings.TrimSpace(name) == "" {
		return Transport{}, argumentError("transport name")
	}
	return Transport{kind: factoryTransport, factory: f, name: name}, nil
}

// Name returns the name of the transport resolved from the factory, or "" for a
// fixed transport.
func (t Transport) Name() string {
	return t.name
}

// Acquire returns the Doer to use for a single call.  release must be called when the
// call is finished with the Doer, on every path.  For a fixed transport release is a no-op.
func (t Transport) Acquire(ctx context.Context) (d Doer, release func(), err error) {
	switch t.kind {
	case fixedTransport:
		return t.doer, func() {}, nil
	case factoryTransport:
		d, err = t.factory.Transport(ctx, t.name)
		if err != nil {
			return nil, nil, merry.Prependf(err, "resolving transport %q", t.name)
		}
		if d == nil {
			return nil, nil, merry.Errorf("transport factory returned no transport for %q", t.name)
		}
		if r, ok := t.factory.(Releaser); ok {
			return d, func() { r.Release(t.name, d) }, nil
		}
		return d, func() {}, nil
	}
	return nil, nil, argumentError("transport")
}
