package apiclient

import (
	"encoding/json"
	"encoding/xml"
	"mime"
	"strings"

	"github.com/ansel1/merry"
)

// Request bodies which are not a string, []byte or io.Reader go through the client's
// Marshaler.  Typed calls decode response bodies with the client's Unmarshaler, which
// is how a client for an API with its own encoding plugs in its decoding step.
//
// Clients without one fall back on DefaultMarshaler (JSON) and DefaultUnmarshaler, a
// MultiUnmarshaler which picks a decoder from the response's Content-Type.

// DefaultMarshaler is used by Client if Client.Marshaler is nil.
// nolint:gochecknoglobals
var DefaultMarshaler Marshaler = &JSONMarshaler{}

// DefaultUnmarshaler is used by Client if Client.Unmarshaler is nil.
// nolint:gochecknoglobals
var DefaultUnmarshaler Unmarshaler = &MultiUnmarshaler{}

const (
	contentTypeForm = MediaTypeForm + "; charset=UTF-8"
	contentTypeXML  = MediaTypeXML + "; charset=UTF-8"
	contentTypeJSON = MediaTypeJSON + "; charset=UTF-8"
)

// Marshaler encodes a request body.  A non-empty contentType is sent as the
// request's Content-Type, unless the client's headers already set one.
type Marshaler interface {
	Marshal(v interface{}) (data []byte, contentType string, err error)
}

// Unmarshaler decodes a response body into v.  contentType is the response's
// Content-Type header, and may be empty.
type Unmarshaler interface {
	Unmarshal(data []byte, contentType string, v interface{}) error
}

// MarshalFunc adapts a function to Marshaler.  It is also an Option which installs
// itself as the client's Marshaler.
type MarshalFunc func(v interface{}) ([]byte, string, error)

// Marshal implements Marshaler.
func (f MarshalFunc) Marshal(v interface{}) ([]byte, string, error) {
	return f(v)
}

// Apply implements Option.
func (f MarshalFunc) Apply(c *Client) error {
	c.Marshaler = f
	return nil
}

// UnmarshalFunc adapts a function to Unmarshaler.  It is also an Option which
// installs itself as the client's Unmarshaler.
type UnmarshalFunc func(data []byte, contentType string, v interface{}) error

// Unmarshal implements Unmarshaler.
func (f UnmarshalFunc) Unmarshal(data []byte, contentType string, v interface{}) error {
	return f(data, contentType, v)
}

// Apply implements Option.
func (f UnmarshalFunc) Apply(c *Client) error {
	c.Unmarshaler = f
	return nil
}

func encode(v interface{}, indent bool, plain func(interface{}) ([]byte, error), indented func(interface{}, string, string) ([]byte, error)) ([]byte, error) {
	if indent {
		return indented(v, "", "  ")
	}
	return plain(v)
}

// JSONMarshaler encodes and decodes JSON bodies.
//
//     c, _ := apiclient.New(doer, &apiclient.JSONMarshaler{Indent: true})
//
type JSONMarshaler struct {
	Indent bool
}

// Marshal implements Marshaler.
func (m *JSONMarshaler) Marshal(v interface{}) ([]byte, string, error) {
	data, err := encode(v, m.Indent, json.Marshal, json.MarshalIndent)
	if err != nil {
		return nil, "", merry.Prepend(err, "encoding json")
	}
	return data, contentTypeJSON, nil
}

// Unmarshal implements Unmarshaler.
func (m *JSONMarshaler) Unmarshal(data []byte, _ string, v interface{}) error {
	return merry.Prepend(json.Unmarshal(data, v), "decoding json")
}

// Apply implements Option, installing m as the client's Marshaler.
func (m *JSONMarshaler) Apply(c *Client) error {
	c.Marshaler = m
	return nil
}

// XMLMarshaler encodes and decodes XML bodies.
type XMLMarshaler struct {
	Indent bool
}

// Marshal implements Marshaler.
func (m *XMLMarshaler) Marshal(v interface{}) ([]byte, string, error) {
	data, err := encode(v, m.Indent, xml.Marshal, xml.MarshalIndent)
	if err != nil {
		return nil, "", merry.Prepend(err, "encoding xml")
	}
	return data, contentTypeXML, nil
}

// Unmarshal implements Unmarshaler.
func (m *XMLMarshaler) Unmarshal(data []byte, _ string, v interface{}) error {
	return merry.Prepend(xml.Unmarshal(data, v), "decoding xml")
}

// Apply implements Option, installing m as the client's Marshaler.
func (m *XMLMarshaler) Apply(c *Client) error {
	c.Marshaler = m
	return nil
}

// FormMarshaler encodes url-encoded form bodies, from a map[string][]string,
// map[string]string, url.Values, or a struct with `url` tags.  It does not decode.
type FormMarshaler struct{}

// Marshal implements Marshaler.
func (*FormMarshaler) Marshal(v interface{}) ([]byte, string, error) {
	values, err := toValues(v)
	if err != nil {
		return nil, "", merry.Prepend(err, "invalid form struct")
	}
	return []byte(values.Encode()), contentTypeForm, nil
}

// Apply implements Option, installing m as the client's Marshaler.
func (m *FormMarshaler) Apply(c *Client) error {
	c.Marshaler = m
	return nil
}

// MultiUnmarshaler picks an Unmarshaler by the media type of the response's
// Content-Type, ignoring its parameters.
//
// Media types are looked up in Unmarshalers first, then in the built-in table:
// application/json and application/xml, text/xml, and any structured syntax suffix
// type such as application/problem+json or application/atom+xml.  A response without
// a Content-Type is decoded with Default, or as JSON if Default is nil.  Other media
// types fail.
//
// MultiUnmarshaler is the default Unmarshaler.
type MultiUnmarshaler struct {
	// Unmarshalers maps media types, like "application/cbor", to their Unmarshaler.
	Unmarshalers map[string]Unmarshaler

	// Default decodes bodies of responses with no Content-Type.
	Default Unmarshaler
}

// nolint:gochecknoglobals
var builtinUnmarshalers = map[string]Unmarshaler{
	MediaTypeJSON: &JSONMarshaler{},
	MediaTypeXML:  &XMLMarshaler{},
	"text/xml":    &XMLMarshaler{},
	"+json":       &JSONMarshaler{},
	"+xml":        &XMLMarshaler{},
}

// Unmarshal implements Unmarshaler.
func (m *MultiUnmarshaler) Unmarshal(data []byte, contentType string, v interface{}) error {
	u, err := m.lookup(contentType)
	if err != nil {
		return err
	}
	return u.Unmarshal(data, contentType, v)
}

func (m *MultiUnmarshaler) lookup(contentType string) (Unmarshaler, error) {
	if strings.TrimSpace(contentType) == "" {
		if m.Default != nil {
			return m.Default, nil
		}
		return builtinUnmarshalers[MediaTypeJSON], nil
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, merry.Prependf(err, "parsing content type %q", contentType)
	}

	if u, ok := m.Unmarshalers[mediaType]; ok {
		return u, nil
	}
	if u, ok := builtinUnmarshalers[mediaType]; ok {
		return u, nil
	}
	if i := strings.LastIndexByte(mediaType, '+'); i >= 0 {
		if u, ok := builtinUnmarshalers[mediaType[i:]]; ok {
			return u, nil
		}
	}
	return nil, merry.Errorf("unsupported content type: %s", contentType)
}

// Apply implements Option, installing m as the client's Unmarshaler.
func (m *MultiUnmarshaler) Apply(c *Client) error {
	c.Unmarshaler = m
	return nil
}
