package apiclient

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/ansel1/merry"
)

// These are tools for writing tests.

// MockDoer creates a Doer which returns a mocked response, for writing tests.
// Each call returns a new response, built with MockResponse.
func MockDoer(statusCode int, contentType, body string) DoerFunc {
	return func(req *http.Request) (*http.Response, error) {
		resp := MockResponse(statusCode, contentType, body)
		resp.Request = req
		return resp, nil
	}
}

// ChannelDoer returns a DoerFunc and a channel.  The DoerFunc will return the responses
// sent on the channel.  If the request's context is done before a response arrives,
// the DoerFunc returns the context's error.
func ChannelDoer() (chan<- *http.Response, DoerFunc) {
	input := make(chan *http.Response, 1)

	return input, func(req *http.Request) (*http.Response, error) {
		select {
		case resp := <-input:
			resp.Request = req
			return resp, nil
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}
}

// MockResponse creates an *http.Response with the status code, content type, and
// body, and typical default values for the ProtoXXX fields.  An empty content type
// is omitted.
func MockResponse(statusCode int, contentType, body string) *http.Response {
	h := http.Header{}
	if contentType != "" {
		h.Set(HeaderContentType, contentType)
	}
	h.Set("Content-Length", strconv.Itoa(len(body)))

	return &http.Response{
		Status:        strconv.Itoa(statusCode) + " " + http.StatusText(statusCode),
		StatusCode:    statusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
	}
}

// MockFactory is a Factory which serves fixed Doers by name, for writing tests.
// Unknown names fail.  It counts resolutions and releases.  It is safe for concurrent use.
type MockFactory struct {
	mu       sync.Mutex
	Default  string
	Doers    map[string]Doer
	Resolved int
	Released int
}

// DefaultName implements Factory.
func (f *MockFactory) DefaultName() string {
	if f.Default == "" {
		return DefaultTransportName
	}
	return f.Default
}

// Transport implements Factory.
func (f *MockFactory) Transport(_ context.Context, name string) (Doer, error) {
	d, ok := f.Doers[name]
	if !ok {
		return nil, merry.Errorf("unknown transport %q", name)
	}
	f.mu.Lock()
	f.Resolved++
	f.mu.Unlock()
	return d, nil
}

// Release implements Releaser.
func (f *MockFactory) Release(string, Doer) {
	f.mu.Lock()
	f.Released++
	f.mu.Unlock()
}

// MockHandler returns an http.Handler which responds with the status code, content
// type, and body.
func MockHandler(statusCode int, contentType, body string) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		if contentType != "" {
			writer.Header().Set(HeaderContentType, contentType)
		}
		writer.WriteHeader(statusCode)
		_, _ = io.WriteString(writer, body)
	})
}
