package apiclient

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

// Inspector is a client Option which captures requests and responses.
// It's useful for inspecting the contents of exchanges in tests.
//
// It not an efficient way to capture bodies, and keeps requests
// and responses around longer than their intended lifespan, so it
// should not be used in production code or benchmarks.
type Inspector struct {
	mu sync.Mutex

	// The last request sent by the client.
	Request *http.Request

	// The last response received by the client.
	Response *http.Response

	// The last client request body
	RequestBody *bytes.Buffer

	// The last client response body
	ResponseBody *bytes.Buffer

	// Count is the number of exchanges captured.
	Count int
}

// Clear clears the inspector's fields.
func (i *Inspector) Clear() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.RequestBody = nil
	i.ResponseBody = nil
	i.Request = nil
	i.Response = nil
	i.Count = 0
}

// Apply implements Option
func (i *Inspector) Apply(c *Client) error {
	return c.Apply(Middleware(i.Wrap))
}

// Wrap implements Middleware
func (i *Inspector) Wrap(next Doer) Doer {
	return DoerFunc(func(req *http.Request) (*http.Response, error) {
		var reqBody []byte
		// capture the body
		if req.Body != nil && req.Body != http.NoBody {
			reqBody, _ = io.ReadAll(req.Body)
			_ = req.Body.Close()
			req.Body = io.NopCloser(bytes.NewReader(reqBody))
		}

		resp, err := next.Do(req)

		var respBody []byte
		if resp != nil && resp.Body != nil {
			respBody, _ = io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			resp.Body = io.NopCloser(bytes.NewReader(respBody))
		}

		i.mu.Lock()
		defer i.mu.Unlock()
		i.Request = req
		i.RequestBody = bytes.NewBuffer(reqBody)
		i.Response = resp
		i.ResponseBody = bytes.NewBuffer(respBody)
		i.Count++

		return resp, err
	})
}
