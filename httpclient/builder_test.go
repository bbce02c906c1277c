package httpclient

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	assert.NotSame(t, http.DefaultClient, c)
	assert.Nil(t, c.Transport)

	c, err = New(nil, SkipVerify(true), nil)
	require.NoError(t, err)
	require.IsType(t, &http.Transport{}, c.Transport)
	tr := c.Transport.(*http.Transport)
	assert.NotSame(t, http.DefaultTransport, tr)
	assert.True(t, tr.TLSClientConfig.InsecureSkipVerify)
	assert.Equal(t, http.DefaultTransport.(*http.Transport).MaxIdleConns, tr.MaxIdleConns)
	assert.Nil(t, http.DefaultTransport.(*http.Transport).TLSClientConfig)
}

func TestNew_error(t *testing.T) {
	c, err := New(Timeout(time.Second), ProxyURL("://bad"))
	require.Error(t, err)
	assert.Nil(t, c)
	assert.Contains(t, err.Error(), "building http client")
	assert.Contains(t, err.Error(), "invalid proxy url")
}

func TestNew_independentClients(t *testing.T) {
	a, err := New(MaxIdleConnsPerHost(3))
	require.NoError(t, err)
	b, err := New(MaxIdleConnsPerHost(7))
	require.NoError(t, err)

	assert.NotSame(t, a.Transport, b.Transport)
	assert.Equal(t, 3, a.Transport.(*http.Transport).MaxIdleConnsPerHost)
	assert.Equal(t, 7, b.Transport.(*http.Transport).MaxIdleConnsPerHost)
}

func TestTimeout(t *testing.T) {
	c, err := New(Timeout(5 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.Timeout)

	_, err = New(Timeout(-time.Second))
	require.Error(t, err)
}

func TestMaxIdleConnsPerHost(t *testing.T) {
	c, err := New(MaxIdleConnsPerHost(12))
	require.NoError(t, err)
	assert.Equal(t, 12, c.Transport.(*http.Transport).MaxIdleConnsPerHost)
}

func TestProxyURL(t *testing.T) {
	c, err := New(ProxyURL("http://proxy.com:8080"))
	require.NoError(t, err)

	req, err := http.NewRequest("GET", "http://test.com", nil)
	require.NoError(t, err)

	u, err := c.Transport.(*http.Transport).Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "http://proxy.com:8080", u.String())
}

func TestProxyFunc(t *testing.T) {
	c, err := New(ProxyFunc(func(*http.Request) (*url.URL, error) {
		return url.Parse("http://proxy.com")
	}))
	require.NoError(t, err)

	u, err := c.Transport.(*http.Transport).Proxy(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://proxy.com", u.String())
}

func TestCookieJar(t *testing.T) {
	c, err := New(CookieJar(nil))
	require.NoError(t, err)
	assert.IsType(t, &cookiejar.Jar{}, c.Jar)
	assert.Nil(t, c.Transport)
}

func redirectServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/b", http.StatusFound)
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/c", http.StatusFound)
	})
	mux.HandleFunc("/c", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return httptest.NewServer(mux)
}

func TestNoRedirects(t *testing.T) {
	ts := redirectServer()
	defer ts.Close()

	c, err := New(NoRedirects())
	require.NoError(t, err)

	resp, err := c.Get(ts.URL + "/a")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestMaxRedirects(t *testing.T) {
	ts := redirectServer()
	defer ts.Close()

	c, err := New(MaxRedirects(1))
	require.NoError(t, err)
	_, err = c.Get(ts.URL + "/a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped after max 1 requests")

	c, err = New(MaxRedirects(3))
	require.NoError(t, err)
	resp, err := c.Get(ts.URL + "/a")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, err = New(MaxRedirects(-1))
	require.Error(t, err)
}

type countingRoundTripper struct {
	name  string
	next  http.RoundTripper
	count int
	trail *[]string
}

func (rt *countingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.count++
	if rt.trail != nil {
		*rt.trail = append(*rt.trail, rt.name)
	}
	return rt.next.RoundTrip(req)
}

func TestWrapTransport(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	var rt *countingRoundTripper
	var base http.RoundTripper
	// transport options still apply when they come after the wrapper
	c, err := New(Timeout(time.Second), WrapTransport(func(next http.RoundTripper) http.RoundTripper {
		base = next
		rt = &countingRoundTripper{next: next}
		return rt
	}), SkipVerify(true), MaxIdleConnsPerHost(4))
	require.NoError(t, err)
	assert.Same(t, rt, c.Transport)

	require.IsType(t, &http.Transport{}, base)
	assert.True(t, base.(*http.Transport).TLSClientConfig.InsecureSkipVerify)
	assert.Equal(t, 4, base.(*http.Transport).MaxIdleConnsPerHost)

	resp, err := c.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 1, rt.count)

	_, err = New(WrapTransport(nil))
	require.Error(t, err)
}

func TestWrapTransport_order(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	var trail []string
	wrap := func(name string) Option {
		return WrapTransport(func(next http.RoundTripper) http.RoundTripper {
			return &countingRoundTripper{name: name, next: next, trail: &trail}
		})
	}

	c, err := New(wrap("inner"), wrap("outer"))
	require.NoError(t, err)

	resp, err := c.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, []string{"outer", "inner"}, trail)
}
