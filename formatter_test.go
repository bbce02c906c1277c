package apiclient

import (
	"context"
	"net/url"
	"testing"

	"github.com/ansel1/merry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityFormatter(t *testing.T) {
	u, err := IdentityFormatter.FormatURL(testCtx, "http://test.com/a?b=c")
	require.NoError(t, err)
	assert.Equal(t, "http://test.com/a?b=c", u)
}

func TestBaseURLFormatter(t *testing.T) {
	f, err := BaseURLFormatter("http://test.com/api/")
	require.NoError(t, err)

	tests := []struct {
		in, out string
	}{
		{"users/bob", "http://test.com/api/users/bob"},
		{"/users/bob", "http://test.com/users/bob"},
		{"http://b.io/users", "http://b.io/users"},
		{"users?active=true", "http://test.com/api/users?active=true"},
	}
	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			u, err := f.FormatURL(testCtx, test.in)
			require.NoError(t, err)
			assert.Equal(t, test.out, u)
		})
	}

	_, err = f.FormatURL(testCtx, "%zz")
	require.Error(t, err)

	_, err = BaseURLFormatter("://bad")
	require.Error(t, err)
}

func TestQueryParamsFormatter(t *testing.T) {
	type authParams struct {
		Token string `url:"access_token"`
	}

	tests := []struct {
		name   string
		params []interface{}
		in     string
		want   url.Values
	}{
		{
			name:   "struct",
			params: []interface{}{authParams{Token: "abc"}},
			in:     "http://test.com/users",
			want:   url.Values{"access_token": {"abc"}},
		},
		{
			name:   "merged with existing",
			params: []interface{}{map[string]string{"color": "red"}},
			in:     "http://test.com/users?size=big",
			want:   url.Values{"color": {"red"}, "size": {"big"}},
		},
		{
			name:   "multiple",
			params: []interface{}{url.Values{"color": {"red", "blue"}}, map[string][]string{"size": {"big"}}, nil},
			in:     "http://test.com/users",
			want:   url.Values{"color": {"red", "blue"}, "size": {"big"}},
		},
		{
			name:   "none",
			params: nil,
			in:     "http://test.com/users?size=big",
			want:   url.Values{"size": {"big"}},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f, err := QueryParamsFormatter(test.params...)
			require.NoError(t, err)

			out, err := f.FormatURL(testCtx, test.in)
			require.NoError(t, err)

			u, err := url.Parse(out)
			require.NoError(t, err)
			assert.Equal(t, "/users", u.Path)
			assert.Equal(t, test.want, u.Query())
		})
	}

	_, err := QueryParamsFormatter(42)
	require.Error(t, err)
}

func TestChainFormatters(t *testing.T) {
	base, err := BaseURLFormatter("http://test.com/api/")
	require.NoError(t, err)
	params, err := QueryParamsFormatter(map[string]string{"token": "abc"})
	require.NoError(t, err)

	f := ChainFormatters(base, nil, params)
	u, err := f.FormatURL(testCtx, "users")
	require.NoError(t, err)
	assert.Equal(t, "http://test.com/api/users?token=abc", u)

	boom := merry.New("boom")
	f = ChainFormatters(base, URLFormatterFunc(func(context.Context, string) (string, error) {
		return "", boom
	}), params)
	_, err = f.FormatURL(testCtx, "users")
	assert.True(t, merry.Is(err, boom))
}

func TestBaseURL_andQueryParams(t *testing.T) {
	var i Inspector
	c := MustNew(MockDoer(200, "", ""),
		&i,
		BaseURL("http://test.com/api/"),
		QueryParams(map[string]string{"token": "abc"}),
	)

	require.NoError(t, c.Get(testCtx, "users"))
	assert.Equal(t, "http://test.com/api/users?token=abc", i.Request.URL.String())

	_, err := New(MockDoer(200, "", ""), BaseURL("://bad"))
	require.Error(t, err)

	_, err = New(MockDoer(200, "", ""), QueryParams(42))
	require.Error(t, err)
}

func TestFormatter_honorsContext(t *testing.T) {
	d := &countingDoer{status: 200}
	c := MustNew(d, URLFormatterFunc(func(ctx context.Context, rawURL string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}))

	ctx, cancel := context.WithCancel(testCtx)
	go cancel()

	err := c.Get(ctx, "users")
	assert.True(t, merry.Is(err, ErrCanceled))
	assert.Zero(t, d.Calls())
}
