package apiclient

import (
	"net/http"
	"testing"

	"github.com/ansel1/merry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Apply(t *testing.T) {
	c := MustNew(MockDoer(200, "", ""))

	require.NoError(t, c.Apply(nil, Header("X-Color", "red")))
	assert.Equal(t, "red", c.Header.Get("X-Color"))

	err := c.Apply(OptionFunc(func(*Client) error {
		return merry.New("boom")
	}), Header("X-Color", "blue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "applying options")
	assert.Equal(t, "red", c.Header.Get("X-Color"))
}

func TestHeaders(t *testing.T) {
	c := &Client{}
	assert.NotNil(t, c.Headers())

	tests := []struct {
		name string
		opts []Option
		want http.Header
	}{
		{"header", []Option{Header("X-Color", "red"), Header("X-Color", "blue")}, http.Header{"X-Color": {"blue"}}},
		{"addheader", []Option{AddHeader("X-Color", "red"), AddHeader("X-Color", "blue")}, http.Header{"X-Color": {"red", "blue"}}},
		{"deleteheader", []Option{Header("X-Color", "red"), DeleteHeader("X-Color")}, http.Header{}},
		{"basicauth", []Option{BasicAuth("user", "pass")}, http.Header{"Authorization": {"Basic dXNlcjpwYXNz"}}},
		{"basicauth empty", []Option{BasicAuth("user", "pass"), BasicAuth("", "")}, http.Header{}},
		{"bearerauth", []Option{BearerAuth("token")}, http.Header{"Authorization": {"Bearer token"}}},
		{"bearerauth empty", []Option{BearerAuth("token"), BearerAuth("")}, http.Header{}},
		{"accept", []Option{Accept(MediaTypeXML)}, http.Header{"Accept": {MediaTypeXML}}},
		{"contenttype", []Option{ContentType(MediaTypeForm)}, http.Header{"Content-Type": {MediaTypeForm}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := MustNew(MockDoer(200, "", ""), test.opts...)
			assert.Equal(t, test.want, c.Headers())
		})
	}
}

func TestDeleteHeader_nilHeader(t *testing.T) {
	c := MustNew(MockDoer(200, "", ""), DeleteHeader("X-Color"))
	assert.Empty(t, c.Header)
}

func TestJSON(t *testing.T) {
	c := MustNew(MockDoer(200, "", ""), JSON(true))
	require.IsType(t, &JSONMarshaler{}, c.Marshaler)
	assert.True(t, c.Marshaler.(*JSONMarshaler).Indent)
	assert.Same(t, c.Marshaler, c.Unmarshaler)
	assert.Equal(t, MediaTypeJSON, c.Header.Get(HeaderAccept))
}

func TestXML(t *testing.T) {
	var i Inspector
	c := MustNew(MockDoer(200, MediaTypeXML, `<testModel><color>red</color><count>30</count></testModel>`), XML(false), &i)
	assert.Equal(t, MediaTypeXML, c.Header.Get(HeaderAccept))

	m, err := PostAs[testModel, testModel](testCtx, c, "http://test.com", testModel{"blue", 3})
	require.NoError(t, err)
	assert.Equal(t, testModel{"red", 30}, m)
	assert.Equal(t, `<testModel><color>blue</color><count>3</count></testModel>`, i.RequestBody.String())
	assert.Equal(t, contentTypeXML, i.Request.Header.Get(HeaderContentType))
}

func TestForm(t *testing.T) {
	var i Inspector
	c := MustNew(MockDoer(200, "", ""), Form(), &i)

	require.NoError(t, c.Post(testCtx, "http://test.com", testModel{"red", 30}))
	assert.Equal(t, "color=red&count=30", i.RequestBody.String())
	assert.Equal(t, contentTypeForm, i.Request.Header.Get(HeaderContentType))
}

func TestWithMarshalerAndUnmarshaler(t *testing.T) {
	m := &JSONMarshaler{}
	c := MustNew(MockDoer(200, "", ""), WithMarshaler(m), WithUnmarshaler(m))
	assert.Same(t, m, c.Marshaler)
	assert.Same(t, m, c.Unmarshaler)

	require.NoError(t, c.Apply(WithMarshaler(nil), WithUnmarshaler(nil)))
	assert.Nil(t, c.Marshaler)
	assert.Equal(t, DefaultUnmarshaler, c.unmarshaler())
}

func TestWithURLFormatter(t *testing.T) {
	f, err := BaseURLFormatter("http://test.com/")
	require.NoError(t, err)

	c := MustNew(MockDoer(200, "", ""), WithURLFormatter(f))
	assert.NotNil(t, c.URLFormatter)

	require.NoError(t, c.Apply(WithURLFormatter(nil)))
	u, err := c.urlFormatter().FormatURL(testCtx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", u)
}

func TestUse(t *testing.T) {
	noop := func(next Doer) Doer { return next }
	c := MustNew(MockDoer(200, "", ""), Use(noop, noop), Use(noop))
	assert.Len(t, c.Middleware, 3)
}
