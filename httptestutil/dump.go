package httptestutil

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/http/httputil"
	"os"

	"github.com/felixge/httpsnoop"
)

// DumpTo wraps an http.Handler.  It dumps requests and responses to
// a writer, using the httputil.DumpRequest and httputil.DumpResponse functions.
func DumpTo(handler http.Handler, writer io.Writer) http.Handler {
	if handler == nil {
		handler = http.DefaultServeMux
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dump, err := httputil.DumpRequest(r, true)
		if err != nil {
			_, _ = fmt.Fprintf(writer, "error dumping request: %#v", err)
		} else {
			_, _ = writer.Write(append(dump, []byte("\r\n")...))
		}

		ex := Exchange{}

		handler.ServeHTTP(httpsnoop.Wrap(w, hooks(&ex, w)), r)

		if ex.StatusCode == 0 {
			ex.StatusCode = http.StatusOK
		}

		// create a dummy response to dump
		resp := http.Response{
			Proto:         r.Proto,
			ProtoMajor:    r.ProtoMajor,
			ProtoMinor:    r.ProtoMinor,
			StatusCode:    ex.StatusCode,
			Header:        w.Header(),
			Body:          io.NopCloser(bytes.NewReader(ex.ResponseBody.Bytes())),
			ContentLength: int64(ex.ResponseBody.Len()),
		}

		d, err := httputil.DumpResponse(&resp, true)
		if err != nil {
			_, _ = fmt.Fprintf(writer, "error dumping response: %#v", err)
		} else {
			_, _ = writer.Write(append(d, []byte("\r\n")...))
		}
	})
}

// Dump writes requests and responses to the writer.
func Dump(ts *httptest.Server, to io.Writer) {
	ts.Config.Handler = DumpTo(ts.Config.Handler, to)
}

// DumpToStdout writes requests and responses to os.Stdout.
func DumpToStdout(ts *httptest.Server) {
	Dump(ts, os.Stdout)
}

type logFuncWriter struct {
	logFunc func(a ...interface{})
}

func (w logFuncWriter) Write(p []byte) (n int, err error) {
	w.logFunc(string(p))
	return len(p), nil
}

// DumpToLog writes requests and responses to a logging function.  The function
// signature is the same as testing.T.Log, so it can be used to send
// dumps to the test log output:
//
//     httptestutil.DumpToLog(ts, t.Log)
//
func DumpToLog(ts *httptest.Server, logf func(a ...interface{})) {
	Dump(ts, logFuncWriter{logFunc: logf})
}
