package apiclient

import (
	"context"
	"errors"

	"github.com/ansel1/merry"
)

// Sentinel errors.  Errors returned by Client are derived from these, and can be
// tested with merry.Is():
//
//     if merry.Is(err, apiclient.ErrHTTPStatus) {
//         fmt.Println(apiclient.StatusCode(err), string(apiclient.ResponseBody(err)))
//     }
//
var (
	// ErrInvalidArgument is returned, before any I/O, when a required input
	// (url, transport, factory, transport name) is nil, empty, or whitespace.
	ErrInvalidArgument = merry.New("invalid argument")

	// ErrHTTPStatus is returned by the default ResponseValidator when the server
	// responds with a non-2XX status.  The status code and response body are
	// attached to the error.
	ErrHTTPStatus = merry.New("server returned an unsuccessful status code")

	// ErrCanceled is returned when the context passed to a call is done at any
	// point of the call.
	ErrCanceled = merry.New("request canceled")
)

type errKey int

const responseBodyKey errKey = iota

func argumentError(name string) error {
	return merry.Here(ErrInvalidArgument).Append(name + " must not be empty")
}

func canceledError(ctx context.Context) error {
	err := merry.Here(ErrCanceled)
	if cause := ctx.Err(); cause != nil {
		err = err.Append(cause.Error())
	}
	return err
}

// NewHTTPStatusError returns an error derived from ErrHTTPStatus, carrying the status
// code and the response body.  Custom ResponseValidators can use it to preserve the
// status signal while mapping responses to errors.
func NewHTTPStatusError(statusCode int, body []byte) error {
	return merry.Here(ErrHTTPStatus).
		Appendf("%d", statusCode).
		WithHTTPCode(statusCode).
		WithValue(responseBodyKey, body)
}

// StatusCode returns the status code attached to an ErrHTTPStatus error.  Returns
// 0 if err is not an ErrHTTPStatus error.
func StatusCode(err error) int {
	if !merry.Is(err, ErrHTTPStatus) {
		return 0
	}
	return merry.HTTPCode(err)
}

// ResponseBody returns the response body attached to an ErrHTTPStatus error, or nil.
func ResponseBody(err error) []byte {
	b, _ := merry.Value(err, responseBodyKey).([]byte)
	return b
}

// IsCanceled reports whether err is a cancellation: either an ErrCanceled error, or
// a raw context cancellation or deadline error.
func IsCanceled(err error) bool {
	return merry.Is(err, ErrCanceled, context.Canceled, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
