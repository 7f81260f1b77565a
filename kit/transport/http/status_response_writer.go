package http

import (
	"fmt"
	"net/http"
)

// StatusResponseWriter captures the status code written to a response
// so middleware can report on it after the handler runs.
type StatusResponseWriter struct {
	statusCode    int
	responseBytes int
	http.ResponseWriter
}

func NewStatusResponseWriter(w http.ResponseWriter) *StatusResponseWriter {
	return &StatusResponseWriter{
		ResponseWriter: w,
	}
}

func (w *StatusResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.responseBytes += n
	return n, err
}

// WriteHeader writes the header and captures the status code.
func (w *StatusResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// Code returns the captured status code, defaulting to 200 when the
// handler never called WriteHeader explicitly.
func (w *StatusResponseWriter) Code() int {
	code := w.statusCode
	if code == 0 {
		// When statusCode is 0 the handler wrote the body directly and
		// the stdlib sent an implicit 200 OK.
		code = http.StatusOK
	}
	return code
}

// ResponseBytes returns the number of body bytes written so far.
func (w *StatusResponseWriter) ResponseBytes() int {
	return w.responseBytes
}

// StatusCodeClass returns the class of the http status code, e.g. "2XX".
func (w *StatusResponseWriter) StatusCodeClass() string {
	class := "XXX"
	switch w.Code() / 100 {
	case 1:
		class = "1XX"
	case 2:
		class = "2XX"
	case 3:
		class = "3XX"
	case 4:
		class = "4XX"
	case 5:
		class = "5XX"
	}
	return class
}

var _ fmt.Stringer = (*StatusResponseWriter)(nil)

func (w *StatusResponseWriter) String() string {
	return fmt.Sprintf("%d (%s), %d bytes", w.Code(), w.StatusCodeClass(), w.responseBytes)
}
