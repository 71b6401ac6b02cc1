// Package proxy holds the request/response representations exchanged with
// the Lambda runtime and the collaborators that translate them: event
// readers, response encoders, security context writers, and exception
// handlers.
package proxy

import (
	"bytes"
	"net/http"
	"sync"
)

// ResponseWriter is the mutable in-progress response for one invocation.
// It implements http.ResponseWriter, buffers the body in memory, and closes
// its completion latch exactly once when the response is released. The
// status can be overridden after the filter chain has run, which the plain
// http.ResponseWriter contract does not allow.
type ResponseWriter struct {
	req         *http.Request
	headers     http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool

	latch chan<- struct{}
	once  sync.Once
}

// NewResponseWriter returns a fresh response bound to the request and latch.
func NewResponseWriter(r *http.Request, latch chan<- struct{}) *ResponseWriter {
	return &ResponseWriter{
		req:     r,
		headers: make(http.Header),
		latch:   latch,
	}
}

// Header returns the response header map.
func (w *ResponseWriter) Header() http.Header { return w.headers }

// Write appends to the buffered body, defaulting the status to 200 on the
// first write like net/http does.
func (w *ResponseWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.body.Write(p)
}

// WriteHeader records the status code. Only the first call wins; overrides
// after the chain has run go through SetStatus instead.
func (w *ResponseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
}

// SetStatus forcibly replaces the status code, regardless of whether the
// chain already wrote one.
func (w *ResponseWriter) SetStatus(status int) {
	w.status = status
	w.wroteHeader = true
}

// Status returns the effective status code, defaulting to 200.
func (w *ResponseWriter) Status() int {
	if !w.wroteHeader {
		return http.StatusOK
	}
	return w.status
}

// Body returns the buffered body bytes.
func (w *ResponseWriter) Body() []byte { return w.body.Bytes() }

// Request returns the request this response belongs to.
func (w *ResponseWriter) Request() *http.Request { return w.req }

// Release closes the completion latch. Safe to call more than once; only
// the first call has an effect.
func (w *ResponseWriter) Release() {
	w.once.Do(func() {
		if w.latch != nil {
			close(w.latch)
		}
	})
}
