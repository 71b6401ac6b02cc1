package proxy

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseWriterDefaultsTo200(t *testing.T) {
	w := NewResponseWriter(httptest.NewRequest(http.MethodGet, "/", nil), nil)
	if got := w.Status(); got != http.StatusOK {
		t.Errorf("Status() = %d, want 200", got)
	}
}

func TestResponseWriterImplicitHeaderOnWrite(t *testing.T) {
	w := NewResponseWriter(httptest.NewRequest(http.MethodGet, "/", nil), nil)
	if _, err := w.Write([]byte("body")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := w.Status(); got != http.StatusOK {
		t.Errorf("Status() after Write = %d, want 200", got)
	}
	if got := string(w.Body()); got != "body" {
		t.Errorf("Body() = %q, want %q", got, "body")
	}
}

func TestResponseWriterFirstWriteHeaderWins(t *testing.T) {
	w := NewResponseWriter(httptest.NewRequest(http.MethodGet, "/", nil), nil)
	w.WriteHeader(http.StatusCreated)
	w.WriteHeader(http.StatusTeapot)
	if got := w.Status(); got != http.StatusCreated {
		t.Errorf("Status() = %d, want 201", got)
	}
}

func TestResponseWriterSetStatusOverrides(t *testing.T) {
	w := NewResponseWriter(httptest.NewRequest(http.MethodGet, "/", nil), nil)
	w.WriteHeader(http.StatusOK)
	w.SetStatus(http.StatusNotFound)
	if got := w.Status(); got != http.StatusNotFound {
		t.Errorf("Status() = %d, want 404", got)
	}
}

func TestResponseWriterReleaseClosesLatchOnce(t *testing.T) {
	latch := make(chan struct{})
	w := NewResponseWriter(httptest.NewRequest(http.MethodGet, "/", nil), latch)

	w.Release()
	w.Release() // second call must not panic on a closed channel

	select {
	case <-latch:
	default:
		t.Error("latch not closed after Release")
	}
}

func TestResponseWriterNilLatch(t *testing.T) {
	w := NewResponseWriter(httptest.NewRequest(http.MethodGet, "/", nil), nil)
	w.Release() // must not panic
}
