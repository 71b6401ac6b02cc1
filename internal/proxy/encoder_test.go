package proxy

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResponse(t *testing.T) *ResponseWriter {
	t.Helper()
	return NewResponseWriter(httptest.NewRequest(http.MethodGet, "/", nil), nil)
}

func TestProxyEncoderHeadersAndStatus(t *testing.T) {
	w := newResponse(t)
	w.Header().Add("Set-Cookie", "a=1")
	w.Header().Add("Set-Cookie", "b=2")
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusAccepted)
	_, err := w.Write([]byte("hello"))
	require.NoError(t, err)

	resp, err := NewProxyResponseEncoder().Encode(w)
	require.NoError(t, err)

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "hello", resp.Body)
	assert.False(t, resp.IsBase64Encoded)
	assert.Equal(t, "text/plain", resp.Headers["Content-Type"])
	assert.Equal(t, []string{"a=1", "b=2"}, resp.MultiValueHeaders["Set-Cookie"])
}

func TestProxyEncoderBinaryBody(t *testing.T) {
	raw := []byte{0xff, 0xfe, 0x00, 0x01}
	w := newResponse(t)
	_, err := w.Write(raw)
	require.NoError(t, err)

	resp, err := NewProxyResponseEncoder().Encode(w)
	require.NoError(t, err)

	assert.True(t, resp.IsBase64Encoded)
	decoded, err := base64.StdEncoding.DecodeString(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

func TestHTTPAPIV2EncoderLiftsCookies(t *testing.T) {
	w := newResponse(t)
	w.Header().Add("Set-Cookie", "session=abc")
	w.Header().Add("Vary", "Accept")
	w.Header().Add("Vary", "Origin")
	w.WriteHeader(http.StatusOK)

	resp, err := NewHTTPAPIV2ResponseEncoder().Encode(w)
	require.NoError(t, err)

	assert.Equal(t, []string{"session=abc"}, resp.Cookies)
	assert.NotContains(t, resp.Headers, "Set-Cookie")
	assert.Equal(t, "Accept,Origin", resp.Headers["Vary"])
}

func TestEncodersPassStatusOverrideHeaderThrough(t *testing.T) {
	// Header().Set stores the name in Go's canonical form
	// ("X-Struts-Statuscode"); the payload must still carry the literal
	// mixed-case name external tooling looks up case-sensitively.
	w := newResponse(t)
	w.Header().Set(StatusCodeHeader, "404")
	w.SetStatus(http.StatusNotFound)

	resp, err := NewProxyResponseEncoder().Encode(w)
	require.NoError(t, err)
	assert.Equal(t, "404", resp.Headers[StatusCodeHeader])
	assert.NotContains(t, resp.Headers, http.CanonicalHeaderKey(StatusCodeHeader))
	assert.Equal(t, []string{"404"}, resp.MultiValueHeaders[StatusCodeHeader])

	v2, err := NewHTTPAPIV2ResponseEncoder().Encode(w)
	require.NoError(t, err)
	assert.Equal(t, "404", v2.Headers[StatusCodeHeader])
	assert.NotContains(t, v2.Headers, http.CanonicalHeaderKey(StatusCodeHeader))
}
