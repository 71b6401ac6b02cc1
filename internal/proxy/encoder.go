package proxy

import (
	"encoding/base64"
	"net/http"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
)

// StatusCodeHeader is the response header the wrapped application sets to
// override the HTTP status code. Go's header map stores the name in
// canonical form ("X-Struts-Statuscode"); the encoded payload must carry
// the literal mixed-case name because external tooling reads it from the
// JSON with a case-sensitive lookup.
const StatusCodeHeader = "X-Struts-StatusCode"

var statusCodeHeaderCanonical = http.CanonicalHeaderKey(StatusCodeHeader)

// headerName undoes Go's canonicalization for headers whose literal
// spelling is a wire contract.
func headerName(name string) string {
	if name == statusCodeHeaderCanonical {
		return StatusCodeHeader
	}
	return name
}

// ProxyResponseEncoder converts a finished ResponseWriter into the API
// Gateway proxy (v1) response payload.
type ProxyResponseEncoder struct{}

// NewProxyResponseEncoder returns an encoder for the proxy response shape.
func NewProxyResponseEncoder() *ProxyResponseEncoder {
	return &ProxyResponseEncoder{}
}

// Encode produces the v1 payload. Bodies that are not valid UTF-8 are
// base64 encoded and flagged so API Gateway decodes them for binary media
// types.
func (e *ProxyResponseEncoder) Encode(w *ResponseWriter) (events.APIGatewayProxyResponse, error) {
	body, encoded := encodeBody(w.Body())

	headers := make(map[string]string, len(w.Header()))
	multi := make(map[string][]string, len(w.Header()))
	for name, values := range w.Header() {
		if len(values) == 0 {
			continue
		}
		name = headerName(name)
		headers[name] = values[len(values)-1]
		multi[name] = append([]string(nil), values...)
	}

	return events.APIGatewayProxyResponse{
		StatusCode:        w.Status(),
		Headers:           headers,
		MultiValueHeaders: multi,
		Body:              body,
		IsBase64Encoded:   encoded,
	}, nil
}

// HTTPAPIV2ResponseEncoder converts a finished ResponseWriter into the HTTP
// API (payload format 2.0) response payload.
type HTTPAPIV2ResponseEncoder struct{}

// NewHTTPAPIV2ResponseEncoder returns an encoder for the v2 response shape.
func NewHTTPAPIV2ResponseEncoder() *HTTPAPIV2ResponseEncoder {
	return &HTTPAPIV2ResponseEncoder{}
}

// Encode produces the v2 payload. The v2 shape has no multi-value header
// map: repeated header values are comma-joined and Set-Cookie values are
// lifted into the dedicated cookies field.
func (e *HTTPAPIV2ResponseEncoder) Encode(w *ResponseWriter) (events.APIGatewayV2HTTPResponse, error) {
	body, encoded := encodeBody(w.Body())

	headers := make(map[string]string, len(w.Header()))
	var cookies []string
	for name, values := range w.Header() {
		if len(values) == 0 {
			continue
		}
		if http.CanonicalHeaderKey(name) == "Set-Cookie" {
			cookies = append(cookies, values...)
			continue
		}
		joined := values[0]
		for _, v := range values[1:] {
			joined += "," + v
		}
		headers[headerName(name)] = joined
	}

	return events.APIGatewayV2HTTPResponse{
		StatusCode:      w.Status(),
		Headers:         headers,
		Cookies:         cookies,
		Body:            body,
		IsBase64Encoded: encoded,
	}, nil
}

func encodeBody(raw []byte) (string, bool) {
	if utf8.Valid(raw) {
		return string(raw), false
	}
	return base64.StdEncoding.EncodeToString(raw), true
}
