package proxy

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/awslabs/aws-lambda-go-api-proxy/core"
)

// ProxyRequestReader translates API Gateway proxy (v1) events into
// *http.Request values. The heavy lifting - path reassembly, query strings,
// multi-value headers, base64 bodies - is delegated to the aws-lambda-go-api-proxy
// core accessor.
type ProxyRequestReader struct {
	accessor core.RequestAccessor
}

// NewProxyRequestReader returns a reader for the proxy event shape.
func NewProxyRequestReader() *ProxyRequestReader {
	return &ProxyRequestReader{}
}

// Read converts the event into a request carrying ctx plus the API Gateway
// request context.
func (rd *ProxyRequestReader) Read(ctx context.Context, event events.APIGatewayProxyRequest) (*http.Request, error) {
	r, err := rd.accessor.EventToRequestWithContext(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to translate proxy event: %w", err)
	}
	return r, nil
}

// HTTPAPIV2RequestReader translates HTTP API (payload format 2.0) events
// into *http.Request values.
type HTTPAPIV2RequestReader struct {
	accessor core.RequestAccessorV2
}

// NewHTTPAPIV2RequestReader returns a reader for the HTTP API v2 event shape.
func NewHTTPAPIV2RequestReader() *HTTPAPIV2RequestReader {
	return &HTTPAPIV2RequestReader{}
}

// Read converts the event into a request carrying ctx plus the API Gateway
// v2 request context.
func (rd *HTTPAPIV2RequestReader) Read(ctx context.Context, event events.APIGatewayV2HTTPRequest) (*http.Request, error) {
	r, err := rd.accessor.EventToRequestWithContext(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to translate http api v2 event: %w", err)
	}
	return r, nil
}
