package proxy

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxySecurityContextWriter(t *testing.T) {
	tests := []struct {
		name          string
		event         events.APIGatewayProxyRequest
		wantPrincipal string
		wantScheme    string
		authenticated bool
	}{
		{
			name: "cognito claims",
			event: events.APIGatewayProxyRequest{
				RequestContext: events.APIGatewayProxyRequestContext{
					Authorizer: map[string]interface{}{
						"claims": map[string]interface{}{
							"sub":   "user-123",
							"email": "user@example.com",
						},
					},
				},
			},
			wantPrincipal: "user-123",
			wantScheme:    AuthSchemeCognito,
			authenticated: true,
		},
		{
			name: "custom authorizer principal",
			event: events.APIGatewayProxyRequest{
				RequestContext: events.APIGatewayProxyRequestContext{
					Authorizer: map[string]interface{}{
						"principalId": "svc-account",
					},
				},
			},
			wantPrincipal: "svc-account",
			wantScheme:    AuthSchemeCustom,
			authenticated: true,
		},
		{
			name: "iam caller",
			event: events.APIGatewayProxyRequest{
				RequestContext: events.APIGatewayProxyRequestContext{
					Identity: events.APIGatewayRequestIdentity{
						UserArn: "arn:aws:iam::123456789012:user/deploy",
					},
				},
			},
			wantPrincipal: "arn:aws:iam::123456789012:user/deploy",
			wantScheme:    AuthSchemeIAM,
			authenticated: true,
		},
		{
			name:          "anonymous",
			event:         events.APIGatewayProxyRequest{},
			authenticated: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r = NewProxySecurityContextWriter().Write(tt.event, r)

			sc := SecurityContextFrom(r.Context())
			require.NotNil(t, sc)
			assert.Equal(t, tt.authenticated, sc.Authenticated())
			assert.Equal(t, tt.wantPrincipal, sc.Principal)
			assert.Equal(t, tt.wantScheme, sc.AuthScheme)
		})
	}
}

func TestHTTPAPIV2SecurityContextWriterJWT(t *testing.T) {
	event := events.APIGatewayV2HTTPRequest{
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			Authorizer: &events.APIGatewayV2HTTPRequestContextAuthorizerDescription{
				JWT: &events.APIGatewayV2HTTPRequestContextAuthorizerJWTDescription{
					Claims: map[string]string{"sub": "jwt-user", "scope": "read"},
				},
			},
		},
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = NewHTTPAPIV2SecurityContextWriter().Write(event, r)

	sc := SecurityContextFrom(r.Context())
	require.NotNil(t, sc)
	assert.True(t, sc.Authenticated())
	assert.Equal(t, "jwt-user", sc.Principal)
	assert.Equal(t, AuthSchemeJWT, sc.AuthScheme)
	assert.Equal(t, "read", sc.Claims["scope"])
}

func TestSecurityContextFromEmptyContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, SecurityContextFrom(r.Context()))

	var sc *SecurityContext
	assert.False(t, sc.Authenticated())
}
