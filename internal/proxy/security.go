package proxy

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// Auth schemes a SecurityContext can carry.
const (
	AuthSchemeCognito = "COGNITO_USER_POOL"
	AuthSchemeCustom  = "CUSTOM_AUTHORIZER"
	AuthSchemeIAM     = "AWS_IAM"
	AuthSchemeJWT     = "JWT"
)

// SecurityContext is the authentication context derived from the incoming
// event, visible to handlers through the request context.
type SecurityContext struct {
	Principal  string
	AuthScheme string
	Claims     map[string]interface{}
}

// Authenticated reports whether a principal was established.
func (s *SecurityContext) Authenticated() bool {
	return s != nil && s.Principal != ""
}

type securityContextKey struct{}

// WithSecurityContext binds sc into the request context. Returns a shallow
// copy of r.
func WithSecurityContext(r *http.Request, sc *SecurityContext) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), securityContextKey{}, sc))
}

// SecurityContextFrom returns the security context bound to ctx, or nil for
// anonymous requests.
func SecurityContextFrom(ctx context.Context) *SecurityContext {
	sc, _ := ctx.Value(securityContextKey{}).(*SecurityContext)
	return sc
}

// ProxySecurityContextWriter derives the security context from a v1 proxy
// event: Cognito user pool claims, custom authorizer principals, then IAM
// caller identity, in that order.
type ProxySecurityContextWriter struct{}

// NewProxySecurityContextWriter returns a writer for the proxy event shape.
func NewProxySecurityContextWriter() *ProxySecurityContextWriter {
	return &ProxySecurityContextWriter{}
}

// Write binds the derived context into the request and returns the updated
// request. Events with no identity yield an anonymous context.
func (sw *ProxySecurityContextWriter) Write(event events.APIGatewayProxyRequest, r *http.Request) *http.Request {
	sc := &SecurityContext{}
	auth := event.RequestContext.Authorizer
	switch {
	case auth != nil && auth["claims"] != nil:
		if claims, ok := auth["claims"].(map[string]interface{}); ok {
			sc.Claims = claims
			sc.AuthScheme = AuthSchemeCognito
			if sub, ok := claims["sub"].(string); ok {
				sc.Principal = sub
			}
		}
	case auth != nil && auth["principalId"] != nil:
		if principal, ok := auth["principalId"].(string); ok {
			sc.Principal = principal
			sc.AuthScheme = AuthSchemeCustom
			sc.Claims = auth
		}
	case event.RequestContext.Identity.UserArn != "":
		sc.Principal = event.RequestContext.Identity.UserArn
		sc.AuthScheme = AuthSchemeIAM
	}
	return WithSecurityContext(r, sc)
}

// HTTPAPIV2SecurityContextWriter derives the security context from a v2
// event's JWT authorizer.
type HTTPAPIV2SecurityContextWriter struct{}

// NewHTTPAPIV2SecurityContextWriter returns a writer for the v2 event shape.
func NewHTTPAPIV2SecurityContextWriter() *HTTPAPIV2SecurityContextWriter {
	return &HTTPAPIV2SecurityContextWriter{}
}

// Write binds the derived context into the request and returns the updated
// request.
func (sw *HTTPAPIV2SecurityContextWriter) Write(event events.APIGatewayV2HTTPRequest, r *http.Request) *http.Request {
	sc := &SecurityContext{}
	if auth := event.RequestContext.Authorizer; auth != nil && auth.JWT != nil {
		sc.AuthScheme = AuthSchemeJWT
		sc.Claims = make(map[string]interface{}, len(auth.JWT.Claims))
		for k, v := range auth.JWT.Claims {
			sc.Claims[k] = v
		}
		if sub, ok := auth.JWT.Claims["sub"]; ok {
			sc.Principal = sub
		}
	}
	return WithSecurityContext(r, sc)
}
