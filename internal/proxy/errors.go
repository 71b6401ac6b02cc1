package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// errorBody is the payload returned for unhandled failures.
type errorBody struct {
	Message string `json:"message"`
}

const (
	internalServerError = "Internal Server Error"
	gatewayTimeout      = "Gateway Timeout"
)

func errorPayload(err error) (int, string) {
	msg := internalServerError
	status := http.StatusBadGateway
	if errors.Is(err, context.DeadlineExceeded) {
		msg = gatewayTimeout
		status = http.StatusGatewayTimeout
	}
	body, marshalErr := json.Marshal(errorBody{Message: msg})
	if marshalErr != nil {
		return status, `{"message":"` + msg + `"}`
	}
	return status, string(body)
}

// ProxyExceptionHandler converts unhandled failures into well-formed v1
// error payloads: 502 for dispatch failures, 504 when the invocation
// deadline was exhausted.
type ProxyExceptionHandler struct {
	log *zap.SugaredLogger
}

// NewProxyExceptionHandler returns a handler logging through log.
func NewProxyExceptionHandler(log *zap.SugaredLogger) *ProxyExceptionHandler {
	return &ProxyExceptionHandler{log: log}
}

// Handle logs err and produces the error payload.
func (h *ProxyExceptionHandler) Handle(err error) events.APIGatewayProxyResponse {
	h.log.Errorw("request failed", "error", err)
	status, body := errorPayload(err)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

// HTTPAPIV2ExceptionHandler is the v2 counterpart of ProxyExceptionHandler.
type HTTPAPIV2ExceptionHandler struct {
	log *zap.SugaredLogger
}

// NewHTTPAPIV2ExceptionHandler returns a handler logging through log.
func NewHTTPAPIV2ExceptionHandler(log *zap.SugaredLogger) *HTTPAPIV2ExceptionHandler {
	return &HTTPAPIV2ExceptionHandler{log: log}
}

// Handle logs err and produces the error payload.
func (h *HTTPAPIV2ExceptionHandler) Handle(err error) events.APIGatewayV2HTTPResponse {
	h.log.Errorw("request failed", "error", err)
	status, body := errorPayload(err)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}
