// Package container implements the generic invocation loop shared by every
// event shape: decode the event into an *http.Request, hand it to the
// adapter for one pass through the dispatch filter chain, then encode the
// finished response into the payload the invocation caller expects.
//
// The loop owns nothing framework specific. Everything that varies is
// injected: the event reader, the response encoder, the security context
// writer, the exception handler, and the Adapter that drives the wrapped
// application.
package container

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/strutsgo/lambda-container/internal/metrics"
	"github.com/strutsgo/lambda-container/internal/proxy"
)

// RequestReader translates an invocation event into an *http.Request.
type RequestReader[E any] interface {
	Read(ctx context.Context, event E) (*http.Request, error)
}

// ResponseEncoder translates a finished response representation into the
// payload returned to the invocation caller.
type ResponseEncoder[R any] interface {
	Encode(w *proxy.ResponseWriter) (R, error)
}

// SecurityContextWriter binds an authentication context derived from the
// event into the request.
type SecurityContextWriter[E any] interface {
	Write(event E, r *http.Request) *http.Request
}

// ExceptionHandler converts an unhandled failure into a well-formed payload.
type ExceptionHandler[R any] interface {
	Handle(err error) R
}

// Adapter bridges one request/response pair into the wrapped application.
// Implementations own the one-time filter registration and the single pass
// through the chain.
type Adapter interface {
	// Initialize registers the dispatch filter. Called by the adapter's own
	// HandleRequest on the first invocation; exposed so hosts can trigger a
	// cold start eagerly.
	Initialize() error
	// ContainerResponse produces a fresh response bound to the request and
	// completion latch.
	ContainerResponse(r *http.Request, latch chan<- struct{}) *proxy.ResponseWriter
	// HandleRequest forwards one request through the dispatch filter chain.
	HandleRequest(r *http.Request, w *proxy.ResponseWriter, lctx *lambdacontext.LambdaContext) error
}

// Container is the invocation loop for one event shape pair.
type Container[E any, R any] struct {
	adapter    Adapter
	reader     RequestReader[E]
	encoder    ResponseEncoder[R]
	security   SecurityContextWriter[E]
	exceptions ExceptionHandler[R]
	log        *zap.SugaredLogger
}

// Option configures a Container.
type Option func(*settings)

type settings struct {
	log *zap.SugaredLogger
}

// WithLogger sets the logger. Defaults to a production zap logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *settings) { s.log = log }
}

func applyOptions(opts []Option) *settings {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		logger, err := zap.NewProduction()
		if err != nil {
			logger = zap.NewNop()
		}
		s.log = logger.Sugar()
	}
	return s
}

// New wires a container from explicit collaborators. Most hosts use
// NewProxyContainer or NewHTTPAPIV2Container instead.
func New[E any, R any](
	adapter Adapter,
	reader RequestReader[E],
	encoder ResponseEncoder[R],
	security SecurityContextWriter[E],
	exceptions ExceptionHandler[R],
	opts ...Option,
) *Container[E, R] {
	s := applyOptions(opts)
	return &Container[E, R]{
		adapter:    adapter,
		reader:     reader,
		encoder:    encoder,
		security:   security,
		exceptions: exceptions,
		log:        s.log,
	}
}

// NewProxyContainer wires the collaborator set for API Gateway proxy (v1)
// events.
func NewProxyContainer(adapter Adapter, opts ...Option) *Container[events.APIGatewayProxyRequest, events.APIGatewayProxyResponse] {
	s := applyOptions(opts)
	return &Container[events.APIGatewayProxyRequest, events.APIGatewayProxyResponse]{
		adapter:    adapter,
		reader:     proxy.NewProxyRequestReader(),
		encoder:    proxy.NewProxyResponseEncoder(),
		security:   proxy.NewProxySecurityContextWriter(),
		exceptions: proxy.NewProxyExceptionHandler(s.log),
		log:        s.log,
	}
}

// NewHTTPAPIV2Container wires the collaborator set for HTTP API (payload
// format 2.0) events.
func NewHTTPAPIV2Container(adapter Adapter, opts ...Option) *Container[events.APIGatewayV2HTTPRequest, events.APIGatewayV2HTTPResponse] {
	s := applyOptions(opts)
	return &Container[events.APIGatewayV2HTTPRequest, events.APIGatewayV2HTTPResponse]{
		adapter:    adapter,
		reader:     proxy.NewHTTPAPIV2RequestReader(),
		encoder:    proxy.NewHTTPAPIV2ResponseEncoder(),
		security:   proxy.NewHTTPAPIV2SecurityContextWriter(),
		exceptions: proxy.NewHTTPAPIV2ExceptionHandler(s.log),
		log:        s.log,
	}
}

// Proxy processes one invocation. Its signature is directly usable with
// lambda.Start. Failures never surface as handler errors: the exception
// handler turns them into the payload the caller sees, matching API
// Gateway's expectation of a well-formed integration response.
func (c *Container[E, R]) Proxy(ctx context.Context, event E) (R, error) {
	stop := metrics.Time(metrics.ProxyDuration)
	defer stop()

	invocationID := requestID(ctx)
	log := c.log.With("invocation_id", invocationID)

	r, err := c.reader.Read(ctx, event)
	if err != nil {
		metrics.Invocations.WithLabelValues("read_error").Inc()
		return c.exceptions.Handle(err), nil
	}
	r = c.security.Write(event, r)

	latch := make(chan struct{})
	w := c.adapter.ContainerResponse(r, latch)

	if err := c.adapter.HandleRequest(r, w, lambdaContext(ctx)); err != nil {
		metrics.Invocations.WithLabelValues("dispatch_error").Inc()
		return c.exceptions.Handle(err), nil
	}
	w.Release()

	// Completed responses win over an already-expired deadline.
	select {
	case <-latch:
	default:
		select {
		case <-latch:
		case <-ctx.Done():
			metrics.Invocations.WithLabelValues("timeout").Inc()
			log.Warnw("invocation deadline exhausted before response completed")
			return c.exceptions.Handle(context.DeadlineExceeded), nil
		}
	}

	resp, err := c.encoder.Encode(w)
	if err != nil {
		metrics.Invocations.WithLabelValues("encode_error").Inc()
		return c.exceptions.Handle(err), nil
	}
	metrics.Invocations.WithLabelValues("ok").Inc()
	log.Debugw("invocation completed", "status", w.Status())
	return resp, nil
}

func lambdaContext(ctx context.Context) *lambdacontext.LambdaContext {
	lctx, _ := lambdacontext.FromContext(ctx)
	return lctx
}

// requestID prefers the runtime-assigned request ID and falls back to a
// fresh UUID when the container runs outside Lambda, e.g. in tests or a
// local harness.
func requestID(ctx context.Context) string {
	if lctx, ok := lambdacontext.FromContext(ctx); ok && lctx.AwsRequestID != "" {
		return lctx.AwsRequestID
	}
	return uuid.NewString()
}
