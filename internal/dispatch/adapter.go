// Package dispatch adapts a filter-dispatched web application to the
// container invocation loop. On the first invocation in a warm environment
// it registers the application's dispatch filter against the filter chain
// registry; on every invocation it forwards the request through the chain
// exactly once and applies the status override header the wrapped
// application uses to signal the real status code.
package dispatch

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.uber.org/zap"

	"github.com/strutsgo/lambda-container/internal/container"
	"github.com/strutsgo/lambda-container/internal/filterchain"
	"github.com/strutsgo/lambda-container/internal/metrics"
	"github.com/strutsgo/lambda-container/internal/proxy"
)

// StatusCodeHeader is the response header the wrapped application sets to
// override the HTTP status code. The name is a compatibility contract with
// Struts-style serverless containers; external tooling depends on it and it
// is passed through to the encoded payload untouched, under its literal
// mixed-case spelling.
const StatusCodeHeader = proxy.StatusCodeHeader

// FilterName is the fixed registration name of the dispatch filter.
const FilterName = "DispatchFilter"

// FilterFactory constructs the application's dispatch filter. It runs once
// per warm environment, during initialization, and may fail.
type FilterFactory func() (filterchain.Filter, error)

// StartupHook runs against the registry before the dispatch filter is
// installed, so applications can register their own filters or attributes
// first.
type StartupHook func(*filterchain.Context) error

// Lifecycle states of the adapter within one warm environment.
type state int32

const (
	stateUninitialized state = iota
	stateInitializing
	stateReady
)

// Adapter is the initialize-and-forward shim. It satisfies
// container.Adapter.
type Adapter struct {
	mu    sync.Mutex
	state state

	registry *filterchain.Context
	factory  FilterFactory
	startup  StartupHook
	log      *zap.SugaredLogger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithStartupHook installs a hook that runs before filter registration.
func WithStartupHook(hook StartupHook) Option {
	return func(a *Adapter) { a.startup = hook }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(a *Adapter) { a.log = log }
}

// New returns an uninitialized adapter. Construction is cheap: no I/O, no
// filter registration. The factory runs on the first invocation.
func New(factory FilterFactory, opts ...Option) *Adapter {
	a := &Adapter{
		state:    stateUninitialized,
		registry: filterchain.NewContext(),
		factory:  factory,
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Registry exposes the filter chain registry, the servlet-context analog
// shared by every invocation in the warm environment.
func (a *Adapter) Registry() *filterchain.Context { return a.registry }

// Servlet always returns nil: the wrapped application integrates through
// the filter mechanism only.
func (a *Adapter) Servlet() http.Handler { return nil }

// ContainerResponse produces a fresh response bound to the request and
// completion latch.
func (a *Adapter) ContainerResponse(r *http.Request, latch chan<- struct{}) *proxy.ResponseWriter {
	return proxy.NewResponseWriter(r, latch)
}

// HandleRequest forwards one request through the dispatch filter chain.
// The first call in a warm environment pays the cold-start cost of
// initialization; later calls skip it.
func (a *Adapter) HandleRequest(r *http.Request, w *proxy.ResponseWriter, _ *lambdacontext.LambdaContext) error {
	stop := metrics.Time(metrics.HandleRequestDuration)
	defer stop()

	a.mu.Lock()
	if a.state != stateReady {
		if err := a.initializeLocked(); err != nil {
			a.mu.Unlock()
			return err
		}
	}
	a.mu.Unlock()

	r = filterchain.BindRequest(r, a.registry)

	chain := a.registry.Chain(filterchain.DispatchRequest, r.URL.Path)
	chain.DoFilter(w, r)

	v := w.Header().Get(StatusCodeHeader)
	if v == "" {
		// direct map writes bypass canonicalization; honor the literal key too
		if vs := w.Header()[StatusCodeHeader]; len(vs) > 0 {
			v = vs[0]
		}
	}
	if v != "" {
		code, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("malformed %s header %q: %w", StatusCodeHeader, v, err)
		}
		w.SetStatus(code)
	}
	return nil
}

// Initialize registers the dispatch filter. Calling it on an adapter that
// is already ready is a no-op: the registration happens at most once per
// warm environment.
func (a *Adapter) Initialize() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initializeLocked()
}

func (a *Adapter) initializeLocked() error {
	// Ready is terminal for the life of the warm environment: a defensive
	// repeat call must not re-register the filter or regress the state.
	if a.state == stateReady {
		return nil
	}
	a.state = stateInitializing
	a.log.Infow("initializing dispatch filter")
	stop := metrics.Time(metrics.ColdStartInitDuration)
	defer stop()

	if err := a.registerLocked(); err != nil {
		a.state = stateUninitialized
		metrics.InitFailures.Inc()
		return container.NewInitializationError("could not initialize dispatch container", err)
	}

	a.state = stateReady
	a.log.Infow("dispatch filter initialized")
	return nil
}

func (a *Adapter) registerLocked() error {
	if a.startup != nil {
		if err := a.startup(a.registry); err != nil {
			return fmt.Errorf("startup hook: %w", err)
		}
	}

	filter, err := a.factory()
	if err != nil {
		return fmt.Errorf("dispatch filter construction: %w", err)
	}

	reg := a.registry.AddFilterFirst(FilterName, filter)
	if reg == nil {
		return fmt.Errorf("filter %q already registered", FilterName)
	}
	reg.AddMappingForURLPatterns(filterchain.AllDispatcherTypes, "/*")
	return nil
}
