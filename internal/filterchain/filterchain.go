// Package filterchain provides an ordered, pattern-mapped filter registry
// for a single warm execution environment. It plays the role a servlet
// context plays for a container-hosted application: filters are registered
// once at startup and read-only afterward.
package filterchain

import (
	"net/http"
	"strings"
	"sync"
)

// DispatcherType describes how a request reached the chain.
type DispatcherType int

const (
	// DispatchRequest is an ordinary client request.
	DispatchRequest DispatcherType = iota
	// DispatchAsync is an asynchronous continuation of a request.
	DispatchAsync
	// DispatchInclude is a nested include of another resource.
	DispatchInclude
	// DispatchForward is an internal forward to another resource.
	DispatchForward
)

// AllDispatcherTypes lists every dispatch type a mapping can cover.
var AllDispatcherTypes = []DispatcherType{DispatchRequest, DispatchAsync, DispatchInclude, DispatchForward}

// Filter processes one request and may pass it along the chain.
type Filter interface {
	DoFilter(w http.ResponseWriter, r *http.Request, chain *Chain)
}

// FilterFunc adapts a function to the Filter interface.
type FilterFunc func(w http.ResponseWriter, r *http.Request, chain *Chain)

// DoFilter calls f.
func (f FilterFunc) DoFilter(w http.ResponseWriter, r *http.Request, chain *Chain) {
	f(w, r, chain)
}

// Wrap adapts an http.Handler into a terminal filter. The handler does not
// continue the chain: it fully owns the response.
func Wrap(h http.Handler) Filter {
	return FilterFunc(func(w http.ResponseWriter, r *http.Request, _ *Chain) {
		h.ServeHTTP(w, r)
	})
}

type mapping struct {
	types    map[DispatcherType]bool
	patterns []string
}

// Registration is a named filter plus its URL mappings.
type Registration struct {
	name     string
	filter   Filter
	mappings []mapping
}

// Name returns the name the filter was registered under.
func (reg *Registration) Name() string { return reg.name }

// AddMappingForURLPatterns maps the filter to the given URL patterns for the
// given dispatch types. Patterns follow servlet matching rules: exact paths,
// prefix patterns ending in "/*", and extension patterns starting with "*.".
func (reg *Registration) AddMappingForURLPatterns(types []DispatcherType, patterns ...string) {
	m := mapping{types: make(map[DispatcherType]bool, len(types))}
	for _, t := range types {
		m.types[t] = true
	}
	m.patterns = append(m.patterns, patterns...)
	reg.mappings = append(reg.mappings, m)
}

func (reg *Registration) matches(t DispatcherType, path string) bool {
	for _, m := range reg.mappings {
		if !m.types[t] {
			continue
		}
		for _, p := range m.patterns {
			if matchPattern(p, path) {
				return true
			}
		}
	}
	return false
}

func matchPattern(pattern, path string) bool {
	switch {
	case pattern == "/*":
		return true
	case strings.HasSuffix(pattern, "/*"):
		prefix := strings.TrimSuffix(pattern, "/*")
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(path, pattern[1:])
	default:
		return path == pattern
	}
}

// Context is the registry shared by every invocation in a warm environment.
// It is mutated only during initialization.
type Context struct {
	mu         sync.RWMutex
	filters    []*Registration
	byName     map[string]*Registration
	attributes map[string]interface{}
}

// NewContext returns an empty registry.
func NewContext() *Context {
	return &Context{
		byName:     make(map[string]*Registration),
		attributes: make(map[string]interface{}),
	}
}

// AddFilter registers f under name and returns its registration. If a filter
// with the same name is already registered it returns nil, matching servlet
// context semantics, so callers can detect a double registration.
func (c *Context) AddFilter(name string, f Filter) *Registration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byName[name]; ok {
		return nil
	}
	reg := &Registration{name: name, filter: f}
	c.byName[name] = reg
	c.filters = append(c.filters, reg)
	return reg
}

// AddFilterFirst registers f like AddFilter but places it ahead of every
// filter registered so far, so it runs before other same-path filters.
func (c *Context) AddFilterFirst(name string, f Filter) *Registration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byName[name]; ok {
		return nil
	}
	reg := &Registration{name: name, filter: f}
	c.byName[name] = reg
	c.filters = append([]*Registration{reg}, c.filters...)
	return reg
}

// FilterRegistration returns the registration for name, or nil.
func (c *Context) FilterRegistration(name string) *Registration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byName[name]
}

// SetAttribute stores an application-scoped attribute. Startup hooks use
// this to share state with handlers.
func (c *Context) SetAttribute(name string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attributes[name] = value
}

// Attribute returns an application-scoped attribute, or nil.
func (c *Context) Attribute(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.attributes[name]
}

// Chain builds the ordered chain of filters matching the dispatch type and
// request path. The chain has no downstream target: a filter that calls
// DoFilter past the last link gets a no-op.
func (c *Context) Chain(t DispatcherType, path string) *Chain {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ch := &Chain{}
	for _, reg := range c.filters {
		if reg.matches(t, path) {
			ch.filters = append(ch.filters, reg.filter)
		}
	}
	return ch
}

// Chain executes matching filters in registration order.
type Chain struct {
	filters []Filter
	pos     int
}

// DoFilter runs the next filter in the chain. Past the last filter it is a
// no-op.
func (ch *Chain) DoFilter(w http.ResponseWriter, r *http.Request) {
	if ch.pos >= len(ch.filters) {
		return
	}
	f := ch.filters[ch.pos]
	ch.pos++
	f.DoFilter(w, r, ch)
}

// Len reports how many filters matched.
func (ch *Chain) Len() int { return len(ch.filters) }
