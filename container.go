package wctx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Container is the host web-server handle. It owns the router, a string-keyed
// attribute store, bootstrap params, and the lifecycle listeners notified when
// the container starts serving and when it begins shutting down.
type Container struct {
	mu        sync.RWMutex
	name      string
	addr      string
	router    *chi.Mux
	config    *Config
	logger    Logger
	health    *HealthRegistry
	params    map[string]string
	attrs     map[string]any
	listeners []LifecycleListener
	started   bool

	middlewares  []func(http.Handler) http.Handler
	routerConfig []func(*chi.Mux)
	debugRoutes  bool
}

// NewContainer builds a container, applying the provided options
// sequentially. It panics when an option returns an error.
func NewContainer(name string, opts ...Option) *Container {
	c := &Container{
		name:   name,
		addr:   ":8080",
		config: NewConfig(),
		logger: NewNoopLogger(),
		health: NewHealthRegistry(),
		params: make(map[string]string),
		attrs:  make(map[string]any),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			panic(fmt.Errorf("applying option: %w", err))
		}
	}

	c.router = chi.NewRouter()
	c.router.Use(RequestIDMiddleware)
	c.router.Use(NewRequestLogger(c.logger))
	for _, mw := range c.middlewares {
		c.router.Use(mw)
	}
	for _, configure := range c.routerConfig {
		configure(c.router)
	}

	RegisterHealthEndpoints(c.router, c.health)
	c.health.RegisterLiveness("container", func(context.Context) error { return nil })
	RegisterInfoEndpoint(c.router, c)
	RegisterDebugRoutes(c.router, c, c.debugRoutes)

	return c
}

// Name returns the container name given at construction.
func (c *Container) Name() string {
	return c.name
}

// Router exposes the container's chi router so components can mount routes.
func (c *Container) Router() chi.Router {
	return c.router
}

// Config exposes the container's bootstrap property store.
func (c *Container) Config() *Config {
	return c.config
}

// Logger returns the container logger.
func (c *Container) Logger() Logger {
	return c.logger
}

// Health exposes the registry backing the container's health endpoints.
func (c *Container) Health() *HealthRegistry {
	return c.health
}

// InitParam retrieves a bootstrap param by name.
func (c *Container) InitParam(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.params[name]
	return v, ok
}

// SetInitParam stores a bootstrap param.
func (c *Container) SetInitParam(name, value string) {
	c.mu.Lock()
	c.params[name] = value
	c.mu.Unlock()
}

// Attribute retrieves a container attribute by name.
func (c *Container) Attribute(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.attrs[name]
	return v, ok
}

// SetAttribute stores a container attribute under the given name.
func (c *Container) SetAttribute(name string, value any) {
	c.mu.Lock()
	c.attrs[name] = value
	c.mu.Unlock()
}

// RemoveAttribute deletes a container attribute.
func (c *Container) RemoveAttribute(name string) {
	c.mu.Lock()
	delete(c.attrs, name)
	c.mu.Unlock()
}

// AttributeNames returns the names of all stored attributes, sorted.
func (c *Container) AttributeNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.attrs))
	for name := range c.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddListener registers a lifecycle listener. Listeners are notified in
// registration order on start and in reverse order on stop.
func (c *Container) AddListener(listeners ...LifecycleListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range listeners {
		if l != nil {
			c.listeners = append(c.listeners, l)
		}
	}
}

// NotifyStarted dispatches the container-started notification. The first
// listener error aborts the dispatch and is returned unmodified so the host
// can refuse to serve.
func (c *Container) NotifyStarted(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return errors.New("container already started")
	}
	c.started = true
	listeners := append([]LifecycleListener(nil), c.listeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		if err := l.ContainerStarted(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// NotifyStopping dispatches the container-stopping notification in reverse
// registration order. All listeners are notified even when some fail; their
// errors are aggregated.
func (c *Container) NotifyStopping(ctx context.Context) error {
	c.mu.Lock()
	c.started = false
	listeners := append([]LifecycleListener(nil), c.listeners...)
	c.mu.Unlock()

	var aggErr error
	for i := len(listeners) - 1; i >= 0; i-- {
		if err := listeners[i].ContainerStopping(ctx, c); err != nil {
			aggErr = errors.Join(aggErr, err)
		}
	}
	return aggErr
}

// Started reports whether the container-started notification has been
// dispatched.
func (c *Container) Started() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.started
}
