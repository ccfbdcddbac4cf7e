package wctx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/peregrinepk/wctx/events"
)

// Topics published on the context event bus.
const (
	TopicContextRefreshed = "context.refreshed"
	TopicContextClosed    = "context.closed"
)

// Initializer customizes a not-yet-refreshed application context before the
// loader refreshes it.
type Initializer interface {
	Initialize(ctx context.Context, appctx *AppContext) error
}

// InitializerFunc adapts a function into an Initializer.
type InitializerFunc func(ctx context.Context, appctx *AppContext) error

func (f InitializerFunc) Initialize(ctx context.Context, appctx *AppContext) error {
	if f == nil {
		return nil
	}
	return f(ctx, appctx)
}

// Ordered lets initializers declare a priority; lower values run first.
// Initializers without a priority run last among equals, preserving
// registration order.
type Ordered interface {
	Order() int
}

func sortInitializers(initializers []Initializer) []Initializer {
	sorted := append([]Initializer(nil), initializers...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return initializerOrder(sorted[i]) < initializerOrder(sorted[j])
	})
	return sorted
}

func initializerOrder(init Initializer) int {
	if ordered, ok := init.(Ordered); ok {
		return ordered.Order()
	}
	return 0
}

type namedComponent struct {
	name  string
	value any
}

// AppContext is the root application context: a named component registry with
// a refresh/close lifecycle. Refreshing mounts route registrars on the
// container router, starts startable components with rollback on failure, and
// wires component health probes. Closing stops components in reverse order.
type AppContext struct {
	mu          sync.RWMutex
	id          string
	name        string
	parent      *AppContext
	container   *Container
	config      *Config
	logger      Logger
	bus         *events.Bus
	components  []namedComponent
	byName      map[string]any
	stopFns     []func(context.Context) error
	refreshed   bool
	closed      bool
	refreshedAt time.Time
}

// ContextOption mutates the AppContext during construction.
type ContextOption func(*AppContext)

// WithParent links a parent context for hierarchical lookups.
func WithParent(parent *AppContext) ContextOption {
	return func(appctx *AppContext) {
		appctx.parent = parent
	}
}

// WithContextLogger installs the logger used for context lifecycle logs.
func WithContextLogger(logger Logger) ContextOption {
	return func(appctx *AppContext) {
		if logger != nil {
			appctx.logger = logger
		}
	}
}

// WithContextConfig seeds the context property store. When unset, the loader
// derives one from the container's bootstrap sources.
func WithContextConfig(cfg *Config) ContextOption {
	return func(appctx *AppContext) {
		appctx.config = cfg
	}
}

// WithEventBus replaces the in-process bus used for lifecycle events.
func WithEventBus(bus *events.Bus) ContextOption {
	return func(appctx *AppContext) {
		if bus != nil {
			appctx.bus = bus
		}
	}
}

// NewAppContext builds an empty application context with the given name.
func NewAppContext(name string, opts ...ContextOption) *AppContext {
	appctx := &AppContext{
		name:   name,
		logger: NewNoopLogger(),
		bus:    events.NewBus(),
		byName: make(map[string]any),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(appctx)
		}
	}
	return appctx
}

// ID returns the context identifier. The loader assigns a uuid when none was
// set before refresh.
func (appctx *AppContext) ID() string {
	appctx.mu.RLock()
	defer appctx.mu.RUnlock()
	return appctx.id
}

// SetID assigns the context identifier. It has no effect after refresh.
func (appctx *AppContext) SetID(id string) {
	appctx.mu.Lock()
	defer appctx.mu.Unlock()
	if appctx.refreshed {
		return
	}
	appctx.id = id
}

// ContextName returns the name given at construction.
func (appctx *AppContext) ContextName() string {
	appctx.mu.RLock()
	defer appctx.mu.RUnlock()
	return appctx.name
}

// Parent returns the parent context, if any.
func (appctx *AppContext) Parent() *AppContext {
	appctx.mu.RLock()
	defer appctx.mu.RUnlock()
	return appctx.parent
}

// Container returns the container this context is attached to, if any.
func (appctx *AppContext) Container() *Container {
	appctx.mu.RLock()
	defer appctx.mu.RUnlock()
	return appctx.container
}

// SetContainer attaches the container handle. It has no effect after refresh.
func (appctx *AppContext) SetContainer(c *Container) {
	appctx.mu.Lock()
	defer appctx.mu.Unlock()
	if appctx.refreshed {
		return
	}
	appctx.container = c
}

// Config returns the context property store.
func (appctx *AppContext) Config() *Config {
	appctx.mu.RLock()
	defer appctx.mu.RUnlock()
	return appctx.config
}

// ConfigUnset reports whether no property store has been assigned yet.
func (appctx *AppContext) ConfigUnset() bool {
	appctx.mu.RLock()
	defer appctx.mu.RUnlock()
	return appctx.config == nil
}

// SetConfig assigns the context property store. It has no effect after
// refresh.
func (appctx *AppContext) SetConfig(cfg *Config) {
	appctx.mu.Lock()
	defer appctx.mu.Unlock()
	if appctx.refreshed {
		return
	}
	appctx.config = cfg
}

// Bus exposes the context event bus.
func (appctx *AppContext) Bus() *events.Bus {
	appctx.mu.RLock()
	defer appctx.mu.RUnlock()
	return appctx.bus
}

// Register adds a named component. Components must be registered before the
// context refreshes; duplicate names are rejected.
func (appctx *AppContext) Register(name string, component any) error {
	if name == "" {
		return errors.New("appctx: component name required")
	}
	if component == nil {
		return fmt.Errorf("appctx: nil component %q", name)
	}

	appctx.mu.Lock()
	defer appctx.mu.Unlock()

	if appctx.refreshed {
		return fmt.Errorf("appctx: cannot register %q: context already refreshed", name)
	}
	if _, exists := appctx.byName[name]; exists {
		return fmt.Errorf("appctx: component %q already registered", name)
	}

	appctx.components = append(appctx.components, namedComponent{name: name, value: component})
	appctx.byName[name] = component
	return nil
}

// Lookup retrieves a component by name, falling back to the parent context
// when not found locally.
func (appctx *AppContext) Lookup(name string) (any, bool) {
	appctx.mu.RLock()
	component, ok := appctx.byName[name]
	parent := appctx.parent
	appctx.mu.RUnlock()

	if ok {
		return component, true
	}
	if parent != nil {
		return parent.Lookup(name)
	}
	return nil, false
}

// MustLookup retrieves a component by name and panics when absent.
func (appctx *AppContext) MustLookup(name string) any {
	component, ok := appctx.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("appctx: unknown component %q", name))
	}
	return component
}

// ComponentNames returns component names in registration order.
func (appctx *AppContext) ComponentNames() []string {
	appctx.mu.RLock()
	defer appctx.mu.RUnlock()
	names := make([]string, 0, len(appctx.components))
	for _, component := range appctx.components {
		names = append(names, component.name)
	}
	return names
}

// Refresh activates the context: route registrars are mounted on the
// container router, health reporters are wired into the container registry,
// and startable components start in registration order. When a start fails,
// components already started are stopped in reverse order before the error is
// returned.
func (appctx *AppContext) Refresh(ctx context.Context) error {
	appctx.mu.Lock()
	if appctx.closed {
		appctx.mu.Unlock()
		return errors.New("appctx: context closed")
	}
	if appctx.refreshed {
		appctx.mu.Unlock()
		return errors.New("appctx: context already refreshed")
	}
	components := append([]namedComponent(nil), appctx.components...)
	container := appctx.container
	logger := appctx.logger
	appctx.mu.Unlock()

	var stops []func(context.Context) error
	for _, component := range components {
		if rr, ok := component.value.(RouteRegistrar); ok && container != nil {
			rr.RegisterRoutes(container.Router())
		}
		if hr, ok := component.value.(HealthReporter); ok && container != nil {
			container.Health().RegisterChecks(hr.HealthChecks())
		}
		if startable, ok := component.value.(Startable); ok {
			if err := startable.Start(ctx); err != nil {
				logger.Error("component start failed", "component", component.name, "error", err)
				rollback(stops, logger)
				return fmt.Errorf("appctx: starting %q: %w", component.name, err)
			}
			logger.Debug("component started", "component", component.name)
		}
		if stoppable, ok := component.value.(Stoppable); ok {
			stops = append(stops, stoppable.Stop)
		}
	}

	appctx.mu.Lock()
	appctx.stopFns = stops
	appctx.refreshed = true
	appctx.refreshedAt = time.Now().UTC()
	appctx.mu.Unlock()

	appctx.publishEvent(ctx, TopicContextRefreshed)
	return nil
}

// Close deactivates the context, stopping components in reverse registration
// order and aggregating their errors. Closing twice is a no-op.
func (appctx *AppContext) Close(ctx context.Context) error {
	appctx.mu.Lock()
	if appctx.closed {
		appctx.mu.Unlock()
		return nil
	}
	appctx.closed = true
	stops := appctx.stopFns
	appctx.stopFns = nil
	logger := appctx.logger
	appctx.mu.Unlock()

	var aggErr error
	for i := len(stops) - 1; i >= 0; i-- {
		if err := stops[i](ctx); err != nil {
			logger.Error("component stop failed", "index", i, "error", err)
			aggErr = errors.Join(aggErr, err)
		}
	}

	appctx.publishEvent(ctx, TopicContextClosed)
	return aggErr
}

// Refreshed reports whether the context has been refreshed.
func (appctx *AppContext) Refreshed() bool {
	appctx.mu.RLock()
	defer appctx.mu.RUnlock()
	return appctx.refreshed
}

// Active reports whether the context has been refreshed and not yet closed.
func (appctx *AppContext) Active() bool {
	appctx.mu.RLock()
	defer appctx.mu.RUnlock()
	return appctx.refreshed && !appctx.closed
}

// RefreshedAt returns the refresh timestamp, zero when not refreshed.
func (appctx *AppContext) RefreshedAt() time.Time {
	appctx.mu.RLock()
	defer appctx.mu.RUnlock()
	return appctx.refreshedAt
}

func (appctx *AppContext) publishEvent(ctx context.Context, topic string) {
	appctx.mu.RLock()
	bus := appctx.bus
	id := appctx.id
	name := appctx.name
	logger := appctx.logger
	appctx.mu.RUnlock()

	if bus == nil {
		return
	}
	payload, err := json.Marshal(map[string]string{"context_id": id, "context_name": name})
	if err != nil {
		return
	}
	if err := bus.Publish(ctx, topic, payload); err != nil {
		logger.Debug("event handler failed", "topic", topic, "error", err)
	}
}

func rollback(stops []func(context.Context) error, logger Logger) {
	rollbackCtx := context.Background()
	for i := len(stops) - 1; i >= 0; i-- {
		if err := stops[i](rollbackCtx); err != nil {
			logger.Error("component rollback failed", "index", i, "error", err)
		}
	}
}
