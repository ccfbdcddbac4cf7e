package wctx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RootContextAttribute is the container attribute name under which the root
// application context is registered.
const RootContextAttribute = "wctx.context.root"

// Bootstrap params recognized by the loader.
const (
	// ParamContextName overrides the name given to a loader-built context.
	ParamContextName = "context.name"
	// ParamConfigLocations lists extra YAML files, comma-separated, merged
	// into the context config before refresh.
	ParamConfigLocations = "context.config.locations"
)

// Loader performs the root application context bootstrap and teardown
// sequence. A context may be injected up front; otherwise the loader builds
// one from the container's bootstrap params when the container starts.
type Loader struct {
	mu           sync.Mutex
	context      *AppContext
	initializers []Initializer
	logger       Logger
	errors       ErrorReporter
}

// LoaderOption mutates the Loader during construction.
type LoaderOption func(*Loader)

// WithContext injects a pre-built application context. Its construction and,
// when already refreshed, its refresh stay owned by the caller.
func WithContext(appctx *AppContext) LoaderOption {
	return func(l *Loader) {
		l.context = appctx
	}
}

// WithInitializers registers hooks applied to a not-yet-refreshed context
// before refresh, ordered by their declared priority.
func WithInitializers(initializers ...Initializer) LoaderOption {
	return func(l *Loader) {
		for _, init := range initializers {
			if init != nil {
				l.initializers = append(l.initializers, init)
			}
		}
	}
}

// WithLoaderLogger installs the logger used for bootstrap/teardown logs.
func WithLoaderLogger(logger Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithLoaderErrorReporter installs the reporter notified of bootstrap
// failures before they are surfaced to the container.
func WithLoaderErrorReporter(reporter ErrorReporter) LoaderOption {
	return func(l *Loader) {
		if reporter != nil {
			l.errors = reporter
		}
	}
}

// NewLoader builds a loader, applying the provided options sequentially.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		logger: NewNoopLogger(),
		errors: NoopErrorReporter{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// InitContext initializes the root application context for the given
// container and registers it under RootContextAttribute. A context injected
// at construction is used as-is when already refreshed; otherwise it is
// configured and refreshed here. Errors from the sequence are reported and
// returned unchanged.
func (l *Loader) InitContext(ctx context.Context, c *Container) (*AppContext, error) {
	if c == nil {
		return nil, errors.New("loader: nil container")
	}
	if _, ok := c.Attribute(RootContextAttribute); ok {
		return nil, errors.New("loader: root context already present - check for duplicate LoaderListener registrations")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	logger := l.logger
	logger.Info("root application context initialization started", "container", c.Name())
	start := time.Now()

	appctx := l.context
	if appctx == nil {
		appctx = NewAppContext(contextName(c))
	}

	if !appctx.Refreshed() {
		if err := l.configureAndRefresh(ctx, appctx, c); err != nil {
			l.errors.Report(ctx, err, map[string]any{"container": c.Name()})
			return nil, err
		}
	}

	l.context = appctx
	c.SetAttribute(RootContextAttribute, appctx)

	logger.Info("root application context initialized",
		"context_id", appctx.ID(),
		"context_name", appctx.ContextName(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return appctx, nil
}

// CloseContext closes the root application context and removes it from the
// container's attributes.
func (l *Loader) CloseContext(ctx context.Context, c *Container) error {
	if c == nil {
		return errors.New("loader: nil container")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	defer c.RemoveAttribute(RootContextAttribute)

	appctx := l.context
	if appctx == nil {
		if v, ok := c.Attribute(RootContextAttribute); ok {
			appctx, _ = v.(*AppContext)
		}
	}
	if appctx == nil {
		return nil
	}

	l.logger.Info("closing root application context", "context_id", appctx.ID())
	if err := appctx.Close(ctx); err != nil {
		l.errors.Report(ctx, err, map[string]any{"container": c.Name()})
		return err
	}
	return nil
}

func (l *Loader) configureAndRefresh(ctx context.Context, appctx *AppContext, c *Container) error {
	if appctx.ID() == "" {
		appctx.SetID(uuid.NewString())
	}
	appctx.SetContainer(c)

	if appctx.ConfigUnset() {
		cfg := c.Config().Clone()
		if locations, ok := c.InitParam(ParamConfigLocations); ok {
			if err := cfg.LoadLocations(splitLocations(locations)...); err != nil {
				return fmt.Errorf("loader: %w", err)
			}
		}
		appctx.SetConfig(cfg)
	}

	for _, init := range sortInitializers(l.initializers) {
		if err := init.Initialize(ctx, appctx); err != nil {
			return fmt.Errorf("loader: initializer: %w", err)
		}
	}

	if err := appctx.Refresh(ctx); err != nil {
		return fmt.Errorf("loader: refresh: %w", err)
	}
	return nil
}

// RootContext retrieves the root application context registered on the
// container, if any.
func RootContext(c *Container) (*AppContext, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.Attribute(RootContextAttribute)
	if !ok {
		return nil, false
	}
	appctx, ok := v.(*AppContext)
	return appctx, ok
}

func contextName(c *Container) string {
	if name, ok := c.InitParam(ParamContextName); ok && name != "" {
		return name
	}
	return c.Name()
}

func splitLocations(locations string) []string {
	parts := strings.Split(locations, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
