package wctx

import "context"

// LifecycleListener receives container lifecycle notifications. Errors are
// surfaced to the container unmodified; this layer adds no retries or state
// transitions.
type LifecycleListener interface {
	ContainerStarted(ctx context.Context, c *Container) error
	ContainerStopping(ctx context.Context, c *Container) error
}

// ContextLoaderAPI is the contract the listener delegates to for root context
// bootstrap and teardown.
type ContextLoaderAPI interface {
	InitContext(ctx context.Context, c *Container) (*AppContext, error)
	CloseContext(ctx context.Context, c *Container) error
}

// AttributeCleaner deallocates tracked container attributes on shutdown.
type AttributeCleaner interface {
	CleanupAttributes(ctx context.Context, c *Container)
}

// LoaderListener bridges container lifecycle notifications to the root
// application context bootstrap/teardown sequence. On start it initializes
// the root context through its loader; on stop it closes the context and then
// deallocates tracked container attributes.
type LoaderListener struct {
	loader  ContextLoaderAPI
	cleaner AttributeCleaner
}

// NewLoaderListener builds a listener around a fresh Loader configured with
// the given options. Passing WithContext injects a pre-built application
// context whose construction stays owned by the caller.
func NewLoaderListener(opts ...LoaderOption) *LoaderListener {
	loader := NewLoader(opts...)
	return &LoaderListener{
		loader:  loader,
		cleaner: NewCleanupListener(loader.logger),
	}
}

// ContainerStarted initializes the root application context, passing the
// container handle through to the loader. The loader's error, if any, is
// returned unchanged.
func (l *LoaderListener) ContainerStarted(ctx context.Context, c *Container) error {
	_, err := l.loader.InitContext(ctx, c)
	return err
}

// ContainerStopping closes the root application context and then deallocates
// disposable container attributes, in that order. The close error, if any, is
// returned unchanged; attribute cleanup never raises.
func (l *LoaderListener) ContainerStopping(ctx context.Context, c *Container) error {
	err := l.loader.CloseContext(ctx, c)
	l.cleaner.CleanupAttributes(ctx, c)
	return err
}

// LifecycleHooks adapts plain functions to the LifecycleListener interface.
type LifecycleHooks struct {
	OnStarted  func(ctx context.Context, c *Container) error
	OnStopping func(ctx context.Context, c *Container) error
}

func (h LifecycleHooks) ContainerStarted(ctx context.Context, c *Container) error {
	if h.OnStarted == nil {
		return nil
	}
	return h.OnStarted(ctx, c)
}

func (h LifecycleHooks) ContainerStopping(ctx context.Context, c *Container) error {
	if h.OnStopping == nil {
		return nil
	}
	return h.OnStopping(ctx, c)
}
