package wctx

import "context"

// CleanupListener deallocates container attributes implementing Disposable
// when the container stops. Dispose failures are logged and never surfaced,
// so a misbehaving attribute cannot block shutdown.
type CleanupListener struct {
	logger Logger
}

// NewCleanupListener builds a cleanup listener. A nil logger defaults to the
// no-op logger.
func NewCleanupListener(logger Logger) *CleanupListener {
	if logger == nil {
		logger = NewNoopLogger()
	}
	return &CleanupListener{logger: logger}
}

// CleanupAttributes disposes and removes every Disposable container
// attribute.
func (cl *CleanupListener) CleanupAttributes(ctx context.Context, c *Container) {
	if c == nil {
		return
	}
	for _, name := range c.AttributeNames() {
		value, ok := c.Attribute(name)
		if !ok {
			continue
		}
		disposable, ok := value.(Disposable)
		if !ok {
			continue
		}
		cl.logger.Debug("disposing container attribute", "attribute", name)
		if err := disposable.Dispose(ctx); err != nil {
			cl.logger.Error("could not dispose container attribute", "attribute", name, "error", err)
		}
		c.RemoveAttribute(name)
	}
}

// ContainerStarted is a no-op; cleanup only acts on shutdown.
func (cl *CleanupListener) ContainerStarted(context.Context, *Container) error {
	return nil
}

// ContainerStopping runs attribute cleanup so the listener can be registered
// standalone on containers that do not use a LoaderListener.
func (cl *CleanupListener) ContainerStopping(ctx context.Context, c *Container) error {
	cl.CleanupAttributes(ctx, c)
	return nil
}
