package wctx

import (
	"context"

	"github.com/go-chi/chi/v5"
)

// Startable is implemented by components that acquire resources when the
// context refreshes.
type Startable interface {
	Start(context.Context) error
}

// Stoppable is implemented by components that release resources when the
// context closes.
type Stoppable interface {
	Stop(context.Context) error
}

// RouteRegistrar is implemented by components that expose HTTP routes on the
// container router.
type RouteRegistrar interface {
	RegisterRoutes(chi.Router)
}

// Disposable marks container attributes holding releasable resources. The
// cleanup listener invokes Dispose on every such attribute when the container
// stops.
type Disposable interface {
	Dispose(context.Context) error
}

// ComponentHooks adapts plain functions to the Startable/Stoppable interfaces
// so callers can register arbitrary logic as a context component.
type ComponentHooks struct {
	OnStart func(context.Context) error
	OnStop  func(context.Context) error
}

func (h ComponentHooks) Start(ctx context.Context) error {
	if h.OnStart == nil {
		return nil
	}
	return h.OnStart(ctx)
}

func (h ComponentHooks) Stop(ctx context.Context) error {
	if h.OnStop == nil {
		return nil
	}
	return h.OnStop(ctx)
}

// DisposableFunc adapts a function into a Disposable attribute value.
type DisposableFunc func(context.Context) error

func (f DisposableFunc) Dispose(ctx context.Context) error {
	if f == nil {
		return nil
	}
	return f(ctx)
}
