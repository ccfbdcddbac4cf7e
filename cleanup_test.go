package wctx

import (
	"context"
	"errors"
	"testing"
)

type trackedResource struct {
	disposed int
	err      error
}

func (r *trackedResource) Dispose(context.Context) error {
	r.disposed++
	return r.err
}

func TestCleanupAttributesDisposesTracked(t *testing.T) {
	c := NewContainer("host")
	res := &trackedResource{}
	c.SetAttribute("db", res)
	c.SetAttribute("plain", "value")

	NewCleanupListener(nil).CleanupAttributes(context.Background(), c)

	if res.disposed != 1 {
		t.Errorf("expected 1 dispose, got %d", res.disposed)
	}
	if _, ok := c.Attribute("db"); ok {
		t.Error("expected disposed attribute removed")
	}
	if _, ok := c.Attribute("plain"); !ok {
		t.Error("expected non-disposable attribute untouched")
	}
}

func TestCleanupAttributesSwallowsErrors(t *testing.T) {
	c := NewContainer("host")
	failing := &trackedResource{err: errors.New("dispose failed")}
	ok := &trackedResource{}
	c.SetAttribute("a.failing", failing)
	c.SetAttribute("b.ok", ok)

	// must not panic or abort on the failing attribute
	NewCleanupListener(NewNoopLogger()).CleanupAttributes(context.Background(), c)

	if failing.disposed != 1 || ok.disposed != 1 {
		t.Errorf("expected both disposed, got %d and %d", failing.disposed, ok.disposed)
	}
}

func TestCleanupAttributesIdempotent(t *testing.T) {
	c := NewContainer("host")
	res := &trackedResource{}
	c.SetAttribute("db", res)

	cl := NewCleanupListener(nil)
	cl.CleanupAttributes(context.Background(), c)
	cl.CleanupAttributes(context.Background(), c)

	if res.disposed != 1 {
		t.Errorf("expected a single dispose across repeated cleanups, got %d", res.disposed)
	}
}

func TestCleanupAttributesNilContainer(t *testing.T) {
	// should not panic
	NewCleanupListener(nil).CleanupAttributes(context.Background(), nil)
}

func TestCleanupListenerAsLifecycleListener(t *testing.T) {
	c := NewContainer("host")
	res := &trackedResource{}
	c.SetAttribute("db", res)

	var listener LifecycleListener = NewCleanupListener(nil)

	if err := listener.ContainerStarted(context.Background(), c); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if res.disposed != 0 {
		t.Error("expected no dispose on start")
	}

	if err := listener.ContainerStopping(context.Background(), c); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if res.disposed != 1 {
		t.Errorf("expected dispose on stop, got %d", res.disposed)
	}
}

func TestDisposableFunc(t *testing.T) {
	var called bool
	f := DisposableFunc(func(context.Context) error {
		called = true
		return nil
	})
	if err := f.Dispose(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected func invoked")
	}

	var nilFn DisposableFunc
	if err := nilFn.Dispose(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
