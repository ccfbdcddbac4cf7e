package events

import (
	"context"
	"errors"
	"testing"
)

func TestBusPublishDeliversInOrder(t *testing.T) {
	bus := NewBus()
	var got []string

	err := bus.Subscribe(context.Background(), "topic", func(_ context.Context, msg []byte) error {
		got = append(got, "first:"+string(msg))
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = bus.Subscribe(context.Background(), "topic", func(_ context.Context, msg []byte) error {
		got = append(got, "second:"+string(msg))
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := bus.Publish(context.Background(), "topic", []byte("payload")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 2 || got[0] != "first:payload" || got[1] != "second:payload" {
		t.Errorf("expected ordered delivery, got %v", got)
	}
}

func TestBusPublishNoSubscribers(t *testing.T) {
	bus := NewBus()
	if err := bus.Publish(context.Background(), "empty", []byte("x")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBusPublishContinuesAfterHandlerError(t *testing.T) {
	bus := NewBus()
	wantErr := errors.New("handler failed")
	var secondCalled bool

	_ = bus.Subscribe(context.Background(), "topic", func(context.Context, []byte) error {
		return wantErr
	})
	_ = bus.Subscribe(context.Background(), "topic", func(context.Context, []byte) error {
		secondCalled = true
		return nil
	})

	if err := bus.Publish(context.Background(), "topic", nil); !errors.Is(err, wantErr) {
		t.Errorf("expected handler error surfaced, got %v", err)
	}
	if !secondCalled {
		t.Error("expected delivery to continue after error")
	}
}

func TestBusSubscribeIgnoresInvalid(t *testing.T) {
	bus := NewBus()
	if err := bus.Subscribe(context.Background(), "", func(context.Context, []byte) error { return nil }); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := bus.Subscribe(context.Background(), "topic", nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := bus.Publish(context.Background(), "topic", nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
