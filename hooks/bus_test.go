package hooks

import (
	"context"
	"errors"
	"testing"
)

func TestBusPublishesInRegistrationOrder(t *testing.T) {
	b := NewBus()
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		sub, err := b.Register(SubscriberFunc(func(ctx context.Context, e Event) error {
			order = append(order, i)
			return nil
		}))
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		defer sub.Close()
	}
	if err := b.Publish(context.Background(), Event{Type: EventAfterTool}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("expected FIFO delivery order, got %v", order)
	}
}

func TestBusStopsAtFirstError(t *testing.T) {
	b := NewBus()
	boom := errors.New("boom")
	called := 0
	sub1, _ := b.Register(SubscriberFunc(func(ctx context.Context, e Event) error {
		called++
		return boom
	}))
	defer sub1.Close()
	sub2, _ := b.Register(SubscriberFunc(func(ctx context.Context, e Event) error {
		called++
		return nil
	}))
	defer sub2.Close()

	err := b.Publish(context.Background(), Event{Type: EventAfterTool})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if called != 1 {
		t.Fatalf("expected only the failing subscriber to run, called=%d", called)
	}
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	b := NewBus()
	calls := 0
	sub, _ := b.Register(SubscriberFunc(func(ctx context.Context, e Event) error {
		calls++
		return nil
	}))
	sub.Close()
	sub.Close() // must not panic
	b.Publish(context.Background(), Event{})
	if calls != 0 {
		t.Fatalf("expected closed subscriber to receive no events, calls=%d", calls)
	}
}

func TestRegisterNilSubscriberErrors(t *testing.T) {
	b := NewBus()
	if _, err := b.Register(nil); err == nil {
		t.Fatalf("expected error for nil subscriber")
	}
}
