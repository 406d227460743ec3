package eventloop

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLoopRunsPostedWorkSerially(t *testing.T) {
	loop := NewLoop(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	counter := 0
	for i := 0; i < 10; i++ {
		if err := loop.Post(func() { counter++ }); err != nil {
			t.Fatalf("post: %v", err)
		}
	}
	var observed int
	if err := loop.Do(ctx, func() { observed = counter }); err != nil {
		t.Fatalf("do: %v", err)
	}
	if observed != 10 {
		t.Fatalf("expected 10 increments before Do ran, got %d", observed)
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if err := loop.Post(func() {}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after shutdown, got %v", err)
	}
}

func TestLoopAfterFuncRunsOnLoopAndStops(t *testing.T) {
	loop := NewLoop(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	fired := make(chan struct{})
	loop.AfterFunc(5*time.Millisecond, func() { close(fired) })

	stopped := loop.AfterFunc(time.Hour, func() { t.Errorf("stopped timer fired") })
	if !stopped.Stop() {
		t.Fatalf("expected stop to succeed")
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("timer did not fire")
	}

	loop.Close()
	if err := <-errCh; err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
}
