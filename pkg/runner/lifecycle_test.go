package runner

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLifecycleRunnerRunsUntilCancelled(t *testing.T) {
	drained := make(chan struct{})
	stopped := false
	r := NewLifecycleRunner(DrainFunc(func() error {
		close(drained)
		return nil
	}), Hooks{OnStop: func() { stopped = true }}, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	deadline := time.Now().Add(time.Second)
	for r.State() != StateRunning {
		if time.Now().After(deadline) {
			t.Fatalf("runner never reached RUNNING, state %s", r.State())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-errCh; err != nil {
		t.Fatalf("run: %v", err)
	}
	<-drained
	if r.State() != StateStopped || !stopped {
		t.Fatalf("expected STOPPED with OnStop called, got %s", r.State())
	}
	if err := r.Run(context.Background()); err == nil {
		t.Fatalf("second Run must fail")
	}
}

func TestLifecycleRunnerDrainTimeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	r := NewLifecycleRunner(DrainFunc(func() error {
		<-block
		return nil
	}), Hooks{}, 20*time.Millisecond)

	if err := r.Stop(); !errors.Is(err, ErrDrainTimeout) {
		t.Fatalf("expected drain timeout, got %v", err)
	}
}

func TestLifecycleRunnerStartError(t *testing.T) {
	boom := errors.New("listen failed")
	r := NewLifecycleRunner(nil, Hooks{OnStart: func() error { return boom }}, time.Second)
	if err := r.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected start error, got %v", err)
	}
	if r.State() != StateStopped {
		t.Fatalf("expected STOPPED, got %s", r.State())
	}
}
