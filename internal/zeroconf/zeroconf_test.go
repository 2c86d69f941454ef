package zeroconf_test

import (
	"context"
	"testing"
	"time"

	"deskstate/internal/zeroconf"
)

func TestServiceStartStop(t *testing.T) {
	svc := zeroconf.New("deskstate-test", 8137)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Start(ctx)
	}()

	// Give registration a moment, then cancel; Start must return promptly.
	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		// Registration can fail in sandboxed environments with no
		// multicast; the only requirement is a prompt, clean return.
		_ = err
	case <-time.After(3 * time.Second):
		t.Fatal("Start did not return after context cancellation")
	}
}
