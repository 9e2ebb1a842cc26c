package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

// withStderr redirects stderr to a buffer and forces the spinner on or off.
func withStderr(t *testing.T, tty bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	oldErr, oldInteractive := stderr, interactive
	stderr = &buf
	interactive = func(io.Writer) bool { return tty }
	t.Cleanup(func() { stderr, interactive = oldErr, oldInteractive })
	return &buf
}

func TestSpinDrawsAndClears(t *testing.T) {
	buf := withStderr(t, true)

	stop := spin(context.Background(), "Rendering West Java...")
	time.Sleep(3 * spinnerInterval)
	stop()
	stop()

	out := buf.String()
	if !strings.Contains(out, "Rendering West Java...") {
		t.Errorf("spinner did not draw its message: %q", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("spinner did not clear its line: %q", out)
	}
}

func TestSpinStopsWithContext(t *testing.T) {
	withStderr(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	stop := spin(ctx, "Loading dataset...")
	cancel()

	done := make(chan struct{})
	go func() {
		stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop blocked after the context was cancelled")
	}
}

func TestSpinQuietWithoutTerminal(t *testing.T) {
	buf := withStderr(t, false)

	stop := spin(context.Background(), "Rendering West Java...")
	time.Sleep(2 * spinnerInterval)
	stop()

	if buf.Len() != 0 {
		t.Errorf("spinner wrote to a non-terminal: %q", buf.String())
	}
}
