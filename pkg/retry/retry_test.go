package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errDown = errors.New("down")

func TestDo(t *testing.T) {
	p := Policy{Attempts: 3, Delay: time.Millisecond}

	tests := []struct {
		name      string
		failures  int
		transient bool
		wantCalls int
		wantErr   bool
	}{
		{"succeeds first time", 0, true, 1, false},
		{"recovers", 2, true, 3, false},
		{"gives up", 5, true, 3, true},
		{"permanent error", 5, false, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := p.Do(context.Background(), func() error {
				calls++
				if calls <= tt.failures {
					if tt.transient {
						return Transient(errDown)
					}
					return errDown
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && err != errDown {
				t.Errorf("err = %v, want unwrapped %v", err, errDown)
			}
		})
	}
}

func TestDoCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Policy{Attempts: 5, Delay: time.Hour}
	err := p.Do(ctx, func() error { return Transient(errDown) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestTransient(t *testing.T) {
	if Transient(nil) != nil {
		t.Error("Transient(nil) != nil")
	}
	err := Transient(errDown)
	if !IsTransient(err) {
		t.Error("IsTransient(Transient(err)) = false")
	}
	if !errors.Is(err, errDown) {
		t.Error("Transient does not unwrap")
	}
	if IsTransient(errDown) {
		t.Error("IsTransient(plain) = true")
	}
}
