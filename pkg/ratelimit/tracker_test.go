package ratelimit

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestTracker() *Tracker {
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return NewTracker(NewMemoryStore(), logger)
}

func TestObserve_Headers(t *testing.T) {
	resetEpoch := time.Now().Add(30 * time.Second).Unix()

	tests := []struct {
		name          string
		remaining     string
		reset         string
		status        int
		wantLimited   bool
		wantRemaining int
		wantHasRemain bool
		wantWindow    bool
	}{
		{
			name:          "healthy response",
			remaining:     "12",
			reset:         strconv.FormatInt(resetEpoch, 10),
			status:        http.StatusOK,
			wantLimited:   false,
			wantRemaining: 12,
			wantHasRemain: true,
		},
		{
			name:          "quota exhausted on success",
			remaining:     "0",
			reset:         strconv.FormatInt(resetEpoch, 10),
			status:        http.StatusOK,
			wantLimited:   true,
			wantRemaining: 0,
			wantHasRemain: true,
			wantWindow:    true,
		},
		{
			name:        "429 with reset",
			reset:       strconv.FormatInt(resetEpoch, 10),
			status:      http.StatusTooManyRequests,
			wantLimited: true,
			wantWindow:  true,
		},
		{
			name:        "429 without reset",
			status:      http.StatusTooManyRequests,
			wantLimited: true,
		},
		{
			name:        "missing remaining is not a limit",
			status:      http.StatusOK,
			wantLimited: false,
		},
		{
			name:        "malformed remaining ignored",
			remaining:   "lots",
			status:      http.StatusOK,
			wantLimited: false,
		},
		{
			name:          "malformed reset ignored",
			remaining:     "0",
			reset:         "soon",
			status:        http.StatusOK,
			wantLimited:   true,
			wantHasRemain: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newTestTracker()
			headers := http.Header{}
			if tt.remaining != "" {
				headers.Set(HeaderRemaining, tt.remaining)
			}
			if tt.reset != "" {
				headers.Set(HeaderReset, tt.reset)
			}

			sig, err := tracker.Observe(context.Background(), headers, tt.status)
			if err != nil {
				t.Fatalf("Observe() error = %v", err)
			}

			if sig.Limited != tt.wantLimited {
				t.Errorf("Limited = %v, want %v", sig.Limited, tt.wantLimited)
			}
			if sig.HasRemaining != tt.wantHasRemain {
				t.Errorf("HasRemaining = %v, want %v", sig.HasRemaining, tt.wantHasRemain)
			}
			if sig.HasRemaining && sig.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %d, want %d", sig.Remaining, tt.wantRemaining)
			}

			blocked, _, err := tracker.Blocked(context.Background())
			if err != nil {
				t.Fatalf("Blocked() error = %v", err)
			}
			if blocked != tt.wantWindow {
				t.Errorf("Blocked() = %v, want %v", blocked, tt.wantWindow)
			}
		})
	}
}

func TestObserve_WindowIncludesMargin(t *testing.T) {
	tracker := newTestTracker()
	reset := time.Now().Add(10 * time.Second).Truncate(time.Second)

	headers := http.Header{}
	headers.Set(HeaderRemaining, "0")
	headers.Set(HeaderReset, strconv.FormatInt(reset.Unix(), 10))

	if _, err := tracker.Observe(context.Background(), headers, http.StatusOK); err != nil {
		t.Fatalf("Observe() error = %v", err)
	}

	w, err := tracker.Window(context.Background())
	if err != nil {
		t.Fatalf("Window() error = %v", err)
	}
	if want := reset.Add(ResetMargin); !w.ResetAt.Equal(want) {
		t.Errorf("ResetAt = %v, want %v", w.ResetAt, want)
	}
	if w.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", w.Remaining)
	}
}

func TestObserve_PastResetIsIgnored(t *testing.T) {
	tracker := newTestTracker()
	ctx := context.Background()

	headers := http.Header{}
	headers.Set(HeaderRemaining, "0")
	headers.Set(HeaderReset, strconv.FormatInt(time.Now().Add(-60*time.Second).Unix(), 10))

	sig, err := tracker.Observe(ctx, headers, http.StatusTooManyRequests)
	if err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	if !sig.Limited {
		t.Error("Limited = false, want true")
	}
	if sig.HasReset {
		t.Error("HasReset = true, want false for a reset that already passed")
	}

	blocked, _, err := tracker.Blocked(ctx)
	if err != nil {
		t.Fatalf("Blocked() error = %v", err)
	}
	if blocked {
		t.Error("Blocked() = true, a past reset must not open a window")
	}
}

func TestObserve_WindowNeverMovesBackwards(t *testing.T) {
	tracker := newTestTracker()
	ctx := context.Background()

	late := time.Now().Add(60 * time.Second).Unix()
	early := time.Now().Add(5 * time.Second).Unix()

	for _, epoch := range []int64{late, early} {
		headers := http.Header{}
		headers.Set(HeaderRemaining, "0")
		headers.Set(HeaderReset, strconv.FormatInt(epoch, 10))
		if _, err := tracker.Observe(ctx, headers, http.StatusOK); err != nil {
			t.Fatalf("Observe() error = %v", err)
		}
	}

	w, _ := tracker.Window(ctx)
	if want := time.Unix(late, 0).Add(ResetMargin); !w.ResetAt.Equal(want) {
		t.Errorf("ResetAt = %v, want %v (earlier reset must not shrink the window)", w.ResetAt, want)
	}
}

func TestWait(t *testing.T) {
	tracker := newTestTracker()
	ctx := context.Background()

	waited, err := tracker.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait() on empty window error = %v", err)
	}
	if waited != 0 {
		t.Errorf("Wait() on empty window = %v, want 0", waited)
	}

	if _, err := tracker.Defer(ctx, 150*time.Millisecond); err != nil {
		t.Fatalf("Defer() error = %v", err)
	}

	start := time.Now()
	if _, err := tracker.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 140*time.Millisecond {
		t.Errorf("Wait() returned after %v, want >= 140ms", elapsed)
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	tracker := newTestTracker()
	if _, err := tracker.Defer(context.Background(), time.Minute); err != nil {
		t.Fatalf("Defer() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := tracker.Wait(ctx)
	if err != context.DeadlineExceeded {
		t.Errorf("Wait() error = %v, want %v", err, context.DeadlineExceeded)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Wait() took %v after cancellation", elapsed)
	}
}

func TestNewTracker_DefaultsToMemoryStore(t *testing.T) {
	tracker := NewTracker(nil, zerolog.Nop())
	w, err := tracker.Window(context.Background())
	if err != nil {
		t.Fatalf("Window() error = %v", err)
	}
	if w.Remaining != RemainingUnknown {
		t.Errorf("Remaining = %d, want %d", w.Remaining, RemainingUnknown)
	}
}
