package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestStart_InvalidSpec(t *testing.T) {
	s := New("not a cron spec")
	if err := s.Start(context.Background()); err == nil {
		t.Error("expected error for invalid spec")
	}
}

func TestStart_FiresJob(t *testing.T) {
	s := New("* * * * * *") // every second
	fired := make(chan struct{}, 1)
	s.OnRun = func(ctx context.Context) error {
		select {
		case fired <- struct{}{}:
		default:
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not fire")
	}
}

func TestStop_BeforeStart(t *testing.T) {
	// Stop on a never-started service must not panic.
	New("* * * * * *").Stop()
}
