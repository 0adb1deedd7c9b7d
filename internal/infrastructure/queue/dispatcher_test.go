package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/userprops/profile-service/internal/core/domain"
)

type recordingService struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	delay  time.Duration
	err    error
}

func (s *recordingService) Process(_ context.Context, event domain.AuditEvent) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *recordingService) snapshot() []domain.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuditEvent(nil), s.events...)
}

func TestDispatcher_StopDrainsAcceptedEvents(t *testing.T) {
	svc := &recordingService{delay: 5 * time.Millisecond}
	d := NewDispatcher(2, svc, zerolog.Nop())
	d.Start(context.Background())

	for i := 0; i < 10; i++ {
		d.Record(domain.AuditEvent{TargetUserID: "u2", Property: string(rune('a' + i))})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	got := svc.snapshot()
	if len(got) != 10 {
		t.Fatalf("expected 10 processed events, got %d", len(got))
	}
	// Same target user => same worker => order preserved.
	for i, e := range got {
		if e.Property != string(rune('a'+i)) {
			t.Fatalf("event %d out of order: %q", i, e.Property)
		}
	}
}

func TestDispatcher_RecordAfterStopIsDropped(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(1, svc, zerolog.Nop())
	d.Start(context.Background())

	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	d.Record(domain.AuditEvent{TargetUserID: "u2"})

	if n := len(svc.snapshot()); n != 0 {
		t.Fatalf("expected no processed events, got %d", n)
	}
	if err := d.Stop(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped on second stop, got %v", err)
	}
}

func TestDispatcher_ProcessErrorDoesNotStopWorker(t *testing.T) {
	svc := &recordingService{err: errors.New("insert failed")}
	d := NewDispatcher(1, svc, zerolog.Nop())
	d.Start(context.Background())

	d.Record(domain.AuditEvent{TargetUserID: "u1"})
	d.Record(domain.AuditEvent{TargetUserID: "u2"})

	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if n := len(svc.snapshot()); n != 2 {
		t.Fatalf("expected both events attempted, got %d", n)
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(4, &recordingService{}, zerolog.Nop())
	first := d.shardIndex("user-42")
	for i := 0; i < 5; i++ {
		if got := d.shardIndex("user-42"); got != first {
			t.Fatalf("shard changed: %d vs %d", got, first)
		}
	}
	if first < 0 || first >= 4 {
		t.Fatalf("shard out of range: %d", first)
	}
}
