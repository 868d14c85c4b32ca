package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestNewJob(t *testing.T) {
	j := New(json.RawMessage(`{"x":1}`), 0)
	if j.ID == "" {
		t.Error("job must get an id")
	}
	if j.Status != StatusPending {
		t.Errorf("status = %s, want pending", j.Status)
	}
	if j.Done() {
		t.Error("pending job must not be done")
	}
	if j.IsExpired() {
		t.Error("fresh job must not be expired")
	}
	if got := j.ExpiresAt.Sub(j.CreatedAt); got != DefaultTTL {
		t.Errorf("default TTL = %v, want %v", got, DefaultTTL)
	}
}

func TestTransition(t *testing.T) {
	j := New(nil, time.Hour)
	before := j.UpdatedAt
	time.Sleep(time.Millisecond)
	j.Transition(StatusRunning)
	if j.Status != StatusRunning {
		t.Errorf("status = %s, want running", j.Status)
	}
	if !j.UpdatedAt.After(before) {
		t.Error("Transition must touch UpdatedAt")
	}
	j.Transition(StatusDone)
	if !j.Done() {
		t.Error("done job must report Done")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Missing jobs are nil, nil.
	got, err := s.Get(ctx, "nope")
	if err != nil || got != nil {
		t.Fatalf("Get(missing) = (%v, %v), want (nil, nil)", got, err)
	}

	j := New(json.RawMessage(`{"source":[]}`), time.Hour)
	if err := s.Set(ctx, j); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err = s.Get(ctx, j.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.ID != j.ID || got.Status != StatusPending {
		t.Errorf("round trip = %+v", got)
	}

	got.Transition(StatusDone)
	got.Result = json.RawMessage(`{"mapping":{}}`)
	if err := s.Set(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, _ := s.Get(ctx, j.ID)
	if again.Status != StatusDone || string(again.Result) != `{"mapping":{}}` {
		t.Errorf("updated job = %+v", again)
	}

	if err := s.Delete(ctx, j.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := s.Get(ctx, j.ID); got != nil {
		t.Error("deleted job must be gone")
	}
}

func TestFileStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	j := New(nil, time.Nanosecond)
	if err := s.Set(ctx, j); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, err := s.Get(ctx, j.ID); err != ErrExpired {
		t.Errorf("Get(expired) error = %v, want ErrExpired", err)
	}

	if err := s.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	// After cleanup the file is gone entirely.
	if got, err := s.Get(ctx, j.ID); err != nil || got != nil {
		t.Errorf("Get after cleanup = (%v, %v), want (nil, nil)", got, err)
	}
}
