package station

import (
	"fmt"
	"testing"
	"time"

	"weighstation/internal/models"
)

func TestStatusLog_NewestFirst(t *testing.T) {
	l := newStatusLog(nil)
	l.Append(models.LevelInfo, "first")
	l.Append(models.LevelWarning, "second")
	l.Append(models.LevelError, "third")

	got := l.Snapshot()
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].Message != "third" || got[2].Message != "first" {
		t.Fatalf("expected newest-first order, got %q .. %q", got[0].Message, got[2].Message)
	}
	if got[0].ID <= got[1].ID || got[1].ID <= got[2].ID {
		t.Fatalf("expected monotonic ids, got %d %d %d", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestStatusLog_CapDropsOldest(t *testing.T) {
	l := newStatusLog(nil)
	for i := 1; i <= 250; i++ {
		l.Append(models.LevelInfo, fmt.Sprintf("entry %d", i))
	}

	got := l.Snapshot()
	if len(got) != maxLogEntries {
		t.Fatalf("expected exactly %d entries, got %d", maxLogEntries, len(got))
	}
	if got[0].Message != "entry 250" {
		t.Fatalf("expected newest entry at head, got %q", got[0].Message)
	}
	if got[len(got)-1].Message != "entry 51" {
		t.Fatalf("expected oldest surviving entry 51, got %q", got[len(got)-1].Message)
	}
}

func TestStatusLog_TimestampUsesClock(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 9, 30, 15, 0, time.Local)
	l := newStatusLog(func() time.Time { return fixed })
	l.Append(models.LevelInfo, "tick")

	got := l.Snapshot()[0]
	if got.Timestamp != "09:30:15" {
		t.Fatalf("expected render-time timestamp 09:30:15, got %q", got.Timestamp)
	}
}
