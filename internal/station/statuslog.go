package station

import (
	"time"

	"weighstation/internal/models"
)

// maxLogEntries caps the operational trace; entries beyond the cap are
// silently dropped oldest-first.
const maxLogEntries = 200

// timestampLayout is the render-time format shown next to each entry.
const timestampLayout = "15:04:05"

// statusLog is the append-only, newest-first operational trace of the
// station. Ids are a monotonic counter scoped to this instance; nothing
// here survives a restart.
type statusLog struct {
	nextID  int64
	entries []models.StatusLogEntry
	now     func() time.Time
}

func newStatusLog(now func() time.Time) *statusLog {
	if now == nil {
		now = time.Now
	}
	return &statusLog{now: now}
}

// Append records one entry at the head of the log and enforces the cap.
func (l *statusLog) Append(level models.LogLevel, message string) {
	l.nextID++
	entry := models.StatusLogEntry{
		ID:        l.nextID,
		Timestamp: l.now().Format(timestampLayout),
		Message:   message,
		Level:     level,
	}
	l.entries = append(l.entries, models.StatusLogEntry{})
	copy(l.entries[1:], l.entries)
	l.entries[0] = entry
	if len(l.entries) > maxLogEntries {
		l.entries = l.entries[:maxLogEntries]
	}
}

// Snapshot returns a copy of the visible entries, newest first.
func (l *statusLog) Snapshot() []models.StatusLogEntry {
	out := make([]models.StatusLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *statusLog) Len() int {
	return len(l.entries)
}
