package notify

import (
	"sync"
	"time"
)

// Level classifies a notification for styling in the frontend.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// severity orders levels for filtering; success ranks with info.
func (l Level) severity() int {
	switch l {
	case LevelWarning:
		return 1
	case LevelError:
		return 2
	default:
		return 0
	}
}

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	switch l {
	case LevelInfo, LevelSuccess, LevelWarning, LevelError:
		return true
	}
	return false
}

// Notification is a sequenced message shown to the user.
type Notification struct {
	Seq       int64     `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Level     Level     `json:"level"`
}

// History keeps the most recent notifications so a frontend that reloads can
// replay what it missed.
type History struct {
	mu      sync.RWMutex
	nextSeq int64
	limit   int
	items   []Notification
	now     func() time.Time
}

// NewHistory creates a buffer holding at most limit notifications.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = 200
	}
	return &History{
		limit: limit,
		items: make([]Notification, 0, limit),
		now:   time.Now,
	}
}

// Publish stamps n with the next sequence number and stores it. Unknown
// levels are recorded as info. The oldest entry is dropped once full.
func (h *History) Publish(n Notification) Notification {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextSeq++
	n.Seq = h.nextSeq
	if n.Timestamp.IsZero() {
		n.Timestamp = h.now().UTC()
	}
	if !n.Level.Valid() {
		n.Level = LevelInfo
	}

	if len(h.items) == h.limit {
		copy(h.items, h.items[1:])
		h.items[len(h.items)-1] = n
	} else {
		h.items = append(h.items, n)
	}
	return n
}

// Since returns notifications with sequence strictly greater than seq.
func (h *History) Since(seq int64) []Notification {
	return h.AtLeast(LevelInfo, seq)
}

// AtLeast returns notifications after seq whose level is at least min
// severity, oldest first.
func (h *History) AtLeast(min Level, seq int64) []Notification {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []Notification
	for _, n := range h.items {
		if n.Seq > seq && n.Level.severity() >= min.severity() {
			out = append(out, n)
		}
	}
	return out
}

// Latest returns up to n of the newest notifications, newest first.
func (h *History) Latest(n int) []Notification {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || len(h.items) == 0 {
		return nil
	}
	if n > len(h.items) {
		n = len(h.items)
	}
	out := make([]Notification, 0, n)
	for i := len(h.items) - 1; i >= len(h.items)-n; i-- {
		out = append(out, h.items[i])
	}
	return out
}

// Counts returns how many buffered notifications exist per level.
func (h *History) Counts() map[Level]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	counts := make(map[Level]int, 4)
	for _, n := range h.items {
		counts[n.Level]++
	}
	return counts
}
