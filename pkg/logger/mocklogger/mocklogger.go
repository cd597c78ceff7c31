package mocklogger

import (
	"context"
	"log/slog"
	"sync"
)

// Entry is a captured log record.
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// MockHandler is a slog.Handler that keeps every record in memory so tests
// can assert on what was logged.
type MockHandler struct {
	mu      *sync.Mutex
	entries *[]Entry
	attrs   []slog.Attr
	group   string
}

func NewMockHandler() *MockHandler {
	return &MockHandler{
		mu:      &sync.Mutex{},
		entries: &[]Entry{},
	}
}

// Enabled implements slog.Handler.
func (h *MockHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
func (h *MockHandler) Handle(_ context.Context, r slog.Record) error {
	entry := Entry{
		Level:   r.Level,
		Message: r.Message,
		Attrs:   make(map[string]any, len(h.attrs)+r.NumAttrs()),
	}
	for _, a := range h.attrs {
		entry.Attrs[h.key(a.Key)] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		entry.Attrs[h.key(a.Key)] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	*h.entries = append(*h.entries, entry)
	return nil
}

// WithAttrs implements slog.Handler.
func (h *MockHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := *h
	out.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &out
}

// WithGroup implements slog.Handler.
func (h *MockHandler) WithGroup(name string) slog.Handler {
	out := *h
	out.group = h.key(name)
	return &out
}

func (h *MockHandler) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}

// Entries returns a snapshot of the captured records.
func (h *MockHandler) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Entry(nil), *h.entries...)
}

// Messages returns the messages of the captured records in order.
func (h *MockHandler) Messages() []string {
	entries := h.Entries()
	msgs := make([]string, len(entries))
	for i, e := range entries {
		msgs[i] = e.Message
	}
	return msgs
}

// NewMockLogger creates a logger backed by a fresh MockHandler.
func NewMockLogger() (*slog.Logger, *MockHandler) {
	handler := NewMockHandler()
	return slog.New(handler), handler
}
