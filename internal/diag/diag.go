// Package diag records non-fatal engine diagnostics: unmapped actions and
// no-op button presses. Events go to the structured logger and, when a file
// path is configured, to an append-only JSONL file that the coverage
// reconciliation tooling reads offline.
package diag

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Event kinds emitted by the engine.
const (
	KindUnmappedAction = "unmapped_action"
	KindContextAbsent  = "context_absent"
	KindServiceCall    = "service_call_error"
)

// Event is one diagnostic record.
type Event struct {
	Time     time.Time `json:"time"`
	Kind     string    `json:"kind"`
	ActionID string    `json:"action_id,omitempty"`
	FieldID  string    `json:"field_id,omitempty"`
	Detail   string    `json:"detail,omitempty"`
}

// Sink receives diagnostic events.
type Sink interface {
	Record(ev Event)
}

// Logger writes events as slog records and optionally appends JSONL lines.
type Logger struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewLogger creates a diagnostics logger. path may be empty to skip the
// JSONL file; logger may be nil to use slog.Default.
func NewLogger(path string, logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{path: path, logger: logger}
}

// Record logs the event. Failures to append the JSONL line are reported on
// the logger and never propagate: diagnostics must not break the flow that
// emitted them.
func (l *Logger) Record(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	l.logger.Warn(ev.Kind,
		slog.String("action_id", ev.ActionID),
		slog.String("field_id", ev.FieldID),
		slog.String("detail", ev.Detail),
	)

	if l.path == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		l.logger.Error("failed to append diagnostic", slog.String("error", err.Error()))
		return
	}
	defer f.Close()

	data, _ := json.Marshal(ev)
	f.Write(data)
	f.WriteString("\n")
}

var _ Sink = (*Logger)(nil)
