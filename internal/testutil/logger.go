// Package testutil provides shared test helpers.
package testutil

import (
	"strings"
	"sync"

	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
)

// LogMessage is one entry captured by RecordingLogger.
type LogMessage struct {
	Level   string
	Logger  string
	Message string
	Fields  []logging.Field
}

// Field returns the value of the named field, or nil.
func (m LogMessage) Field(key string) interface{} {
	for _, f := range m.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// RecordingLogger implements logging.Logger and keeps every entry in memory.
// Loggers derived through With and Named share the same sink.
type RecordingLogger struct {
	sink   *sink
	name   string
	fields []logging.Field
}

type sink struct {
	mu       sync.Mutex
	messages []LogMessage
}

var _ logging.Logger = (*RecordingLogger)(nil)

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{sink: &sink{}}
}

func (r *RecordingLogger) log(level, msg string, fields []logging.Field) {
	all := make([]logging.Field, 0, len(r.fields)+len(fields))
	all = append(all, r.fields...)
	all = append(all, fields...)

	r.sink.mu.Lock()
	defer r.sink.mu.Unlock()
	r.sink.messages = append(r.sink.messages, LogMessage{Level: level, Logger: r.name, Message: msg, Fields: all})
}

func (r *RecordingLogger) Debug(msg string, fields ...logging.Field) { r.log("debug", msg, fields) }
func (r *RecordingLogger) Info(msg string, fields ...logging.Field)  { r.log("info", msg, fields) }
func (r *RecordingLogger) Warn(msg string, fields ...logging.Field)  { r.log("warn", msg, fields) }
func (r *RecordingLogger) Error(msg string, fields ...logging.Field) { r.log("error", msg, fields) }
func (r *RecordingLogger) Fatal(msg string, fields ...logging.Field) { r.log("fatal", msg, fields) }

func (r *RecordingLogger) With(fields ...logging.Field) logging.Logger {
	next := make([]logging.Field, 0, len(r.fields)+len(fields))
	next = append(next, r.fields...)
	next = append(next, fields...)
	return &RecordingLogger{sink: r.sink, name: r.name, fields: next}
}

func (r *RecordingLogger) Named(name string) logging.Logger {
	full := name
	if r.name != "" {
		full = r.name + "." + name
	}
	return &RecordingLogger{sink: r.sink, name: full, fields: r.fields}
}

func (r *RecordingLogger) Sync() error { return nil }

// Messages returns a copy of everything logged so far.
func (r *RecordingLogger) Messages() []LogMessage {
	r.sink.mu.Lock()
	defer r.sink.mu.Unlock()
	out := make([]LogMessage, len(r.sink.messages))
	copy(out, r.sink.messages)
	return out
}

// Find returns the entries at level whose message starts with prefix.  An
// empty level matches every level.
func (r *RecordingLogger) Find(level, prefix string) []LogMessage {
	var out []LogMessage
	for _, m := range r.Messages() {
		if (level == "" || m.Level == level) && strings.HasPrefix(m.Message, prefix) {
			out = append(out, m)
		}
	}
	return out
}

// HasMessage reports whether msg was logged at level.
func (r *RecordingLogger) HasMessage(level, msg string) bool {
	for _, m := range r.Find(level, msg) {
		if m.Message == msg {
			return true
		}
	}
	return false
}

// Reset drops every recorded entry.
func (r *RecordingLogger) Reset() {
	r.sink.mu.Lock()
	defer r.sink.mu.Unlock()
	r.sink.messages = nil
}

//Personal.AI order the ending
