package cliutil

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Event is one noteworthy moment in a job's lifecycle.
type Event struct {
	Timestamp time.Time
	Job       string
	Worker    string
	Level     string
	Message   string
}

// LogRecord represents a structured log event ready for JSON encoding.
type LogRecord struct {
	Timestamp time.Time `json:"ts"`
	Job       string    `json:"job"`
	Worker    string    `json:"worker"`
	Level     string    `json:"level"`
	Message   string    `json:"msg"`
}

// NewLogRecord converts a job event into a structured log record.
func NewLogRecord(event Event) LogRecord {
	level := event.Level
	if level == "" {
		level = "info"
	}
	return LogRecord{
		Timestamp: event.Timestamp,
		Job:       event.Job,
		Worker:    event.Worker,
		Level:     level,
		Message:   RedactSecrets(event.Message),
	}
}

// EncodeLogEvent encodes a log event to JSON, reporting errors to stderr if needed.
func EncodeLogEvent(enc *json.Encoder, stderr io.Writer, event Event) {
	if enc == nil {
		return
	}
	record := NewLogRecord(event)
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	if err := enc.Encode(&record); err != nil {
		fmt.Fprintf(stderr, "error: encode log: %v\n", err)
	}
}

// WriteHumanEvent renders a log event as a single human-readable line, used
// when stdout is a terminal.
func WriteHumanEvent(w io.Writer, event Event) {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	level := event.Level
	if level == "" {
		level = "info"
	}
	fmt.Fprintf(w, "%s %-5s %s: %s\n", ts.Format("15:04:05"), level, event.Job, RedactSecrets(event.Message))
}
