// Package logger captures an audit trail of the lines the shell accepted and
// the processes it spawned, as newline delimited JSON.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"
)

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(e *Entry) error

// Logger records shell interaction events.
type Logger struct {
	Record LogRecorder
}

// NewJSONLinesRecorder creates a Logger that exports events in newline
// delimited JSON object format.
func NewJSONLinesRecorder(w io.Writer) *Logger {
	return &Logger{
		Record: func(e *Entry) error {
			entry, err := json.Marshal(e)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

// Entry is a single audit event. Exactly one of the event fields is set.
type Entry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	Line  *LineAccepted `json:"line,omitempty"`
	Stage *StageSpawned `json:"stage,omitempty"`
}

// LineAccepted records a raw line the shell accepted for execution.
type LineAccepted struct {
	Raw string `json:"raw"`
}

// StageSpawned records one child process the shell started.
type StageSpawned struct {
	Path string   `json:"path"`
	Argv []string `json:"argv"`
}

func (l *Logger) record(sessionID string, e *Entry) error {
	e.TimestampMicros = time.Now().UnixMicro()
	e.SessionID = sessionID
	return l.Record(e)
}

// NewSession creates a logger with an attached random session ID.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{logger: l, sessionID: fmt.Sprintf("%d", rand.Uint64())}
}

// SessionLogger logs events with a shared session ID.
type SessionLogger struct {
	logger    *Logger
	sessionID string
}

// RecordLine logs a line accepted by the read-eval loop.
func (s *SessionLogger) RecordLine(raw string) error {
	if s == nil {
		return nil
	}
	return s.logger.record(s.sessionID, &Entry{Line: &LineAccepted{Raw: raw}})
}

// RecordStage logs a spawned child process.
func (s *SessionLogger) RecordStage(path string, argv []string) error {
	if s == nil {
		return nil
	}
	return s.logger.record(s.sessionID, &Entry{Stage: &StageSpawned{Path: path, Argv: argv}})
}
