// Package storage records validation events for observability. Validation
// history is never persisted; events flow to the structured log only.
package storage

import (
	"time"

	"go.uber.org/zap"
)

// EventWriter is the interface for recording validation events.
// Write() must never block the caller.
type EventWriter interface {
	Write(event *ValidationEvent)
	Close()
}

// ValidationEvent describes one completed tool dispatch.
type ValidationEvent struct {
	RequestID    string
	Tool         string
	Path         string
	Success      bool
	ErrorCount   int
	WarningCount int
	LatencyMs    float32
	Timestamp    time.Time
}

const bufferSize = 1024

// LogWriter emits validation events as structured JSON through zap.
// Events are buffered and written by a background goroutine; when the
// buffer is full the event is dropped rather than blocking a request.
type LogWriter struct {
	buffer chan *ValidationEvent
	done   chan struct{}
	logger *zap.Logger
}

// NewLogWriter creates a LogWriter and starts its drain loop.
func NewLogWriter(logger *zap.Logger) *LogWriter {
	w := &LogWriter{
		buffer: make(chan *ValidationEvent, bufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	go w.drain()
	return w
}

// Write queues an event. Non-blocking: drops when the buffer is full.
func (w *LogWriter) Write(event *ValidationEvent) {
	select {
	case w.buffer <- event:
	default:
		w.logger.Warn("event buffer full, dropping event",
			zap.String("request_id", event.RequestID),
		)
	}
}

// Close stops the drain loop after flushing queued events.
func (w *LogWriter) Close() {
	close(w.buffer)
	<-w.done
}

func (w *LogWriter) drain() {
	defer close(w.done)
	for event := range w.buffer {
		w.logger.Info("validation_event",
			zap.String("request_id", event.RequestID),
			zap.String("tool", event.Tool),
			zap.String("path", event.Path),
			zap.Bool("success", event.Success),
			zap.Int("errors", event.ErrorCount),
			zap.Int("warnings", event.WarningCount),
			zap.Float32("latency_ms", event.LatencyMs),
		)
	}
}
