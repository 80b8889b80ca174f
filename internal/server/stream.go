package server

import (
	"net/http"

	"github.com/Entropy136/intention-test-extension/internal/session"
)

// streamFlusher is the slice of http.ResponseWriter the stream needs.
type streamFlusher interface {
	http.ResponseWriter
	http.Flusher
}

// StreamWriter forwards session events to the HTTP response as
// newline-delimited JSON. Every payload is written with a trailing newline
// and flushed immediately so the client sees progress as it happens.
type StreamWriter struct {
	w streamFlusher
}

var _ session.Writer = (*StreamWriter)(nil)

// NewStreamWriter wraps the response writer of a streaming request.
func NewStreamWriter(w streamFlusher) *StreamWriter {
	return &StreamWriter{w: w}
}

// Write sends one event payload followed by a newline and flushes.
func (s *StreamWriter) Write(p []byte) error {
	if _, err := s.w.Write(p); err != nil {
		return err
	}
	if _, err := s.w.Write([]byte("\n")); err != nil {
		return err
	}
	s.w.Flush()
	return nil
}
