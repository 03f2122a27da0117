package client

import (
	"bufio"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Sink serializes terminal output from every concurrent producer onto one
// writer. Holding the lock for the whole write is what keeps lines from two
// sources from splicing into each other.
type Sink struct {
	mu  sync.Mutex
	w   *bufio.Writer
	log *zap.Logger
}

func NewSink(w io.Writer, log *zap.Logger) *Sink {
	return &Sink{w: bufio.NewWriter(w), log: log}
}

// WriteLine emits b plus a trailing newline as one atomic unit and flushes so
// the operator sees it immediately. Write failures are logged and swallowed:
// losing terminal output must not take the session down.
func (s *Sink) WriteLine(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(b); err != nil {
		s.log.Warn("terminal write failed", zap.Error(err))
		return
	}
	if err := s.w.WriteByte('\n'); err != nil {
		s.log.Warn("terminal write failed", zap.Error(err))
		return
	}
	if err := s.w.Flush(); err != nil {
		s.log.Warn("terminal flush failed", zap.Error(err))
	}
}
