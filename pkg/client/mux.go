// Package client implements the interactive session multiplexer: it fans
// inbound datagrams and unidirectional streams in to the terminal, fans local
// input out as datagrams, and owns the shutdown policy for the shared session.
package client

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/security-union/webtranscat/pkg/capture"
	"github.com/security-union/webtranscat/pkg/transport"
)

// StreamPolicy decides when a unidirectional stream counts as one message
// for the one-message mode.
type StreamPolicy int

const (
	// StreamComplete treats the full stream payload as the message: only
	// end-of-stream satisfies one-message mode. A stream may deliver its
	// bytes across many reads, so completeness is only known at EOF.
	StreamComplete StreamPolicy = iota
	// StreamFirstByte satisfies one-message mode with whatever the stream's
	// first read delivers.
	StreamFirstByte
)

// Config is the resolved, immutable configuration the multiplexer runs under.
type Config struct {
	// Unidirectional disables the input forwarder: listen only.
	Unidirectional bool
	// OneMessage stops the session after the first complete inbound unit:
	// a datagram, or a stream per StreamPolicy, whichever comes first.
	OneMessage bool
	// StreamPolicy picks what "complete" means for streams under OneMessage.
	StreamPolicy StreamPolicy
	// DrainGrace bounds how long shutdown waits for in-flight tasks before
	// abandoning them.
	DrainGrace time.Duration
}

const defaultDrainGrace = 3 * time.Second

type muxState int32

const (
	stateActive muxState = iota
	stateDraining
	stateClosed
)

func (s muxState) String() string {
	switch s {
	case stateActive:
		return "active"
	case stateDraining:
		return "draining"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Mux owns the shared session handle and runs the receive, accept and input
// loops concurrently until one of them, the session, or the caller asks for
// shutdown.
type Mux struct {
	sess transport.Session
	cfg  Config
	sink *Sink
	in   io.Reader
	log  *zap.Logger
	cap  *capture.Writer

	state  atomic.Int32
	cancel context.CancelFunc

	mu    sync.Mutex
	fatal error
}

// New builds a multiplexer over an established session. in is the local
// input source, normally os.Stdin; it is only read when the configuration
// allows sending.
func New(sess transport.Session, cfg Config, sink *Sink, in io.Reader, log *zap.Logger) *Mux {
	if cfg.DrainGrace <= 0 {
		cfg.DrainGrace = defaultDrainGrace
	}
	return &Mux{sess: sess, cfg: cfg, sink: sink, in: in, log: log}
}

// SetCapture mirrors every received unit into w. Must be called before Run.
func (m *Mux) SetCapture(w *capture.Writer) { m.cap = w }

// Run drives the session until the peer closes it, a component requests
// shutdown, or ctx is cancelled. It returns nil when the session ended
// cleanly (peer close, one-message satisfied, operator interrupt) and the
// first fatal error otherwise.
func (m *Mux) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	m.cancel = cancel

	m.setState(stateActive)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		m.finish("datagrams", m.receiveDatagrams(ctx), true)
	}()
	go func() {
		defer wg.Done()
		m.finish("streams", m.acceptStreams(ctx), true)
	}()
	if !m.cfg.Unidirectional {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Local input running dry is no reason to stop listening.
			m.finish("input", m.forwardInput(ctx), false)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	<-ctx.Done()
	m.setState(stateDraining)
	select {
	case <-done:
	case <-time.After(m.cfg.DrainGrace):
		m.log.Warn("drain grace elapsed, abandoning remaining tasks",
			zap.Duration("grace", m.cfg.DrainGrace))
	}

	if err := m.sess.CloseWithError(0, "client done"); err != nil && !transport.IsClosed(err) {
		m.log.Debug("session close", zap.Error(err))
	}
	m.setState(stateClosed)

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fatal
}

// finish records a component's outcome. Components whose return means the
// session is over (drain) raise the shutdown signal; a closed session or
// observed cancellation is a normal end, anything else is fatal.
func (m *Mux) finish(name string, err error, drain bool) {
	switch {
	case err == nil, transport.IsClosed(err), errors.Is(err, context.Canceled):
		m.log.Debug("component finished", zap.String("component", name))
	default:
		m.log.Error("component failed", zap.String("component", name), zap.Error(err))
		m.mu.Lock()
		if m.fatal == nil {
			m.fatal = err
		}
		m.mu.Unlock()
		drain = true
	}
	if drain {
		m.cancel()
	}
}

func (m *Mux) setState(s muxState) {
	m.state.Store(int32(s))
	m.log.Debug("state change", zap.Stringer("state", s))
}

// record mirrors one received unit into the capture file, if any. Capture
// failures never disturb the session.
func (m *Mux) record(src capture.Source, stream uint64, data []byte) {
	if m.cap == nil {
		return
	}
	if err := m.cap.Record(src, stream, data); err != nil {
		m.log.Debug("capture write failed", zap.Error(err))
	}
}
