package client

import (
	"bytes"
	"context"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/security-union/webtranscat/pkg/capture"
	"github.com/security-union/webtranscat/pkg/transport"
)

// acceptStreams accepts inbound unidirectional streams and spawns one reader
// per stream. Acceptance never waits on draining a stream: new streams arrive
// while earlier ones are still delivering, and completion order is unrelated
// to arrival order. The acceptor does not return until every reader it
// spawned has, so the orchestrator's wait covers them all.
func (m *Mux) acceptStreams(ctx context.Context) error {
	var readers sync.WaitGroup
	defer readers.Wait()

	for id := uint64(0); ; id++ {
		st, err := m.sess.AcceptUniStream(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		m.log.Info("accepted unidirectional stream", zap.Uint64("stream", id))
		readers.Add(1)
		go func(id uint64, st transport.ReceiveStream) {
			defer readers.Done()
			m.drainStream(ctx, id, st)
		}(id, st)
	}
}

// drainStream consumes one stream to end-of-stream and emits its payload as
// a single line. A failed stream is logged and dropped; its siblings and the
// acceptor keep going.
func (m *Mux) drainStream(ctx context.Context, id uint64, st transport.ReceiveStream) {
	// Unblock an in-flight Read when shutdown is requested.
	stop := context.AfterFunc(ctx, st.CancelRead)
	defer stop()

	var buf bytes.Buffer
	chunk := make([]byte, 32*1024)
	for {
		n, err := st.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			if m.cfg.OneMessage && m.cfg.StreamPolicy == StreamFirstByte {
				m.emitStream(id, buf.Bytes())
				m.cancel()
				return
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			if ctx.Err() == nil {
				m.log.Warn("stream read failed", zap.Uint64("stream", id), zap.Error(err))
			}
			return
		}
	}
	m.emitStream(id, buf.Bytes())
	if m.cfg.OneMessage {
		m.cancel()
	}
}

func (m *Mux) emitStream(id uint64, payload []byte) {
	m.log.Info("read stream payload", zap.Uint64("stream", id), zap.Int("bytes", len(payload)))
	m.record(capture.SourceStream, id, payload)
	m.sink.WriteLine(payload)
}
