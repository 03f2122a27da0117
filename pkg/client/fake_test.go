package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/security-union/webtranscat/pkg/transport"
)

type fakeAddr string

func (a fakeAddr) Network() string { return "fake" }
func (a fakeAddr) String() string  { return string(a) }

// fakeStream feeds scripted chunks to its reader. Closing chunks is
// end-of-stream; an error pushed to fail aborts the next read.
type fakeStream struct {
	chunks   chan []byte
	fail     chan error
	canceled chan struct{}
	once     sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		chunks:   make(chan []byte, 16),
		fail:     make(chan error, 1),
		canceled: make(chan struct{}),
	}
}

func (f *fakeStream) Read(p []byte) (int, error) {
	select {
	case err := <-f.fail:
		return 0, err
	case b, ok := <-f.chunks:
		if !ok {
			return 0, io.EOF
		}
		return copy(p, b), nil
	case <-f.canceled:
		return 0, errors.New("read canceled")
	}
}

func (f *fakeStream) CancelRead() { f.once.Do(func() { close(f.canceled) }) }

// fakeSession is an in-memory transport.Session driven by the test.
type fakeSession struct {
	datagrams chan []byte
	streams   chan transport.ReceiveStream

	mu      sync.Mutex
	sent    [][]byte
	sendErr error

	closed    chan struct{}
	closeOnce sync.Once
	closes    atomic.Int32
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		datagrams: make(chan []byte, 16),
		streams:   make(chan transport.ReceiveStream, 16),
		closed:    make(chan struct{}),
	}
}

func (s *fakeSession) ReceiveDatagram(ctx context.Context) ([]byte, error) {
	select {
	case b := <-s.datagrams:
		return b, nil
	case <-s.closed:
		return nil, transport.ErrSessionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *fakeSession) SendDatagram(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, append([]byte(nil), b...))
	return nil
}

func (s *fakeSession) AcceptUniStream(ctx context.Context) (transport.ReceiveStream, error) {
	select {
	case st := <-s.streams:
		return st, nil
	case <-s.closed:
		return nil, transport.ErrSessionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *fakeSession) CloseWithError(uint32, string) error {
	s.closes.Add(1)
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeSession) LocalAddr() net.Addr  { return fakeAddr("local") }
func (s *fakeSession) RemoteAddr() net.Addr { return fakeAddr("remote") }

// peerClose simulates the peer ending the session.
func (s *fakeSession) peerClose() { s.closeOnce.Do(func() { close(s.closed) }) }

func (s *fakeSession) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *fakeSession) sentAt(i int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[i]
}

func (s *fakeSession) setSendErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendErr = err
}

// lockedBuffer lets the test read output while the sink is still writing.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
