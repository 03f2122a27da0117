package transport

import (
	"context"
	"errors"
	"io"
	"net"
)

// ErrSessionClosed reports that the session ended, locally or by the peer,
// rather than failing. Receive loops treat it as a drain trigger, not a fault.
var ErrSessionClosed = errors.New("session closed")

// ReceiveStream is one inbound unidirectional stream. The reader draining it
// owns it exclusively; CancelRead unblocks an in-flight Read during shutdown.
type ReceiveStream interface {
	io.Reader
	CancelRead()
}

// Session is one established connection carrying unreliable datagrams and
// inbound unidirectional streams. All methods are safe for concurrent use
// from independent goroutines; that guarantee comes from the backing
// transport implementation, not from callers.
type Session interface {
	// ReceiveDatagram blocks until the next inbound datagram arrives, the
	// session ends (ErrSessionClosed), or ctx is done.
	ReceiveDatagram(ctx context.Context) ([]byte, error)

	// SendDatagram queues one outbound datagram.
	SendDatagram(b []byte) error

	// AcceptUniStream blocks until the peer opens the next unidirectional
	// stream, the session ends, or ctx is done.
	AcceptUniStream(ctx context.Context) (ReceiveStream, error)

	// CloseWithError tears the whole session down. Called once, by whoever
	// owns the session lifecycle, after its users have been stopped.
	CloseWithError(code uint32, reason string) error

	LocalAddr() net.Addr
	RemoteAddr() net.Addr
}

// IsClosed reports whether err means the session or its handle went away
// (including cooperative cancellation) rather than a transport fault.
func IsClosed(err error) bool {
	return errors.Is(err, ErrSessionClosed) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, context.Canceled)
}
