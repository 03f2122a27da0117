// Package webtrans dials WebTransport sessions over HTTP/3 for https URLs.
package webtrans

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"

	quicgo "github.com/quic-go/quic-go"
	"github.com/quic-go/webtransport-go"

	"github.com/security-union/webtranscat/pkg/transport"
)

// Dial connects to a WebTransport endpoint and completes the CONNECT
// handshake, returning the session ready for datagrams and streams.
func Dial(ctx context.Context, u *url.URL, tlsConf *tls.Config) (transport.Session, error) {
	d := webtransport.Dialer{
		TLSClientConfig: tlsConf,
		QUICConfig:      &quicgo.Config{EnableDatagrams: true},
	}
	rsp, s, err := d.Dial(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("webtransport dial %s: %w", u.Host, err)
	}
	if rsp != nil && rsp.Body != nil {
		_ = rsp.Body.Close()
	}
	return &session{s: s}, nil
}

type session struct {
	s *webtransport.Session
}

func (s *session) ReceiveDatagram(ctx context.Context) ([]byte, error) {
	b, err := s.s.ReceiveDatagram(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return b, nil
}

func (s *session) SendDatagram(b []byte) error {
	if err := s.s.SendDatagram(b); err != nil {
		return mapErr(err)
	}
	return nil
}

func (s *session) AcceptUniStream(ctx context.Context) (transport.ReceiveStream, error) {
	st, err := s.s.AcceptUniStream(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return &rstream{st: st}, nil
}

func (s *session) CloseWithError(code uint32, reason string) error {
	return s.s.CloseWithError(webtransport.SessionErrorCode(code), reason)
}

func (s *session) LocalAddr() net.Addr  { return s.s.LocalAddr() }
func (s *session) RemoteAddr() net.Addr { return s.s.RemoteAddr() }

type rstream struct {
	st webtransport.ReceiveStream
}

func (r *rstream) Read(p []byte) (int, error) { return r.st.Read(p) }
func (r *rstream) CancelRead()                { r.st.CancelRead(0) }

// mapErr folds the "session is gone" error shapes into ErrSessionClosed so
// the client treats peer close as a drain trigger, not a fault.
func mapErr(err error) error {
	var sessErr *webtransport.SessionError
	if errors.As(err, &sessErr) {
		return fmt.Errorf("%w: %v", transport.ErrSessionClosed, err)
	}
	var appErr *quicgo.ApplicationError
	if errors.As(err, &appErr) {
		return fmt.Errorf("%w: %v", transport.ErrSessionClosed, err)
	}
	return err
}
