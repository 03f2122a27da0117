// Package quic dials raw QUIC sessions with datagram support for quic URLs.
// Unlike the WebTransport backend there is no HTTP/3 layer: datagrams and
// unidirectional streams map straight onto the QUIC connection.
package quic

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"

	quicgo "github.com/quic-go/quic-go"

	"github.com/security-union/webtranscat/pkg/transport"
)

// defaultALPN is offered when the URL does not carry an alpn query parameter.
const defaultALPN = "webtranscat"

// Dial connects to host:port from the URL. The peer's expected ALPN can be
// overridden with ?alpn=<proto>.
func Dial(ctx context.Context, u *url.URL, tlsConf *tls.Config) (transport.Session, error) {
	if u.Port() == "" {
		return nil, fmt.Errorf("quic url %q: explicit port required", u.Host)
	}
	conf := tlsConf.Clone()
	conf.NextProtos = []string{defaultALPN}
	if alpn := u.Query().Get("alpn"); alpn != "" {
		conf.NextProtos = []string{alpn}
	}
	c, err := quicgo.DialAddr(ctx, u.Host, conf, &quicgo.Config{EnableDatagrams: true})
	if err != nil {
		return nil, fmt.Errorf("quic dial %s: %w", u.Host, err)
	}
	return &session{c: c}, nil
}

type session struct {
	c quicgo.Connection
}

func (s *session) ReceiveDatagram(ctx context.Context) ([]byte, error) {
	b, err := s.c.ReceiveDatagram(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return b, nil
}

func (s *session) SendDatagram(b []byte) error {
	if err := s.c.SendDatagram(b); err != nil {
		return mapErr(err)
	}
	return nil
}

func (s *session) AcceptUniStream(ctx context.Context) (transport.ReceiveStream, error) {
	st, err := s.c.AcceptUniStream(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return &rstream{st: st}, nil
}

func (s *session) CloseWithError(code uint32, reason string) error {
	return s.c.CloseWithError(quicgo.ApplicationErrorCode(code), reason)
}

func (s *session) LocalAddr() net.Addr  { return s.c.LocalAddr() }
func (s *session) RemoteAddr() net.Addr { return s.c.RemoteAddr() }

type rstream struct {
	st quicgo.ReceiveStream
}

func (r *rstream) Read(p []byte) (int, error) { return r.st.Read(p) }
func (r *rstream) CancelRead()                { r.st.CancelRead(0) }

func mapErr(err error) error {
	var appErr *quicgo.ApplicationError
	if errors.As(err, &appErr) {
		return fmt.Errorf("%w: %v", transport.ErrSessionClosed, err)
	}
	return err
}
