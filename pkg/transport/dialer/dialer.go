// Package dialer resolves an endpoint URL to a concrete session backend and
// performs the connection handshake.
package dialer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/security-union/webtranscat/pkg/transport"
	rawquic "github.com/security-union/webtranscat/pkg/transport/quic"
	"github.com/security-union/webtranscat/pkg/transport/webtrans"
)

// DefaultTimeout bounds the handshake when Options.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// Options selects the TLS trust mode and the handshake bound.
type Options struct {
	// Insecure skips certificate verification.
	Insecure bool
	// Timeout bounds URL resolution plus handshake.
	Timeout time.Duration
}

// Dial parses rawURL, builds the TLS trust configuration, and hands off to
// the backend for the URL's scheme: https for WebTransport, quic for raw
// QUIC. The returned session is established and ready for traffic.
func Dial(ctx context.Context, rawURL string, opts Options) (transport.Session, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("url %q has no host", rawURL)
	}

	// Empty RootCAs means the system trust store.
	tlsConf := &tls.Config{MinVersion: tls.VersionTLS13}
	if opts.Insecure {
		zap.L().Warn("certificate verification disabled (--insecure)")
		tlsConf.InsecureSkipVerify = true
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch u.Scheme {
	case "https":
		return webtrans.Dial(ctx, u, tlsConf)
	case "quic":
		return rawquic.Dial(ctx, u, tlsConf)
	default:
		return nil, fmt.Errorf("unsupported url scheme %q (want https or quic)", u.Scheme)
	}
}
