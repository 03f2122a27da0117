// Package transport defines the session surface the client multiplexes over:
// one connection carrying unreliable datagrams plus inbound unidirectional
// streams. Concrete backends live in the subpackages (webtrans for
// WebTransport over HTTP/3, quic for raw QUIC), and pkg/transport/dialer
// picks between them by URL scheme.
package transport
