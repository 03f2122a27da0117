package client

import (
	"context"

	"go.uber.org/zap"

	"github.com/security-union/webtranscat/pkg/capture"
)

// receiveDatagrams forwards inbound datagrams to the sink in arrival order.
// A datagram is inherently one complete unit, so under one-message mode the
// first one already satisfies it.
func (m *Mux) receiveDatagrams(ctx context.Context) error {
	for {
		data, err := m.sess.ReceiveDatagram(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		m.log.Info("received datagram", zap.Int("bytes", len(data)))
		m.record(capture.SourceDatagram, 0, data)
		m.sink.WriteLine(data)
		if m.cfg.OneMessage {
			m.cancel()
			return nil
		}
	}
}
