package client

import (
	"bufio"
	"context"

	"go.uber.org/zap"
)

// maxInputLine bounds one line of local input.
const maxInputLine = 1 << 20

// forwardInput reads lines of local input and sends each as an outbound
// datagram, with the line terminator stripped. End of input is a clean stop
// for this component only: the operator may still want to watch inbound
// traffic. A failed send likewise kills only this component.
func (m *Mux) forwardInput(ctx context.Context) error {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		// The underlying read on a real stdin is not interruptible; when
		// shutdown wins the race below this goroutine is abandoned and dies
		// with the process.
		defer close(lines)
		sc := bufio.NewScanner(m.in)
		sc.Buffer(make([]byte, 0, 64*1024), maxInputLine)
		for sc.Scan() {
			line := append([]byte(nil), sc.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						m.log.Warn("local input read failed", zap.Error(err))
					}
				default:
				}
				m.log.Info("end of local input")
				return nil
			}
			m.log.Info("sending datagram", zap.Int("bytes", len(line)))
			if err := m.sess.SendDatagram(line); err != nil {
				m.log.Error("send datagram failed", zap.Error(err))
				return nil
			}
		}
	}
}
