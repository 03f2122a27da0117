// Package capture appends every received unit to a file as a sequence of
// CBOR records, so a debugging session can be inspected offline after the
// terminal scrollback is gone.
package capture

import (
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Source tags where a record's bytes came from.
type Source string

const (
	SourceDatagram Source = "datagram"
	SourceStream   Source = "stream"
)

// Record is one captured inbound unit. Stream is only meaningful for
// stream-sourced records and holds the acceptance index.
type Record struct {
	Time   time.Time `cbor:"ts"`
	Source Source    `cbor:"src"`
	Stream uint64    `cbor:"stream,omitempty"`
	Data   []byte    `cbor:"data"`
}

// Writer appends CBOR records to a file. Safe for concurrent use; records
// from concurrent producers land whole, in encode order.
type Writer struct {
	mu  sync.Mutex
	f   *os.File
	enc *cbor.Encoder
}

func NewWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &Writer{f: f, enc: cbor.NewEncoder(f)}, nil
}

func (w *Writer) Record(src Source, stream uint64, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(Record{
		Time:   time.Now().UTC(),
		Source: src,
		Stream: stream,
		Data:   data,
	})
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}
