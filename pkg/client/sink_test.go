package client

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func TestSinkSerializesConcurrentWriters(t *testing.T) {
	var out lockedBuffer
	s := NewSink(&out, zap.NewNop())

	const writers = 8
	const linesPer = 200
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			line := []byte(strings.Repeat(fmt.Sprintf("%d", w), 64))
			for i := 0; i < linesPer; i++ {
				s.WriteLine(line)
			}
		}(w)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != writers*linesPer {
		t.Fatalf("got %d lines, want %d", len(lines), writers*linesPer)
	}
	for i, ln := range lines {
		if len(ln) != 64 {
			t.Fatalf("line %d has length %d, want 64: %q", i, len(ln), ln)
		}
		for j := 1; j < len(ln); j++ {
			if ln[j] != ln[0] {
				t.Fatalf("line %d spliced from two writers: %q", i, ln)
			}
		}
	}
}

func TestSinkSwallowsWriteErrors(t *testing.T) {
	s := NewSink(failWriter{}, zap.NewNop())
	// Must neither panic nor block; output loss is not fatal.
	s.WriteLine([]byte("lost"))
	s.WriteLine([]byte("also lost"))
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("tty gone") }
