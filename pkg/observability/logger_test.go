package observability

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestVerbosityLevel(t *testing.T) {
	cases := []struct {
		verbosity int
		quiet     bool
		want      zapcore.Level
	}{
		{0, false, zapcore.WarnLevel},
		{1, false, zapcore.InfoLevel},
		{2, false, zapcore.DebugLevel},
		{5, false, zapcore.DebugLevel},
		{0, true, zapcore.ErrorLevel},
		{3, true, zapcore.ErrorLevel},
	}
	for _, c := range cases {
		if got := VerbosityLevel(c.verbosity, c.quiet); got != c.want {
			t.Fatalf("VerbosityLevel(%d, %v) = %v, want %v", c.verbosity, c.quiet, got, c.want)
		}
	}
}
