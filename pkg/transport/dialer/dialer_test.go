package dialer

import (
	"context"
	"strings"
	"testing"
)

func TestDialRejectsBadURLs(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{"unsupported scheme", "wss://host:443/x", "unsupported url scheme"},
		{"no host", "https://", "no host"},
		{"malformed", "://nope", "parse url"},
		{"quic without port", "quic://host", "explicit port required"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Dial(context.Background(), c.url, Options{})
			if err == nil {
				t.Fatalf("Dial(%q) succeeded, want error", c.url)
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Fatalf("Dial(%q) error %q, want substring %q", c.url, err, c.want)
			}
		})
	}
}
