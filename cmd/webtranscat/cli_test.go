package main

import (
	"testing"
	"time"
)

func TestParseFlags(t *testing.T) {
	opts, err := ParseFlags([]string{
		"-v", "-v", "-q", "-insecure", "-1", "-u",
		"-capture", "dump.cbor",
		"-dial-timeout", "5s",
		"https://example.com:4433/wt",
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.URL != "https://example.com:4433/wt" {
		t.Fatalf("url = %q", opts.URL)
	}
	if opts.Verbosity != 2 {
		t.Fatalf("verbosity = %d, want 2", opts.Verbosity)
	}
	if !opts.Quiet || !opts.Insecure || !opts.OneMessage || !opts.Unidirectional {
		t.Fatalf("bool flags not set: %+v", opts)
	}
	if opts.CaptureFile != "dump.cbor" {
		t.Fatalf("capture = %q", opts.CaptureFile)
	}
	if opts.DialTimeout != 5*time.Second {
		t.Fatalf("dial timeout = %v", opts.DialTimeout)
	}
}

func TestParseFlagsLongAliases(t *testing.T) {
	opts, err := ParseFlags([]string{
		"-unidirectional", "-one-message", "-one-message-policy", "first-byte",
		"quic://example.com:7000",
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !opts.Unidirectional || !opts.OneMessage {
		t.Fatalf("long aliases not applied: %+v", opts)
	}
	if opts.OneMessagePolicy != "first-byte" {
		t.Fatalf("policy = %q", opts.OneMessagePolicy)
	}
}

func TestParseFlagsRequiresURL(t *testing.T) {
	if _, err := ParseFlags([]string{"-v"}); err == nil {
		t.Fatal("expected error without URL argument")
	}
	if _, err := ParseFlags([]string{"a", "b"}); err == nil {
		t.Fatal("expected error with two positional arguments")
	}
}

func TestParseFlagsRejectsBadPolicy(t *testing.T) {
	if _, err := ParseFlags([]string{"-one-message-policy", "sometimes", "https://h:1/x"}); err == nil {
		t.Fatal("expected error for invalid policy")
	}
}
