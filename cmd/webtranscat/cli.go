package main

import (
	"flag"
	"fmt"
	"strconv"
	"time"
)

// countFlag is a repeatable boolean flag: -v -v parses to 2.
type countFlag int

func (c *countFlag) String() string   { return strconv.Itoa(int(*c)) }
func (c *countFlag) IsBoolFlag() bool { return true }

func (c *countFlag) Set(s string) error {
	if s == "" || s == "true" {
		*c++
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*c = countFlag(n)
	return nil
}

// Options holds CLI options for the client.
type Options struct {
	URL              string
	ConfigPath       string
	Insecure         bool
	Unidirectional   bool
	OneMessage       bool
	OneMessagePolicy string
	Quiet            bool
	Verbosity        int
	CaptureFile      string
	DialTimeout      time.Duration
}

// ParseFlags parses CLI flags from args and returns Options. The single
// positional argument is the endpoint URL.
func ParseFlags(args []string) (Options, error) {
	fs := flag.NewFlagSet("webtranscat", flag.ContinueOnError)
	var opts Options
	var verbosity countFlag
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to YAML config file")
	fs.BoolVar(&opts.Insecure, "insecure", false, "Skip certificate verification (insecure)")
	fs.BoolVar(&opts.Unidirectional, "u", false, "Only listen for incoming data, don't send from stdin")
	fs.BoolVar(&opts.Unidirectional, "unidirectional", false, "Only listen for incoming data, don't send from stdin")
	fs.BoolVar(&opts.OneMessage, "1", false, "Exit after receiving one message")
	fs.BoolVar(&opts.OneMessage, "one-message", false, "Exit after receiving one message")
	fs.StringVar(&opts.OneMessagePolicy, "one-message-policy", "",
		"When a stream satisfies -1: complete or first-byte")
	fs.BoolVar(&opts.Quiet, "q", false, "Suppress all diagnostic messages, except of startup errors")
	fs.Var(&verbosity, "v", "Increase verbosity level to info or further (repeatable)")
	fs.StringVar(&opts.CaptureFile, "capture", "", "Append every received unit to this file as CBOR records")
	fs.DurationVar(&opts.DialTimeout, "dial-timeout", 0, "Connection handshake timeout")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: webtranscat [flags] URL\n\n")
		fmt.Fprintf(fs.Output(), "Connect to a WebTransport (https://...) or raw QUIC (quic://...) endpoint\n")
		fmt.Fprintf(fs.Output(), "and exchange datagrams and streams with it interactively.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Verbosity = int(verbosity)
	switch opts.OneMessagePolicy {
	case "", "complete", "first-byte":
	default:
		fmt.Fprintf(fs.Output(), "invalid -one-message-policy %q (want complete or first-byte)\n", opts.OneMessagePolicy)
		return opts, fmt.Errorf("invalid one-message policy %q", opts.OneMessagePolicy)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, fmt.Errorf("expected exactly one URL argument, got %d", fs.NArg())
	}
	opts.URL = fs.Arg(0)
	return opts, nil
}
