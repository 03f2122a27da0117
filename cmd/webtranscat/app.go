package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/security-union/webtranscat/pkg/capture"
	"github.com/security-union/webtranscat/pkg/client"
	"github.com/security-union/webtranscat/pkg/config"
	"github.com/security-union/webtranscat/pkg/observability"
	"github.com/security-union/webtranscat/pkg/transport/dialer"
)

// run is the main entry point after CLI parsing.
func run(opts Options) int {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "webtranscat: failed to load config:", err)
		return 1
	}
	applyFlags(cfg, opts)

	logger, err := observability.SetupLogger(cfg.Log, cfg.Verbosity, cfg.Quiet)
	if err != nil {
		fmt.Fprintln(os.Stderr, "webtranscat: failed to setup logger:", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	zap.L().Info("webtranscat starting")
	zap.L().Debug("effective configuration", zap.Any("config", cfg))

	// Operator interrupt is an external drain trigger for the multiplexer.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zap.L().Info("connecting", zap.String("url", cfg.URL))
	sess, err := dialer.Dial(ctx, cfg.URL, dialer.Options{
		Insecure: cfg.Insecure,
		Timeout:  cfg.DialTimeout(),
	})
	if err != nil {
		// Startup errors are reported even under -q.
		fmt.Fprintln(os.Stderr, "webtranscat:", err)
		return 1
	}
	zap.L().Info("connected", zap.Stringer("remote", sess.RemoteAddr()))

	mux := client.New(sess, client.Config{
		Unidirectional: cfg.Unidirectional,
		OneMessage:     cfg.OneMessage,
		StreamPolicy:   streamPolicy(cfg.OneMessagePolicy),
		DrainGrace:     cfg.DrainGrace(),
	}, client.NewSink(os.Stdout, logger.Named("sink")), os.Stdin, logger.Named("mux"))

	if cfg.CaptureFile != "" {
		cw, err := capture.NewWriter(cfg.CaptureFile)
		if err != nil {
			zap.L().Error("open capture file", zap.Error(err))
			return 1
		}
		defer func() { _ = cw.Close() }()
		mux.SetCapture(cw)
	}

	if err := mux.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "webtranscat:", err)
		return 1
	}
	return 0
}

// applyFlags lays CLI flags over the loaded configuration; flags win.
func applyFlags(cfg *config.Config, opts Options) {
	cfg.URL = opts.URL
	if opts.Insecure {
		cfg.Insecure = true
	}
	if opts.Unidirectional {
		cfg.Unidirectional = true
	}
	if opts.OneMessage {
		cfg.OneMessage = true
	}
	if opts.OneMessagePolicy != "" {
		cfg.OneMessagePolicy = opts.OneMessagePolicy
	}
	if opts.Quiet {
		cfg.Quiet = true
	}
	if opts.Verbosity > 0 {
		cfg.Verbosity = opts.Verbosity
	}
	if opts.CaptureFile != "" {
		cfg.CaptureFile = opts.CaptureFile
	}
	if opts.DialTimeout > 0 {
		cfg.DialTimeoutMS = int(opts.DialTimeout / time.Millisecond)
	}
}

func streamPolicy(s string) client.StreamPolicy {
	if s == config.PolicyFirstByte {
		return client.StreamFirstByte
	}
	return client.StreamComplete
}
