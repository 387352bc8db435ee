package main

import (
	"context"
	"io"
	"log/slog"

	slogctx "github.com/veqryn/slog-context"
)

// newLogger returns a human-readable logger; debug lowers the level
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// withLogger installs logger as the default and stores it in ctx
func withLogger(ctx context.Context, logger *slog.Logger) context.Context {
	slog.SetDefault(logger)
	return slogctx.NewCtx(ctx, logger)
}
