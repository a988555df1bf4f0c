// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates the structured logger for command
// operations. When stderr is a terminal it uses slog.TextHandler for
// people; when stderr is piped or redirected it uses slog.JSONHandler
// so scripts and log collectors can parse it.
func NewCommandLogger(level slog.Level) *slog.Logger {
	return NewLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), level)
}

// NewLogger is NewCommandLogger with the writer and terminal detection
// supplied by the caller.
func NewLogger(w io.Writer, terminal bool, level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if terminal {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

// ParseLevel accepts debug, info, warn or error.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, Validation("invalid log level %q: want debug, info, warn or error", name)
	}
	return level, nil
}
