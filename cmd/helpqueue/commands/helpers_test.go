// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/helpqueue/cmd/helpqueue/cli"
	"github.com/bureau-foundation/helpqueue/lib/clock"
)

const testTimeout = 5 * time.Second

// syncBuffer is a bytes.Buffer safe for the writes sync handlers make
// from their own goroutines.
type syncBuffer struct {
	mutex  sync.Mutex
	buffer bytes.Buffer
}

func (buffer *syncBuffer) Write(data []byte) (int, error) {
	buffer.mutex.Lock()
	defer buffer.mutex.Unlock()
	return buffer.buffer.Write(data)
}

func (buffer *syncBuffer) String() string {
	buffer.mutex.Lock()
	defer buffer.mutex.Unlock()
	return buffer.buffer.String()
}

type harness struct {
	env    *environment
	stdout *syncBuffer
	stderr *syncBuffer
	cancel context.CancelFunc
}

// newHarness returns an environment writing to buffers whose run
// context is cancelled by harness.cancel or at test cleanup.
func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("HELPQUEUE_CONFIG", "")

	base, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := &harness{stdout: &syncBuffer{}, stderr: &syncBuffer{}, cancel: cancel}
	h.env = &environment{
		stdout: h.stdout,
		stderr: h.stderr,
		runContext: func() (context.Context, context.CancelFunc) {
			return context.WithCancel(base)
		},
		newLogger: func(level slog.Level) *slog.Logger {
			return cli.NewLogger(h.stderr, false, level)
		},
		clock: clock.Real(),
	}
	return h
}

func (h *harness) run(args ...string) error {
	return newRoot(h.env).Execute(args)
}

// waitForOutput polls stdout until it contains want.
func (h *harness) waitForOutput(t *testing.T, want string) {
	t.Helper()
	deadline := time.Now().Add(testTimeout)
	for !strings.Contains(h.stdout.String(), want) {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %q in output:\n%s", want, h.stdout.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	coder, ok := err.(interface{ ExitCode() int })
	if !ok {
		t.Fatalf("error %v (%T) carries no exit code", err, err)
	}
	return coder.ExitCode()
}
