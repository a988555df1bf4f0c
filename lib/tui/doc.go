// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui holds the terminal styling shared by helpqueue's views:
// the color theme, the board's scrollbar, and the arrival highlight
// that makes newly queued tickets glow for a few seconds.
package tui
