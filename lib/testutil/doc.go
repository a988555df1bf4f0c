// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for helpqueue packages.
//
// [RequireReceive], [RequireClosed] and [RequireNoReceive] wrap the
// select-with-timeout pattern used when tests wait on channels fed by
// background goroutines (sync handlers, the websocket read loop).
// These helpers are the only place tests use wall-clock timeouts;
// everything else runs on a fake clock.
//
// All helpers call t.Fatalf on failure.
package testutil
