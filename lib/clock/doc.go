// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Structs that read the time or wait on it carry a Clock field. In
// production that field holds Real(); tests hold a *FakeClock whose
// time moves only when Advance is called:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
//	client := queuesync.New(queuesync.Config{Clock: fake, ...})
//	fake.WaitForTimers(1)
//	fake.Advance(30 * time.Second)
//
// WaitForTimers blocks until the code under test has registered its
// timers, so Advance never races with registration.
package clock
