// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock frozen at initial.
func Fake(initial time.Time) *FakeClock {
	fake := &FakeClock{current: initial}
	fake.changed = sync.NewCond(&fake.mutex)
	return fake
}

// FakeClock is a Clock for tests. Pending After channels and AfterFunc
// callbacks fire, in deadline order, during Advance. Callbacks run on
// the goroutine calling Advance and must not call Advance themselves.
type FakeClock struct {
	mutex   sync.Mutex
	current time.Time
	pending []*fakeTimer
	changed *sync.Cond
}

type fakeTimer struct {
	deadline time.Time
	channel  chan time.Time
	callback func()
	active   bool
}

// Now returns the frozen time.
func (fake *FakeClock) Now() time.Time {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	return fake.current
}

// After registers a one-shot channel timer.
func (fake *FakeClock) After(d time.Duration) <-chan time.Time {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- fake.current
		return channel
	}
	fake.addLocked(&fakeTimer{deadline: fake.current.Add(d), channel: channel, active: true})
	return channel
}

// AfterFunc registers a callback timer.
func (fake *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()

	timer := &fakeTimer{deadline: fake.current.Add(d), callback: f, active: true}
	fake.addLocked(timer)

	return &Timer{
		stopFunc: func() bool {
			fake.mutex.Lock()
			defer fake.mutex.Unlock()
			wasActive := timer.active
			timer.active = false
			fake.removeLocked(timer)
			return wasActive
		},
		resetFunc: func(d time.Duration) bool {
			fake.mutex.Lock()
			defer fake.mutex.Unlock()
			wasActive := timer.active
			fake.removeLocked(timer)
			timer.deadline = fake.current.Add(d)
			timer.active = true
			fake.addLocked(timer)
			return wasActive
		},
	}
}

// Advance moves the clock forward by d and fires every timer whose
// deadline is not after the new time.
func (fake *FakeClock) Advance(d time.Duration) {
	fake.mutex.Lock()
	fake.current = fake.current.Add(d)
	target := fake.current

	var due, remaining []*fakeTimer
	for _, timer := range fake.pending {
		if timer.deadline.After(target) {
			remaining = append(remaining, timer)
			continue
		}
		timer.active = false
		due = append(due, timer)
	}
	fake.pending = remaining
	fake.mutex.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})
	for _, timer := range due {
		if timer.callback != nil {
			timer.callback()
			continue
		}
		select {
		case timer.channel <- target:
		default:
		}
	}
}

// WaitForTimers blocks until at least n timers are pending.
func (fake *FakeClock) WaitForTimers(n int) {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	for len(fake.pending) < n {
		fake.changed.Wait()
	}
}

// PendingCount returns the number of timers that have not fired or
// been stopped.
func (fake *FakeClock) PendingCount() int {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	return len(fake.pending)
}

func (fake *FakeClock) addLocked(timer *fakeTimer) {
	fake.pending = append(fake.pending, timer)
	fake.changed.Broadcast()
}

func (fake *FakeClock) removeLocked(timer *fakeTimer) {
	for index, candidate := range fake.pending {
		if candidate == timer {
			fake.pending = append(fake.pending[:index], fake.pending[index+1:]...)
			return
		}
	}
}
