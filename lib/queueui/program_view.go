// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package queueui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/helpqueue/lib/queuesync"
)

// renderMsg replaces one fragment of the board.
type renderMsg struct {
	fragment queuesync.Fragment
	snapshot queuesync.Snapshot
}

// reloadMsg clears the board ahead of a full fetch.
type reloadMsg struct{}

// connectionMsg reports the live channel's state.
type connectionMsg struct {
	connected bool
	detail    string
}

// Sender delivers messages to a running program. *tea.Program
// satisfies it.
type Sender interface {
	Send(message tea.Msg)
}

// ProgramView adapts a bubbletea program into a queuesync.View.
type ProgramView struct {
	sender Sender
}

// NewProgramView returns a view that forwards to sender.
func NewProgramView(sender Sender) *ProgramView {
	return &ProgramView{sender: sender}
}

// Render implements queuesync.View.
func (view *ProgramView) Render(fragment queuesync.Fragment, snapshot queuesync.Snapshot) {
	view.sender.Send(renderMsg{fragment: fragment, snapshot: snapshot})
}

// Reload implements queuesync.View.
func (view *ProgramView) Reload() {
	view.sender.Send(reloadMsg{})
}

// Connection implements queuesync.View.
func (view *ProgramView) Connection(connected bool, detail string) {
	view.sender.Send(connectionMsg{connected: connected, detail: detail})
}
