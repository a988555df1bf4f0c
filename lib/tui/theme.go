// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/helpqueue/lib/ticket"
)

// Theme is the color palette for helpqueue's terminal output. Colors
// are ANSI 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Ticket status colors.
	StatusOpen       lipgloss.Color
	StatusInProgress lipgloss.Color
	StatusLive       lipgloss.Color
	StatusClosed     lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Accent marks the ticket count and the focused scrollbar thumb.
	Accent lipgloss.Color

	// Warning and Error color status-bar messages.
	Warning lipgloss.Color
	Error   lipgloss.Color

	// ArrivalBackground tints rows for tickets that just joined the
	// queue.
	ArrivalBackground lipgloss.Color
}

// StatusColor returns the color for a ticket status. Unknown statuses
// are faint.
func (theme Theme) StatusColor(status ticket.Status) lipgloss.Color {
	switch status {
	case ticket.StatusOpen:
		return theme.StatusOpen
	case ticket.StatusInProgress:
		return theme.StatusInProgress
	case ticket.StatusLive, ticket.StatusCurrent:
		return theme.StatusLive
	case ticket.StatusClosed:
		return theme.StatusClosed
	default:
		return theme.FaintText
	}
}

// DefaultTheme suits a dark 256-color terminal.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	StatusOpen:       lipgloss.Color("114"), // green
	StatusInProgress: lipgloss.Color("220"), // amber
	StatusLive:       lipgloss.Color("75"),  // blue
	StatusClosed:     lipgloss.Color("245"), // gray

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	Accent:  lipgloss.Color("75"),
	Warning: lipgloss.Color("208"),
	Error:   lipgloss.Color("196"),

	ArrivalBackground: lipgloss.Color("58"), // dark amber
}
