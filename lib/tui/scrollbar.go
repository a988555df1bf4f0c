// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderScrollbar draws a one-column scrollbar of height rows for a
// list of totalRows of which visibleRows start at offset. When
// everything fits the thumb fills the column.
func RenderScrollbar(theme Theme, height, totalRows, visibleRows, offset int) string {
	if height <= 0 {
		return ""
	}
	track := lipgloss.NewStyle().Foreground(theme.BorderColor).Render("│")
	thumb := lipgloss.NewStyle().Foreground(theme.Accent).Render("┃")

	start, size := ThumbExtent(height, totalRows, visibleRows, offset)
	lines := make([]string, height)
	for index := range lines {
		if index >= start && index < start+size {
			lines[index] = thumb
		} else {
			lines[index] = track
		}
	}
	return strings.Join(lines, "\n")
}

// ThumbExtent returns the first row and length of the scrollbar thumb.
func ThumbExtent(height, totalRows, visibleRows, offset int) (start, size int) {
	if height <= 0 {
		return 0, 0
	}
	if totalRows <= visibleRows || totalRows <= 0 {
		return 0, height
	}
	size = max(height*visibleRows/totalRows, 1)
	scrollable := totalRows - visibleRows
	if travel := height - size; scrollable > 0 && travel > 0 {
		start = offset * travel / scrollable
	}
	start = min(max(start, 0), height-size)
	return start, size
}
