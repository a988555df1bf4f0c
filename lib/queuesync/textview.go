// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package queuesync

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/bureau-foundation/helpqueue/lib/ticket"
	"github.com/bureau-foundation/helpqueue/lib/tui"
)

// clearScreen homes the cursor and erases the display.
const clearScreen = "\x1b[H\x1b[2J"

// Column widths for TextView tables. Cells longer than their column
// are truncated with an ellipsis.
const (
	positionWidth = 12
	studentWidth  = 24
	tableWidth    = 8
	courseWidth   = 20
)

// TextViewOptions configures a TextView.
type TextViewOptions struct {
	// Title heads every table render.
	Title string

	// TimeFormat renders the refresh stamp. Defaults to "3:04:05 PM".
	TimeFormat string

	// Theme colors the output when the writer supports color.
	// Defaults to tui.DefaultTheme.
	Theme *tui.Theme

	// Profile overrides color detection. Nil means detect from the
	// writer: a terminal gets its environment's profile, anything
	// else gets plain ASCII.
	Profile *termenv.Profile
}

// TextView prints fragments as lines of text. On a terminal, Reload
// clears the screen so the latest render is always alone on it.
type TextView struct {
	writer     io.Writer
	terminal   bool
	title      string
	timeFormat string

	titleStyle      lipgloss.Style
	faintStyle      lipgloss.Style
	headerStyle     lipgloss.Style
	inProgressStyle lipgloss.Style
	countStyle      lipgloss.Style
	warningStyle    lipgloss.Style
}

// NewTextView returns a TextView writing to writer.
func NewTextView(writer io.Writer, options TextViewOptions) *TextView {
	terminal := isTerminal(writer)

	var profile termenv.Profile
	switch {
	case options.Profile != nil:
		profile = *options.Profile
	case terminal:
		profile = termenv.NewOutput(writer).EnvColorProfile()
	default:
		profile = termenv.Ascii
	}
	renderer := lipgloss.NewRenderer(writer, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)

	theme := tui.DefaultTheme
	if options.Theme != nil {
		theme = *options.Theme
	}
	timeFormat := options.TimeFormat
	if timeFormat == "" {
		timeFormat = "3:04:05 PM"
	}

	return &TextView{
		writer:          writer,
		terminal:        terminal,
		title:           options.Title,
		timeFormat:      timeFormat,
		titleStyle:      renderer.NewStyle().Bold(true).Foreground(theme.HeaderForeground),
		faintStyle:      renderer.NewStyle().Foreground(theme.FaintText),
		headerStyle:     renderer.NewStyle().Bold(true).Foreground(theme.NormalText),
		inProgressStyle: renderer.NewStyle().Foreground(theme.StatusColor(ticket.StatusInProgress)),
		countStyle:      renderer.NewStyle().Bold(true).Foreground(theme.Accent),
		warningStyle:    renderer.NewStyle().Foreground(theme.Warning),
	}
}

// Render prints fragment.
func (view *TextView) Render(fragment Fragment, snapshot Snapshot) {
	var builder strings.Builder
	switch fragment {
	case FragmentCount:
		fmt.Fprintf(&builder, "%s %s\n",
			view.countStyle.Render(strconv.Itoa(snapshot.Count)),
			view.faintStyle.Render("open tickets, refreshed "+snapshot.RefreshedAt.Format(view.timeFormat)))
	default:
		view.renderTable(&builder, snapshot)
	}
	io.WriteString(view.writer, builder.String())
}

func (view *TextView) renderTable(builder *strings.Builder, snapshot Snapshot) {
	if view.title != "" {
		builder.WriteString(view.titleStyle.Render(view.title))
		builder.WriteString("  ")
	}
	builder.WriteString(view.faintStyle.Render(fmt.Sprintf("%d open, refreshed %s",
		snapshot.Count, snapshot.RefreshedAt.Format(view.timeFormat))))
	builder.WriteString("\n")

	builder.WriteString(view.headerStyle.Render(FormatRow("Position", "Student", "Table", "Course")))
	builder.WriteString("\n")
	for _, row := range snapshot.Rows {
		line := FormatRow(row.Position.String(), row.Ticket.StudentName, string(row.Ticket.Table), row.Ticket.PhysicsCourse)
		if row.Ticket.InProgress() {
			line = view.inProgressStyle.Render(line)
		}
		builder.WriteString(line)
		builder.WriteString("\n")
	}
}

// Reload clears the screen on a terminal and prints a separator
// elsewhere.
func (view *TextView) Reload() {
	if view.terminal {
		io.WriteString(view.writer, clearScreen)
		return
	}
	io.WriteString(view.writer, view.faintStyle.Render("-- reload --")+"\n")
}

// Connection prints channel state changes.
func (view *TextView) Connection(connected bool, detail string) {
	if connected {
		io.WriteString(view.writer, view.faintStyle.Render("live channel connected")+"\n")
		return
	}
	io.WriteString(view.writer, view.warningStyle.Render("live channel disconnected: "+detail)+"\n")
}

// FormatRow lays out one table line in fixed-width columns.
func FormatRow(position, student, table, course string) string {
	return strings.TrimRight(
		pad(position, positionWidth)+" "+
			pad(student, studentWidth)+" "+
			pad(table, tableWidth)+" "+
			pad(course, courseWidth), " ")
}

func pad(text string, width int) string {
	text = ansi.Truncate(text, width, "…")
	if gap := width - ansi.StringWidth(text); gap > 0 {
		text += strings.Repeat(" ", gap)
	}
	return text
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
