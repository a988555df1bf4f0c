// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package queueui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/helpqueue/lib/clock"
	"github.com/bureau-foundation/helpqueue/lib/queuesync"
	"github.com/bureau-foundation/helpqueue/lib/ticket"
	"github.com/bureau-foundation/helpqueue/lib/tui"
)

// chromeLines is the number of rows outside the scrolling table: the
// title bar, the column header, and the status bar.
const chromeLines = 3

// arrivalTickMsg redraws the board while new arrivals glow.
type arrivalTickMsg struct{}

// Options configures a Model.
type Options struct {
	// Title heads the board. Defaults to "Live Queue".
	Title string

	// TimeFormat renders the refresh stamp. Defaults to "3:04:05 PM".
	TimeFormat string

	// Keys defaults to DefaultKeyMap.
	Keys *KeyMap

	// Theme defaults to tui.DefaultTheme.
	Theme *tui.Theme

	// Clock drives the arrival glow. Defaults to clock.Real().
	Clock clock.Clock

	// Reload runs on a background goroutine when the user asks for a
	// reload. Nil disables the key.
	Reload func()
}

// Model is the bubbletea model for the live queue board.
type Model struct {
	title      string
	timeFormat string
	keys       KeyMap
	theme      tui.Theme
	clock      clock.Clock
	reload     func()

	width    int
	height   int
	ready    bool
	viewport viewport.Model

	rows        []ticket.Row
	hasTable    bool
	count       int
	hasCount    bool
	refreshedAt time.Time

	connected        bool
	connectionDetail string

	status         string
	statusLevel    slog.Level
	statusSequence int

	arrivals *tui.ArrivalTracker
	ticking  bool
}

// NewModel returns an empty board waiting for its first render.
func NewModel(options Options) Model {
	model := Model{
		title:      options.Title,
		timeFormat: options.TimeFormat,
		keys:       DefaultKeyMap,
		theme:      tui.DefaultTheme,
		clock:      options.Clock,
		reload:     options.Reload,
		arrivals:   tui.NewArrivalTracker(),
	}
	if model.title == "" {
		model.title = "Live Queue"
	}
	if model.timeFormat == "" {
		model.timeFormat = "3:04:05 PM"
	}
	if options.Keys != nil {
		model.keys = *options.Keys
	}
	if options.Theme != nil {
		model.theme = *options.Theme
	}
	if model.clock == nil {
		model.clock = clock.Real()
	}
	return model
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return model.handleKey(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.viewport.Width = max(model.width-2, 1)
		model.viewport.Height = max(model.height-chromeLines, 1)
		model.refreshContent()

	case renderMsg:
		return model.handleRender(message)

	case reloadMsg:
		model.rows = nil
		model.hasTable = false
		model.hasCount = false
		model.viewport.GotoTop()
		model.refreshContent()

	case connectionMsg:
		model.connected = message.connected
		model.connectionDetail = message.detail

	case logRecordMsg:
		model.statusSequence++
		model.status = message.Summary
		model.statusLevel = message.Level
		sequence := model.statusSequence
		return model, tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
			return logRecordFadeMsg{sequence: sequence}
		})

	case logRecordFadeMsg:
		if message.sequence == model.statusSequence {
			model.status = ""
		}

	case arrivalTickMsg:
		model.refreshContent()
		if model.arrivals.Glowing(model.clock.Now()) {
			return model, arrivalTick()
		}
		model.ticking = false
	}
	return model, nil
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit
	case key.Matches(message, model.keys.Reload):
		if model.reload == nil {
			return model, nil
		}
		reload := model.reload
		return model, func() tea.Msg {
			reload()
			return nil
		}
	case key.Matches(message, model.keys.Up):
		model.viewport.LineUp(1)
	case key.Matches(message, model.keys.Down):
		model.viewport.LineDown(1)
	case key.Matches(message, model.keys.PageUp):
		model.viewport.LineUp(model.viewport.Height)
	case key.Matches(message, model.keys.PageDown):
		model.viewport.LineDown(model.viewport.Height)
	case key.Matches(message, model.keys.Home):
		model.viewport.GotoTop()
	case key.Matches(message, model.keys.End):
		model.viewport.GotoBottom()
	}
	return model, nil
}

func (model Model) handleRender(message renderMsg) (tea.Model, tea.Cmd) {
	model.count = message.snapshot.Count
	model.hasCount = true
	model.refreshedAt = message.snapshot.RefreshedAt

	if message.fragment == queuesync.FragmentTable {
		model.rows = message.snapshot.Rows
		model.hasTable = true
		ids := make([]int, len(model.rows))
		for index, row := range model.rows {
			ids[index] = row.Ticket.ID
		}
		model.arrivals.Observe(ids, model.clock.Now())
	}
	model.refreshContent()

	if !model.ticking && model.arrivals.Glowing(model.clock.Now()) {
		model.ticking = true
		return model, arrivalTick()
	}
	return model, nil
}

func arrivalTick() tea.Cmd {
	return tea.Tick(tui.ArrivalTick, func(time.Time) tea.Msg {
		return arrivalTickMsg{}
	})
}

// refreshContent rebuilds the viewport body from the current rows.
func (model *Model) refreshContent() {
	now := model.clock.Now()
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	var lines []string
	switch {
	case !model.hasTable:
		lines = append(lines, faint.Render("Waiting for the queue..."))
	case len(model.rows) == 0:
		lines = append(lines, faint.Render("No open tickets"))
	default:
		for _, row := range model.rows {
			lines = append(lines, model.renderRow(row, now))
		}
	}
	model.viewport.SetContent(strings.Join(lines, "\n"))
}

func (model *Model) renderRow(row ticket.Row, now time.Time) string {
	text := queuesync.FormatRow(row.Position.String(), row.Ticket.StudentName,
		string(row.Ticket.Table), row.Ticket.PhysicsCourse)
	style := lipgloss.NewStyle().Foreground(model.theme.NormalText)
	if row.Ticket.InProgress() {
		style = style.Foreground(model.theme.StatusColor(row.Ticket.Status))
	}
	if model.arrivals.Heat(row.Ticket.ID, now) > 0 {
		style = style.Background(model.theme.ArrivalBackground).Bold(true)
	}
	if width := model.viewport.Width; width > 0 {
		text = ansi.Truncate(text, width, "…")
	}
	return style.Render(text)
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Connecting..."
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	var builder strings.Builder
	builder.WriteString(model.titleBar())
	builder.WriteString("\n")
	builder.WriteString(header.Render(queuesync.FormatRow("Position", "Student", "Table", "Course")))
	builder.WriteString("\n")

	scrollbar := tui.RenderScrollbar(model.theme, model.viewport.Height,
		model.viewport.TotalLineCount(), model.viewport.Height, model.viewport.YOffset)
	body := lipgloss.NewStyle().Width(model.viewport.Width).Height(model.viewport.Height).Render(model.viewport.View())
	builder.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, body, " ", scrollbar))
	builder.WriteString("\n")

	if model.status != "" {
		color := model.theme.Warning
		if model.statusLevel >= slog.LevelError {
			color = model.theme.Error
		}
		builder.WriteString(lipgloss.NewStyle().Foreground(color).Render(ansi.Truncate(model.status, model.width, "…")))
	} else {
		builder.WriteString(faint.Render(model.keys.helpLine()))
	}
	return builder.String()
}

func (model Model) titleBar() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Render(model.title)
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	var connection string
	if model.connected {
		connection = lipgloss.NewStyle().Foreground(model.theme.StatusOpen).Render("● live")
	} else {
		text := "○ offline"
		if model.connectionDetail != "" {
			text += ": " + model.connectionDetail
		}
		connection = lipgloss.NewStyle().Foreground(model.theme.Warning).Render(text)
	}

	parts := []string{title, connection}
	if model.hasCount {
		count := lipgloss.NewStyle().Bold(true).Foreground(model.theme.Accent).Render(fmt.Sprint(model.count))
		parts = append(parts, count+faint.Render(" open"))
		parts = append(parts, faint.Render("refreshed "+model.refreshedAt.Format(model.timeFormat)))
	}
	line := strings.Join(parts, "  ")
	if model.width > 0 {
		line = ansi.Truncate(line, model.width, "…")
	}
	return line
}
