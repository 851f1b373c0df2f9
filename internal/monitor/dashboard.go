// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxLogEntries = 100

// logEntry is one line in the dashboard's scrolling event log. It
// implements list.Item the same way the teacher's device rows do, even
// though this list is display-only — there's nothing to select.
type logEntry struct {
	at   time.Time
	kind string
	body string
}

func (e logEntry) Title() string       { return fmt.Sprintf("%s  %s", e.at.Format("15:04:05.000"), e.kind) }
func (e logEntry) Description() string { return e.body }
func (e logEntry) FilterValue() string { return e.kind }

// eventMsg carries a monitor Event into the bubbletea Update loop.
type eventMsg Event

// DashboardSink feeds events into a bubbletea program's message loop.
// It implements Sink by pushing onto a channel the program reads from,
// rather than mutating shared state directly.
type DashboardSink struct {
	events chan Event
}

// NewDashboardSink returns a sink with a buffered channel so a slow
// terminal redraw doesn't block the hub's broadcast.
func NewDashboardSink() *DashboardSink {
	return &DashboardSink{events: make(chan Event, 64)}
}

// Publish implements Sink. Events are dropped, not blocked, if the
// dashboard isn't keeping up — a monitor is read-only and best-effort.
func (d *DashboardSink) Publish(evt Event) {
	select {
	case d.events <- evt:
	default:
	}
}

func (d *DashboardSink) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-d.events)
	}
}

type dashboardModel struct {
	sink *DashboardSink

	lastPosition *linkPosition
	lastStatus   *linkStatus
	referenceOK  bool
	eventCount   int
	width        int
	height       int
	quitting     bool

	log list.Model
}

type linkPosition struct {
	x, y, z   int32
	at        time.Time
}

type linkStatus struct {
	tempC             float32
	x, y, z           int32
	enabled, paused   bool
	celestialTracking bool
	fanPct            uint8
	at                time.Time
}

// NewDashboardModel returns the initial bubbletea model for the live
// monitor dashboard.
func NewDashboardModel(sink *DashboardSink) tea.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	logList := list.New(nil, delegate, 40, 10)
	logList.Title = "Recent events"
	logList.SetShowStatusBar(false)
	logList.SetShowHelp(false)
	logList.SetFilteringEnabled(false)

	return dashboardModel{sink: sink, referenceOK: true, width: 80, height: 24, log: logList}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, m.sink.waitForEvent())
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.log.SetSize(m.width-4, m.height-12)

	case eventMsg:
		m.eventCount++
		var body string
		switch msg.Kind {
		case "position":
			if msg.Position != nil {
				m.lastPosition = &linkPosition{x: msg.Position.X, y: msg.Position.Y, z: msg.Position.Z, at: msg.Timestamp}
				body = fmt.Sprintf("X=%d Y=%d Z=%d", msg.Position.X, msg.Position.Y, msg.Position.Z)
			}
		case "status":
			if msg.Status != nil {
				m.lastStatus = &linkStatus{
					tempC: msg.Status.TempC,
					x:     msg.Status.X, y: msg.Status.Y, z: msg.Status.Z,
					enabled: msg.Status.Enabled, paused: msg.Status.Paused,
					celestialTracking: msg.Status.CelestialTracking,
					fanPct:            msg.Status.FanPct,
					at:                msg.Timestamp,
				}
				body = fmt.Sprintf("temp=%.1f°C fan=%d%%", msg.Status.TempC, msg.Status.FanPct)
			}
			m.referenceOK = true
		case "reference_lost":
			m.referenceOK = false
			body = "positional reference lost"
		}

		m.log.InsertItem(0, logEntry{at: msg.Timestamp, kind: msg.Kind, body: body})
		if len(m.log.Items()) > maxLogEntries {
			m.log.RemoveItem(len(m.log.Items()) - 1)
		}
		return m, m.sink.waitForEvent()
	}

	var cmd tea.Cmd
	m.log, cmd = m.log.Update(msg)
	return m, cmd
}

func (m dashboardModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Background(lipgloss.Color("235")).Padding(0, 1)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	boxStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("SKYMOUNT MONITOR"))
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("Events seen: %d   Press 'q' to quit\n\n", m.eventCount))

	if !m.referenceOK {
		s.WriteString(warnStyle.Render("⚠ reference lost — positional encoder fault reported by mount"))
		s.WriteString("\n\n")
	}

	content := strings.Builder{}
	if m.lastPosition != nil {
		content.WriteString(fmt.Sprintf("%s X=%d Y=%d Z=%d arcsec  (%s)\n",
			labelStyle.Render("Position:"), m.lastPosition.x, m.lastPosition.y, m.lastPosition.z,
			m.lastPosition.at.Format("15:04:05")))
	} else {
		content.WriteString("Position: (no data yet)\n")
	}

	if m.lastStatus != nil {
		content.WriteString(fmt.Sprintf("%s %.1f°C   %s %d%%\n",
			labelStyle.Render("Temp:"), m.lastStatus.tempC,
			labelStyle.Render("Fan:"), m.lastStatus.fanPct))
		content.WriteString(fmt.Sprintf("%s %v   %s %v   %s %v\n",
			labelStyle.Render("Enabled:"), m.lastStatus.enabled,
			labelStyle.Render("Paused:"), m.lastStatus.paused,
			labelStyle.Render("Tracking:"), m.lastStatus.celestialTracking))
	} else {
		content.WriteString("Status: (no data yet)\n")
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(valueStyle.Render(content.String())))
	s.WriteString("\n\n")
	s.WriteString(m.log.View())
	return s.String()
}
