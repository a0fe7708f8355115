// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/crcengine/pkg/crc"
	"github.com/Thermoquad/crcengine/pkg/frame"
	tea "github.com/charmbracelet/bubbletea"
)

// Event log entry
type logEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for info
}

// monitorModel is the frame monitor TUI
type monitorModel struct {
	connInfo      string
	crcModel      *crc.Model
	statsInterval int
	showAll       bool
	stats         *frame.Statistics
	eventLog      []logEntry
	maxLogEntries int
	synchronized  bool
	invalidBytes  int
	lastFrame     *frame.Frame
	connClosed    bool
	reconnect     bool
	width         int
	height        int
	quitting      bool
}

// Messages
type tickMsg time.Time
type frameDataMsg struct {
	frame     *frame.Frame
	decodeErr error
}
type syncMsg struct {
	invalidBytes int
}

// formatUptime formats a duration in milliseconds as a human-friendly string
func formatUptime(ms uint64) string {
	if ms == 0 {
		return "0 seconds"
	}

	seconds := ms / 1000
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	seconds %= 60
	minutes %= 60
	hours %= 24

	parts := []string{}
	for _, u := range []struct {
		n    uint64
		unit string
	}{
		{days, "day"},
		{hours, "hour"},
		{minutes, "minute"},
	} {
		switch {
		case u.n == 1:
			parts = append(parts, "1 "+u.unit)
		case u.n > 1:
			parts = append(parts, fmt.Sprintf("%d %ss", u.n, u.unit))
		}
	}
	if seconds > 0 || len(parts) == 0 {
		if seconds == 1 {
			parts = append(parts, "1 second")
		} else {
			parts = append(parts, fmt.Sprintf("%d seconds", seconds))
		}
	}

	// Join with commas and "and" for last item
	if len(parts) == 1 {
		return parts[0]
	}
	if len(parts) == 2 {
		return parts[0] + " and " + parts[1]
	}
	last := parts[len(parts)-1]
	rest := strings.Join(parts[:len(parts)-1], ", ")
	return rest + ", and " + last
}

func initialMonitorModel(connInfo string, crcModel *crc.Model, statsInterval int, showAll, reconnect bool) monitorModel {
	return monitorModel{
		connInfo:      connInfo,
		crcModel:      crcModel,
		statsInterval: statsInterval,
		showAll:       showAll,
		reconnect:     reconnect,
		stats:         frame.NewStatistics(),
		eventLog:      make([]logEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		tea.EnterAltScreen,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.stats.Reset()
			m.addLogEntry("Statistics reset", false)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.stats.CalculateRates()
		return m, tickCmd()

	case syncMsg:
		m.synchronized = true
		m.invalidBytes = msg.invalidBytes
		if msg.invalidBytes > 0 {
			m.addLogEntry(fmt.Sprintf("Synchronized after skipping %d invalid bytes", msg.invalidBytes), false)
		} else {
			m.addLogEntry("Synchronized", false)
		}

	case frameDataMsg:
		m.handleFrame(msg)

	case connLostMsg:
		m.connClosed = true
		if m.reconnect {
			m.addLogEntry("Connection lost - reconnecting...", true)
		} else {
			m.addLogEntry("Connection closed", true)
		}

	case reconnectedMsg:
		m.connClosed = false
		m.synchronized = false
		m.connInfo = msg.connInfo
		m.addLogEntry("Reconnected - waiting for synchronization", false)
	}

	return m, nil
}

func (m *monitorModel) handleFrame(msg frameDataMsg) {
	if msg.decodeErr != nil {
		m.stats.Update(nil, msg.decodeErr)
		var crcErr *frame.CRCError
		if errors.As(msg.decodeErr, &crcErr) {
			m.addLogEntry(fmt.Sprintf("CRC ERROR: %v", msg.decodeErr), true)
		} else {
			m.addLogEntry(fmt.Sprintf("DECODE ERROR: %v", msg.decodeErr), true)
		}
		return
	}
	if msg.frame == nil {
		return
	}

	m.stats.Update(msg.frame, nil)
	m.lastFrame = msg.frame
	if m.showAll {
		m.addLogEntryAt(msg.frame.Timestamp(), fmt.Sprintf("len=%d %s=0x%s (valid)", msg.frame.Length(),
			m.crcModel.Name(), crc.FormatHex(msg.frame.Checksum(), m.crcModel.Width())), false)
	}
}

func (m *monitorModel) addLogEntry(message string, isError bool) {
	m.addLogEntryAt(time.Now(), message, isError)
}

func (m *monitorModel) addLogEntryAt(ts time.Time, message string, isError bool) {
	m.eventLog = append(m.eventLog, logEntry{
		timestamp: ts,
		message:   message,
		isError:   isError,
	})

	// Keep only last N entries
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("CRCENGINE - FRAME MONITOR"))
	s.WriteString("\n")
	mode := "Errors only"
	if m.showAll {
		mode = "All frames"
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | %s | Mode: %s | 'r' reset, 'q' quit",
		m.connInfo, m.crcModel.Name(), mode)))
	s.WriteString("\n\n")

	switch {
	case m.connClosed && m.reconnect:
		s.WriteString(warningStyle.Render("⟳ Reconnecting..."))
	case m.connClosed:
		s.WriteString(errorStyle.Render("✗ Connection closed"))
	case !m.synchronized:
		s.WriteString(warningStyle.Render("⏳ Waiting for synchronization..."))
	default:
		s.WriteString(valueStyle.Render("✓ Synchronized"))
		if m.invalidBytes > 0 {
			s.WriteString(headerStyle.Render(fmt.Sprintf(" (skipped %d invalid bytes)", m.invalidBytes)))
		}
	}
	s.WriteString("\n\n")

	s.WriteString(boxStyle.Render(m.renderStatistics()))
	s.WriteString("\n\n")

	if m.lastFrame != nil {
		s.WriteString(labelStyle.Render("Last Valid Frame:"))
		s.WriteString("\n")
		s.WriteString(boxStyle.Render(strings.TrimRight(frame.FormatFrame(m.lastFrame, m.crcModel), "\n")))
		s.WriteString("\n\n")
	}

	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")
	s.WriteString(boxStyle.Width(m.width - 4).Render(m.renderEventLog()))

	return s.String()
}

func (m monitorModel) renderStatistics() string {
	st := m.stats
	st.CalculateRates()

	totalErrors := st.CRCErrors + st.DecodeErrors
	var validPercent, errorPercent float64
	if st.TotalFrames > 0 {
		validPercent = float64(st.ValidFrames) * 100.0 / float64(st.TotalFrames)
		errorPercent = float64(totalErrors) * 100.0 / float64(st.TotalFrames)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s   %s %s   %s %s\n",
		labelStyle.Render("Total:"), valueStyle.Render(fmt.Sprintf("%d", st.TotalFrames)),
		labelStyle.Render("Valid:"), valueStyle.Render(fmt.Sprintf("%d (%.1f%%)", st.ValidFrames, validPercent)),
		labelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d (%.1f%%)", totalErrors, errorPercent)),
	)

	if totalErrors > 0 {
		fmt.Fprintf(&b, "%s %s   %s %s\n",
			labelStyle.Render("CRC Errors:"), errorStyle.Render(fmt.Sprintf("%d", st.CRCErrors)),
			labelStyle.Render("Decode Errors:"), errorStyle.Render(fmt.Sprintf("%d", st.DecodeErrors)),
		)
	}

	errorRate := valueStyle.Render(fmt.Sprintf("%.1f err/s", st.ErrorRate))
	if st.ErrorRate > 0 {
		errorRate = errorStyle.Render(fmt.Sprintf("%.1f err/s", st.ErrorRate))
	}
	fmt.Fprintf(&b, "%s %s   %s %s   %s %s",
		labelStyle.Render("Frame Rate:"), valueStyle.Render(fmt.Sprintf("%.1f frames/s", st.FrameRate)),
		labelStyle.Render("Error Rate:"), errorRate,
		labelStyle.Render("Uptime:"), valueStyle.Render(formatUptime(uint64(time.Since(st.StartTime).Milliseconds()))),
	)
	return b.String()
}

func (m monitorModel) renderEventLog() string {
	// Reserve space for header and stats
	logHeight := m.height - 15
	if m.lastFrame != nil {
		logHeight -= 5
	}
	if logHeight < 5 {
		logHeight = 5
	}

	if len(m.eventLog) == 0 {
		return headerStyle.Render("  (no events yet)")
	}

	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	var b strings.Builder
	for _, entry := range m.eventLog[startIdx:] {
		timestamp := headerStyle.Render(entry.timestamp.Format("01/02/06 15:04:05.000"))
		if entry.isError {
			fmt.Fprintf(&b, "%s %s\n", timestamp, errorStyle.Render("✗ "+entry.message))
		} else {
			fmt.Fprintf(&b, "%s %s\n", timestamp, warningStyle.Render("ℹ "+entry.message))
		}
	}
	return b.String()
}
