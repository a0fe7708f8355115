// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Thermoquad/crcengine/pkg/crc"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive CRC calculator",
	Long: `Pick an algorithm from the catalog and type a message; the CRC is
recomputed on every keystroke.

Keys:
  Tab / Shift+Tab  switch between algorithm list, message and input mode
  Enter            toggle text/hex input (on the mode button)
  Ctrl+C           quit (q also quits outside the message field)`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	p := tea.NewProgram(initialCalcModel(crc.Default.Models()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// Focus states
const (
	focusAlgorithmList = iota
	focusMessageInput
	focusModeButton
)

// algorithm adapts a catalog model to list.Item
type algorithm struct {
	model *crc.Model
}

func (a algorithm) Title() string { return a.model.Name() }
func (a algorithm) Description() string {
	p := a.model.Params()
	return fmt.Sprintf("w=%d poly=0x%s", p.Width, crc.FormatHex(p.Poly, p.Width))
}
func (a algorithm) FilterValue() string { return a.model.Name() }

// calcModel is the calculator TUI
type calcModel struct {
	algorithmList list.Model
	messageInput  textinput.Model
	hexInput      bool
	focusedField  int
	width         int
	height        int
	quitting      bool
}

// calcResult is the outcome of the current input
type calcResult struct {
	model    *crc.Model
	message  []byte
	checksum uint64
	err      error
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialCalcModel(models []*crc.Model) calcModel {
	ti := textinput.New()
	ti.Placeholder = crc.CheckInput
	ti.CharLimit = 512
	ti.Width = 40

	items := make([]list.Item, len(models))
	for i, m := range models {
		items[i] = algorithm{model: m}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	algorithmList := list.New(items, delegate, 30, 12)
	algorithmList.Title = "Algorithms"
	algorithmList.SetShowStatusBar(false)
	algorithmList.SetShowHelp(false)
	algorithmList.SetFilteringEnabled(false)

	return calcModel{
		algorithmList: algorithmList,
		messageInput:  ti,
		focusedField:  focusAlgorithmList,
		width:         80,
		height:        24,
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m calcModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m calcModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateListSize()
	}

	var cmd tea.Cmd
	switch m.focusedField {
	case focusAlgorithmList:
		m.algorithmList, cmd = m.algorithmList.Update(msg)
	case focusMessageInput:
		m.messageInput, cmd = m.messageInput.Update(msg)
	}
	return m, cmd
}

func (m calcModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "q":
		if m.focusedField != focusMessageInput {
			m.quitting = true
			return m, tea.Quit
		}

	case "tab":
		return m.cycleFocus(1), nil

	case "shift+tab":
		return m.cycleFocus(-1), nil

	case "enter":
		if m.focusedField == focusModeButton {
			m.hexInput = !m.hexInput
			if m.hexInput {
				m.messageInput.Placeholder = "31 32 33 34"
			} else {
				m.messageInput.Placeholder = crc.CheckInput
			}
			return m, nil
		}
	}

	// Pass through to focused component
	var cmd tea.Cmd
	switch m.focusedField {
	case focusAlgorithmList:
		m.algorithmList, cmd = m.algorithmList.Update(msg)
	case focusMessageInput:
		m.messageInput, cmd = m.messageInput.Update(msg)
	}
	return m, cmd
}

func (m calcModel) cycleFocus(delta int) calcModel {
	m.focusedField = (m.focusedField + delta + focusModeButton + 1) % (focusModeButton + 1)

	if m.focusedField == focusMessageInput {
		m.messageInput.Focus()
	} else {
		m.messageInput.Blur()
	}
	return m
}

func (m *calcModel) updateListSize() {
	listHeight := m.height - 8
	if listHeight < 5 {
		listHeight = 5
	}
	m.algorithmList.SetSize(28, listHeight)
}

// selectedModel returns the highlighted algorithm
func (m calcModel) selectedModel() *crc.Model {
	if a, ok := m.algorithmList.SelectedItem().(algorithm); ok {
		return a.model
	}
	return nil
}

// result computes the CRC of the current input
func (m calcModel) result() calcResult {
	r := calcResult{model: m.selectedModel()}
	if r.model == nil {
		r.err = errors.New("no algorithm selected")
		return r
	}

	value := m.messageInput.Value()
	if m.hexInput {
		r.message, r.err = parseHexBytes(value)
		if r.err != nil {
			return r
		}
	} else {
		r.message = []byte(value)
	}

	r.checksum = r.model.Checksum(r.message)
	return r
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m calcModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("CRCENGINE CALCULATOR"))
	s.WriteString(" ")
	s.WriteString(headerStyle.Render("| q=quit Tab=switch Enter=toggle mode"))
	s.WriteString("\n\n")

	leftWidth := 30
	rightWidth := m.width - leftWidth - 6
	if rightWidth < 40 {
		rightWidth = 40
	}

	listStyle := boxStyle.Width(leftWidth)
	if m.focusedField == focusAlgorithmList {
		listStyle = focusedBoxStyle.Width(leftWidth)
	}
	algorithmPanel := listStyle.Render(m.algorithmList.View())

	calcPanel := boxStyle.Width(rightWidth).Render(m.renderCalcPanel())

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, algorithmPanel, " ", calcPanel))
	return s.String()
}

func (m calcModel) renderCalcPanel() string {
	var s strings.Builder

	// Input
	inputStyle := boxStyle
	if m.focusedField == focusMessageInput {
		inputStyle = focusedBoxStyle
	}
	s.WriteString(labelStyle.Render("Message:"))
	s.WriteString("\n")
	s.WriteString(inputStyle.Render(m.messageInput.View()))
	s.WriteString("\n")

	mode := "Input: text"
	if m.hexInput {
		mode = "Input: hex"
	}
	if m.focusedField == focusModeButton {
		s.WriteString(focusedButtonStyle.Render(mode))
	} else {
		s.WriteString(buttonStyle.Render(mode))
	}
	s.WriteString("\n\n")

	// Result
	r := m.result()
	if r.model == nil {
		s.WriteString(headerStyle.Render("No algorithm selected"))
		return s.String()
	}

	s.WriteString(headerStyle.Render(r.model.String()))
	s.WriteString("\n\n")

	if r.err != nil {
		s.WriteString(errorStyle.Render(r.err.Error()))
		return s.String()
	}

	w := r.model.Width()
	fmt.Fprintf(&s, "%s %d\n", labelStyle.Render("Bytes:   "), len(r.message))
	fmt.Fprintf(&s, "%s %s\n", labelStyle.Render("CRC bits:"), valueStyle.Render(crc.FormatBinary(r.checksum, w)))
	fmt.Fprintf(&s, "%s %s\n", labelStyle.Render("CRC hex: "), valueStyle.Render("0x"+crc.FormatHex(r.checksum, w)))

	if err := crc.Verify(r.model); err != nil {
		fmt.Fprintf(&s, "%s %s", labelStyle.Render("Check:   "), errorStyle.Render(err.Error()))
	} else {
		fmt.Fprintf(&s, "%s %s", labelStyle.Render("Check:   "), valueStyle.Render("0x"+crc.FormatHex(r.model.Params().Check, w)+" ✓"))
	}
	return s.String()
}
