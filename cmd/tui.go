// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Fanlink Authors

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tr198a/fanlink/internal/registry"
	"github.com/tr198a/fanlink/pkg/tr198a"
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Interactive TUI for controlling fans",
	Long: `Control paired fans via an interactive terminal UI.

Remotes from the registry appear in a list; each keypress builds the matching
command packet and hands it to the configured transmitter. The assumed fan
state shown in the panel is bookkeeping only: the RF link is one-way, so the
fan never reports back.

Keys:
  up/down      select remote
  0-9          set fan speed (0 = off)
  +/-          adjust fan speed
  f / r        rotation forward / reverse
  l            toggle the light
  b            cycle breeze preset (off, 1, 2, 3)
  u / d        dim the light up / down
  q            quit

Without a transmitter configured the TUI runs in preview mode and logs the
b64: command string instead of sending it.`,
	RunE: runControl,
}

func init() {
	rootCmd.AddCommand(controlCmd)
}

func runControl(c *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	reg, err := registry.Open(cfg.RegistryPath)
	if err != nil {
		return err
	}

	// Preview mode when no transmitter is reachable.
	tx, txInfo, err := OpenTransmitter(cfg)
	if err != nil {
		tx = nil
		txInfo = "preview (no transmitter)"
	}
	if tx != nil {
		defer tx.Close()
	}

	m := initialControlModel(reg, tx, txInfo)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// Focus states
const (
	focusRemoteList = iota
	focusIDInput
)

// remoteItem is one registry entry in the list panel.
type remoteItem struct {
	name   string
	remote *registry.Remote
}

// Implement list.Item interface
func (r remoteItem) Title() string { return fmt.Sprintf("%s (0x%04X)", r.name, r.remote.HandsetID) }
func (r remoteItem) Description() string {
	return fmt.Sprintf("speed %d, %s, light %s",
		r.remote.State.Speed, directionOrDefault(r.remote.State.Direction), onOff(r.remote.State.Light))
}
func (r remoteItem) FilterValue() string { return r.name }

// eventLogEntry is one line in the event log panel.
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// controlModel is the Bubble Tea model for the control TUI
type controlModel struct {
	reg    *registry.Registry
	tx     Transmitter // nil in preview mode
	txInfo string

	// Remote selection
	items      []remoteItem
	remoteList list.Model

	// Ad-hoc handset ID entry (shown when the registry is empty)
	idInput      textinput.Model
	focusedField int

	// Breeze cycling state per remote name
	breezeState map[string]int

	eventLog      []eventLogEntry
	maxLogEntries int

	width    int
	height   int
	quitting bool
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialControlModel(reg *registry.Registry, tx Transmitter, txInfo string) controlModel {
	ti := textinput.New()
	ti.Placeholder = "0x15A9"
	ti.CharLimit = 6
	ti.Width = 10

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	remoteList := list.New([]list.Item{}, delegate, 30, 10)
	remoteList.Title = "Remotes"
	remoteList.SetShowStatusBar(false)
	remoteList.SetShowHelp(false)
	remoteList.SetFilteringEnabled(false)

	m := controlModel{
		reg:           reg,
		tx:            tx,
		txInfo:        txInfo,
		remoteList:    remoteList,
		idInput:       ti,
		focusedField:  focusRemoteList,
		breezeState:   make(map[string]int),
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
	m.reloadRemotes()

	if len(m.items) == 0 {
		m.focusedField = focusIDInput
		m.idInput.Focus()
		m.addLogEntry("No remotes registered: enter a handset ID to control ad hoc", false)
	}
	return m
}

// reloadRemotes rebuilds the list items from the registry.
func (m *controlModel) reloadRemotes() {
	names := m.reg.Names()
	m.items = make([]remoteItem, 0, len(names))
	items := make([]list.Item, 0, len(names))
	for _, name := range names {
		it := remoteItem{name: name, remote: m.reg.Remotes[name]}
		m.items = append(m.items, it)
		items = append(items, it)
	}
	m.remoteList.SetItems(items)
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m controlModel) Init() tea.Cmd {
	return nil
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateListSize()
	}

	var cmd tea.Cmd
	if m.focusedField == focusRemoteList {
		m.remoteList, cmd = m.remoteList.Update(msg)
	}
	return m, cmd
}

func (m *controlModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.focusedField == focusIDInput {
		if key == "enter" {
			return m.acceptAdHocID()
		}
		var cmd tea.Cmd
		m.idInput, cmd = m.idInput.Update(msg)
		return m, cmd
	}

	switch key {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "up", "k", "down", "j":
		m.remoteList, _ = m.remoteList.Update(msg)
		return m, nil

	case "+", "=":
		return m.adjustSpeed(1)

	case "-", "_":
		return m.adjustSpeed(-1)

	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return m.setSpeed(int(key[0] - '0'))

	case "f":
		return m.setDirection(tr198a.DirectionForward)

	case "r":
		return m.setDirection(tr198a.DirectionReverse)

	case "l":
		return m.toggleLight()

	case "b":
		return m.cycleBreeze()

	case "u":
		return m.dim(tr198a.DimUp)

	case "d":
		return m.dim(tr198a.DimDown)
	}

	return m, nil
}

func (m *controlModel) acceptAdHocID() (tea.Model, tea.Cmd) {
	id, err := parseHandsetID(m.idInput.Value())
	if err != nil {
		m.addLogEntry(err.Error(), true)
		return m, nil
	}

	// Session-only entry, never saved.
	name := fmt.Sprintf("adhoc-%04X", id)
	if _, exists := m.reg.Remotes[name]; !exists {
		m.reg.Remotes[name] = &registry.Remote{HandsetID: id}
	}
	m.reloadRemotes()
	m.idInput.Blur()
	m.idInput.SetValue("")
	m.focusedField = focusRemoteList
	m.addLogEntry(fmt.Sprintf("Controlling handset 0x%04X", id), false)
	return m, nil
}

//////////////////////////////////////////////////////////////
// Commands
//////////////////////////////////////////////////////////////

func (m *controlModel) adjustSpeed(delta int) (tea.Model, tea.Cmd) {
	selected := m.getSelectedRemote()
	if selected == nil {
		return m, nil
	}
	speed := selected.remote.State.Speed + delta
	if speed < 0 || speed > tr198a.MaxSpeed {
		return m, nil
	}
	return m.setSpeed(speed)
}

func (m *controlModel) setSpeed(speed int) (tea.Model, tea.Cmd) {
	selected := m.getSelectedRemote()
	if selected == nil {
		return m, nil
	}
	cmd := tr198a.Command{
		HandsetID: selected.remote.HandsetID,
		Speed:     tr198a.Speed(speed),
		Direction: tr198a.Direction(directionOrDefault(selected.remote.State.Direction)),
	}
	m.breezeState[selected.name] = 0
	m.transmitCommand(selected, cmd, fmt.Sprintf("speed %d", speed))
	return m, nil
}

func (m *controlModel) setDirection(dir tr198a.Direction) (tea.Model, tea.Cmd) {
	selected := m.getSelectedRemote()
	if selected == nil {
		return m, nil
	}
	cmd := tr198a.Command{
		HandsetID: selected.remote.HandsetID,
		Speed:     tr198a.Speed(selected.remote.State.Speed),
		Direction: dir,
	}
	m.transmitCommand(selected, cmd, fmt.Sprintf("direction %s", dir))
	return m, nil
}

func (m *controlModel) toggleLight() (tea.Model, tea.Cmd) {
	selected := m.getSelectedRemote()
	if selected == nil {
		return m, nil
	}
	cmd := tr198a.Command{
		HandsetID:   selected.remote.HandsetID,
		Direction:   tr198a.Direction(directionOrDefault(selected.remote.State.Direction)),
		LightToggle: true,
	}
	m.transmitCommand(selected, cmd, "light toggle")
	return m, nil
}

func (m *controlModel) cycleBreeze() (tea.Model, tea.Cmd) {
	selected := m.getSelectedRemote()
	if selected == nil {
		return m, nil
	}

	next := (m.breezeState[selected.name] + 1) % 4
	cmd := tr198a.Command{
		HandsetID: selected.remote.HandsetID,
		Direction: tr198a.Direction(directionOrDefault(selected.remote.State.Direction)),
	}
	desc := "breeze off"
	if next == 0 {
		cmd.Speed = tr198a.Speed(selected.remote.State.Speed)
	} else {
		cmd.Breeze = next
		desc = fmt.Sprintf("breeze preset %d", next)
	}
	table, trailer, err := selected.remote.CodecOptions()
	if err != nil {
		m.addLogEntry(err.Error(), true)
		return m, nil
	}
	cmd.BreezeTable = table
	cmd.TrailerUs = trailer

	if m.transmitCommand(selected, cmd, desc) {
		m.breezeState[selected.name] = next
	}
	return m, nil
}

func (m *controlModel) dim(dir tr198a.DimDirection) (tea.Model, tea.Cmd) {
	selected := m.getSelectedRemote()
	if selected == nil {
		return m, nil
	}
	cmd := tr198a.Command{
		HandsetID:   selected.remote.HandsetID,
		Direction:   tr198a.Direction(directionOrDefault(selected.remote.State.Direction)),
		Dim:         dir,
		RadioRepeat: tr198a.DimRadioRepeat(1),
		TrailerUs:   tr198a.TrailerDimUs,
	}
	m.transmitCommand(selected, cmd, fmt.Sprintf("dim %s", dir))
	return m, nil
}

// transmitCommand encodes and sends (or previews) a command, updating the
// assumed state on success. Reports whether the command went out.
func (m *controlModel) transmitCommand(selected *remoteItem, cmd tr198a.Command, desc string) bool {
	packet, err := tr198a.EncodeCommand(cmd)
	if err != nil {
		m.addLogEntry(fmt.Sprintf("%s: %v", desc, err), true)
		return false
	}

	if m.tx == nil {
		m.addLogEntry(fmt.Sprintf("%s: %s", desc, tr198a.WrapBase64(packet)), false)
	} else {
		if err := m.tx.Transmit(packet); err != nil {
			m.addLogEntry(fmt.Sprintf("%s: transmit failed: %v", desc, err), true)
			return false
		}
		m.addLogEntry(fmt.Sprintf("Sent %s to %s", desc, selected.Title()), false)
	}

	updateAssumedState(selected.remote, cmd)
	if !strings.HasPrefix(selected.name, "adhoc-") {
		if err := m.reg.Save(); err != nil {
			m.addLogEntry(fmt.Sprintf("Failed to save registry: %v", err), true)
		}
	}
	m.reloadRemotes()
	return true
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m controlModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	// Header
	s.WriteString(titleStyle.Render("FANLINK CONTROL"))
	s.WriteString(" ")
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | q=quit 0-9=speed f/r=direction l=light b=breeze u/d=dim", m.txInfo)))
	s.WriteString("\n\n")

	if m.focusedField == focusIDInput {
		s.WriteString(statsLabelStyle.Render("Handset ID: "))
		s.WriteString(m.idInput.View())
		s.WriteString("\n\n")
		s.WriteString(m.renderEventLog(statsLabelStyle, warningStyle, boxStyle))
		return s.String()
	}

	// Layout: left panel (remotes) | right panel (state)
	leftWidth := 30
	rightWidth := m.width - leftWidth - 6
	if rightWidth < 20 {
		rightWidth = 20
	}

	listStyle := focusedBoxStyle.Width(leftWidth)
	remotePanel := listStyle.Render(m.remoteList.View())

	stateContent := m.renderStatePanel(statsLabelStyle, statsValueStyle, headerStyle)
	statePanel := boxStyle.Width(rightWidth).Render(stateContent)

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, remotePanel, " ", statePanel))
	s.WriteString("\n\n")

	s.WriteString(m.renderEventLog(statsLabelStyle, warningStyle, boxStyle))

	return s.String()
}

func (m controlModel) renderStatePanel(statsLabelStyle, statsValueStyle, headerStyle lipgloss.Style) string {
	var s strings.Builder

	selected := m.getSelectedRemote()
	if selected == nil {
		s.WriteString(headerStyle.Render("No remote selected"))
		return s.String()
	}

	s.WriteString(fmt.Sprintf("%s %s\n\n", statsLabelStyle.Render("Selected:"), selected.Title()))
	s.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render("Speed:"),
		statsValueStyle.Render(fmt.Sprintf("%d", selected.remote.State.Speed))))
	s.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render("Direction:"),
		statsValueStyle.Render(directionOrDefault(selected.remote.State.Direction))))
	s.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render("Light:"),
		statsValueStyle.Render(onOff(selected.remote.State.Light))))
	if breeze := m.breezeState[selected.name]; breeze > 0 {
		s.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render("Breeze:"),
			statsValueStyle.Render(fmt.Sprintf("preset %d", breeze))))
	}
	if selected.remote.BreezeTable != "" {
		s.WriteString(fmt.Sprintf("\n%s %s\n", statsLabelStyle.Render("Quirks:"),
			headerStyle.Render("breeze table "+selected.remote.BreezeTable)))
	}

	return s.String()
}

func (m controlModel) renderEventLog(statsLabelStyle, warningStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(statsLabelStyle.Render("EVENTS"))
	s.WriteString("\n")

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyleLocal := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	logHeight := 8
	if len(m.eventLog) < logHeight {
		logHeight = len(m.eventLog)
	}
	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.eventLog) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			icon := "i"
			style := warningStyle
			if entry.isError {
				icon = "x"
				style = errorStyleLocal
			}
			s.WriteString(fmt.Sprintf("%s %s %s\n",
				headerStyle.Render(timestamp),
				style.Render(icon),
				entry.message))
		}
	}

	return boxStyle.Width(m.width - 4).Render(s.String())
}

//////////////////////////////////////////////////////////////
// Helpers
//////////////////////////////////////////////////////////////

func (m *controlModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

func (m *controlModel) getSelectedRemote() *remoteItem {
	if len(m.items) == 0 {
		return nil
	}
	idx := m.remoteList.Index()
	if idx < 0 || idx >= len(m.items) {
		return nil
	}
	return &m.items[idx]
}

func (m *controlModel) updateListSize() {
	listHeight := m.height / 3
	if listHeight < 5 {
		listHeight = 5
	}
	m.remoteList.SetSize(28, listHeight)
}

// directionOrDefault maps an unset stored direction to the codec default.
func directionOrDefault(dir string) string {
	if dir == "" {
		return string(tr198a.DirectionReverse)
	}
	return dir
}
