// Copyright 2025 Arion Yau
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ecpctl/internal/device"
	"ecpctl/internal/logger"
)

const buttonTimeout = 5 * time.Second

// LogEntry represents a log entry for display
type LogEntry struct {
	Timestamp time.Time
	Level     string // INF, DBG, ERR
	Message   string
	Action    string // button name or action
}

// ActionProcessor executes device action requests
type ActionProcessor interface {
	ProcessRequest(ctx context.Context, request *device.ActionRequest) (*device.ActionResponse, error)
}

// keyBindings maps keyboard keys to remote buttons
var keyBindings = map[string]remoteButton{
	"up":        buttonUp,
	"down":      buttonDown,
	"left":      buttonLeft,
	"right":     buttonRight,
	"enter":     buttonOK,
	"h":         buttonHome,
	"backspace": buttonBack,
	"p":         buttonPower,
	"+":         buttonVolumeUp,
	"=":         buttonVolumeUp,
	"-":         buttonVolumeDown,
	"m":         buttonMute,
	" ":         buttonPlay,
	",":         buttonReverse,
	".":         buttonForward,
	"r":         buttonInstantReplay,
	"*":         buttonOptions,
	"/":         buttonSearch,
	"t":         buttonTuner,
	"f1":        buttonHDMI1,
	"f2":        buttonHDMI2,
	"f3":        buttonHDMI3,
	"f4":        buttonHDMI4,
}

// RemoteModel handles the remote control screen
type RemoteModel struct {
	// Connected device
	device     ActionProcessor
	deviceInfo device.DeviceInfo
	deviceName string

	// Remote control state
	selectedButton  remoteButton
	lastButtonPress time.Time

	// Response and history
	lastResponse  *device.ActionResponse
	actionHistory []actionHistoryEntry

	// Flags
	debugMode bool
	testMode  bool

	// Screen dimensions for responsive layout
	width  int
	height int

	// Log display
	logBuffer   []LogEntry
	maxLogLines int
}

// NewRemoteModelWithFlags creates a new remote control screen model with flags
func NewRemoteModelWithFlags(dev ActionProcessor, info device.DeviceInfo, name string, debug, test bool) RemoteModel {
	return RemoteModel{
		device:        dev,
		deviceInfo:    info,
		deviceName:    name,
		actionHistory: []actionHistoryEntry{},
		debugMode:     debug,
		testMode:      test,
		logBuffer:     []LogEntry{},
		maxLogLines:   3,
	}
}

// Update handles remote control screen messages
func (m RemoteModel) Update(msg tea.Msg) (RemoteModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if button, ok := keyBindings[msg.String()]; ok {
			return m.handleRemoteButton(button)
		}
	}

	return m, nil
}

// View renders the remote control screen
func (m RemoteModel) View() string {
	var sections []string

	// Header
	sections = append(sections, titleStyle.Render("ecpctl - Roku Remote"))

	// Device Info (compact single line)
	name := m.deviceName
	if name == "" {
		name = m.deviceInfo.Model
	}
	deviceInfo := successStyle.Render("📺 " + name)
	if m.testMode {
		deviceInfo += " " + lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C")).Render("(Test)")
	}
	sections = append(sections, deviceInfo)

	// Remote Control Layout
	sections = append(sections, m.renderHorizontalRemoteLayout())

	// Status (if recent action)
	if m.lastResponse != nil {
		sections = append(sections, m.renderStatusBar())
	}

	if m.debugMode || m.testMode {
		logDisplay := m.renderLogDisplay()
		if logDisplay != "" {
			sections = append(sections, logDisplay)
		}
	}

	// Help Text
	sections = append(sections, m.renderHelpText())

	return strings.Join(sections, "\n\n")
}

// renderHorizontalRemoteLayout creates a horizontal remote control layout
func (m RemoteModel) renderHorizontalRemoteLayout() string {
	render := func(btn remoteButton) string {
		style := remoteButtonStyle
		if m.selectedButton == btn && time.Since(m.lastButtonPress) < 200*time.Millisecond {
			style = remoteButtonActiveStyle
		}
		return style.Render(fmt.Sprintf("%-6s", buttonActions[btn].label))
	}

	navColumn := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B")).Render("Power & Navigation:"),
		render(buttonPower),
		"",
		render(buttonUp),
		lipgloss.JoinHorizontal(lipgloss.Center,
			render(buttonLeft),
			render(buttonOK),
			render(buttonRight)),
		render(buttonDown),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			render(buttonBack),
			" ",
			render(buttonHome)),
	)

	mediaColumn := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD")).Render("Volume & Playback:"),
		lipgloss.JoinHorizontal(lipgloss.Left,
			render(buttonVolumeUp),
			" ",
			render(buttonVolumeDown),
			" ",
			render(buttonMute)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Left,
			render(buttonReverse),
			" ",
			render(buttonPlay),
			" ",
			render(buttonForward)),
		lipgloss.JoinHorizontal(lipgloss.Left,
			render(buttonInstantReplay),
			" ",
			render(buttonOptions),
			" ",
			render(buttonSearch)),
	)

	inputColumn := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Foreground(lipgloss.Color("#BD93F9")).Render("Inputs:"),
		lipgloss.JoinHorizontal(lipgloss.Left,
			render(buttonHDMI1),
			" ",
			render(buttonHDMI2)),
		lipgloss.JoinHorizontal(lipgloss.Left,
			render(buttonHDMI3),
			" ",
			render(buttonHDMI4)),
		render(buttonTuner),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		navColumn,
		strings.Repeat(" ", 6),
		mediaColumn,
		strings.Repeat(" ", 6),
		inputColumn,
	)
}

// renderStatusBar creates the status bar with last action result
func (m RemoteModel) renderStatusBar() string {
	if m.lastResponse == nil {
		return ""
	}

	if !m.lastResponse.Success {
		return errorStyle.Render("✗ " + m.lastResponse.Error)
	}

	status := successStyle.Render("✓ Action successful")
	if m.lastResponse.Data != nil {
		status += fmt.Sprintf(": %v", m.lastResponse.Data)
	}
	return status
}

// renderLogDisplay shows the most recent log entries in a fixed height area
func (m RemoteModel) renderLogDisplay() string {
	if len(m.logBuffer) == 0 {
		return ""
	}

	maxLines := m.maxLogLines
	start := 0
	if len(m.logBuffer) > maxLines {
		start = len(m.logBuffer) - maxLines
	}

	autoScrollIcon := ""
	if len(m.logBuffer) > maxLines {
		autoScrollIcon = " ↓"
	}

	logLines := []string{lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6272A4")).
		Render(fmt.Sprintf("─── LOGS%s ───", autoScrollIcon))}

	for i := 0; i < maxLines; i++ {
		if start+i >= len(m.logBuffer) {
			logLines = append(logLines, "")
			continue
		}
		entry := m.logBuffer[start+i]

		var levelStyle lipgloss.Style
		switch entry.Level {
		case "ERR":
			levelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
		case "DBG":
			levelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
		default:
			levelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
		}

		logLine := fmt.Sprintf("%s [%s] %s",
			entry.Timestamp.Format("15:04:05"),
			levelStyle.Render(entry.Level),
			entry.Message)
		if len(logLine) > 70 {
			logLine = logLine[:67] + "..."
		}
		logLines = append(logLines, logLine)
	}

	return strings.Join(logLines, "\n")
}

// addLogEntry adds a new log entry to the buffer
func (m *RemoteModel) addLogEntry(level, message, action string) {
	m.logBuffer = append(m.logBuffer, LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Action:    action,
	})

	if len(m.logBuffer) > 20 {
		m.logBuffer = m.logBuffer[1:]
	}
}

// renderHelpText creates the help text at the bottom
func (m RemoteModel) renderHelpText() string {
	help := "Arrows: Navigate • Enter: OK • P: Power • +/-: Volume • M: Mute • Space: Play"
	if m.width > 100 {
		help += " • ,/.: Rev/Fwd • R: Replay • *: Options • /: Search • H: Home • F1-F4: HDMI • T: Tuner • q: Disconnect"
	} else {
		help += " • q: Disconnect"
	}

	return "\n" + helpStyle.Render(help)
}

// handleRemoteButton sends the button's action to the device
func (m RemoteModel) handleRemoteButton(button remoteButton) (RemoteModel, tea.Cmd) {
	if m.device == nil {
		return m, nil
	}

	binding, ok := buttonActions[button]
	if !ok {
		return m, nil
	}

	request := &device.ActionRequest{
		Type:       device.ActionTypeRemote,
		Action:     binding.action,
		Parameters: binding.parameters,
	}

	ctx, cancel := context.WithTimeout(context.Background(), buttonTimeout)
	defer cancel()

	response, err := m.device.ProcessRequest(ctx, request)
	if err != nil {
		response = &device.ActionResponse{
			Success: false,
			Error:   err.Error(),
		}
	}

	m.lastResponse = response
	m.selectedButton = button
	m.lastButtonPress = time.Now()

	if m.debugMode || m.testMode {
		if response.Success {
			message := fmt.Sprintf("%s action completed successfully", binding.action)
			if m.testMode {
				message = fmt.Sprintf("Test mode: %s action simulated", binding.action)
			}
			m.addLogEntry("INF", message, binding.action)
		} else {
			m.addLogEntry("ERR", fmt.Sprintf("%s failed: %s", binding.action, response.Error), binding.action)
		}
	}

	actionJSON, _ := json.Marshal(request)
	entry := actionHistoryEntry{
		Timestamp: time.Now(),
		Action:    string(actionJSON),
		Success:   response.Success,
		Error:     response.Error,
	}
	if response.Success && response.Data != nil {
		if data, err := json.Marshal(response.Data); err == nil {
			entry.Response = string(data)
		}
	}
	m.actionHistory = append([]actionHistoryEntry{entry}, m.actionHistory...)
	if len(m.actionHistory) > 50 {
		m.actionHistory = m.actionHistory[:50]
	}

	log := logger.New()
	log.Info().
		Str("action", binding.action).
		Bool("success", response.Success).
		Msg("Remote button pressed")

	return m, nil
}
