package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ecpctl/internal"
	"ecpctl/internal/config"
	"ecpctl/internal/device"
	"ecpctl/internal/discovery"
	"ecpctl/internal/ecp"
	"ecpctl/internal/logger"
)

// Setup screen input fields
type setupField int

const (
	setupFieldHostAddress setupField = iota
	setupFieldConnect
	setupFieldDiscover
	setupFieldDiscovered
)

const connectTimeout = 3 * time.Second

// discoveryResultMsg carries the outcome of a background scan
type discoveryResultMsg struct {
	addresses []string
	err       error
}

// ScanFunc runs one discovery scan
type ScanFunc func() ([]string, error)

// SetupModel handles the device setup screen
type SetupModel struct {
	// Navigation
	focusedField setupField

	// Input fields
	hostAddress       string
	hostAddressCursor int

	// Discovery
	scan               ScanFunc
	discovering        bool
	discovered         []string
	selectedDiscovered int
	discoveryError     string

	// Connection state
	connectionError string

	// Connected device (when setup complete)
	device     *ecp.Remote
	deviceInfo device.DeviceInfo
	deviceName string

	// Flags
	debugMode bool
	testMode  bool
}

// NewSetupModelWithFlags creates a new setup screen model with flags
func NewSetupModelWithFlags(debug, test bool) SetupModel {
	scan := func() ([]string, error) {
		addresses, err := discovery.NewScanner().ScanAll()
		return discovery.Unique(addresses), err
	}
	if test {
		scan = func() ([]string, error) {
			return []string{"192.168.1.20"}, nil
		}
	}

	return SetupModel{
		focusedField: setupFieldHostAddress,
		scan:         scan,
		debugMode:    debug,
		testMode:     test,
	}
}

// Update handles setup screen messages
func (m SetupModel) Update(msg tea.Msg) (SetupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case discoveryResultMsg:
		m.discovering = false
		if msg.err != nil {
			m.discoveryError = msg.err.Error()
			return m, nil
		}
		m.discoveryError = ""
		m.discovered = msg.addresses
		m.selectedDiscovered = 0
		if len(m.discovered) > 0 {
			m.focusedField = setupFieldDiscovered
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab":
			return m.handleTabNavigation(msg.String() == "shift+tab"), nil

		case "enter":
			switch m.focusedField {
			case setupFieldConnect, setupFieldHostAddress:
				return m.handleConnect(), nil
			case setupFieldDiscover:
				return m.handleDiscover()
			case setupFieldDiscovered:
				return m.handleSelectDiscovered(), nil
			}
			return m, nil

		case "up":
			if m.focusedField == setupFieldDiscovered && m.selectedDiscovered > 0 {
				m.selectedDiscovered--
			}
			return m, nil

		case "down":
			if m.focusedField == setupFieldDiscovered && m.selectedDiscovered < len(m.discovered)-1 {
				m.selectedDiscovered++
			}
			return m, nil

		case "left":
			if m.focusedField == setupFieldHostAddress && m.hostAddressCursor > 0 {
				m.hostAddressCursor--
			}
			return m, nil

		case "right":
			if m.focusedField == setupFieldHostAddress && m.hostAddressCursor < len(m.hostAddress) {
				m.hostAddressCursor++
			}
			return m, nil

		case "backspace":
			if m.focusedField == setupFieldHostAddress && m.hostAddressCursor > 0 {
				m.hostAddress = deleteCharAt(m.hostAddress, m.hostAddressCursor-1)
				m.hostAddressCursor--
			}
			return m, nil

		case "delete":
			if m.focusedField == setupFieldHostAddress && m.hostAddressCursor < len(m.hostAddress) {
				m.hostAddress = deleteCharAt(m.hostAddress, m.hostAddressCursor)
			}
			return m, nil

		case "home":
			if m.focusedField == setupFieldHostAddress {
				m.hostAddressCursor = 0
			}
			return m, nil

		case "end":
			if m.focusedField == setupFieldHostAddress {
				m.hostAddressCursor = len(m.hostAddress)
			}
			return m, nil

		default:
			return m.handleTextInput(msg.String()), nil
		}
	}

	return m, nil
}

// View renders the setup screen
func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ecpctl - Roku Setup"))
	b.WriteString("\n\n")

	// Host Address Input
	b.WriteString(subtitleStyle.Render("Device IP Address:"))
	b.WriteString("\n")
	hostStyle := inputStyle
	showCursor := m.focusedField == setupFieldHostAddress
	if showCursor {
		hostStyle = inputFocusedStyle
	}
	b.WriteString(hostStyle.Render(renderTextWithCursor(m.hostAddress, m.hostAddressCursor, showCursor)))
	b.WriteString("\n\n")

	// Buttons
	connectStyle := buttonStyle
	if m.focusedField == setupFieldConnect {
		connectStyle = buttonActiveStyle
	}
	discoverStyle := buttonStyle
	if m.focusedField == setupFieldDiscover {
		discoverStyle = buttonActiveStyle
	}
	discoverText := "Discover"
	if m.discovering {
		discoverText = "Scanning..."
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		connectStyle.Render("Connect"),
		discoverStyle.Render(discoverText)))
	b.WriteString("\n\n")

	// Discovered devices
	if len(m.discovered) > 0 {
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("Discovered (%d):", len(m.discovered))))
		b.WriteString("\n")
		for i, address := range m.discovered {
			cursor := "  "
			style := lipgloss.NewStyle()
			if i == m.selectedDiscovered {
				cursor = "> "
				if m.focusedField == setupFieldDiscovered {
					style = style.Foreground(lipgloss.Color("#FF79C6"))
				}
			}
			b.WriteString(style.Render(cursor + address))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.discoveryError != "" {
		b.WriteString(errorStyle.Render("Discovery failed: " + m.discoveryError))
		b.WriteString("\n\n")
	}

	if m.connectionError != "" {
		b.WriteString(errorStyle.Render("Error: " + m.connectionError))
		b.WriteString("\n\n")
	}

	b.WriteString(helpStyle.Render("Tab: Next field • Enter: Action • ↑/↓: Pick discovered device • ←/→: Move cursor • q: Quit"))

	return b.String()
}

// handleTabNavigation moves between input fields
func (m SetupModel) handleTabNavigation(reverse bool) SetupModel {
	fields := []setupField{setupFieldHostAddress, setupFieldConnect, setupFieldDiscover}
	if len(m.discovered) > 0 {
		fields = append(fields, setupFieldDiscovered)
	}

	currentIndex := 0
	for i, field := range fields {
		if field == m.focusedField {
			currentIndex = i
			break
		}
	}

	if reverse {
		currentIndex = (currentIndex - 1 + len(fields)) % len(fields)
	} else {
		currentIndex = (currentIndex + 1) % len(fields)
	}

	m.focusedField = fields[currentIndex]
	if m.hostAddressCursor > len(m.hostAddress) {
		m.hostAddressCursor = len(m.hostAddress)
	}
	return m
}

// handleDiscover starts a background scan
func (m SetupModel) handleDiscover() (SetupModel, tea.Cmd) {
	if m.discovering {
		return m, nil
	}
	m.discovering = true
	m.discoveryError = ""

	scan := m.scan
	return m, func() tea.Msg {
		addresses, err := scan()
		return discoveryResultMsg{addresses: addresses, err: err}
	}
}

// handleSelectDiscovered copies the selected address into the input and connects
func (m SetupModel) handleSelectDiscovered() SetupModel {
	if m.selectedDiscovered >= len(m.discovered) {
		return m
	}
	m.hostAddress = m.discovered[m.selectedDiscovered]
	m.hostAddressCursor = len(m.hostAddress)
	return m.handleConnect()
}

// handleConnect checks the device answers device-info before switching to the remote
func (m SetupModel) handleConnect() SetupModel {
	if err := config.ValidateAddress(m.hostAddress); err != nil {
		m.connectionError = err.Error()
		return m
	}
	m.connectionError = ""

	options := internal.NewModeOptions(
		internal.WithDebug(m.debugMode),
		internal.WithTest(m.testMode),
		internal.WithTimeout(connectTimeout),
	)
	remote := ecp.NewRemote(m.hostAddress, options)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	info, err := remote.Client().DeviceInfo(ctx)
	if err != nil {
		m.connectionError = fmt.Sprintf("device did not answer: %v", err)
		return m
	}

	m.device = remote
	m.deviceInfo = remote.GetDeviceInfo()
	m.deviceName = info.DisplayName()

	log := logger.New()
	log.Info().
		Str("device_name", m.deviceName).
		Str("address", m.hostAddress).
		Msg("Device connected successfully")

	return m
}

// handleTextInput handles character input
func (m SetupModel) handleTextInput(input string) SetupModel {
	if m.focusedField != setupFieldHostAddress || len(input) == 0 {
		return m
	}

	printableInput := ""
	for _, r := range input {
		if r >= 32 && r < 127 {
			printableInput += string(r)
		}
	}
	if len(printableInput) == 0 {
		return m
	}

	m.hostAddress = insertText(m.hostAddress, m.hostAddressCursor, printableInput)
	m.hostAddressCursor += len(printableInput)
	return m
}

// IsConnected returns true if device is connected
func (m SetupModel) IsConnected() bool {
	return m.device != nil
}

// GetDevice returns the connected device
func (m SetupModel) GetDevice() *ecp.Remote {
	return m.device
}

// GetDeviceName returns the name the device reported
func (m SetupModel) GetDeviceName() string {
	return m.deviceName
}

// GetDebugMode returns the debug mode flag
func (m SetupModel) GetDebugMode() bool {
	return m.debugMode
}

// GetTestMode returns the test mode flag
func (m SetupModel) GetTestMode() bool {
	return m.testMode
}
