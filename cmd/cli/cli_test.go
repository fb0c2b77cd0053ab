package cli

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecpctl/internal/device"
)

type fakeProcessor struct {
	requests []device.ActionRequest
	response *device.ActionResponse
	err      error
}

func (f *fakeProcessor) ProcessRequest(_ context.Context, request *device.ActionRequest) (*device.ActionResponse, error) {
	f.requests = append(f.requests, *request)
	if f.err != nil {
		return nil, f.err
	}
	if f.response != nil {
		return f.response, nil
	}
	return &device.ActionResponse{Success: true}, nil
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "f2":
		return tea.KeyMsg{Type: tea.KeyF2}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func TestRemoteModelKeyBindings(t *testing.T) {
	tests := []struct {
		key        string
		action     string
		parameters map[string]interface{}
	}{
		{key: "up", action: "up"},
		{key: "enter", action: "select"},
		{key: "backspace", action: "back"},
		{key: "h", action: "home"},
		{key: "p", action: "power"},
		{key: "+", action: "volume_up"},
		{key: "-", action: "volume_down"},
		{key: "m", action: "mute"},
		{key: " ", action: "play"},
		{key: ",", action: "reverse"},
		{key: ".", action: "forward"},
		{key: "r", action: "instant_replay"},
		{key: "*", action: "options"},
		{key: "/", action: "search"},
		{key: "t", action: "input", parameters: map[string]interface{}{"input": "Tuner"}},
		{key: "f2", action: "input", parameters: map[string]interface{}{"input": "HDMI2"}},
	}

	for _, tt := range tests {
		t.Run(tt.action+"_"+tt.key, func(t *testing.T) {
			processor := &fakeProcessor{}
			m := NewRemoteModelWithFlags(processor, device.DeviceInfo{Model: "Roku"}, "Den", false, false)

			m, _ = m.Update(keyMsg(tt.key))

			require.Len(t, processor.requests, 1)
			assert.Equal(t, device.ActionTypeRemote, processor.requests[0].Type)
			assert.Equal(t, tt.action, processor.requests[0].Action)
			assert.Equal(t, tt.parameters, processor.requests[0].Parameters)
			require.NotNil(t, m.lastResponse)
			assert.True(t, m.lastResponse.Success)
		})
	}
}

func TestRemoteModelUnboundKey(t *testing.T) {
	processor := &fakeProcessor{}
	m := NewRemoteModelWithFlags(processor, device.DeviceInfo{}, "", false, false)

	m, _ = m.Update(keyMsg("z"))

	assert.Empty(t, processor.requests)
	assert.Nil(t, m.lastResponse)
}

func TestRemoteModelRecordsFailures(t *testing.T) {
	processor := &fakeProcessor{err: errors.New("connection refused")}
	m := NewRemoteModelWithFlags(processor, device.DeviceInfo{}, "Den", true, false)

	m, _ = m.Update(keyMsg("h"))

	require.NotNil(t, m.lastResponse)
	assert.False(t, m.lastResponse.Success)
	assert.Equal(t, "connection refused", m.lastResponse.Error)
	require.Len(t, m.logBuffer, 1)
	assert.Equal(t, "ERR", m.logBuffer[0].Level)
	require.Len(t, m.actionHistory, 1)
	assert.False(t, m.actionHistory[0].Success)
	assert.Contains(t, m.View(), "connection refused")
}

func TestSetupModelRejectsInvalidAddress(t *testing.T) {
	m := NewSetupModelWithFlags(false, true)
	for _, r := range "not-an-ip" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	m, _ = m.Update(keyMsg("enter"))

	assert.False(t, m.IsConnected())
	assert.NotEmpty(t, m.connectionError)
}

func TestSetupModelConnectsInTestMode(t *testing.T) {
	m := NewSetupModelWithFlags(false, true)
	for _, r := range "192.168.1.20" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	assert.Equal(t, "192.168.1.20", m.hostAddress)

	m, _ = m.Update(keyMsg("enter"))

	require.True(t, m.IsConnected())
	assert.Equal(t, "Living Room", m.GetDeviceName())
	assert.Equal(t, "192.168.1.20", m.GetDevice().GetDeviceInfo().Address)
}

func TestSetupModelDiscovery(t *testing.T) {
	m := NewSetupModelWithFlags(false, true)
	m.scan = func() ([]string, error) {
		return []string{"192.168.1.20", "192.168.1.21"}, nil
	}
	m.focusedField = setupFieldDiscover

	m, cmd := m.Update(keyMsg("enter"))
	require.NotNil(t, cmd)
	assert.True(t, m.discovering)

	m, _ = m.Update(cmd())
	assert.False(t, m.discovering)
	assert.Equal(t, []string{"192.168.1.20", "192.168.1.21"}, m.discovered)
	assert.Equal(t, setupFieldDiscovered, m.focusedField)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.selectedDiscovered)

	m, _ = m.Update(keyMsg("enter"))
	require.True(t, m.IsConnected())
	assert.Equal(t, "192.168.1.21", m.hostAddress)
}

func TestSetupModelDiscoveryError(t *testing.T) {
	m := NewSetupModelWithFlags(false, true)

	m, _ = m.Update(discoveryResultMsg{err: errors.New("address already in use")})

	assert.Equal(t, "address already in use", m.discoveryError)
	assert.Contains(t, m.View(), "Discovery failed")
}

func TestModelSwitchesScreensAndQuits(t *testing.T) {
	m := initialModelWithFlags(false, true)
	m.setupModel.hostAddress = "192.168.1.20"
	m.setupModel.hostAddressCursor = len(m.setupModel.hostAddress)

	next, _ := m.Update(keyMsg("enter"))
	m = next.(model)
	require.Equal(t, screenRemoteControl, m.currentScreen)
	assert.Contains(t, m.View(), "Living Room")

	next, _ = m.Update(keyMsg("q"))
	m = next.(model)
	assert.Equal(t, screenDeviceSetup, m.currentScreen)
	assert.False(t, m.setupModel.IsConnected())

	next, cmd := m.Update(keyMsg("q"))
	m = next.(model)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Thanks for using ecpctl!")
}
