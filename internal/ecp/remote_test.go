package ecp_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecpctl/internal"
	"ecpctl/internal/device"
	"ecpctl/internal/ecp"
)

func newTestRemote() (*ecp.Remote, *ecp.Simulator) {
	simulator := ecp.NewSimulator()
	options := internal.NewModeOptions(internal.WithTest(true))
	return ecp.NewRemote("192.168.1.20", options, ecp.WithDoer(simulator)), simulator
}

func TestRemoteGetDeviceInfo(t *testing.T) {
	remote, _ := newTestRemote()

	info := remote.GetDeviceInfo()
	assert.Equal(t, "roku_ecp", info.Type)
	assert.Equal(t, "192.168.1.20", info.Address)
	assert.Contains(t, info.Capabilities, "remote_control")
	assert.Equal(t, "192.168.1.20", remote.Client().Address())
}

func TestRemoteProcess(t *testing.T) {
	tests := []struct {
		name    string
		action  string
		request string
	}{
		{"home", `{"type":"remote","action":"home"}`, "POST /keypress/Home"},
		{"instant replay", `{"type":"remote","action":"instant_replay"}`, "POST /keypress/InstantReplay"},
		{"mute", `{"type":"remote","action":"mute"}`, "POST /keypress/VolumeMute"},
		{"key press", `{"type":"remote","action":"key_press","parameters":{"key":"Search"}}`, "POST /keypress/Search"},
		{"key down", `{"type":"remote","action":"key_down","parameters":{"key":"Up"}}`, "POST /keydown/Up"},
		{"letter", `{"type":"remote","action":"letter","parameters":{"letter":"z"}}`, "POST /keypress/lit_z"},
		{"numeric letter", `{"type":"remote","action":"letter","parameters":{"letter":7}}`, "POST /keypress/lit_7"},
		{"launch", `{"type":"remote","action":"launch","parameters":{"app_id":"837","content_id":"abc","media_type":"live"}}`, "POST /launch/837"},
		{"input", `{"type":"remote","action":"input","parameters":{"input":"HDMI2"}}`, "POST /keypress/InputHDMI2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote, simulator := newTestRemote()

			response, err := remote.Process(context.Background(), []byte(tt.action))
			require.NoError(t, err)
			assert.True(t, response.Success, response.Error)
			assert.Equal(t, []string{tt.request}, simulator.Requests())
		})
	}

	t.Run("power toggles through device-info", func(t *testing.T) {
		remote, simulator := newTestRemote()

		response, err := remote.Process(context.Background(), []byte(`{"type":"remote","action":"power"}`))
		require.NoError(t, err)
		assert.True(t, response.Success)

		response, err = remote.Process(context.Background(), []byte(`{"type":"remote","action":"power"}`))
		require.NoError(t, err)
		assert.True(t, response.Success)

		assert.Equal(t, []string{
			"GET /query/device-info",
			"POST /keypress/PowerOff",
			"GET /query/device-info",
			"POST /keypress/PowerOn",
		}, simulator.Requests())
	})

	t.Run("hold sends down and up", func(t *testing.T) {
		remote, simulator := newTestRemote()

		response, err := remote.Process(context.Background(), []byte(`{"type":"remote","action":"hold","parameters":{"key":"Fwd","duration_ms":10}}`))
		require.NoError(t, err)
		assert.True(t, response.Success)
		assert.Equal(t, []string{"POST /keydown/Fwd", "POST /keyup/Fwd"}, simulator.Requests())
	})

	failures := []struct {
		name   string
		action string
	}{
		{"malformed JSON", `{"type":`},
		{"unknown type", `{"type":"system","action":"reboot"}`},
		{"unknown remote action", `{"type":"remote","action":"teleport"}`},
		{"key press without key", `{"type":"remote","action":"key_press"}`},
		{"letter too long", `{"type":"remote","action":"letter","parameters":{"letter":"ab"}}`},
		{"hold without duration", `{"type":"remote","action":"hold","parameters":{"key":"Up"}}`},
		{"launch without app", `{"type":"remote","action":"launch"}`},
		{"bad media type", `{"type":"remote","action":"launch","parameters":{"app_id":"837","media_type":"documentary"}}`},
		{"unknown input", `{"type":"remote","action":"input","parameters":{"input":"HDMI5"}}`},
		{"unknown query", `{"type":"query","action":"weather"}`},
	}

	for _, tt := range failures {
		t.Run("fails on "+tt.name, func(t *testing.T) {
			remote, simulator := newTestRemote()

			response, err := remote.Process(context.Background(), []byte(tt.action))
			require.NoError(t, err)
			assert.False(t, response.Success)
			assert.NotEmpty(t, response.Error)
			assert.Empty(t, simulator.Requests())
		})
	}
}

func TestRemoteQueries(t *testing.T) {
	remote, _ := newTestRemote()

	t.Run("device info", func(t *testing.T) {
		response, err := remote.Process(context.Background(), []byte(`{"type":"query","action":"device_info"}`))
		require.NoError(t, err)
		require.True(t, response.Success)

		info, ok := response.Data.(ecp.DeviceInfo)
		require.True(t, ok)
		assert.Equal(t, "Living Room", info.DisplayName())
	})

	t.Run("player", func(t *testing.T) {
		response, err := remote.ProcessRequest(context.Background(), &device.ActionRequest{Type: device.ActionTypeQuery, Action: "player"})
		require.NoError(t, err)
		require.True(t, response.Success)

		player, ok := response.Data.(*ecp.PlayerState)
		require.True(t, ok)
		assert.Equal(t, ecp.StatePlay, player.State)
		require.NotNil(t, player.Plugin)
		assert.Equal(t, "837", player.Plugin.ID)
	})

	t.Run("apps", func(t *testing.T) {
		response, err := remote.Process(context.Background(), []byte(`{"type":"query","action":"apps"}`))
		require.NoError(t, err)
		require.True(t, response.Success)

		apps, ok := response.Data.(ecp.AppCatalog)
		require.True(t, ok)
		assert.Equal(t, "YouTube", apps["837"].Name)
	})
}

func TestSimulator(t *testing.T) {
	t.Run("unknown command paths are 404", func(t *testing.T) {
		client := ecp.NewClient("192.168.1.20", ecp.WithDoer(ecp.NewSimulator()))

		_, err := client.Icon(context.Background(), "12/extra")
		assert.True(t, ecp.IsProtocolError(err))
	})

	t.Run("power off changes the reported power mode", func(t *testing.T) {
		client := ecp.NewClient("192.168.1.20", ecp.WithDoer(ecp.NewSimulator()))

		require.NoError(t, client.PowerOff(context.Background()))
		info, err := client.DeviceInfo(context.Background())
		require.NoError(t, err)

		mode, ok := info.PowerMode()
		require.True(t, ok)
		assert.NotEqual(t, ecp.PowerModeOn, mode)
	})

	t.Run("serves a PNG icon", func(t *testing.T) {
		client := ecp.NewClient("192.168.1.20", ecp.WithDoer(ecp.NewSimulator()))

		icon, err := client.Icon(context.Background(), "837")
		require.NoError(t, err)
		assert.Equal(t, []byte("\x89PNG"), icon[:4])
	})
}
