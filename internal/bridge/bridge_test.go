package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecpctl/internal"
	"ecpctl/internal/config"
	"ecpctl/internal/device"
	"ecpctl/internal/ecp"
	"ecpctl/internal/registry"
)

// notFoundDoer answers every request with 404
type notFoundDoer struct{}

func (notFoundDoer) Do(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Header:     make(http.Header),
		Body:       io.NopCloser(bytes.NewReader(nil)),
		Request:    req,
	}, nil
}

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Devices = []config.DeviceConfig{
		{ID: "den", Name: "Den", Address: "192.168.1.21"},
		{ID: "living-room", Name: "Living Room", Address: "192.168.1.20"},
	}
	return cfg
}

func setupTestServer(t *testing.T, doer ecp.Doer, lister DiscoveredLister) (*httptest.Server, *DeviceManager) {
	t.Helper()

	options := internal.NewModeOptions(internal.WithTest(true))
	manager := NewDeviceManager(testConfig(), options, ecp.WithDoer(doer))
	require.NoError(t, manager.Initialize())

	api := NewAPIServer(manager, NewIconCache(8, time.Minute), lister)
	server := httptest.NewServer(api.Router())
	t.Cleanup(server.Close)
	return server, manager
}

func getJSON(t *testing.T, url string, target interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if target != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
	}
	return resp.StatusCode
}

func postAction(t *testing.T, url, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp, result
}

func TestDeviceManager(t *testing.T) {
	t.Run("initializes configured devices", func(t *testing.T) {
		manager := NewDeviceManager(testConfig(), internal.NewModeOptions(internal.WithTest(true)))
		require.NoError(t, manager.Initialize())

		assert.Equal(t, 2, manager.GetDeviceCount())
		devices := manager.ListDevices()
		require.Len(t, devices, 2)
		assert.Equal(t, "den", devices[0].ID)
		assert.Equal(t, "Living Room", devices[1].Name)
		assert.Equal(t, "roku_ecp", devices[1].Info.Type)
	})

	t.Run("unknown device", func(t *testing.T) {
		manager := NewDeviceManager(testConfig(), internal.NewModeOptions(internal.WithTest(true)))
		require.NoError(t, manager.Initialize())

		_, err := manager.GetDevice("garage")
		assert.ErrorIs(t, err, ErrDeviceNotFound)

		_, err = manager.ProcessDeviceAction(context.Background(), "garage", &device.ActionRequest{Type: "remote", Action: "home"})
		assert.ErrorIs(t, err, ErrDeviceNotFound)
	})

	t.Run("rejects invalid address", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		cfg.Devices = []config.DeviceConfig{{ID: "bad", Address: "roku.local"}}

		manager := NewDeviceManager(cfg, internal.NewModeOptions(internal.WithTest(true)))
		assert.Error(t, manager.Initialize())
	})

	t.Run("reload replaces devices", func(t *testing.T) {
		manager := NewDeviceManager(testConfig(), internal.NewModeOptions(internal.WithTest(true)))
		require.NoError(t, manager.Initialize())

		cfg := config.NewDefaultConfig()
		cfg.Devices = []config.DeviceConfig{{ID: "bedroom", Address: "10.0.0.9"}}
		require.NoError(t, manager.Reload(cfg))

		assert.Equal(t, 1, manager.GetDeviceCount())
		_, err := manager.GetDevice("den")
		assert.ErrorIs(t, err, ErrDeviceNotFound)
	})
}

func TestIconCache(t *testing.T) {
	t.Run("fetches once until expiry", func(t *testing.T) {
		cache := NewIconCache(4, time.Minute)
		clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		cache.now = func() time.Time { return clock }

		fetches := 0
		fetch := func(context.Context) ([]byte, error) {
			fetches++
			return []byte("\x89PNG\r\n\x1a\n"), nil
		}

		icon, err := cache.Fetch(context.Background(), "den", "12", fetch)
		require.NoError(t, err)
		assert.Equal(t, "image/png", icon.ContentType)

		_, err = cache.Fetch(context.Background(), "den", "12", fetch)
		require.NoError(t, err)
		assert.Equal(t, 1, fetches)

		clock = clock.Add(2 * time.Minute)
		_, err = cache.Fetch(context.Background(), "den", "12", fetch)
		require.NoError(t, err)
		assert.Equal(t, 2, fetches)

		stats := cache.GetStats()
		assert.Equal(t, 1, stats["hits"])
		assert.Equal(t, 2, stats["misses"])
	})

	t.Run("keys by device and app", func(t *testing.T) {
		cache := NewIconCache(4, time.Minute)
		cache.Store("den", "12", []byte("a"))

		_, found := cache.Get("living-room", "12")
		assert.False(t, found)
		_, found = cache.Get("den", "12")
		assert.True(t, found)

		cache.Purge()
		_, found = cache.Get("den", "12")
		assert.False(t, found)
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		cache := NewIconCache(1, time.Minute)
		cache.Store("den", "12", []byte("a"))
		cache.Store("den", "837", []byte("b"))

		_, found := cache.Get("den", "12")
		assert.False(t, found)
	})

	t.Run("does not cache failures", func(t *testing.T) {
		cache := NewIconCache(4, time.Minute)

		_, err := cache.Fetch(context.Background(), "den", "12", func(context.Context) ([]byte, error) {
			return nil, errors.New("boom")
		})
		assert.Error(t, err)
		_, found := cache.Get("den", "12")
		assert.False(t, found)
	})
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: garage", ErrDeviceNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: bad letter", ecp.ErrInvalidArgument), http.StatusBadRequest},
		{fmt.Errorf("%w: no power-mode", ecp.ErrUnsupportedOperation), http.StatusNotImplemented},
		{&ecp.ProtocolError{StatusCode: 404, Method: "GET", URL: "http://x:8060/query/apps"}, http.StatusBadGateway},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, statusForError(tt.err))
		})
	}
}

func TestAPI(t *testing.T) {
	t.Run("health", func(t *testing.T) {
		server, _ := setupTestServer(t, ecp.NewSimulator(), nil)

		var body map[string]interface{}
		status := getJSON(t, server.URL+"/api/v1/health", &body)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, float64(2), body["device_count"])
	})

	t.Run("lists devices", func(t *testing.T) {
		server, _ := setupTestServer(t, ecp.NewSimulator(), nil)

		var body struct {
			Devices []DeviceSummary `json:"devices"`
			Count   int             `json:"count"`
		}
		status := getJSON(t, server.URL+"/api/v1/devices", &body)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, 2, body.Count)
		assert.Equal(t, "192.168.1.21", body.Devices[0].Info.Address)
	})

	t.Run("action runs against the device", func(t *testing.T) {
		simulator := ecp.NewSimulator()
		server, _ := setupTestServer(t, simulator, nil)

		resp, body := postAction(t, server.URL+"/api/v1/devices/den/action", `{"type":"remote","action":"launch","parameters":{"app_id":"12","content_id":"80057281"}}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, []string{"POST /launch/12"}, simulator.Requests())
	})

	t.Run("failed action is reported in the body", func(t *testing.T) {
		server, _ := setupTestServer(t, ecp.NewSimulator(), nil)

		resp, body := postAction(t, server.URL+"/api/v1/devices/den/action", `{"type":"remote","action":"input","parameters":{"input":"HDMI9"}}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, false, body["success"])
		assert.NotEmpty(t, body["error"])
	})

	t.Run("action on unknown device", func(t *testing.T) {
		server, _ := setupTestServer(t, ecp.NewSimulator(), nil)

		resp, _ := postAction(t, server.URL+"/api/v1/devices/garage/action", `{"type":"remote","action":"home"}`)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("action with invalid JSON", func(t *testing.T) {
		server, _ := setupTestServer(t, ecp.NewSimulator(), nil)

		resp, _ := postAction(t, server.URL+"/api/v1/devices/den/action", `{"type":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, _ = postAction(t, server.URL+"/api/v1/devices/den/action", `{"type":"remote"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("typed queries", func(t *testing.T) {
		server, _ := setupTestServer(t, ecp.NewSimulator(), nil)

		var info map[string]string
		require.Equal(t, http.StatusOK, getJSON(t, server.URL+"/api/v1/devices/den/info", &info))
		assert.Equal(t, "X00400SIMULATED", info["serial-number"])

		var player ecp.PlayerState
		require.Equal(t, http.StatusOK, getJSON(t, server.URL+"/api/v1/devices/den/player", &player))
		assert.Equal(t, ecp.StatePlay, player.State)

		var apps ecp.AppCatalog
		require.Equal(t, http.StatusOK, getJSON(t, server.URL+"/api/v1/devices/den/apps", &apps))
		assert.Equal(t, "Netflix", apps["12"].Name)
	})

	t.Run("device errors map to bad gateway", func(t *testing.T) {
		server, _ := setupTestServer(t, notFoundDoer{}, nil)

		var body map[string]interface{}
		status := getJSON(t, server.URL+"/api/v1/devices/den/info", &body)
		assert.Equal(t, http.StatusBadGateway, status)
		assert.Equal(t, true, body["error"])
	})

	t.Run("unknown device query", func(t *testing.T) {
		server, _ := setupTestServer(t, ecp.NewSimulator(), nil)

		status := getJSON(t, server.URL+"/api/v1/devices/garage/apps", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("icon is served from cache", func(t *testing.T) {
		simulator := ecp.NewSimulator()
		server, _ := setupTestServer(t, simulator, nil)

		for i := 0; i < 2; i++ {
			resp, err := http.Get(server.URL + "/api/v1/devices/den/apps/837/icon")
			require.NoError(t, err)
			data, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			require.NoError(t, err)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
			assert.NotEmpty(t, data)
		}
		assert.Equal(t, []string{"GET /query/icon/837"}, simulator.Requests())
	})

	t.Run("discovered without registry", func(t *testing.T) {
		server, _ := setupTestServer(t, ecp.NewSimulator(), nil)

		status := getJSON(t, server.URL+"/api/v1/discovered", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("discovered lists registry records", func(t *testing.T) {
		store, err := registry.Open(filepath.Join(t.TempDir(), "registry.db"))
		require.NoError(t, err)
		defer store.Close()
		_, err = store.Upsert(registry.Record{Address: "192.168.1.50", Model: "Roku Ultra"})
		require.NoError(t, err)

		server, _ := setupTestServer(t, ecp.NewSimulator(), store)

		var body struct {
			Devices []registry.Record `json:"devices"`
			Count   int               `json:"count"`
		}
		require.Equal(t, http.StatusOK, getJSON(t, server.URL+"/api/v1/discovered", &body))
		assert.Equal(t, 1, body.Count)
		assert.Equal(t, "Roku Ultra", body.Devices[0].Model)
	})
}
