package ecp

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// 1x1 transparent PNG served as every app icon
var simulatedIcon, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

const simulatedApps = `<?xml version="1.0" encoding="UTF-8" ?>
<apps>
	<app id="tvinput.hdmi1" type="tvin" version="1.0.0">HDMI 1</app>
	<app id="12" type="appl" version="5.2.98079402">Netflix</app>
	<app id="837" type="appl" version="2.21.100085049">YouTube</app>
</apps>`

const simulatedPlayer = `<?xml version="1.0" encoding="UTF-8" ?>
<player error="false" state="play">
	<plugin bandwidth="6579416 bps" id="837" name="YouTube"/>
	<format audio="aac_adts" captions="none" drm="none" video="mpeg4_15"/>
	<position>53214 ms</position>
	<duration>212000 ms</duration>
	<is_live>false</is_live>
</player>`

// Simulator is an in-memory device used in test mode. It answers every ECP request without the network.
type Simulator struct {
	mu        sync.Mutex
	powerMode string
	requests  []string
}

// NewSimulator returns a simulated TV that starts powered on
func NewSimulator() *Simulator {
	return &Simulator{powerMode: PowerModeOn}
}

// Requests returns "METHOD /path" for every request seen so far
func (s *Simulator) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Do implements Doer
func (s *Simulator) Do(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := req.URL.Path
	s.requests = append(s.requests, req.Method+" "+path)
	segments := strings.Split(strings.Trim(path, "/"), "/")

	if req.Method == http.MethodPost {
		switch CommandKind(segments[0]) {
		case CommandKeyPress, CommandKeyDown, CommandKeyUp:
			if len(segments) == 2 {
				s.applyKey(Key(segments[1]))
				return simulatedResponse(req, http.StatusOK, "", nil), nil
			}
		case CommandLaunch:
			if len(segments) == 2 {
				return simulatedResponse(req, http.StatusOK, "", nil), nil
			}
		}
		return simulatedResponse(req, http.StatusNotFound, "", nil), nil
	}

	if req.Method == http.MethodGet && len(segments) >= 2 && CommandKind(segments[0]) == CommandQuery {
		switch segments[1] {
		case QueryDeviceInfo:
			return simulatedResponse(req, http.StatusOK, "text/xml", []byte(s.deviceInfoXML())), nil
		case QueryMediaPlayer:
			return simulatedResponse(req, http.StatusOK, "text/xml", []byte(simulatedPlayer)), nil
		case QueryApps:
			return simulatedResponse(req, http.StatusOK, "text/xml", []byte(simulatedApps)), nil
		case QueryIcon:
			if len(segments) == 3 {
				return simulatedResponse(req, http.StatusOK, "image/png", simulatedIcon), nil
			}
		}
	}

	return simulatedResponse(req, http.StatusNotFound, "", nil), nil
}

func (s *Simulator) applyKey(key Key) {
	switch key {
	case KeyPowerOn:
		s.powerMode = PowerModeOn
	case KeyPowerOff:
		s.powerMode = "DisplayOff"
	}
}

func (s *Simulator) deviceInfoXML() string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" ?>
<device-info>
	<udn>29380007-0800-1025-80a4-d83134a1b1a1</udn>
	<serial-number>X00400SIMULATED</serial-number>
	<vendor-name>Roku</vendor-name>
	<model-name>Simulated Roku TV</model-name>
	<model-number>7000X</model-number>
	<friendly-device-name>Simulator</friendly-device-name>
	<user-device-name>Living Room</user-device-name>
	<is-tv>true</is-tv>
	<power-mode>%s</power-mode>
</device-info>`, s.powerMode)
}

func simulatedResponse(req *http.Request, status int, contentType string, body []byte) *http.Response {
	header := make(http.Header)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
