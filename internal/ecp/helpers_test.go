package ecp_test

import (
	"bytes"
	"io"
	"net/http"
	"sync"

	"ecpctl/internal/ecp"
)

type recordedRequest struct {
	Method string
	URL    string
}

// recordingDoer records every request and answers from canned bodies keyed by URL path
type recordingDoer struct {
	mu       sync.Mutex
	requests []recordedRequest
	bodies   map[string]string
	status   map[string]int
	err      error
}

func newRecordingDoer() *recordingDoer {
	return &recordingDoer{
		bodies: make(map[string]string),
		status: make(map[string]int),
	}
}

func (d *recordingDoer) Do(req *http.Request) (*http.Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.requests = append(d.requests, recordedRequest{Method: req.Method, URL: req.URL.String()})
	if d.err != nil {
		return nil, d.err
	}

	status := http.StatusOK
	if code, ok := d.status[req.URL.Path]; ok {
		status = code
	}
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(bytes.NewBufferString(d.bodies[req.URL.Path])),
		Request:    req,
	}, nil
}

func (d *recordingDoer) Requests() []recordedRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]recordedRequest(nil), d.requests...)
}

func newTestClient() (*ecp.Client, *recordingDoer) {
	doer := newRecordingDoer()
	return ecp.NewClient("192.168.1.20", ecp.WithDoer(doer)), doer
}

const deviceInfoPowerOn = `<?xml version="1.0" encoding="UTF-8" ?>
<device-info>
	<serial-number>X004000AAAAA</serial-number>
	<model-name>Roku Express</model-name>
	<power-mode>PowerOn</power-mode>
</device-info>`

const deviceInfoStandby = `<?xml version="1.0" encoding="UTF-8" ?>
<device-info>
	<serial-number>X004000AAAAA</serial-number>
	<power-mode>Ready</power-mode>
</device-info>`

const deviceInfoNoPower = `<?xml version="1.0" encoding="UTF-8" ?>
<device-info>
	<serial-number>X004000AAAAA</serial-number>
	<model-name>Roku Express</model-name>
</device-info>`
