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

package ecp

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"ecpctl/internal"
	"ecpctl/internal/logger"
)

// Doer performs a single HTTP round trip. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CommandPath is the ordered list of path segments for one request
type CommandPath []string

type requestKind int

const (
	kindQuery requestKind = iota
	kindCommand
)

// Client talks ECP to a single device. It holds no connection state and is safe for concurrent use.
type Client struct {
	doer    Doer
	address string
	port    int
	options internal.FnModeOptions
	logger  zerolog.Logger
}

// ClientOption customises a Client
type ClientOption func(*Client)

// WithDoer replaces the HTTP transport
func WithDoer(doer Doer) ClientOption {
	return func(c *Client) {
		c.doer = doer
	}
}

// WithModeOptions applies debug/test/timeout settings
func WithModeOptions(options *internal.FnModeOptions) ClientOption {
	return func(c *Client) {
		if options != nil {
			c.options = *options
		}
	}
}

// NewClient creates a client for the device at address. No I/O is performed.
func NewClient(address string, options ...ClientOption) *Client {
	client := &Client{
		address: address,
		port:    DefaultPort,
		options: *internal.NewModeOptions(),
		logger:  logger.WithComponent("ecp"),
	}

	for _, option := range options {
		option(client)
	}

	if client.doer == nil {
		if client.options.Test {
			client.doer = NewSimulator()
		} else {
			client.doer = &http.Client{Timeout: client.options.Timeout}
		}
	}

	return client
}

// Address returns the device address the client was built with
func (c *Client) Address() string {
	return c.address
}

// URL builds the request URL for a command path
func (c *Client) URL(path CommandPath) string {
	host := net.JoinHostPort(c.address, strconv.Itoa(c.port))
	return fmt.Sprintf("http://%s/%s", host, strings.Join(path, "/"))
}

// request performs one ECP round trip. Queries use GET and commands use POST.
// A non-2xx status is returned as *ProtocolError and the body is closed.
func (c *Client) request(ctx context.Context, path CommandPath, kind requestKind) (*http.Response, error) {
	method := http.MethodGet
	if kind == kindCommand {
		method = http.MethodPost
	}
	url := c.URL(path)

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create ECP request: %w", err)
	}

	if c.options.Debug {
		c.logger.Debug().
			Str("method", method).
			Str("url", url).
			Msg("Sending ECP request")
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send ECP request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if c.options.Debug {
			c.logger.Error().
				Int("status", resp.StatusCode).
				Str("method", method).
				Str("url", url).
				Msg("ECP request failed")
		}
		return nil, &ProtocolError{StatusCode: resp.StatusCode, Method: method, URL: url}
	}

	if c.options.Debug {
		c.logger.Debug().
			Int("status", resp.StatusCode).
			Str("url", url).
			Msg("ECP request successful")
	}

	return resp, nil
}

func (c *Client) command(ctx context.Context, path CommandPath) error {
	resp, err := c.request(ctx, path, kindCommand)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) query(ctx context.Context, path CommandPath) ([]byte, error) {
	resp, err := c.request(ctx, path, kindQuery)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ECP response: %w", err)
	}
	return body, nil
}
