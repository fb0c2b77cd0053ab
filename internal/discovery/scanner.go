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

// Package discovery finds ECP devices on the local network with an SSDP M-SEARCH.
package discovery

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"

	"ecpctl/internal/ecp"
	"ecpctl/internal/logger"
)

const (
	// Port is the SSDP port the scanner binds and sends to
	Port = 1900

	// MulticastAddress is the SSDP discovery group
	MulticastAddress = "239.255.255.250:1900"

	// SearchTarget selects ECP devices
	SearchTarget = "roku:ecp"

	// Window is how long a scan listens for replies
	Window = 5000 * time.Millisecond

	maxDatagramSize = 2048
)

// replySignature is the prefix every matching reply starts with
var replySignature = []byte("HTTP/1.1 200 OK")

// searchRequest is the M-SEARCH datagram sent once per scan
var searchRequest = []byte("M-SEARCH * HTTP/1.1\r\n" +
	"Host: " + MulticastAddress + "\r\n" +
	"Man: \"ssdp:discover\"\r\n" +
	"ST: " + SearchTarget + "\r\n" +
	"\r\n")

// ListenFunc opens the packet socket a scan reads from. net.ListenPacket satisfies it.
type ListenFunc func(network, address string) (net.PacketConn, error)

// BindError reports that the discovery socket could not be opened
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to bind discovery socket %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// Scanner sends one M-SEARCH per scan and reports every matching reply within a fixed window
type Scanner struct {
	listen ListenFunc
	window time.Duration
	logger zerolog.Logger
}

// ScannerOption customises a Scanner
type ScannerOption func(*Scanner)

// WithListenFunc replaces the socket factory
func WithListenFunc(listen ListenFunc) ScannerOption {
	return func(s *Scanner) {
		s.listen = listen
	}
}

// NewScanner creates a scanner bound to the real network
func NewScanner(options ...ScannerOption) *Scanner {
	scanner := &Scanner{
		listen: net.ListenPacket,
		window: Window,
		logger: logger.WithComponent("discovery"),
	}
	for _, option := range options {
		option(scanner)
	}
	return scanner
}

// Scan binds UDP port 1900, sends the search request and calls onFound with the sender address of
// every reply that starts with HTTP/1.1 200 OK. It returns once the window has elapsed.
// Repeated replies from one device are reported each time.
func (s *Scanner) Scan(onFound func(address string)) error {
	bindAddr := fmt.Sprintf(":%d", Port)
	conn, err := s.listen("udp4", bindAddr)
	if err != nil {
		return &BindError{Addr: bindAddr, Err: err}
	}
	defer conn.Close()

	deadline := time.Now().Add(s.window)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set discovery deadline: %w", err)
	}

	group, err := net.ResolveUDPAddr("udp4", MulticastAddress)
	if err != nil {
		return fmt.Errorf("failed to resolve multicast address: %w", err)
	}

	if _, err := conn.WriteTo(searchRequest, group); err != nil {
		return fmt.Errorf("failed to send discovery request: %w", err)
	}
	s.logger.Debug().Str("group", MulticastAddress).Str("st", SearchTarget).Msg("Sent M-SEARCH")

	buf := make([]byte, maxDatagramSize)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if isTimeout(err) {
				s.logger.Debug().Msg("Discovery window closed")
				return nil
			}
			return fmt.Errorf("failed to read discovery reply: %w", err)
		}
		if !time.Now().Before(deadline) {
			return nil
		}

		if n < len(replySignature) || !bytes.Equal(buf[:len(replySignature)], replySignature) {
			s.logger.Debug().Str("from", from.String()).Msg("Ignoring non-matching datagram")
			continue
		}

		address := hostOf(from)
		s.logger.Debug().Str("address", address).Msg("Found ECP device")
		onFound(address)
	}
}

// ScanClients runs Scan and hands the caller an ECP client per reply
func (s *Scanner) ScanClients(onFound func(*ecp.Client), options ...ecp.ClientOption) error {
	return s.Scan(func(address string) {
		onFound(ecp.NewClient(address, options...))
	})
}

// ScanAll runs Scan and returns every address in arrival order, repeats included
func (s *Scanner) ScanAll() ([]string, error) {
	var addresses []string
	err := s.Scan(func(address string) {
		addresses = append(addresses, address)
	})
	return addresses, err
}

// Unique drops repeated addresses and keeps first-seen order
func Unique(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	unique := make([]string, 0, len(addresses))
	for _, address := range addresses {
		if _, ok := seen[address]; ok {
			continue
		}
		seen[address] = struct{}{}
		unique = append(unique, address)
	}
	return unique
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func hostOf(addr net.Addr) string {
	if udpAddr, ok := addr.(*net.UDPAddr); ok {
		return udpAddr.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
