// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package pairing builds the link (and QR code) a phone scans to pair with
// this device's sync relay.
package pairing

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/renameio/v2"
	qrcode "github.com/skip2/go-qrcode"
)

// DefaultHost serves the companion client's /pair page.
const DefaultHost = "traindaily.vercel.app"

// FallbackIP is used when no LAN address can be determined.
const FallbackIP = "127.0.0.1"

// Payload is everything the companion needs to reach and authenticate
// against the relay.
type Payload struct {
	Host     string
	DeviceID string
	IP       string
	Port     int
	Secret   string
}

// URI renders https://<host>/pair?deviceId=..&ip=..&port=..&secret=..
func (p Payload) URI() string {
	host := p.Host
	if host == "" {
		host = DefaultHost
	}
	q := url.Values{}
	q.Set("deviceId", p.DeviceID)
	q.Set("ip", p.IP)
	q.Set("port", strconv.Itoa(p.Port))
	q.Set("secret", p.Secret)
	u := url.URL{Scheme: "https", Host: host, Path: "/pair", RawQuery: q.Encode()}
	return u.String()
}

// PNG renders the URI as a QR code image of size x size pixels.
func (p Payload) PNG(size int) ([]byte, error) {
	png, err := qrcode.Encode(p.URI(), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// WritePNG writes the QR image atomically to path.
func (p Payload) WritePNG(path string, size int) error {
	png, err := p.PNG(size)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create qr directory: %w", err)
	}
	// The image embeds the secret.
	if err := renameio.WriteFile(path, png, 0o600); err != nil {
		return fmt.Errorf("write qr: %w", err)
	}
	return nil
}

// Terminal renders the QR code with Unicode half blocks.
func (p Payload) Terminal() (string, error) {
	q, err := qrcode.New(p.URI(), qrcode.Low)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return q.ToSmallString(false), nil
}

// LocalIP returns the IPv4 address the default route would use. A UDP
// "connect" sends no packets. IPv6 or any failure yields FallbackIP.
func LocalIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return FallbackIP
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP.To4() == nil {
		return FallbackIP
	}
	return addr.IP.To4().String()
}

// PortFromAddr extracts the port of a listen address such as ":8841".
func PortFromAddr(listenAddr string) (int, error) {
	_, portStr, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return 0, fmt.Errorf("parse listen address %q: %w", listenAddr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port in listen address %q", listenAddr)
	}
	return port, nil
}
