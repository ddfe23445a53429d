// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package tls provisions the self-signed certificate the sync relay serves.
package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
)

const (
	// CertFile and KeyFile are the default file names inside the data directory.
	CertFile = "cert.pem"
	KeyFile  = "key.pem"
	// DefaultValidityYears is the lifetime of a generated certificate. It is
	// never rotated; clients pin it at pairing time.
	DefaultValidityYears = 10
)

// Config holds configuration for certificate provisioning.
type Config struct {
	CertPath string
	KeyPath  string
	Logger   zerolog.Logger
}

// EnsureCertificates returns an existing certificate pair or generates one.
// A pair is generated at most once; an incomplete pair is regenerated whole.
func EnsureCertificates(cfg Config) (certPath, keyPath string, err error) {
	certPath, keyPath = cfg.CertPath, cfg.KeyPath
	if certPath == "" || keyPath == "" {
		return "", "", fmt.Errorf("certificate and key paths are required")
	}

	certExists := fileExists(certPath)
	keyExists := fileExists(keyPath)
	if certExists && keyExists {
		cfg.Logger.Debug().
			Str("cert", certPath).
			Str("key", keyPath).
			Msg("TLS certificates found")
		return certPath, keyPath, nil
	}
	if certExists || keyExists {
		cfg.Logger.Warn().
			Bool("cert_exists", certExists).
			Bool("key_exists", keyExists).
			Msg("incomplete TLS certificate pair found, regenerating both")
	}

	networkIPs, err := GetNetworkIPs()
	if err != nil {
		cfg.Logger.Warn().Err(err).Msg("failed to detect network IPs, certificate will only cover localhost")
		networkIPs = nil
	}

	certPEM, keyPEM, err := GenerateSelfSigned(DefaultValidityYears, networkIPs)
	if err != nil {
		return "", "", err
	}
	if err := writePair(certPath, keyPath, certPEM, keyPEM); err != nil {
		return "", "", err
	}

	ipStrings := make([]string, len(networkIPs))
	for i, ip := range networkIPs {
		ipStrings[i] = ip.String()
	}
	cfg.Logger.Info().
		Str("event", "tls.generated").
		Str("cert", certPath).
		Strs("network_ips", ipStrings).
		Int("validity_years", DefaultValidityYears).
		Msg("self-signed TLS certificate generated")

	return certPath, keyPath, nil
}

// GenerateSelfSigned creates an ECDSA P-256 certificate and key in PEM form.
// The SANs always cover localhost, 127.0.0.1, 0.0.0.0 and ::1; extra IPs
// (the LAN addresses a phone will dial) are appended without duplicates.
func GenerateSelfSigned(validityYears int, extraIPs []net.IP) (certPEM, keyPEM []byte, err error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate private key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, nil, fmt.Errorf("generate serial number: %w", err)
	}

	notBefore := time.Now().Add(-time.Hour)
	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{"TrainDaily"},
			CommonName:   "TrainDaily Local Sync",
		},
		NotBefore:             notBefore,
		NotAfter:              notBefore.AddDate(validityYears, 0, 0),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IPAddresses:           sanIPs(extraIPs),
		DNSNames:              []string{"localhost"},
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("create certificate: %w", err)
	}
	privBytes, err := x509.MarshalECPrivateKey(privateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal private key: %w", err)
	}

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: privBytes})
	return certPEM, keyPEM, nil
}

func sanIPs(extra []net.IP) []net.IP {
	base := []net.IP{
		net.ParseIP("127.0.0.1"),
		net.ParseIP("0.0.0.0"),
		net.ParseIP("::1"),
	}
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]net.IP, 0, len(base)+len(extra))
	for _, ip := range append(base, extra...) {
		if ip == nil || seen[ip.String()] {
			continue
		}
		seen[ip.String()] = true
		out = append(out, ip)
	}
	return out
}

// writePair writes the key first so a crash never leaves a certificate
// without its key.
func writePair(certPath, keyPath string, certPEM, keyPEM []byte) error {
	for _, dir := range []string{filepath.Dir(certPath), filepath.Dir(keyPath)} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create cert directory: %w", err)
		}
	}
	if err := renameio.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	if err := renameio.WriteFile(certPath, certPEM, 0o644); err != nil {
		return fmt.Errorf("write cert file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// GetNetworkIPs returns the non-loopback, non-link-local addresses of all up
// interfaces.
func GetNetworkIPs() ([]net.IP, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("get network interfaces: %w", err)
	}

	var ips []net.IP
	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
				continue
			}
			ips = append(ips, ip)
		}
	}
	return ips, nil
}
