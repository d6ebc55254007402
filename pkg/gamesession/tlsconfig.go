package gamesession

import (
	"crypto/tls"
	"fmt"
)

// LoadTLSConfig reads a PKCS-8 private key and X.509 certificate from disk
// and builds a server tls.Config from them. Both files are read once, at
// startup; there is no hot-reload. A missing or malformed pair is fatal to
// the caller, matching the "read once at startup, fail fast" contract for
// this server.
func LoadTLSConfig(certPath, keyPath string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("gamesession: load cert/key pair: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
