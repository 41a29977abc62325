package tracing

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// buildTLSConfig creates the exporter's client TLS configuration. Defaults to
// the system certificate pool with TLS 1.2 as the floor.
func buildTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	conf := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	if cfg.SkipVerify {
		conf.InsecureSkipVerify = true
		return conf, nil
	}

	if cfg.CACertPath != "" {
		pem, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("reading CA certificate: %w", err)
		}

		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates parsed from %s", cfg.CACertPath)
		}
		conf.RootCAs = pool
	}

	return conf, nil
}
