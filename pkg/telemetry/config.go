package telemetry

import (
	"crypto/tls"
	"fmt"
	"log"
	"strings"
)

// OTLPProtocol selects the wire protocol used to export telemetry.
type OTLPProtocol string

const (
	// ProtocolGRPC exports over gRPC (collector port 4317 by default).
	ProtocolGRPC OTLPProtocol = "grpc"
	// ProtocolHTTP exports over HTTP/protobuf (collector port 4318 by default).
	ProtocolHTTP OTLPProtocol = "http"
)

// Config holds the settings for the OpenTelemetry provider.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	OTLPProtocol   OTLPProtocol

	// Insecure allows plaintext connections to the collector. Refused in
	// production environments.
	Insecure bool
	// TLSConfig overrides the system TLS defaults when set.
	TLSConfig *tls.Config

	// TraceSampleRate is the fraction of traces to sample, 0.0 to 1.0.
	TraceSampleRate float64

	// ResourceAttributes are extra attributes stamped on every exported
	// signal.
	ResourceAttributes map[string]string
}

// DefaultConfig returns a configuration with development defaults.
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName:     serviceName,
		ServiceVersion:  "unknown",
		Environment:     "development",
		OTLPEndpoint:    "localhost:4317",
		OTLPProtocol:    ProtocolGRPC,
		TraceSampleRate: 1.0,
	}
}

func normalizeProtocol(protocol string) OTLPProtocol {
	switch strings.ToLower(protocol) {
	case "http", "http/protobuf":
		return ProtocolHTTP
	default:
		return ProtocolGRPC
	}
}

func validateSecurityConfig(config *Config) error {
	if config.Insecure {
		env := strings.ToLower(config.Environment)
		if env == "production" || env == "prod" {
			return fmt.Errorf("insecure connections are not allowed in production environment")
		}
		log.Printf("WARNING: using insecure OTLP connection to %s (environment: %s)",
			config.OTLPEndpoint, config.Environment)
	}

	if config.TLSConfig != nil && config.TLSConfig.MinVersion > 0 && config.TLSConfig.MinVersion < tls.VersionTLS12 {
		return fmt.Errorf("minimum TLS version must be 1.2 or higher")
	}

	return nil
}
