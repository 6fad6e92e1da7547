package telemetry

import (
	"context"
	"crypto/tls"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("publisher-svc")

	assert.Equal(t, "publisher-svc", config.ServiceName)
	assert.Equal(t, "unknown", config.ServiceVersion)
	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, "localhost:4317", config.OTLPEndpoint)
	assert.Equal(t, ProtocolGRPC, config.OTLPProtocol)
	assert.Equal(t, 1.0, config.TraceSampleRate)
	assert.False(t, config.Insecure)
}

func TestNormalizeProtocol(t *testing.T) {
	tests := []struct {
		input    string
		expected OTLPProtocol
	}{
		{"grpc", ProtocolGRPC},
		{"GRPC", ProtocolGRPC},
		{"http", ProtocolHTTP},
		{"HTTP", ProtocolHTTP},
		{"http/protobuf", ProtocolHTTP},
		{"", ProtocolGRPC},
		{"invalid", ProtocolGRPC},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeProtocol(tt.input))
		})
	}
}

func TestValidateSecurityConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "production with insecure should fail",
			config:  &Config{Environment: "production", Insecure: true},
			wantErr: true,
		},
		{
			name:    "prod with insecure should fail",
			config:  &Config{Environment: "PROD", Insecure: true},
			wantErr: true,
		},
		{
			name:   "development with insecure is ok",
			config: &Config{Environment: "development", Insecure: true},
		},
		{
			name:   "production with secure is ok",
			config: &Config{Environment: "production"},
		},
		{
			name: "TLS version below 1.2 should fail",
			config: &Config{
				Environment: "production",
				TLSConfig:   &tls.Config{MinVersion: tls.VersionTLS10},
			},
			wantErr: true,
		},
		{
			name: "TLS version 1.3 is ok",
			config: &Config{
				Environment: "production",
				TLSConfig:   &tls.Config{MinVersion: tls.VersionTLS13},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSecurityConfig(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample(), newSampler(1.0))
	assert.Equal(t, sdktrace.AlwaysSample(), newSampler(2.0))
	assert.Equal(t, sdktrace.NeverSample(), newSampler(0.0))
	assert.Equal(t, sdktrace.NeverSample(), newSampler(-1.0))
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.25), newSampler(0.25))
}

func TestNewProviderValidation(t *testing.T) {
	t.Run("nil config is rejected", func(t *testing.T) {
		provider, err := NewProvider(context.Background(), nil)
		require.Error(t, err)
		require.Nil(t, provider)
	})

	t.Run("insecure production config is rejected", func(t *testing.T) {
		config := DefaultConfig("publisher-svc")
		config.Environment = "production"
		config.Insecure = true

		provider, err := NewProvider(context.Background(), config)
		require.Error(t, err)
		require.Nil(t, provider)
	})
}

func TestNewProviderRegistersGlobalProviders(t *testing.T) {
	shutdown := func(p *Provider) {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = p.Shutdown(ctx)
	}

	t.Run("grpc", func(t *testing.T) {
		config := DefaultConfig("publisher-svc")
		config.Insecure = true

		provider, err := NewProvider(context.Background(), config)
		require.NoError(t, err)
		defer shutdown(provider)

		assert.Same(t, provider.tracerProvider, otel.GetTracerProvider())
		assert.Same(t, provider.meterProvider, otel.GetMeterProvider())
		assert.NotNil(t, provider.LoggerProvider())
	})

	t.Run("http", func(t *testing.T) {
		config := DefaultConfig("publisher-svc")
		config.OTLPProtocol = ProtocolHTTP
		config.OTLPEndpoint = "localhost:4318"
		config.Insecure = true

		provider, err := NewProvider(context.Background(), config)
		require.NoError(t, err)
		defer shutdown(provider)

		assert.Same(t, provider.tracerProvider, otel.GetTracerProvider())
	})
}

func TestNewNoopProvider(t *testing.T) {
	provider := NewNoop()

	assert.NotNil(t, provider.TracerProvider())
	assert.NotNil(t, provider.MeterProvider())
	assert.NotNil(t, provider.LoggerProvider())
	assert.NoError(t, provider.Shutdown(context.Background()))
}
