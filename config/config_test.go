package config

import (
	stderrors "errors"
	"testing"
	"time"

	"proxyprobe/models"
	"proxyprobe/pkg/constants"
	"proxyprobe/pkg/errors"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	if cfg.Probe.Concurrency != constants.DefaultConcurrency {
		t.Errorf("Concurrency = %d", cfg.Probe.Concurrency)
	}
	if cfg.Probe.Timeout != constants.DefaultProbeTimeout {
		t.Errorf("Timeout = %s", cfg.Probe.Timeout)
	}
	if cfg.MaxAttempts() != 2 {
		t.Errorf("MaxAttempts() = %d, want 2", cfg.MaxAttempts())
	}
	if len(cfg.Probe.Families) != 3 {
		t.Errorf("Families = %v", cfg.Probe.Families)
	}
	if cfg.Echo.HTTP != constants.DefaultEchoURLHTTP || cfg.Echo.Socks != constants.DefaultEchoURLSocks {
		t.Errorf("Echo = %+v", cfg.Echo)
	}
	if cfg.Output.Dir != constants.DefaultOutputDir {
		t.Errorf("Output.Dir = %q", cfg.Output.Dir)
	}
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv(constants.EnvConcurrency, "32")
	t.Setenv(constants.EnvProbeTimeout, "7")
	t.Setenv(constants.EnvRetries, "0")
	t.Setenv(constants.EnvFamilies, "socks5, HTTPS")
	t.Setenv(constants.EnvSourceTimeout, "1500ms")
	t.Setenv(constants.EnvSourceRate, "2.5")
	t.Setenv(constants.EnvUserAgents, "a, b,,c")
	t.Setenv(constants.EnvEndpointPolicy, "LOOSE")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	if cfg.Probe.Concurrency != 32 {
		t.Errorf("Concurrency = %d", cfg.Probe.Concurrency)
	}
	if cfg.Probe.Timeout != 7*time.Second {
		t.Errorf("Timeout = %s", cfg.Probe.Timeout)
	}
	if cfg.MaxAttempts() != 1 {
		t.Errorf("MaxAttempts() = %d", cfg.MaxAttempts())
	}
	want := []models.ProtocolFamily{models.HTTPForward, models.Socks5}
	if len(cfg.Probe.Families) != 2 || cfg.Probe.Families[0] != want[0] || cfg.Probe.Families[1] != want[1] {
		t.Errorf("Families = %v, want %v", cfg.Probe.Families, want)
	}
	if cfg.Source.Timeout != 1500*time.Millisecond {
		t.Errorf("Source.Timeout = %s", cfg.Source.Timeout)
	}
	if cfg.Source.Rate != 2.5 {
		t.Errorf("Source.Rate = %v", cfg.Source.Rate)
	}
	if len(cfg.Source.UserAgents) != 3 {
		t.Errorf("UserAgents = %v", cfg.Source.UserAgents)
	}
	if cfg.Probe.EndpointPolicy != "loose" {
		t.Errorf("EndpointPolicy = %q", cfg.Probe.EndpointPolicy)
	}
}

func TestNewConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"zero concurrency", constants.EnvConcurrency, "0"},
		{"negative retries", constants.EnvRetries, "-1"},
		{"bad policy", constants.EnvEndpointPolicy, "fuzzy"},
		{"bad echo", constants.EnvEchoURLSocks, "ftp://example.com"},
		{"bad log level", constants.EnvLogLevel, "chatty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := NewConfig()
			if !stderrors.Is(err, errors.ErrConfigValidation) {
				t.Fatalf("error = %v, want ErrConfigValidation", err)
			}
		})
	}
}

func TestNewConfigUnknownFamily(t *testing.T) {
	t.Setenv(constants.EnvFamilies, "http,quic")
	_, err := NewConfig()
	if !stderrors.Is(err, errors.ErrConfigLoad) {
		t.Fatalf("error = %v, want ErrConfigLoad", err)
	}
}
