// Package am resolves how gmsctl reaches the metadata service ("I am").
//
// Connection details come from three places, highest precedence first:
//
//  1. An override set on the Resolver by the caller (SetOverride)
//  2. Environment variables (DATAHUB_GMS_*), exclusively when DATAHUB_SKIP_CONFIG is truthy
//  3. The persisted config file (~/.datahubenv), merged field by field under the environment
package am

import "time"

// Config represents the persisted client configuration file.
type Config struct {
	Gms GmsConfig `mapstructure:"gms" yaml:"gms" json:"gms" toml:"gms"`
}

// GmsConfig holds the connection settings for the metadata service.
type GmsConfig struct {
	Server string  `mapstructure:"server" yaml:"server" json:"server" toml:"server" validate:"required"`
	Token  *string `mapstructure:"token" yaml:"token" json:"token,omitempty" toml:"token,omitempty"`

	// Timeout bounds each HTTP request. Zero means no timeout.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty" json:"timeout,omitempty" toml:"timeout,omitempty"`

	// MaxRequestsPerSecond throttles outgoing requests. Zero means unlimited.
	MaxRequestsPerSecond float64 `mapstructure:"max_requests_per_second" yaml:"max_requests_per_second,omitempty" json:"max_requests_per_second,omitempty" toml:"max_requests_per_second,omitempty"`
}

// Resolved is the outcome of merging all configuration sources.
type Resolved struct {
	Host  string
	Token string

	HostSource  Source
	TokenSource Source

	// HostEnvVar names the environment variable(s) the host came from when
	// HostSource is SourceEnvironment.
	HostEnvVar string

	// ConfigPath is the file that was consulted, empty when no file was read.
	ConfigPath string

	Timeout              time.Duration
	MaxRequestsPerSecond float64
}

// Default connection values
const (
	DefaultGmsHost    = "http://localhost:8080"
	DefaultConfigFile = ".datahubenv"
	DefaultProtocol   = "http"
)

// File system constants
const (
	DefaultDirPermissions = 0755 // Standard directory permissions (rwxr-xr-x)
	ConfigFilePermissions = 0600 // Config may hold a token (rw-------)
	BackupFilePermissions = 0600
)
