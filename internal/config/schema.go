package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version   int             `yaml:"version"`
	Listen    string          `yaml:"listen"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Scan      ScanConfig      `yaml:"scan"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// DiscoveryConfig describes the switch fleet and how to query it
type DiscoveryConfig struct {
	// Hosts are the switches to query. Empty means seed via a subnet scan.
	Hosts []string `yaml:"hosts,omitempty"`
	// Username authenticates against every device
	Username string `yaml:"username,omitempty"`
	// Password is never read from the file; it comes from the
	// SWITCHMAP_PASSWORD environment variable or the -password flag
	Password string `yaml:"-"`
	// Port is the SSH port on the devices
	Port int `yaml:"port"`
	// Concurrency limits parallel device queries
	Concurrency int `yaml:"concurrency"`
	// ConnectTimeout bounds SSH dial and handshake per device
	ConnectTimeout Duration `yaml:"connect_timeout"`
	// CommandTimeout bounds each command round-trip
	CommandTimeout Duration `yaml:"command_timeout"`
	// Interval between automatic discovery runs. Zero disables polling;
	// runs then happen only on demand.
	Interval Duration `yaml:"interval,omitempty"`
	// Artifact is a path the topology document is written to after every
	// run. Empty disables the artifact.
	Artifact string `yaml:"artifact,omitempty"`
	// KeepRuns caps how many finished runs the database retains
	KeepRuns int `yaml:"keep_runs"`
}

// ScanConfig controls the seed subnet scan
type ScanConfig struct {
	// CIDR to sweep for SSH-reachable devices. Empty means detect the
	// local subnet.
	CIDR string `yaml:"cidr,omitempty"`
	// Port probed on every address
	Port int `yaml:"port"`
	// Timeout for individual probe attempts
	Timeout Duration `yaml:"timeout"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
