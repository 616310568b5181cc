package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".rtcleak"

// File is the YAML configuration file shape.
//
// Example:
//
//	ice_servers:
//	  - urls: ["stun:stun.l.google.com:19302"]
//	  - urls: ["turn:turn.example.com:3478"]
//	    username: alice
//	    credential: s3cret
//	stun_servers:
//	  - stun.l.google.com:19302
//	geo_endpoint: http://ip-api.com/json
//	sink_url: https://collector.example.com/reports
//	window: 5s
type File struct {
	ICEServers  []ICEServer `yaml:"ice_servers"`
	STUNServers []string    `yaml:"stun_servers"`
	GeoEndpoint string      `yaml:"geo_endpoint"`
	SinkURL     string      `yaml:"sink_url"`
	Window      string      `yaml:"window"`
}

// LoadConfigFile loads probe configuration from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

// Apply merges the file's values into the config. Only fields the file
// actually sets are applied, so flag and default values survive.
func (f *File) Apply(cfg *Config) error {
	if len(f.ICEServers) > 0 {
		cfg.ICEServers = f.ICEServers
	}
	if len(f.STUNServers) > 0 {
		cfg.STUNServers = f.STUNServers
	}
	if f.GeoEndpoint != "" {
		cfg.GeoEndpoint = f.GeoEndpoint
	}
	if f.SinkURL != "" {
		cfg.SinkURL = f.SinkURL
	}
	if f.Window != "" {
		d, err := time.ParseDuration(f.Window)
		if err != nil {
			return fmt.Errorf("parse window %q: %w", f.Window, err)
		}
		cfg.Window = d
	}
	return nil
}

// FindConfigFile searches for the configuration file in order: the explicit
// path if given, then the current directory, then the user's home directory.
// Returns the path if found, or empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
