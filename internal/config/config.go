package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultWindow bounds candidate collection. Five seconds is enough for
	// host, server-reflexive, and relayed candidates to surface on typical
	// networks; gathering that completes earlier ends the window early.
	DefaultWindow = 5 * time.Second

	// DefaultLookupTimeout bounds each individual geo lookup and the
	// primary-address STUN exchange.
	DefaultLookupTimeout = 5 * time.Second

	// DefaultSinkTimeout bounds the single report delivery call.
	DefaultSinkTimeout = 10 * time.Second

	// DefaultGeoEndpoint is the geolocation lookup base URL. The service
	// answers GET <endpoint>/<address> with the documented JSON contract
	// (country, city, zip, timezone, lat, lon, proxy, org, as).
	DefaultGeoEndpoint = "http://ip-api.com/json"

	// AppName is used for XDG directory paths and the client identifier.
	AppName = "rtcleak"

	// DefaultClientID identifies the probe in reports and HTTP requests.
	DefaultClientID = "rtcleak/1.0 (+https://github.com/nwtrace/rtcleak)"
)

// DefaultSTUNServers are the discovery servers used both for ICE gathering
// and for the primary public address lookup when none are configured.
var DefaultSTUNServers = []string{
	"stun.l.google.com:19302",
	"stun1.l.google.com:19302",
	"stun2.l.google.com:19302",
}

// ICEServer is one discovery-server endpoint for candidate gathering.
// Credentials may also ride inside the URI itself; logging must go through
// the redacting handler either way.
type ICEServer struct {
	// URLs lists the endpoint URIs (stun:, stuns:, turn:, turns: schemes).
	URLs []string `yaml:"urls"`

	// Username and Credential are TURN long-term credentials, optional.
	Username   string `yaml:"username,omitempty"`
	Credential string `yaml:"credential,omitempty"`
}

// Config holds all options for one probe invocation. It is populated from
// defaults, the optional YAML file, and CLI flags, then passed explicitly to
// each component.
type Config struct {
	// ICEServers configure the peer connection for candidate gathering.
	ICEServers []ICEServer

	// STUNServers are host:port endpoints for the primary-address lookup.
	STUNServers []string

	// GeoEndpoint is the geolocation lookup base URL.
	GeoEndpoint string

	// SinkURL is the report delivery endpoint. Empty disables delivery.
	SinkURL string

	// Window is the candidate collection window.
	Window time.Duration

	// LookupTimeout bounds each geo lookup and STUN exchange.
	LookupTimeout time.Duration

	// ClientID identifies the probe in reports and outbound requests.
	ClientID string

	// Verbose enables debug-level logging.
	Verbose bool

	// JSONReport and MarkdownReport select the local output format.
	// Mutually exclusive; the default is the human-readable text report.
	JSONReport     bool
	MarkdownReport bool

	// OutputPath writes the local report to a file instead of stdout.
	OutputPath string

	// ConfigFilePath is an explicit YAML file path; empty triggers the
	// default search (current directory, then home).
	ConfigFilePath string
}

// NewConfig returns a Config populated with the documented defaults.
func NewConfig() *Config {
	return &Config{
		ICEServers:    []ICEServer{{URLs: stunURIs(DefaultSTUNServers)}},
		STUNServers:   append([]string(nil), DefaultSTUNServers...),
		GeoEndpoint:   DefaultGeoEndpoint,
		Window:        DefaultWindow,
		LookupTimeout: DefaultLookupTimeout,
		ClientID:      DefaultClientID,
	}
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if c.Window <= 0 {
		return ErrInvalidWindow
	}
	if c.LookupTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if len(c.ICEServers) == 0 {
		return ErrNoICEServers
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrFormatConflict
	}
	return nil
}

// DefaultOutputDir returns the XDG data directory for saved reports.
func DefaultOutputDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// stunURIs prefixes host:port endpoints with the stun: scheme.
func stunURIs(servers []string) []string {
	out := make([]string, 0, len(servers))
	for _, s := range servers {
		out = append(out, "stun:"+s)
	}
	return out
}
