package config

import "errors"

// Configuration errors.
var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidWindow is returned when the collection window is not positive.
	ErrInvalidWindow = errors.New("collection window must be positive")

	// ErrInvalidTimeout is returned when the lookup timeout is not positive.
	ErrInvalidTimeout = errors.New("lookup timeout must be positive")

	// ErrNoICEServers is returned when no discovery server is configured.
	ErrNoICEServers = errors.New("at least one ICE server is required")

	// ErrFormatConflict is returned when both JSON and Markdown output are requested.
	ErrFormatConflict = errors.New("json and markdown output are mutually exclusive")
)
