// Package config holds runtime configuration for the probe.
//
// Configuration flows from three sources, later ones winning: documented
// defaults, the optional YAML file (.rtcleak in the working directory or the
// user's home), and CLI flags. The resulting flat Config is passed through
// the application explicitly; there is no global configuration state.
package config
