// Package config loads, validates, and normalizes steeple configuration.
//
// Configuration lives in a TOML file (default ~/.config/steeple/config.toml)
// and is decoded over repository defaults, so absent keys keep sane values.
// Load returns a fully normalized config: relative and ~-prefixed paths are
// expanded, durations defaulted, and enum fields validated. Components never
// read configuration ambiently; the loaded *Config is passed explicitly at
// construction time.
package config
