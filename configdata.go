// Package notestrip provides embedded assets for the notestrip command.
//
// The root package exists solely to embed [config.default.toml] via
// [DefaultConfigTOML], which `notestrip --print-config` writes out as a
// starting point for notestrip.toml.
package notestrip

import _ "embed"

// DefaultConfigTOML holds the raw bytes of config.default.toml, generated by
// cmd/genconfig and embedded at build time.
//
//go:embed config.default.toml
var DefaultConfigTOML []byte
