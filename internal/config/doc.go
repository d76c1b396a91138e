// Package config loads the site configuration from config.toml in the
// content root.
//
// Every option is optional; sensible defaults apply when the file is
// missing or partial. Validation happens once at load time so downstream
// stages can assume values are in range (notably images.quality, which the
// process stage takes verbatim).
package config
