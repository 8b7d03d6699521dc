// Package config loads, normalizes, and validates talentpipe configuration.
//
// Configuration lives in a TOML file resolved from an explicit path, then
// ~/.config/talentpipe/config.toml, then a project-local talentpipe.toml.
// Absence of a file is not an error; defaults apply. Path fields are expanded
// to absolute paths during load, and env fallbacks (TALENTPIPE_NTFY_TOPIC)
// fill credentials that should not live in checked-in files.
package config
