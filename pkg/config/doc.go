// Package config handles configuration loading for homebin tools.
//
// Each tool hands Load its embedded YAML defaults, the config files it
// wants to read and an environment prefix. Sources are layered in that
// order with koanf, so a user file overrides defaults and environment
// variables override both:
//
//	MOVE_DOWNLOADS_RECENT_FILES__MAX_FILES=20  ->  recent_files.max_files
//
// A double underscore separates nesting levels; single underscores are kept.
// Files are parsed by extension: .yml/.yaml/.json with the YAML parser
// (JSON is valid YAML) and .toml with the TOML parser.
package config
