// Package config loads eggmatch settings from a TOML file.
//
// Missing files are not an error: Load starts from Default, overlays whatever
// the file sets, expands ~ in paths and validates the result.
package config
