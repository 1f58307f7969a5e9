// Package config loads and validates application configuration.
//
// Configuration is layered: built-in defaults, then an optional YAML file
// named by WARDEN_CONFIG_FILE, then WARDEN_* environment variables.
// Later layers win, so a deployment can ship a base file and override
// single values per environment.
//
// LoadConfig validates the merged result; the process refuses to start on
// an invalid configuration rather than limping along with part of one.
package config
