// Package config provides application configuration for outletsync.
//
// This package manages a YAML configuration file holding the cloud endpoints,
// the access token, request timeouts, and verification tuning. The file
// follows OS-specific conventions for storage location; the device catalog
// cache lives alongside it.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/outletsync/config.yaml or $HOME/.config/outletsync/config.yaml
//   - macOS: $HOME/.config/outletsync/config.yaml
//   - Windows: %LOCALAPPDATA%\outletsync\config.yaml
//
// # Security
//
// The access token is stored in this file, which is therefore written with
// user-only permissions (0600). Account passwords are never stored: token
// acquisition happens outside this tool.
//
// # Usage Example
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.AccessToken = token
//	if err := cfg.Save(); err != nil {
//	    log.Fatal(err)
//	}
package config
