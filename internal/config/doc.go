// Package config stores remembered routers and console preferences in a
// YAML file under the user's configuration directory:
//   - Linux: $XDG_CONFIG_HOME/lpac-console/config.yaml or $HOME/.config/lpac-console/config.yaml
//   - macOS: $HOME/.config/lpac-console/config.yaml
//   - Windows: %LOCALAPPDATA%\lpac-console\config.yaml
//
// A --router value is resolved against the saved names first, so
//
//	lpac-console routers add home 192.168.1.1
//	lpac-console --router home profiles
//
// talks to 192.168.1.1. With no --router the default entry is used.
//
// LuCI session tokens are never written to the file.
//
// Writes go through a temporary file and a rename, under a package mutex.
package config
