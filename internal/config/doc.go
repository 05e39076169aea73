// Package config loads and persists YAML settings for the alarm clock
// binaries: server listen address, alarm store location, scheduler resync
// interval, notification topic, and client timeouts. Validate fills defaults
// so a missing settings file still produces a runnable configuration.
package config
