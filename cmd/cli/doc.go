// Package cli constructs the repo-mirror command-line interface, wiring the
// Cobra command hierarchy, the Viper configuration loader with its embedded
// defaults, and the zap logger shared by every command.
package cli
