// Package utils exposes reusable helpers consumed by the CLI.
//
// It houses the ConfigurationLoader, which layers embedded defaults, an
// optional configuration file, and REPOMIRROR_ environment overrides through
// Viper, and the LoggerFactory, which builds named zap loggers.
package utils
