// Package utils exposes the ambient helpers shared by the CLI.
//
// ConfigurationLoader layers embedded defaults, a YAML file and prefixed
// environment variables through Viper. LoggerFactory builds zap loggers that
// write diagnostics to standard error.
package utils
