// Package utils holds the ambient plumbing shared by every command:
// ConfigurationLoader (Viper with embedded defaults and RELVER_ environment
// overrides) and LoggerFactory (zap in structured or console form).
package utils
