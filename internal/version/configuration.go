package version

import "strings"

const (
	defaultRemoteNameConstant   = "origin"
	defaultOutputFormatConstant = string(OutputFormatVersion)
)

// CommandConfiguration captures configuration values for the info command.
type CommandConfiguration struct {
	RemoteName   string `mapstructure:"remote"`
	OutputFormat string `mapstructure:"format"`
	FetchHistory bool   `mapstructure:"fetch_history"`
}

// DefaultCommandConfiguration provides baseline configuration values for the info command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RemoteName:   defaultRemoteNameConstant,
		OutputFormat: defaultOutputFormatConstant,
		FetchHistory: true,
	}
}

// DefaultConfigurationValues exposes the defaults as viper keys beneath prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefix + ".remote":        defaults.RemoteName,
		prefix + ".format":        defaults.OutputFormat,
		prefix + ".fetch_history": defaults.FetchHistory,
	}
}

// Sanitize trims configuration values and restores defaults for empty entries.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	if len(sanitized.RemoteName) == 0 {
		sanitized.RemoteName = defaultRemoteNameConstant
	}
	sanitized.OutputFormat = strings.ToLower(strings.TrimSpace(configuration.OutputFormat))
	if len(sanitized.OutputFormat) == 0 {
		sanitized.OutputFormat = defaultOutputFormatConstant
	}
	return sanitized
}
