package releasenotes

import "strings"

const defaultChangelogPathConstant = "CHANGELOG.md"

// CommandConfiguration captures configuration values for the notes command.
type CommandConfiguration struct {
	ChangelogPath string `mapstructure:"changelog"`
	ChecksumPath  string `mapstructure:"checksum_file"`
	Prefix        string `mapstructure:"prefix"`
	OutputPath    string `mapstructure:"output"`
}

// DefaultCommandConfiguration provides baseline configuration values for the notes command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		ChangelogPath: defaultChangelogPathConstant,
		Prefix:        defaultPrefixConstant,
	}
}

// DefaultConfigurationValues exposes the defaults as viper keys beneath prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefix + ".changelog":     defaults.ChangelogPath,
		prefix + ".checksum_file": defaults.ChecksumPath,
		prefix + ".prefix":        defaults.Prefix,
		prefix + ".output":        defaults.OutputPath,
	}
}

// Sanitize trims configured values and restores defaults for required entries.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.ChangelogPath = strings.TrimSpace(configuration.ChangelogPath)
	if len(sanitized.ChangelogPath) == 0 {
		sanitized.ChangelogPath = defaultChangelogPathConstant
	}
	sanitized.ChecksumPath = strings.TrimSpace(configuration.ChecksumPath)
	sanitized.Prefix = strings.TrimSpace(configuration.Prefix)
	if len(sanitized.Prefix) == 0 {
		sanitized.Prefix = defaultPrefixConstant
	}
	sanitized.OutputPath = strings.TrimSpace(configuration.OutputPath)
	return sanitized
}
