package packaging

import (
	"path/filepath"
	"regexp"
	"strings"
)

const (
	defaultBuildDirectoryConstant     = "build"
	defaultArtifactsDirectoryConstant = "artifacts"
	versionVariableSuffixConstant     = "_VERSION"
	variableSeparatorConstant         = "_"
)

var variableNameInvalidCharacters = regexp.MustCompile(`[^A-Z0-9_]+`)

// CommandConfiguration captures configuration values shared by the build, publish and clean commands.
type CommandConfiguration struct {
	ProjectName        string `mapstructure:"project"`
	ScriptPath         string `mapstructure:"script"`
	VersionVariable    string `mapstructure:"version_variable"`
	BuildDirectory     string `mapstructure:"build_directory"`
	ArtifactsDirectory string `mapstructure:"artifacts_directory"`
	ChecksumFileName   string `mapstructure:"checksum_file"`
	ImageName          string `mapstructure:"image"`
	ImageContext       string `mapstructure:"image_context"`
	EnvironmentFile    string `mapstructure:"env_file"`
}

// DefaultCommandConfiguration provides baseline configuration values for the packaging commands.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		BuildDirectory:     defaultBuildDirectoryConstant,
		ArtifactsDirectory: defaultArtifactsDirectoryConstant,
		ChecksumFileName:   DefaultChecksumFileName,
		ImageContext:       defaultImageContextDirectoryConstant,
	}
}

// DefaultConfigurationValues exposes the defaults as viper keys beneath prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefix + ".project":             defaults.ProjectName,
		prefix + ".script":              defaults.ScriptPath,
		prefix + ".version_variable":    defaults.VersionVariable,
		prefix + ".build_directory":     defaults.BuildDirectory,
		prefix + ".artifacts_directory": defaults.ArtifactsDirectory,
		prefix + ".checksum_file":       defaults.ChecksumFileName,
		prefix + ".image":               defaults.ImageName,
		prefix + ".image_context":       defaults.ImageContext,
		prefix + ".env_file":            defaults.EnvironmentFile,
	}
}

// Sanitize trims configured values, restores directory defaults and derives the
// project name and version variable from the script when they are not set.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := CommandConfiguration{
		ProjectName:        strings.TrimSpace(configuration.ProjectName),
		ScriptPath:         strings.TrimSpace(configuration.ScriptPath),
		VersionVariable:    strings.TrimSpace(configuration.VersionVariable),
		BuildDirectory:     strings.TrimSpace(configuration.BuildDirectory),
		ArtifactsDirectory: strings.TrimSpace(configuration.ArtifactsDirectory),
		ChecksumFileName:   strings.TrimSpace(configuration.ChecksumFileName),
		ImageName:          strings.TrimSpace(configuration.ImageName),
		ImageContext:       strings.TrimSpace(configuration.ImageContext),
		EnvironmentFile:    strings.TrimSpace(configuration.EnvironmentFile),
	}

	if len(sanitized.BuildDirectory) == 0 {
		sanitized.BuildDirectory = defaults.BuildDirectory
	}
	if len(sanitized.ArtifactsDirectory) == 0 {
		sanitized.ArtifactsDirectory = defaults.ArtifactsDirectory
	}
	if len(sanitized.ChecksumFileName) == 0 {
		sanitized.ChecksumFileName = defaults.ChecksumFileName
	}
	if len(sanitized.ImageContext) == 0 {
		sanitized.ImageContext = defaults.ImageContext
	}
	if len(sanitized.ProjectName) == 0 && len(sanitized.ScriptPath) > 0 {
		scriptName := filepath.Base(sanitized.ScriptPath)
		sanitized.ProjectName = strings.TrimSuffix(scriptName, filepath.Ext(scriptName))
	}
	if len(sanitized.VersionVariable) == 0 {
		sanitized.VersionVariable = DeriveVersionVariable(sanitized.ProjectName)
	}
	return sanitized
}

// DeriveVersionVariable names the script variable holding the version: the upper-cased
// project name with `_VERSION` appended. An empty project yields an empty name.
func DeriveVersionVariable(projectName string) string {
	trimmedName := strings.TrimSpace(projectName)
	if len(trimmedName) == 0 {
		return ""
	}
	variablePrefix := variableNameInvalidCharacters.ReplaceAllString(strings.ToUpper(trimmedName), variableSeparatorConstant)
	return variablePrefix + versionVariableSuffixConstant
}
