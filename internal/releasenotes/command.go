package releasenotes

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/relver/internal/filesystem"
	"github.com/temirov/relver/internal/gitrepo"
	"github.com/temirov/relver/internal/version"
)

const (
	commandUseConstant                     = "notes"
	commandShortDescriptionConstant        = "Generate release notes from the changelog"
	commandLongDescriptionConstant         = "notes extracts the changelog section for the release version and appends the artifact checksums."
	commandExecutionErrorTemplateConstant  = "release notes failed: %w"
	versionResolutionErrorTemplateConstant = "unable to resolve release version: %w"
	unexpectedArgumentsMessageConstant     = "notes does not accept positional arguments"
	flagChangelogNameConstant              = "changelog"
	flagChangelogDescriptionConstant       = "Path to the changelog"
	flagChecksumNameConstant               = "checksums"
	flagChecksumDescriptionConstant        = "Path to the checksum file to embed"
	flagVersionNameConstant                = "version"
	flagVersionDescriptionConstant         = "Release version; resolved from git history when omitted"
	flagPrefixNameConstant                 = "prefix"
	flagPrefixDescriptionConstant          = "Text placed before the version in the notes title"
	flagOutputNameConstant                 = "output"
	flagOutputDescriptionConstant          = "Write notes to this path instead of standard output"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current notes command configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the notes command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider func() bool
	GitExecutor                  gitrepo.GitExecutor
	FileSystem                   FileSystem
	WorkingDirectory             string
}

// Build constructs the notes command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagChangelogNameConstant, "", flagChangelogDescriptionConstant)
	command.Flags().String(flagChecksumNameConstant, "", flagChecksumDescriptionConstant)
	command.Flags().String(flagVersionNameConstant, "", flagVersionDescriptionConstant)
	command.Flags().String(flagPrefixNameConstant, "", flagPrefixDescriptionConstant)
	command.Flags().String(flagOutputNameConstant, "", flagOutputDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	fileSystem := builder.resolveFileSystem()

	if len(options.Version) == 0 {
		humanReadableLogging := false
		if builder.HumanReadableLoggingProvider != nil {
			humanReadableLogging = builder.HumanReadableLoggingProvider()
		}
		resolver, resolverError := version.NewWorkingTreeResolver(command.Context(), version.WorkingTreeOptions{
			GitExecutor:          builder.GitExecutor,
			Logger:               logger,
			HumanReadableLogging: humanReadableLogging,
			WorkingDirectory:     builder.WorkingDirectory,
			FetchHistory:         true,
		})
		if resolverError != nil {
			return resolverError
		}
		info, resolveError := resolver.Resolve(command.Context())
		if resolveError != nil {
			return fmt.Errorf(versionResolutionErrorTemplateConstant, resolveError)
		}
		options.Version = info.Resolved
	}

	service, serviceError := NewService(ServiceDependencies{FileSystem: fileSystem, Logger: logger})
	if serviceError != nil {
		return serviceError
	}

	result, generateError := service.Generate(command.Context(), options)
	if generateError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, generateError)
	}

	if len(result.OutputPath) == 0 {
		_, writeError := io.WriteString(command.OutOrStdout(), result.Notes)
		return writeError
	}
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (Options, error) {
	configuration := builder.resolveConfiguration()

	flagTargets := []struct {
		flagName string
		target   *string
	}{
		{flagName: flagChangelogNameConstant, target: &configuration.ChangelogPath},
		{flagName: flagChecksumNameConstant, target: &configuration.ChecksumPath},
		{flagName: flagPrefixNameConstant, target: &configuration.Prefix},
		{flagName: flagOutputNameConstant, target: &configuration.OutputPath},
	}
	for _, flagTarget := range flagTargets {
		if !command.Flags().Changed(flagTarget.flagName) {
			continue
		}
		flagValue, flagError := command.Flags().GetString(flagTarget.flagName)
		if flagError != nil {
			return Options{}, flagError
		}
		*flagTarget.target = flagValue
	}

	versionValue, versionError := command.Flags().GetString(flagVersionNameConstant)
	if versionError != nil {
		return Options{}, versionError
	}

	sanitized := configuration.Sanitize()
	return Options{
		ChangelogPath: sanitized.ChangelogPath,
		ChecksumPath:  sanitized.ChecksumPath,
		Version:       strings.TrimSpace(versionValue),
		Prefix:        sanitized.Prefix,
		OutputPath:    sanitized.OutputPath,
	}, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveFileSystem() FileSystem {
	if builder.FileSystem != nil {
		return builder.FileSystem
	}
	return filesystem.OSFileSystem{}
}
