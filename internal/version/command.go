package version

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/relver/internal/gitrepo"
)

const (
	commandUseConstant                    = "info"
	commandShortDescriptionConstant       = "Print the version derived from git history"
	commandLongDescriptionConstant        = "info resolves the release version of the current working tree from the nearest vX.Y.Z tag, the branch, the commit distance and uncommitted changes."
	commandExecutionErrorTemplateConstant = "version info failed: %w"
	unexpectedArgumentsMessageConstant    = "info does not accept positional arguments"
	flagFormatNameConstant                = "format"
	flagFormatDescriptionConstant         = "Output format: version, text or yaml"
	flagRemoteNameConstant                = "remote"
	flagRemoteDescriptionConstant         = "Name of the remote reported as the project URL"
	flagFetchHistoryNameConstant          = "fetch-history"
	flagFetchHistoryDescriptionConstant   = "Fetch full history first when the clone is shallow"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current info command configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the info command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider func() bool
	GitExecutor                  gitrepo.GitExecutor
	FileSystem                   gitrepo.FileSystem
	WorkingDirectory             string
}

// Build constructs the info command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagFormatNameConstant, "", flagFormatDescriptionConstant)
	command.Flags().String(flagRemoteNameConstant, "", flagRemoteDescriptionConstant)
	command.Flags().Bool(flagFetchHistoryNameConstant, false, flagFetchHistoryDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration, configurationError := builder.parseConfiguration(command)
	if configurationError != nil {
		return configurationError
	}
	outputFormat, formatError := ParseOutputFormat(configuration.OutputFormat)
	if formatError != nil {
		return formatError
	}

	logger := builder.resolveLogger()
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	resolver, resolverError := NewWorkingTreeResolver(command.Context(), WorkingTreeOptions{
		GitExecutor:          builder.GitExecutor,
		FileSystem:           builder.FileSystem,
		Logger:               logger,
		HumanReadableLogging: humanReadableLogging,
		WorkingDirectory:     builder.WorkingDirectory,
		RemoteName:           configuration.RemoteName,
		FetchHistory:         configuration.FetchHistory,
	})
	if resolverError != nil {
		return resolverError
	}

	report, reportError := BuildReport(command.Context(), resolver)
	if reportError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, reportError)
	}

	return report.Render(command.OutOrStdout(), outputFormat)
}

// BuildReport resolves the version and collects the repository details around it.
func BuildReport(executionContext context.Context, resolver *Resolver) (Report, error) {
	info, resolveError := resolver.Resolve(executionContext)
	if resolveError != nil {
		return Report{}, resolveError
	}
	return Report{
		Info:            info,
		SemanticVersion: info.SemanticVersion(),
		FullCommit:      resolver.Commit(executionContext),
		Directory:       resolver.Directory(executionContext),
		Remote:          resolver.Remote(executionContext),
	}, nil
}

func (builder *CommandBuilder) parseConfiguration(command *cobra.Command) (CommandConfiguration, error) {
	configuration := builder.resolveConfiguration()

	if command.Flags().Changed(flagFormatNameConstant) {
		formatValue, formatError := command.Flags().GetString(flagFormatNameConstant)
		if formatError != nil {
			return CommandConfiguration{}, formatError
		}
		configuration.OutputFormat = formatValue
	}

	if command.Flags().Changed(flagRemoteNameConstant) {
		remoteValue, remoteError := command.Flags().GetString(flagRemoteNameConstant)
		if remoteError != nil {
			return CommandConfiguration{}, remoteError
		}
		configuration.RemoteName = remoteValue
	}

	if command.Flags().Changed(flagFetchHistoryNameConstant) {
		fetchValue, fetchError := command.Flags().GetBool(flagFetchHistoryNameConstant)
		if fetchError != nil {
			return CommandConfiguration{}, fetchError
		}
		configuration.FetchHistory = fetchValue
	}

	return configuration.Sanitize(), nil
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
