package packaging

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/relver/internal/dependencies"
	"github.com/temirov/relver/internal/filesystem"
	"github.com/temirov/relver/internal/gitrepo"
	"github.com/temirov/relver/internal/registry"
	"github.com/temirov/relver/internal/version"
)

const (
	buildCommandUseConstant                = "build"
	buildCommandShortDescriptionConstant   = "Package the versioned script, archive, checksums and image"
	buildCommandLongDescriptionConstant    = "build resolves the release version from git history, stamps it into the script, archives the script, writes the checksum manifest and builds the container image."
	publishCommandUseConstant              = "publish"
	publishCommandShortDescriptionConstant = "Build and push the release image"
	publishCommandLongDescriptionConstant  = "publish runs build, logs in to Docker Hub and the GitHub package registry when credentials are available, and pushes the versioned image to each of them."
	cleanCommandUseConstant                = "clean"
	cleanCommandShortDescriptionConstant   = "Remove the build directory"
	cleanCommandLongDescriptionConstant    = "clean removes the build directory together with every artifact inside it."
	buildExecutionErrorTemplateConstant    = "build failed: %w"
	publishExecutionErrorTemplateConstant  = "publish failed: %w"
	cleanExecutionErrorTemplateConstant    = "clean failed: %w"
	versionResolutionErrorTemplateConstant = "unable to resolve release version: %w"
	unexpectedArgumentsMessageConstant     = "command does not accept positional arguments"
	flagProjectNameConstant                = "project"
	flagProjectDescriptionConstant         = "Project name used for the archive file name"
	flagScriptNameConstant                 = "script"
	flagScriptDescriptionConstant          = "Path to the script to version and package"
	flagVariableNameConstant               = "version-variable"
	flagVariableDescriptionConstant        = "Script variable assigned the release version"
	flagBuildDirectoryNameConstant         = "build-dir"
	flagBuildDirectoryDescriptionConstant  = "Directory receiving the build outputs"
	flagImageNameConstant                  = "image"
	flagImageDescriptionConstant           = "Container image name, without tag"
	flagSkipImageNameConstant              = "skip-image"
	flagSkipImageDescriptionConstant       = "Do not build the container image"
	flagEnvironmentFileNameConstant        = "env-file"
	flagEnvironmentFileDescriptionConstant = "Dotenv file with registry credentials layered over the process environment"
	outputLineTemplateConstant             = "%s\n"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current packaging configuration.
type ConfigurationProvider func() CommandConfiguration

// EnvironmentLoader returns the variables used to authenticate with registries.
type EnvironmentLoader func(environmentFilePath string) (map[string]string, error)

// CommandBuilder assembles the build, publish and clean commands.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider func() bool
	GitExecutor                  gitrepo.GitExecutor
	Executor                     CommandExecutor
	FileSystem                   FileSystem
	EnvironmentLoader            EnvironmentLoader
	WorkingDirectory             string
}

// Build constructs the build, publish and clean commands in that order.
func (builder *CommandBuilder) Build() ([]*cobra.Command, error) {
	buildCommand := &cobra.Command{
		Use:   buildCommandUseConstant,
		Short: buildCommandShortDescriptionConstant,
		Long:  buildCommandLongDescriptionConstant,
		RunE:  builder.runBuild,
	}
	registerBuildFlags(buildCommand)
	buildCommand.Flags().Bool(flagSkipImageNameConstant, false, flagSkipImageDescriptionConstant)

	publishCommand := &cobra.Command{
		Use:   publishCommandUseConstant,
		Short: publishCommandShortDescriptionConstant,
		Long:  publishCommandLongDescriptionConstant,
		RunE:  builder.runPublish,
	}
	registerBuildFlags(publishCommand)
	publishCommand.Flags().String(flagEnvironmentFileNameConstant, "", flagEnvironmentFileDescriptionConstant)

	cleanCommand := &cobra.Command{
		Use:   cleanCommandUseConstant,
		Short: cleanCommandShortDescriptionConstant,
		Long:  cleanCommandLongDescriptionConstant,
		RunE:  builder.runClean,
	}
	cleanCommand.Flags().String(flagBuildDirectoryNameConstant, "", flagBuildDirectoryDescriptionConstant)

	return []*cobra.Command{buildCommand, publishCommand, cleanCommand}, nil
}

func registerBuildFlags(command *cobra.Command) {
	command.Flags().String(flagProjectNameConstant, "", flagProjectDescriptionConstant)
	command.Flags().String(flagScriptNameConstant, "", flagScriptDescriptionConstant)
	command.Flags().String(flagVariableNameConstant, "", flagVariableDescriptionConstant)
	command.Flags().String(flagBuildDirectoryNameConstant, "", flagBuildDirectoryDescriptionConstant)
	command.Flags().String(flagImageNameConstant, "", flagImageDescriptionConstant)
}

func (builder *CommandBuilder) runBuild(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration, configurationError := builder.parseConfiguration(command)
	if configurationError != nil {
		return configurationError
	}
	skipImage, skipError := command.Flags().GetBool(flagSkipImageNameConstant)
	if skipError != nil {
		return skipError
	}

	logger := builder.resolveLogger()
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}
	service, serviceError := builder.newService(executor, logger, nil)
	if serviceError != nil {
		return serviceError
	}

	buildResult, buildError := builder.build(command.Context(), service, configuration, skipImage)
	if buildError != nil {
		return fmt.Errorf(buildExecutionErrorTemplateConstant, buildError)
	}

	return writeLines(command.OutOrStdout(), buildResult.ScriptPath, buildResult.ArchivePath, buildResult.ChecksumPath, buildResult.ImageReference)
}

func (builder *CommandBuilder) runPublish(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration, configurationError := builder.parseConfiguration(command)
	if configurationError != nil {
		return configurationError
	}
	if command.Flags().Changed(flagEnvironmentFileNameConstant) {
		environmentFile, environmentFileError := command.Flags().GetString(flagEnvironmentFileNameConstant)
		if environmentFileError != nil {
			return environmentFileError
		}
		configuration.EnvironmentFile = environmentFile
		configuration = configuration.Sanitize()
	}
	if len(configuration.ImageName) == 0 {
		return fmt.Errorf(publishExecutionErrorTemplateConstant, ErrImageMissing)
	}

	variables, loadError := builder.resolveEnvironmentLoader()(configuration.EnvironmentFile)
	if loadError != nil {
		return fmt.Errorf(publishExecutionErrorTemplateConstant, loadError)
	}
	environment, decodeError := registry.DecodeEnvironment(variables)
	if decodeError != nil {
		return fmt.Errorf(publishExecutionErrorTemplateConstant, decodeError)
	}

	logger := builder.resolveLogger()
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}
	registryResolver, registryError := registry.NewResolver(registry.ResolverDependencies{DockerExecutor: executor, Logger: logger})
	if registryError != nil {
		return registryError
	}

	service, serviceError := builder.newService(executor, logger, registryResolver)
	if serviceError != nil {
		return serviceError
	}

	buildResult, buildError := builder.build(command.Context(), service, configuration, false)
	if buildError != nil {
		return fmt.Errorf(publishExecutionErrorTemplateConstant, buildError)
	}

	publishResult, publishError := service.Publish(command.Context(), PublishOptions{
		ImageName:   configuration.ImageName,
		Version:     buildResult.Version,
		Environment: environment,
	})
	if publishError != nil {
		return fmt.Errorf(publishExecutionErrorTemplateConstant, publishError)
	}

	return writeLines(command.OutOrStdout(), publishResult.PushedReferences...)
}

func (builder *CommandBuilder) runClean(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration, configurationError := builder.parseConfiguration(command)
	if configurationError != nil {
		return configurationError
	}

	logger := builder.resolveLogger()
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}
	service, serviceError := builder.newService(executor, logger, nil)
	if serviceError != nil {
		return serviceError
	}

	if cleanError := service.Clean(configuration.BuildDirectory); cleanError != nil {
		return fmt.Errorf(cleanExecutionErrorTemplateConstant, cleanError)
	}
	return nil
}

func (builder *CommandBuilder) build(executionContext context.Context, service *Service, configuration CommandConfiguration, skipImage bool) (BuildResult, error) {
	logger := builder.resolveLogger()
	resolver, resolverError := version.NewWorkingTreeResolver(executionContext, version.WorkingTreeOptions{
		GitExecutor:          builder.GitExecutor,
		Logger:               logger,
		HumanReadableLogging: builder.humanReadableLogging(),
		WorkingDirectory:     builder.WorkingDirectory,
		FetchHistory:         true,
	})
	if resolverError != nil {
		return BuildResult{}, resolverError
	}
	info, resolveError := resolver.Resolve(executionContext)
	if resolveError != nil {
		return BuildResult{}, fmt.Errorf(versionResolutionErrorTemplateConstant, resolveError)
	}

	return service.Build(executionContext, BuildOptions{
		ProjectName:        configuration.ProjectName,
		Version:            info.Resolved,
		ScriptPath:         configuration.ScriptPath,
		VersionVariable:    configuration.VersionVariable,
		BuildDirectory:     configuration.BuildDirectory,
		ArtifactsDirectory: configuration.ArtifactsDirectory,
		ChecksumFileName:   configuration.ChecksumFileName,
		ImageName:          configuration.ImageName,
		ImageContext:       configuration.ImageContext,
		SkipImage:          skipImage,
	})
}

func (builder *CommandBuilder) newService(executor CommandExecutor, logger *zap.Logger, registryResolver RegistryResolver) (*Service, error) {
	return NewService(ServiceDependencies{
		Executor:         executor,
		FileSystem:       builder.resolveFileSystem(),
		RegistryResolver: registryResolver,
		Logger:           logger,
	})
}

func (builder *CommandBuilder) parseConfiguration(command *cobra.Command) (CommandConfiguration, error) {
	configuration := builder.resolveConfiguration()

	flagTargets := []struct {
		flagName string
		target   *string
	}{
		{flagName: flagProjectNameConstant, target: &configuration.ProjectName},
		{flagName: flagScriptNameConstant, target: &configuration.ScriptPath},
		{flagName: flagVariableNameConstant, target: &configuration.VersionVariable},
		{flagName: flagBuildDirectoryNameConstant, target: &configuration.BuildDirectory},
		{flagName: flagImageNameConstant, target: &configuration.ImageName},
	}
	for _, flagTarget := range flagTargets {
		if command.Flags().Lookup(flagTarget.flagName) == nil || !command.Flags().Changed(flagTarget.flagName) {
			continue
		}
		flagValue, flagError := command.Flags().GetString(flagTarget.flagName)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		*flagTarget.target = flagValue
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

func (builder *CommandBuilder) humanReadableLogging() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (CommandExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}
	shellExecutor, creationError := dependencies.ResolveShellExecutor(nil, logger, builder.humanReadableLogging())
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

func (builder *CommandBuilder) resolveFileSystem() FileSystem {
	if builder.FileSystem != nil {
		return builder.FileSystem
	}
	return filesystem.OSFileSystem{}
}

func (builder *CommandBuilder) resolveEnvironmentLoader() EnvironmentLoader {
	if builder.EnvironmentLoader != nil {
		return builder.EnvironmentLoader
	}
	return registry.LoadVariables
}

func writeLines(writer io.Writer, lines ...string) error {
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		if _, writeError := fmt.Fprintf(writer, outputLineTemplateConstant, line); writeError != nil {
			return writeError
		}
	}
	return nil
}
