package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
	failureDetailsTemplateConstant          = "exit code %d%s"
)

const (
	gitDescribeSubcommandNameConstant     = "describe"
	gitRevParseSubcommandNameConstant     = "rev-parse"
	gitRevListSubcommandNameConstant      = "rev-list"
	gitStatusSubcommandNameConstant       = "status"
	gitRemoteSubcommandNameConstant       = "remote"
	gitRemoteGetURLSubcommandNameConstant = "get-url"
	gitFetchSubcommandNameConstant        = "fetch"
	gitShallowFlagConstant                = "--is-shallow-repository"
	gitShowTopLevelFlagConstant           = "--show-toplevel"
	gitAbbrevRefFlagConstant              = "--abbrev-ref"
	gitUnshallowFlagConstant              = "--unshallow"
	dockerBuildSubcommandNameConstant     = "build"
	dockerPushSubcommandNameConstant      = "push"
	dockerLoginSubcommandNameConstant     = "login"
	dockerTagFlagConstant                 = "-t"
	dockerUsernameFlagConstant            = "--username"
	dockerDefaultRegistryLabelConstant    = "the default registry"
	tarCreateFlagConstant                 = "czf"
)

const (
	gitDescribeStartTemplateConstant         = "Describing the latest version tag in %s"
	gitDescribeSuccessTemplateConstant       = "Described the latest version tag in %s"
	gitDescribeFailureTemplateConstant       = "Could not describe a version tag in %s (%s)"
	gitShallowStartTemplateConstant          = "Checking whether %s is a shallow clone"
	gitShallowSuccessTemplateConstant        = "Checked clone depth of %s"
	gitShallowFailureTemplateConstant        = "Could not check clone depth of %s (%s)"
	gitTopLevelStartTemplateConstant         = "Locating repository root from %s"
	gitTopLevelSuccessTemplateConstant       = "Located repository root from %s"
	gitTopLevelFailureTemplateConstant       = "No repository found from %s (%s)"
	gitBranchStartTemplateConstant           = "Identifying current branch in %s"
	gitBranchSuccessTemplateConstant         = "Identified current branch in %s"
	gitBranchFailureTemplateConstant         = "Could not identify current branch in %s (%s)"
	gitRevisionStartTemplateConstant         = "Resolving HEAD in %s"
	gitRevisionSuccessTemplateConstant       = "Resolved HEAD in %s"
	gitRevisionFailureTemplateConstant       = "Could not resolve HEAD in %s (%s)"
	gitCommitCountStartTemplateConstant      = "Counting commits in %s"
	gitCommitCountSuccessTemplateConstant    = "Counted commits in %s"
	gitCommitCountFailureTemplateConstant    = "Could not count commits in %s (%s)"
	gitStatusStartTemplateConstant           = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant         = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant         = "Could not review working tree status in %s (%s)"
	gitRemoteLookupStartTemplateConstant     = "Checking %s remote for %s"
	gitRemoteLookupSuccessTemplateConstant   = "Read %s remote for %s"
	gitRemoteLookupFailureTemplateConstant   = "Could not read %s remote for %s (%s)"
	gitUnshallowStartTemplateConstant        = "Fetching missing history into %s"
	gitUnshallowSuccessTemplateConstant      = "Fetched full history into %s"
	gitUnshallowFailureTemplateConstant      = "Could not fetch full history into %s (%s)"
	tarArchiveStartTemplateConstant          = "Creating archive %s"
	tarArchiveSuccessTemplateConstant        = "Created archive %s"
	tarArchiveFailureTemplateConstant        = "Could not create archive %s (%s)"
	shasumStartTemplateConstant              = "Computing checksums in %s"
	shasumSuccessTemplateConstant            = "Computed checksums in %s"
	shasumFailureTemplateConstant            = "Could not compute checksums in %s (%s)"
	dockerBuildStartTemplateConstant         = "Building image %s"
	dockerBuildSuccessTemplateConstant       = "Built image %s"
	dockerBuildFailureTemplateConstant       = "Could not build image %s (%s)"
	dockerPushStartTemplateConstant          = "Pushing image %s"
	dockerPushSuccessTemplateConstant        = "Pushed image %s"
	dockerPushFailureTemplateConstant        = "Could not push image %s (%s)"
	dockerLoginStartTemplateConstant         = "Authenticating with %s as %s"
	dockerLoginSuccessTemplateConstant       = "Authenticated with %s as %s"
	dockerLoginFailureTemplateConstant       = "Failed to authenticate with %s as %s (%s)"
	stageExecutionFailureTemplateConstant    = "%s: %s"
)

// stageTemplates groups the message templates of one recognized command shape.
type stageTemplates struct {
	start   string
	success string
	failure string
}

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandTar:
		return formatter.describeTarMessage(command, result, failure, stage)
	case CommandShasum:
		templates := stageTemplates{start: shasumStartTemplateConstant, success: shasumSuccessTemplateConstant, failure: shasumFailureTemplateConstant}
		return formatter.renderStage(command, result, failure, stage, templates, formatter.describeWorkingDirectory(command))
	case CommandDocker:
		return formatter.describeDockerMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	switch strings.TrimSpace(arguments[0]) {
	case gitDescribeSubcommandNameConstant:
		templates := stageTemplates{start: gitDescribeStartTemplateConstant, success: gitDescribeSuccessTemplateConstant, failure: gitDescribeFailureTemplateConstant}
		return formatter.renderStage(command, result, failure, stage, templates, workingDirectory)
	case gitRevParseSubcommandNameConstant:
		return formatter.describeGitRevParseMessage(command, result, failure, stage, workingDirectory)
	case gitRevListSubcommandNameConstant:
		templates := stageTemplates{start: gitCommitCountStartTemplateConstant, success: gitCommitCountSuccessTemplateConstant, failure: gitCommitCountFailureTemplateConstant}
		return formatter.renderStage(command, result, failure, stage, templates, workingDirectory)
	case gitStatusSubcommandNameConstant:
		templates := stageTemplates{start: gitStatusStartTemplateConstant, success: gitStatusSuccessTemplateConstant, failure: gitStatusFailureTemplateConstant}
		return formatter.renderStage(command, result, failure, stage, templates, workingDirectory)
	case gitRemoteSubcommandNameConstant:
		if formatter.argumentAtIndex(arguments, 1) != gitRemoteGetURLSubcommandNameConstant {
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
		templates := stageTemplates{start: gitRemoteLookupStartTemplateConstant, success: gitRemoteLookupSuccessTemplateConstant, failure: gitRemoteLookupFailureTemplateConstant}
		return formatter.renderStage(command, result, failure, stage, templates, formatter.ensureValue(formatter.argumentAtIndex(arguments, 2)), workingDirectory)
	case gitFetchSubcommandNameConstant:
		if !containsArgument(arguments, gitUnshallowFlagConstant) {
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
		templates := stageTemplates{start: gitUnshallowStartTemplateConstant, success: gitUnshallowSuccessTemplateConstant, failure: gitUnshallowFailureTemplateConstant}
		return formatter.renderStage(command, result, failure, stage, templates, workingDirectory)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRevParseMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage, workingDirectory string) string {
	arguments := command.Details.Arguments
	var templates stageTemplates
	switch {
	case containsArgument(arguments, gitShallowFlagConstant):
		templates = stageTemplates{start: gitShallowStartTemplateConstant, success: gitShallowSuccessTemplateConstant, failure: gitShallowFailureTemplateConstant}
	case containsArgument(arguments, gitShowTopLevelFlagConstant):
		templates = stageTemplates{start: gitTopLevelStartTemplateConstant, success: gitTopLevelSuccessTemplateConstant, failure: gitTopLevelFailureTemplateConstant}
	case containsArgument(arguments, gitAbbrevRefFlagConstant):
		templates = stageTemplates{start: gitBranchStartTemplateConstant, success: gitBranchSuccessTemplateConstant, failure: gitBranchFailureTemplateConstant}
	default:
		templates = stageTemplates{start: gitRevisionStartTemplateConstant, success: gitRevisionSuccessTemplateConstant, failure: gitRevisionFailureTemplateConstant}
	}
	return formatter.renderStage(command, result, failure, stage, templates, workingDirectory)
}

func (formatter CommandMessageFormatter) describeTarMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if formatter.argumentAtIndex(arguments, 0) != tarCreateFlagConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	templates := stageTemplates{start: tarArchiveStartTemplateConstant, success: tarArchiveSuccessTemplateConstant, failure: tarArchiveFailureTemplateConstant}
	return formatter.renderStage(command, result, failure, stage, templates, formatter.ensureValue(formatter.argumentAtIndex(arguments, 1)))
}

func (formatter CommandMessageFormatter) describeDockerMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	switch formatter.argumentAtIndex(arguments, 0) {
	case dockerBuildSubcommandNameConstant:
		templates := stageTemplates{start: dockerBuildStartTemplateConstant, success: dockerBuildSuccessTemplateConstant, failure: dockerBuildFailureTemplateConstant}
		return formatter.renderStage(command, result, failure, stage, templates, formatter.ensureValue(findFlagValue(arguments, dockerTagFlagConstant)))
	case dockerPushSubcommandNameConstant:
		templates := stageTemplates{start: dockerPushStartTemplateConstant, success: dockerPushSuccessTemplateConstant, failure: dockerPushFailureTemplateConstant}
		return formatter.renderStage(command, result, failure, stage, templates, formatter.ensureValue(formatter.extractFirstNonFlagArgument(arguments[1:])))
	case dockerLoginSubcommandNameConstant:
		registry := formatter.extractFirstNonFlagArgument(arguments[1:])
		if len(registry) == 0 {
			registry = dockerDefaultRegistryLabelConstant
		}
		templates := stageTemplates{start: dockerLoginStartTemplateConstant, success: dockerLoginSuccessTemplateConstant, failure: dockerLoginFailureTemplateConstant}
		return formatter.renderStage(command, result, failure, stage, templates, registry, formatter.ensureValue(findFlagValue(arguments, dockerUsernameFlagConstant)))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) renderStage(command ShellCommand, result ExecutionResult, failure error, stage messageStage, templates stageTemplates, values ...any) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, values...)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, values...)
	case messageStageFailure:
		details := fmt.Sprintf(failureDetailsTemplateConstant, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(templates.failure, append(values, details)...)
	case messageStageExecutionFailure:
		return fmt.Sprintf(stageExecutionFailureTemplateConstant, fmt.Sprintf(templates.start, values...), formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	return fmt.Sprintf(commandLabelTemplateConstant, describeCommand(command), formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[index])
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return value
}

// extractFirstNonFlagArgument skips flags and the values of flags that take one.
func (formatter CommandMessageFormatter) extractFirstNonFlagArgument(arguments []string) string {
	skipNext := false
	for _, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if skipNext {
			skipNext = false
			continue
		}
		if trimmedArgument == dockerUsernameFlagConstant || trimmedArgument == dockerTagFlagConstant {
			skipNext = true
			continue
		}
		if strings.HasPrefix(trimmedArgument, flagPrefixConstant) {
			continue
		}
		return trimmedArgument
	}
	return emptyStringConstant
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for argumentIndex := 0; argumentIndex < len(arguments)-1; argumentIndex++ {
		if strings.TrimSpace(arguments[argumentIndex]) == flag {
			return strings.TrimSpace(arguments[argumentIndex+1])
		}
	}
	return emptyStringConstant
}
