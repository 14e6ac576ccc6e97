package ui

import (
	"go.uber.org/zap"

	"github.com/temirov/relver/internal/execshell"
)

const gitFetchSubcommandConstant = "fetch"

// ConsoleCommandEventLogger renders command lifecycle events using a zap logger configured for human-readable output.
// Read-only git queries are reported at debug level so that a version lookup stays quiet;
// build steps (tar, shasum, docker, git fetch) are reported at info level.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
}

// NewConsoleCommandEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger, formatter: execshell.CommandMessageFormatter{}}
}

// CommandStarted implements execshell.CommandEventObserver by logging command start notifications.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	if eventLogger == nil {
		return
	}
	message := eventLogger.formatter.BuildStartedMessage(command)
	if isRepositoryInspection(command) {
		eventLogger.logger.Debug(message)
		return
	}
	eventLogger.logger.Info(message)
}

// CommandCompleted implements execshell.CommandEventObserver by logging command completion notifications.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	if result.ExitCode != 0 {
		message := eventLogger.formatter.BuildFailureMessage(command, result)
		if isRepositoryInspection(command) {
			eventLogger.logger.Debug(message)
			return
		}
		eventLogger.logger.Warn(message)
		return
	}
	message := eventLogger.formatter.BuildSuccessMessage(command)
	if isRepositoryInspection(command) {
		eventLogger.logger.Debug(message)
		return
	}
	eventLogger.logger.Info(message)
}

// CommandExecutionFailed implements execshell.CommandEventObserver by logging unexpected execution failures.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}

func isRepositoryInspection(command execshell.ShellCommand) bool {
	if command.Name != execshell.CommandGit {
		return false
	}
	if len(command.Details.Arguments) == 0 {
		return true
	}
	return command.Details.Arguments[0] != gitFetchSubcommandConstant
}
