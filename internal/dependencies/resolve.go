package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/relver/internal/execshell"
	"github.com/temirov/relver/internal/filesystem"
	"github.com/temirov/relver/internal/gitrepo"
	"github.com/temirov/relver/internal/ui"
)

// ResolveShellExecutor returns the provided executor or constructs a shell-backed default.
// Human-readable logging attaches a console observer that echoes each command.
func ResolveShellExecutor(existing *execshell.ShellExecutor, logger *zap.Logger, humanReadableLogging bool) (*execshell.ShellExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	commandRunner := execshell.NewOSCommandRunner()
	if humanReadableLogging {
		return execshell.NewShellExecutorWithObserver(logger, commandRunner, ui.NewConsoleCommandEventLogger(logger))
	}
	return execshell.NewShellExecutor(logger, commandRunner)
}

// ResolveGitExecutor returns the provided git executor or the shell executor built by ResolveShellExecutor.
func ResolveGitExecutor(existing gitrepo.GitExecutor, logger *zap.Logger, humanReadableLogging bool) (gitrepo.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	shellExecutor, creationError := ResolveShellExecutor(nil, logger, humanReadableLogging)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing gitrepo.FileSystem) gitrepo.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveRepository constructs a gitrepo.Repository over the provided or default collaborators.
func ResolveRepository(gitExecutor gitrepo.GitExecutor, fileSystem gitrepo.FileSystem, logger *zap.Logger, options gitrepo.RepositoryOptions) (*gitrepo.Repository, error) {
	return gitrepo.NewRepository(gitrepo.RepositoryDependencies{
		GitExecutor: gitExecutor,
		FileSystem:  ResolveFileSystem(fileSystem),
		Logger:      logger,
	}, options)
}
