package version

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/relver/internal/dependencies"
	"github.com/temirov/relver/internal/gitrepo"
)

const fetchHistoryFailedMessageConstant = "continuing with shallow history"

// WorkingTreeOptions describe the repository a command versions.
type WorkingTreeOptions struct {
	GitExecutor          gitrepo.GitExecutor
	FileSystem           gitrepo.FileSystem
	Logger               *zap.Logger
	HumanReadableLogging bool
	WorkingDirectory     string
	RemoteName           string
	FetchHistory         bool
}

// NewWorkingTreeResolver builds a Resolver over the repository at options.WorkingDirectory.
// With FetchHistory set, a shallow clone is unshallowed first; a failed fetch is logged
// and resolution continues with the history that is present.
func NewWorkingTreeResolver(executionContext context.Context, options WorkingTreeOptions) (*Resolver, error) {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	gitExecutor, executorError := dependencies.ResolveGitExecutor(options.GitExecutor, logger, options.HumanReadableLogging)
	if executorError != nil {
		return nil, executorError
	}

	repository, repositoryError := dependencies.ResolveRepository(gitExecutor, options.FileSystem, logger, gitrepo.RepositoryOptions{
		WorkingDirectory: options.WorkingDirectory,
		RemoteName:       options.RemoteName,
	})
	if repositoryError != nil {
		return nil, repositoryError
	}

	if options.FetchHistory {
		if fetchError := repository.EnsureFullHistory(executionContext); fetchError != nil {
			logger.Warn(fetchHistoryFailedMessageConstant, zap.Error(fetchError))
		}
	}

	return NewResolver(repository, logger)
}
