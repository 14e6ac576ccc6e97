package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/relver/internal/execshell"
)

const (
	defaultRemoteNameConstant                = "origin"
	gitDescribeSubcommandConstant            = "describe"
	gitDescribeAlwaysFlagConstant            = "--always"
	gitDescribeTagsFlagConstant              = "--tags"
	gitDescribeLongFlagConstant              = "--long"
	gitDescribeMatchFlagConstant             = "--match"
	versionTagGlobConstant                   = "v[0-9]*.[0-9]*.[0-9]*"
	describeTokenSeparatorConstant           = "-"
	gitRevParseSubcommandConstant            = "rev-parse"
	gitAbbrevRefFlagConstant                 = "--abbrev-ref"
	gitHeadReferenceConstant                 = "HEAD"
	gitShowTopLevelFlagConstant              = "--show-toplevel"
	gitIsShallowFlagConstant                 = "--is-shallow-repository"
	gitShallowTrueValueConstant              = "true"
	gitRevListSubcommandConstant             = "rev-list"
	gitCountFlagConstant                     = "--count"
	gitStatusSubcommandConstant              = "status"
	gitStatusPorcelainV2FlagConstant         = "--porcelain=2"
	gitStatusNullTerminatedFlagConstant      = "-z"
	gitStatusNoUntrackedFlagConstant         = "--untracked-files=no"
	gitRemoteSubcommandConstant              = "remote"
	gitRemoteGetURLSubcommandConstant        = "get-url"
	gitFetchSubcommandConstant               = "fetch"
	gitFetchPruneFlagConstant                = "--prune"
	gitFetchTagsFlagConstant                 = "--tags"
	gitFetchUnshallowFlagConstant            = "--unshallow"
	gitTerminalPromptEnvironmentNameConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisableValueConstant    = "0"
	statusFieldSeparatorConstant             = " "
	statusRecordSeparatorConstant            = "\x00"
	statusOrdinaryRecordConstant             = "1"
	statusRenamedRecordConstant              = "2"
	statusUnmergedRecordConstant             = "u"
	statusUntrackedRecordConstant            = "?"
	statusOrdinaryFieldCountConstant         = 9
	statusRenamedFieldCountConstant          = 10
	statusUnmergedFieldCountConstant         = 11
	statusUntrackedFieldCountConstant        = 2
	gitExecutorMissingMessageConstant        = "git executor not configured"
	fileSystemMissingMessageConstant         = "filesystem not configured"
	unshallowFailureTemplateConstant         = "failed to fetch full history: %w"
	unshallowStartMessageConstant            = "Fetching missing information from remote ..."
	unshallowFailureMessageConstant          = "Unable to fetch full history; commit distance may be wrong"
	queryFailedMessageConstant               = "git query returned no output"
	modifiedFileSkippedMessageConstant       = "skipping modified file without readable mtime"
	logFieldArgumentsConstant                = "arguments"
	logFieldPathConstant                     = "path"
	logFieldWorkingDirectoryConstant         = "working_directory"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the filesystem dependency was missing.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// FileSystem exposes the file metadata lookups needed to date working tree changes.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
}

// RepositoryDependencies enumerates collaborators required by Repository.
type RepositoryDependencies struct {
	GitExecutor GitExecutor
	FileSystem  FileSystem
	Logger      *zap.Logger
}

// RepositoryOptions locate the repository and the remote to describe.
type RepositoryOptions struct {
	WorkingDirectory string
	RemoteName       string
}

// ModifiedFile is a tracked file with uncommitted changes and its modification time.
type ModifiedFile struct {
	Path       string
	ModifiedAt time.Time
}

// Snapshot is the read-only view of the repository taken once per process.
// CommitCount is only queried when DescribeTokens holds a bare commit hash,
// which is the one case that needs it.
type Snapshot struct {
	Shallow        bool
	DescribeTokens []string
	BranchName     string
	CommitHash     string
	CommitCount    int
	TopLevel       string
	RemoteURL      string
	ModifiedFiles  []ModifiedFile
}

// Repository answers read-only questions about a git working tree.
// Every query degrades to an empty answer instead of failing, so a build
// outside a repository still resolves a fallback version.
type Repository struct {
	executor         GitExecutor
	fileSystem       FileSystem
	logger           *zap.Logger
	workingDirectory string
	remoteName       string

	snapshotOnce sync.Once
	snapshot     Snapshot
}

// NewRepository constructs a Repository from the provided dependencies.
func NewRepository(dependencies RepositoryDependencies, options RepositoryOptions) (*Repository, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	remoteName := strings.TrimSpace(options.RemoteName)
	if len(remoteName) == 0 {
		remoteName = defaultRemoteNameConstant
	}

	return &Repository{
		executor:         dependencies.GitExecutor,
		fileSystem:       dependencies.FileSystem,
		logger:           logger,
		workingDirectory: strings.TrimSpace(options.WorkingDirectory),
		remoteName:       remoteName,
	}, nil
}

// Query runs one read-only git command and returns its trimmed standard output.
// Failures of any kind yield an empty string.
func (repository *Repository) Query(executionContext context.Context, arguments ...string) string {
	executionResult, executionError := repository.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repository.workingDirectory,
	})
	if executionError != nil {
		repository.logger.Debug(
			queryFailedMessageConstant,
			zap.Strings(logFieldArgumentsConstant, arguments),
			zap.String(logFieldWorkingDirectoryConstant, repository.workingDirectory),
			zap.Error(executionError),
		)
		return ""
	}
	return strings.TrimSpace(executionResult.StandardOutput)
}

// IsShallow reports whether the repository is a shallow clone.
func (repository *Repository) IsShallow(executionContext context.Context) bool {
	return repository.Query(executionContext, gitRevParseSubcommandConstant, gitIsShallowFlagConstant) == gitShallowTrueValueConstant
}

// EnsureFullHistory converts a shallow clone into a complete one so that commit
// distances are counted against the real history. It does nothing for a full clone.
func (repository *Repository) EnsureFullHistory(executionContext context.Context) error {
	if !repository.IsShallow(executionContext) {
		return nil
	}

	repository.logger.Info(unshallowStartMessageConstant, zap.String(logFieldWorkingDirectoryConstant, repository.workingDirectory))
	_, fetchError := repository.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitFetchSubcommandConstant, gitFetchPruneFlagConstant, gitFetchTagsFlagConstant, gitFetchUnshallowFlagConstant},
		WorkingDirectory:     repository.workingDirectory,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptDisableValueConstant},
	})
	if fetchError != nil {
		repository.logger.Warn(unshallowFailureMessageConstant, zap.Error(fetchError))
		return fmt.Errorf(unshallowFailureTemplateConstant, fetchError)
	}
	return nil
}

// Snapshot returns the repository state, querying git on the first call only.
func (repository *Repository) Snapshot(executionContext context.Context) Snapshot {
	repository.snapshotOnce.Do(func() {
		repository.snapshot = repository.takeSnapshot(executionContext)
	})
	return repository.snapshot
}

// RemoteURL returns the configured remote as a browsable HTTPS URL.
func (repository *Repository) RemoteURL(executionContext context.Context) string {
	return CanonicalWebURL(repository.Snapshot(executionContext).RemoteURL)
}

func (repository *Repository) takeSnapshot(executionContext context.Context) Snapshot {
	snapshot := Snapshot{
		Shallow:        repository.IsShallow(executionContext),
		DescribeTokens: repository.describeTokens(executionContext),
		BranchName:     repository.Query(executionContext, gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant),
		CommitHash:     repository.Query(executionContext, gitRevParseSubcommandConstant, gitHeadReferenceConstant),
		TopLevel:       repository.Query(executionContext, gitRevParseSubcommandConstant, gitShowTopLevelFlagConstant),
		RemoteURL:      repository.Query(executionContext, gitRemoteSubcommandConstant, gitRemoteGetURLSubcommandConstant, repository.remoteName),
	}

	if len(snapshot.DescribeTokens) == 1 {
		snapshot.CommitCount = repository.commitCount(executionContext)
	}

	statusOutput := repository.Query(
		executionContext,
		gitStatusSubcommandConstant,
		gitStatusPorcelainV2FlagConstant,
		gitStatusNullTerminatedFlagConstant,
		gitStatusNoUntrackedFlagConstant,
	)
	snapshot.ModifiedFiles = repository.datedFiles(ParseStatusPaths(statusOutput))

	return snapshot
}

func (repository *Repository) describeTokens(executionContext context.Context) []string {
	description := repository.Query(
		executionContext,
		gitDescribeSubcommandConstant,
		gitDescribeAlwaysFlagConstant,
		gitDescribeTagsFlagConstant,
		gitDescribeLongFlagConstant,
		gitDescribeMatchFlagConstant,
		versionTagGlobConstant,
	)
	if len(description) == 0 {
		return nil
	}
	return strings.Split(description, describeTokenSeparatorConstant)
}

func (repository *Repository) commitCount(executionContext context.Context) int {
	countOutput := repository.Query(executionContext, gitRevListSubcommandConstant, gitCountFlagConstant, gitHeadReferenceConstant)
	count, parseError := strconv.Atoi(countOutput)
	if parseError != nil || count < 0 {
		return 0
	}
	return count
}

// datedFiles stats status paths, which git reports relative to the directory it ran in.
func (repository *Repository) datedFiles(paths []string) []ModifiedFile {
	modifiedFiles := make([]ModifiedFile, 0, len(paths))
	for _, relativePath := range paths {
		resolvedPath := relativePath
		if !filepath.IsAbs(resolvedPath) && len(repository.workingDirectory) > 0 {
			resolvedPath = filepath.Join(repository.workingDirectory, relativePath)
		}

		fileInfo, statError := repository.fileSystem.Stat(resolvedPath)
		if statError != nil {
			repository.logger.Debug(modifiedFileSkippedMessageConstant, zap.String(logFieldPathConstant, resolvedPath), zap.Error(statError))
			continue
		}
		modifiedFiles = append(modifiedFiles, ModifiedFile{Path: relativePath, ModifiedAt: fileInfo.ModTime()})
	}
	return modifiedFiles
}

// ParseStatusPaths extracts file paths from `git status --porcelain=2 -z` output.
// Paths are relative to the directory git ran in and may contain spaces.
// For renames and copies the new path is kept and the original path dropped.
func ParseStatusPaths(statusOutput string) []string {
	var paths []string
	statusRecords := strings.Split(statusOutput, statusRecordSeparatorConstant)
	for recordIndex := 0; recordIndex < len(statusRecords); recordIndex++ {
		statusRecord := statusRecords[recordIndex]
		recordType, _, _ := strings.Cut(statusRecord, statusFieldSeparatorConstant)

		var fieldCount int
		switch recordType {
		case statusOrdinaryRecordConstant:
			fieldCount = statusOrdinaryFieldCountConstant
		case statusRenamedRecordConstant:
			fieldCount = statusRenamedFieldCountConstant
			// the original path follows as its own record
			recordIndex++
		case statusUnmergedRecordConstant:
			fieldCount = statusUnmergedFieldCountConstant
		case statusUntrackedRecordConstant:
			fieldCount = statusUntrackedFieldCountConstant
		default:
			continue
		}

		recordFields := strings.SplitN(statusRecord, statusFieldSeparatorConstant, fieldCount)
		if len(recordFields) < fieldCount || len(recordFields[fieldCount-1]) == 0 {
			continue
		}
		paths = append(paths, recordFields[fieldCount-1])
	}
	return paths
}
