package version

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/relver/internal/gitrepo"
)

const (
	repositoryMissingMessageConstant = "repository not configured"
	contextMissingMessageConstant    = "context not provided"
	versionResolvedMessageConstant   = "version resolved"
	logFieldVersionConstant          = "version"
	logFieldBaseTagConstant          = "base_tag"
	logFieldBranchConstant           = "branch"
	logFieldDistanceConstant         = "distance"
	logFieldDirtyMarkerConstant      = "dirty_marker"
)

// ErrRepositoryNotConfigured indicates the resolver was constructed without a repository.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// ErrContextNotProvided indicates Resolve was called with a nil context.
var ErrContextNotProvided = errors.New(contextMissingMessageConstant)

// RepositoryReader exposes the repository state that version resolution consumes.
type RepositoryReader interface {
	Snapshot(executionContext context.Context) gitrepo.Snapshot
	RemoteURL(executionContext context.Context) string
}

// Resolver computes the version of the working tree once and serves it to every caller.
type Resolver struct {
	repository RepositoryReader
	logger     *zap.Logger

	resolveOnce  sync.Once
	resolvedInfo Info
}

// NewResolver constructs a Resolver over the provided repository.
func NewResolver(repository RepositoryReader, logger *zap.Logger) (*Resolver, error) {
	if repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{repository: repository, logger: logger}, nil
}

// Resolve returns the version Info of the working tree. Missing repository data
// never fails resolution; it falls back to v0.0.0 based versions instead.
func (resolver *Resolver) Resolve(executionContext context.Context) (Info, error) {
	if executionContext == nil {
		return Info{}, ErrContextNotProvided
	}

	resolver.resolveOnce.Do(func() {
		resolver.resolvedInfo = ResolveSnapshot(resolver.repository.Snapshot(executionContext))
		resolver.logger.Debug(
			versionResolvedMessageConstant,
			zap.String(logFieldVersionConstant, resolver.resolvedInfo.Resolved),
			zap.String(logFieldBaseTagConstant, resolver.resolvedInfo.BaseTag),
			zap.String(logFieldBranchConstant, resolver.resolvedInfo.Branch),
			zap.Int(logFieldDistanceConstant, resolver.resolvedInfo.Distance),
			zap.String(logFieldDirtyMarkerConstant, resolver.resolvedInfo.DirtyMarker),
		)
	})
	return resolver.resolvedInfo, nil
}

// Commit returns the full hash of HEAD, or an empty string outside a repository.
func (resolver *Resolver) Commit(executionContext context.Context) string {
	return resolver.repository.Snapshot(executionContext).CommitHash
}

// Directory returns the top level of the working tree.
func (resolver *Resolver) Directory(executionContext context.Context) string {
	return resolver.repository.Snapshot(executionContext).TopLevel
}

// Remote returns the browsable URL of the configured remote.
func (resolver *Resolver) Remote(executionContext context.Context) string {
	return resolver.repository.RemoteURL(executionContext)
}

// ResolveSnapshot derives the complete Info, including Resolved, from a repository snapshot.
func ResolveSnapshot(snapshot gitrepo.Snapshot) Info {
	info := ParseDescription(snapshot.DescribeTokens, snapshot.BranchName, snapshot.CommitCount)

	modificationTimes := make([]time.Time, 0, len(snapshot.ModifiedFiles))
	for _, modifiedFile := range snapshot.ModifiedFiles {
		modificationTimes = append(modificationTimes, modifiedFile.ModifiedAt)
	}
	info.DirtyMarker = DirtyMarker(modificationTimes)
	info.Resolved = Format(info)
	return info
}
