package releasenotes

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	fileSystemMissingMessageConstant     = "filesystem not configured"
	changelogPathMissingMessageConstant  = "changelog path not provided"
	versionMissingMessageConstant        = "release version not provided"
	changelogReadErrorTemplateConstant   = "unable to read changelog %s: %w"
	checksumReadErrorTemplateConstant    = "unable to read checksum file %s: %w"
	notesWriteErrorTemplateConstant      = "unable to write release notes %s: %w"
	notesDirectoryErrorTemplateConstant  = "unable to create release notes directory %s: %w"
	versionSectionMissingMessageConstant = "changelog has no section for version; notes body left empty"
	notesWrittenMessageConstant          = "release notes written"
	defaultPrefixConstant                = "Release"
	notesFilePermissionsConstant         = fs.FileMode(0o644)
	notesDirectoryPermissionsConstant    = fs.FileMode(0o755)
	logFieldVersionConstant              = "version"
	logFieldChangelogConstant            = "changelog"
	logFieldOutputConstant               = "output"
)

// ErrFileSystemNotConfigured indicates the filesystem dependency was missing.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrChangelogPathMissing indicates Generate was called without a changelog.
var ErrChangelogPathMissing = errors.New(changelogPathMissingMessageConstant)

// ErrVersionMissing indicates Generate was called without a version.
var ErrVersionMissing = errors.New(versionMissingMessageConstant)

// FileSystem exposes the file operations required to generate release notes.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
	MkdirAll(path string, permissions fs.FileMode) error
}

// ServiceDependencies enumerates collaborators required by Service.
type ServiceDependencies struct {
	FileSystem FileSystem
	Logger     *zap.Logger
}

// Options configure a single release notes generation.
type Options struct {
	ChangelogPath string
	ChecksumPath  string
	Version       string
	Prefix        string
	OutputPath    string
}

// Result describes generated release notes.
type Result struct {
	Notes        string
	OutputPath   string
	SectionFound bool
}

// Service generates release notes from a changelog and a checksum manifest.
type Service struct {
	fileSystem FileSystem
	logger     *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{fileSystem: dependencies.FileSystem, logger: logger}, nil
}

// Generate renders release notes for options.Version. Unreadable inputs abort generation.
// The notes are written to options.OutputPath when it is set.
func (service *Service) Generate(executionContext context.Context, options Options) (Result, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return Result{}, contextError
	}

	changelogPath := strings.TrimSpace(options.ChangelogPath)
	if len(changelogPath) == 0 {
		return Result{}, ErrChangelogPathMissing
	}
	releaseVersion := strings.TrimSpace(options.Version)
	if len(releaseVersion) == 0 {
		return Result{}, ErrVersionMissing
	}

	changelogContent, changelogError := service.fileSystem.ReadFile(changelogPath)
	if changelogError != nil {
		return Result{}, fmt.Errorf(changelogReadErrorTemplateConstant, changelogPath, changelogError)
	}

	prefix := strings.TrimSpace(options.Prefix)
	if len(prefix) == 0 {
		prefix = defaultPrefixConstant
	}

	_, sectionFound := Parse(string(changelogContent)).Find(releaseVersion)
	if !sectionFound {
		service.logger.Warn(
			versionSectionMissingMessageConstant,
			zap.String(logFieldVersionConstant, releaseVersion),
			zap.String(logFieldChangelogConstant, changelogPath),
		)
	}

	notes := Notes{
		Prefix:  prefix,
		Version: releaseVersion,
		Body:    ExtractBody(string(changelogContent), releaseVersion),
	}

	checksumPath := strings.TrimSpace(options.ChecksumPath)
	if len(checksumPath) > 0 {
		checksumContent, checksumError := service.fileSystem.ReadFile(checksumPath)
		if checksumError != nil {
			return Result{}, fmt.Errorf(checksumReadErrorTemplateConstant, checksumPath, checksumError)
		}
		notes.ChecksumBlock = string(checksumContent)
		notes.HasChecksums = true
	}

	result := Result{Notes: Assemble(notes), SectionFound: sectionFound}

	outputPath := strings.TrimSpace(options.OutputPath)
	if len(outputPath) == 0 {
		return result, nil
	}

	outputDirectory := filepath.Dir(outputPath)
	if directoryError := service.fileSystem.MkdirAll(outputDirectory, notesDirectoryPermissionsConstant); directoryError != nil {
		return Result{}, fmt.Errorf(notesDirectoryErrorTemplateConstant, outputDirectory, directoryError)
	}
	if writeError := service.fileSystem.WriteFile(outputPath, []byte(result.Notes), notesFilePermissionsConstant); writeError != nil {
		return Result{}, fmt.Errorf(notesWriteErrorTemplateConstant, outputPath, writeError)
	}

	service.logger.Info(notesWrittenMessageConstant, zap.String(logFieldVersionConstant, releaseVersion), zap.String(logFieldOutputConstant, outputPath))
	result.OutputPath = outputPath
	return result, nil
}
