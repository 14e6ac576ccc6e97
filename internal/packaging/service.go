package packaging

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/relver/internal/execshell"
	"github.com/temirov/relver/internal/registry"
)

const (
	executorMissingMessageConstant           = "packaging executor not configured"
	fileSystemMissingMessageConstant         = "filesystem not configured"
	registryMissingMessageConstant           = "registry resolver not configured"
	versionMissingMessageConstant            = "release version not provided"
	scriptMissingMessageConstant             = "script path not provided"
	versionVariableMissingMessageConstant    = "version variable not provided"
	imageMissingMessageConstant              = "image name not provided"
	stepErrorTemplateConstant                = "%s failed: %v"
	archiveFileTemplateConstant              = "%s-%s.tar.gz"
	archiveGlobConstant                      = "*.tar.gz"
	imageReferenceTemplateConstant           = "%s:%s"
	versionAssignmentPatternTemplateConstant = `(?m)^%s=.*$`
	versionAssignmentTemplateConstant        = "%s=%s"
	tarCreateFlagConstant                    = "czf"
	shasumAlgorithmFlagConstant              = "-a"
	shasumAlgorithmConstant                  = "256"
	dockerBuildSubcommandConstant            = "build"
	dockerTagFlagConstant                    = "-t"
	dockerTagSubcommandConstant              = "tag"
	dockerPushSubcommandConstant             = "push"
	buildStartedMessageConstant              = "Building release artifacts"
	buildCompletedMessageConstant            = "Release artifacts ready"
	imageSkippedMessageConstant              = "Skipping container image"
	versionLineMissingMessageConstant        = "script has no version assignment to patch"
	publishStartedMessageConstant            = "Publishing release image"
	cleanCompletedMessageConstant            = "Removed build directory"
	logFieldVersionConstant                  = "version"
	logFieldScriptConstant                   = "script"
	logFieldArchiveConstant                  = "archive"
	logFieldChecksumConstant                 = "checksum_file"
	logFieldImageConstant                    = "image"
	logFieldTagsConstant                     = "tags"
	logFieldDirectoryConstant                = "directory"
	logFieldVariableConstant                 = "variable"
	scriptPermissionsConstant                = fs.FileMode(0o755)
	directoryPermissionsConstant             = fs.FileMode(0o755)
	checksumFilePermissionsConstant          = fs.FileMode(0o644)
	stepCreateDirectoriesConstant            = "create build directories"
	stepPatchScriptConstant                  = "patch script"
	stepArchiveConstant                      = "create archive"
	stepChecksumConstant                     = "write checksums"
	stepBuildImageConstant                   = "build image"
	stepTagImageConstant                     = "tag image"
	stepPushImageConstant                    = "push image"
	stepCleanConstant                        = "clean"
	checksumNoArchivesMessageConstant        = "no archives found"
	registryPathSeparatorConstant            = "/"
	defaultImageContextDirectoryConstant     = "."
	noArchivesErrorTemplateConstant          = "%s: no %s in %s"
	patchReadErrorTemplateConstant           = "unable to read %s: %w"
	patchWriteErrorTemplateConstant          = "unable to write %s: %w"
	patchPermissionsErrorTemplateConstant    = "unable to mark %s executable: %w"
	checksumWriteErrorTemplateConstant       = "unable to write %s: %w"
	directoryCreateErrorTemplateConstant     = "unable to create %s: %w"
	checksumGlobErrorTemplateConstant        = "unable to list archives in %s: %w"
	cleanErrorTemplateConstant               = "unable to remove %s: %w"
	imageBaseTagTemplateConstant             = "%s:%s"
)

// DefaultChecksumFileName names the checksum manifest written beside the archives.
const DefaultChecksumFileName = "checksumfile"

// ErrExecutorNotConfigured indicates the command executor dependency was missing.
var ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the filesystem dependency was missing.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrRegistryResolverNotConfigured indicates Publish was called without a registry resolver.
var ErrRegistryResolverNotConfigured = errors.New(registryMissingMessageConstant)

// ErrVersionMissing indicates a build was requested without a version.
var ErrVersionMissing = errors.New(versionMissingMessageConstant)

// ErrScriptMissing indicates a build was requested without a script to package.
var ErrScriptMissing = errors.New(scriptMissingMessageConstant)

// ErrVersionVariableMissing indicates a build was requested without the variable to patch.
var ErrVersionVariableMissing = errors.New(versionVariableMissingMessageConstant)

// ErrImageMissing indicates an image operation was requested without an image name.
var ErrImageMissing = errors.New(imageMissingMessageConstant)

// CommandExecutor runs the external tools used to package a release.
type CommandExecutor interface {
	ExecuteTar(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteShasum(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteDocker(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// FileSystem exposes the file operations required to package a release.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
	MkdirAll(path string, permissions fs.FileMode) error
	RemoveAll(path string) error
	Chmod(path string, permissions fs.FileMode) error
	Glob(pattern string) ([]string, error)
}

// RegistryResolver selects and authenticates the registries an image is pushed to.
type RegistryResolver interface {
	ResolveTags(executionContext context.Context, baseTag string, environment registry.Environment) []registry.Tag
	LoginDockerHub(executionContext context.Context, environment registry.Environment) bool
}

// StepError identifies the packaging step that failed.
type StepError struct {
	Step  string
	Cause error
}

// Error describes the failed step.
func (stepError StepError) Error() string {
	return fmt.Sprintf(stepErrorTemplateConstant, stepError.Step, stepError.Cause)
}

// Unwrap exposes the underlying cause.
func (stepError StepError) Unwrap() error {
	return stepError.Cause
}

// ServiceDependencies enumerates collaborators required by Service.
type ServiceDependencies struct {
	Executor         CommandExecutor
	FileSystem       FileSystem
	RegistryResolver RegistryResolver
	Logger           *zap.Logger
}

// BuildOptions configure a release build.
type BuildOptions struct {
	ProjectName        string
	Version            string
	ScriptPath         string
	VersionVariable    string
	BuildDirectory     string
	ArtifactsDirectory string
	ChecksumFileName   string
	ImageName          string
	ImageContext       string
	SkipImage          bool
}

// BuildResult lists the artifacts a build produced.
type BuildResult struct {
	Version        string
	ScriptPath     string
	ArchivePath    string
	ChecksumPath   string
	ImageReference string
}

// PublishOptions configure pushing a built image.
type PublishOptions struct {
	ImageName   string
	Version     string
	Environment registry.Environment
}

// PublishResult lists every image reference that was pushed.
type PublishResult struct {
	PushedReferences []string
}

// Service packages a versioned release: script, archive, checksums and container image.
type Service struct {
	executor         CommandExecutor
	fileSystem       FileSystem
	registryResolver RegistryResolver
	logger           *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		executor:         dependencies.Executor,
		fileSystem:       dependencies.FileSystem,
		registryResolver: dependencies.RegistryResolver,
		logger:           logger,
	}, nil
}

// Build runs every packaging step in order and stops at the first failure.
func (service *Service) Build(executionContext context.Context, options BuildOptions) (BuildResult, error) {
	if len(options.Version) == 0 {
		return BuildResult{}, ErrVersionMissing
	}
	if len(options.ScriptPath) == 0 {
		return BuildResult{}, ErrScriptMissing
	}
	if len(options.VersionVariable) == 0 {
		return BuildResult{}, ErrVersionVariableMissing
	}

	service.logger.Info(buildStartedMessageConstant, zap.String(logFieldVersionConstant, options.Version))

	artifactsPath := filepath.Join(options.BuildDirectory, options.ArtifactsDirectory)
	if directoryError := service.fileSystem.MkdirAll(artifactsPath, directoryPermissionsConstant); directoryError != nil {
		return BuildResult{}, StepError{Step: stepCreateDirectoriesConstant, Cause: fmt.Errorf(directoryCreateErrorTemplateConstant, artifactsPath, directoryError)}
	}

	scriptName := filepath.Base(options.ScriptPath)
	patchedScriptPath := filepath.Join(options.BuildDirectory, scriptName)
	if patchError := service.PatchScript(options.ScriptPath, patchedScriptPath, options.VersionVariable, options.Version); patchError != nil {
		return BuildResult{}, StepError{Step: stepPatchScriptConstant, Cause: patchError}
	}

	archiveName := fmt.Sprintf(archiveFileTemplateConstant, options.ProjectName, options.Version)
	archiveRelativePath := filepath.Join(options.ArtifactsDirectory, archiveName)
	if archiveError := service.Archive(executionContext, options.BuildDirectory, archiveRelativePath, scriptName); archiveError != nil {
		return BuildResult{}, StepError{Step: stepArchiveConstant, Cause: archiveError}
	}

	checksumPath, checksumError := service.Checksum(executionContext, artifactsPath, options.ChecksumFileName)
	if checksumError != nil {
		return BuildResult{}, StepError{Step: stepChecksumConstant, Cause: checksumError}
	}

	result := BuildResult{
		Version:      options.Version,
		ScriptPath:   patchedScriptPath,
		ArchivePath:  filepath.Join(options.BuildDirectory, archiveRelativePath),
		ChecksumPath: checksumPath,
	}

	if options.SkipImage || len(options.ImageName) == 0 {
		service.logger.Info(imageSkippedMessageConstant, zap.String(logFieldImageConstant, options.ImageName))
	} else {
		imageReference := ImageReference(options.ImageName, options.Version)
		if imageError := service.BuildImage(executionContext, options.ImageContext, imageReference); imageError != nil {
			return BuildResult{}, StepError{Step: stepBuildImageConstant, Cause: imageError}
		}
		result.ImageReference = imageReference
	}

	service.logger.Info(
		buildCompletedMessageConstant,
		zap.String(logFieldVersionConstant, options.Version),
		zap.String(logFieldScriptConstant, result.ScriptPath),
		zap.String(logFieldArchiveConstant, result.ArchivePath),
		zap.String(logFieldChecksumConstant, result.ChecksumPath),
		zap.String(logFieldImageConstant, result.ImageReference),
	)
	return result, nil
}

// PatchScript copies the script at sourcePath to destinationPath, rewrites every
// `<variable>=...` line to `<variable>=<version>` and marks the copy executable.
func (service *Service) PatchScript(sourcePath string, destinationPath string, variable string, version string) error {
	scriptContent, readError := service.fileSystem.ReadFile(sourcePath)
	if readError != nil {
		return fmt.Errorf(patchReadErrorTemplateConstant, sourcePath, readError)
	}

	patchedContent, replaced := PatchVersionAssignment(scriptContent, variable, version)
	if !replaced {
		service.logger.Warn(versionLineMissingMessageConstant, zap.String(logFieldScriptConstant, sourcePath), zap.String(logFieldVariableConstant, variable))
	}

	if writeError := service.fileSystem.WriteFile(destinationPath, patchedContent, scriptPermissionsConstant); writeError != nil {
		return fmt.Errorf(patchWriteErrorTemplateConstant, destinationPath, writeError)
	}
	if chmodError := service.fileSystem.Chmod(destinationPath, scriptPermissionsConstant); chmodError != nil {
		return fmt.Errorf(patchPermissionsErrorTemplateConstant, destinationPath, chmodError)
	}
	return nil
}

// PatchVersionAssignment replaces the value of every line assigning variable. It reports whether any line matched.
func PatchVersionAssignment(scriptContent []byte, variable string, version string) ([]byte, bool) {
	assignmentPattern := regexp.MustCompile(fmt.Sprintf(versionAssignmentPatternTemplateConstant, regexp.QuoteMeta(variable)))
	if !assignmentPattern.Match(scriptContent) {
		return scriptContent, false
	}
	replacement := fmt.Sprintf(versionAssignmentTemplateConstant, variable, version)
	return assignmentPattern.ReplaceAllLiteral(scriptContent, []byte(replacement)), true
}

// Archive creates a gzip tarball at archivePath containing members, both relative to workingDirectory.
func (service *Service) Archive(executionContext context.Context, workingDirectory string, archivePath string, members ...string) error {
	arguments := append([]string{tarCreateFlagConstant, archivePath}, members...)
	_, executionError := service.executor.ExecuteTar(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: workingDirectory,
	})
	return executionError
}

// Checksum writes the SHA-256 manifest of every archive in artifactsDirectory to checksumFileName
// inside that directory and returns the manifest path.
func (service *Service) Checksum(executionContext context.Context, artifactsDirectory string, checksumFileName string) (string, error) {
	archivePaths, globError := service.fileSystem.Glob(filepath.Join(artifactsDirectory, archiveGlobConstant))
	if globError != nil {
		return "", fmt.Errorf(checksumGlobErrorTemplateConstant, artifactsDirectory, globError)
	}
	if len(archivePaths) == 0 {
		return "", fmt.Errorf(noArchivesErrorTemplateConstant, checksumNoArchivesMessageConstant, archiveGlobConstant, artifactsDirectory)
	}

	archiveNames := make([]string, 0, len(archivePaths))
	for _, archivePath := range archivePaths {
		archiveNames = append(archiveNames, filepath.Base(archivePath))
	}
	sort.Strings(archiveNames)

	executionResult, executionError := service.executor.ExecuteShasum(executionContext, execshell.CommandDetails{
		Arguments:        append([]string{shasumAlgorithmFlagConstant, shasumAlgorithmConstant}, archiveNames...),
		WorkingDirectory: artifactsDirectory,
	})
	if executionError != nil {
		return "", executionError
	}

	if len(checksumFileName) == 0 {
		checksumFileName = DefaultChecksumFileName
	}
	checksumPath := filepath.Join(artifactsDirectory, checksumFileName)
	if writeError := service.fileSystem.WriteFile(checksumPath, []byte(executionResult.StandardOutput), checksumFilePermissionsConstant); writeError != nil {
		return "", fmt.Errorf(checksumWriteErrorTemplateConstant, checksumPath, writeError)
	}
	return checksumPath, nil
}

// BuildImage builds the container image in contextDirectory and tags it imageReference.
func (service *Service) BuildImage(executionContext context.Context, contextDirectory string, imageReference string) error {
	if len(contextDirectory) == 0 {
		contextDirectory = defaultImageContextDirectoryConstant
	}
	_, executionError := service.executor.ExecuteDocker(executionContext, execshell.CommandDetails{
		Arguments: []string{dockerBuildSubcommandConstant, dockerTagFlagConstant, imageReference, contextDirectory},
	})
	return executionError
}

// TagImage adds targetReference as an alias of sourceReference.
func (service *Service) TagImage(executionContext context.Context, sourceReference string, targetReference string) error {
	_, executionError := service.executor.ExecuteDocker(executionContext, execshell.CommandDetails{
		Arguments: []string{dockerTagSubcommandConstant, sourceReference, targetReference},
	})
	return executionError
}

// PushImage pushes imageReference to its registry.
func (service *Service) PushImage(executionContext context.Context, imageReference string) error {
	_, executionError := service.executor.ExecuteDocker(executionContext, execshell.CommandDetails{
		Arguments: []string{dockerPushSubcommandConstant, imageReference},
	})
	return executionError
}

// Publish logs in to the configured registries and pushes the versioned image to each of them.
func (service *Service) Publish(executionContext context.Context, options PublishOptions) (PublishResult, error) {
	if service.registryResolver == nil {
		return PublishResult{}, ErrRegistryResolverNotConfigured
	}
	if len(options.ImageName) == 0 {
		return PublishResult{}, ErrImageMissing
	}
	if len(options.Version) == 0 {
		return PublishResult{}, ErrVersionMissing
	}

	imageReference := ImageReference(options.ImageName, options.Version)
	service.registryResolver.LoginDockerHub(executionContext, options.Environment)
	registryTags := service.registryResolver.ResolveTags(executionContext, RegistryBaseTag(options.ImageName, options.Version), options.Environment)

	tagReferences := make([]string, 0, len(registryTags))
	for _, registryTag := range registryTags {
		tagReferences = append(tagReferences, registryTag.String())
	}
	service.logger.Info(publishStartedMessageConstant, zap.String(logFieldImageConstant, imageReference), zap.Strings(logFieldTagsConstant, tagReferences))

	if pushError := service.PushImage(executionContext, imageReference); pushError != nil {
		return PublishResult{}, StepError{Step: stepPushImageConstant, Cause: pushError}
	}
	result := PublishResult{PushedReferences: []string{imageReference}}

	for _, tagReference := range tagReferences {
		if tagError := service.TagImage(executionContext, imageReference, tagReference); tagError != nil {
			return result, StepError{Step: stepTagImageConstant, Cause: tagError}
		}
		if pushError := service.PushImage(executionContext, tagReference); pushError != nil {
			return result, StepError{Step: stepPushImageConstant, Cause: pushError}
		}
		result.PushedReferences = append(result.PushedReferences, tagReference)
	}
	return result, nil
}

// Clean removes the build directory and everything in it.
func (service *Service) Clean(buildDirectory string) error {
	if removeError := service.fileSystem.RemoveAll(buildDirectory); removeError != nil {
		return StepError{Step: stepCleanConstant, Cause: fmt.Errorf(cleanErrorTemplateConstant, buildDirectory, removeError)}
	}
	service.logger.Info(cleanCompletedMessageConstant, zap.String(logFieldDirectoryConstant, buildDirectory))
	return nil
}

// ImageReference joins an image name and a version into a docker reference.
func ImageReference(imageName string, version string) string {
	return fmt.Sprintf(imageReferenceTemplateConstant, imageName, version)
}

// RegistryBaseTag is the final path element of imageName tagged with version, the form
// registries that namespace images by repository expect.
func RegistryBaseTag(imageName string, version string) string {
	return fmt.Sprintf(imageBaseTagTemplateConstant, path.Base(strings.TrimSuffix(imageName, registryPathSeparatorConstant)), version)
}
