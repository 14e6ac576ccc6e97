package packaging_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/temirov/relver/internal/execshell"
)

const (
	testProjectNameConstant       = "crossgo"
	testVersionConstant           = "v1.2.0"
	testScriptPathConstant        = "content/crossgo"
	testVariableConstant          = "CROSSGO_VERSION"
	testBuildDirectoryConstant    = "build"
	testArtifactsDirConstant      = "artifacts"
	testChecksumFileConstant      = "checksumfile"
	testImageNameConstant         = "maargenton/crossgo"
	testImageContextConstant      = "."
	testScriptContentConstant     = "#!/bin/sh\nCROSSGO_VERSION=dev\necho \"$CROSSGO_VERSION\"\n"
	testPatchedContentConstant    = "#!/bin/sh\nCROSSGO_VERSION=v1.2.0\necho \"$CROSSGO_VERSION\"\n"
	testChecksumOutputConstant    = "0123abcd  crossgo-v1.2.0.tar.gz\n"
	testArchiveCommandConstant    = "tar czf artifacts/crossgo-v1.2.0.tar.gz crossgo"
	testShasumCommandConstant     = "shasum -a 256 crossgo-v1.2.0.tar.gz"
	testImageBuildCommandConstant = "docker build -t maargenton/crossgo:v1.2.0 ."
	testImagePushCommandConstant  = "docker push maargenton/crossgo:v1.2.0"
	testDescribeCommandConstant   = "describe --always --tags --long --match v[0-9]*.[0-9]*.[0-9]*"
	testBranchCommandConstant     = "rev-parse --abbrev-ref HEAD"
	testShallowCommandConstant    = "rev-parse --is-shallow-repository"
)

type memoryFileSystem struct {
	mutex       sync.Mutex
	files       map[string][]byte
	modes       map[string]fs.FileMode
	directories map[string]bool
	removed     []string
}

func newMemoryFileSystem() *memoryFileSystem {
	return &memoryFileSystem{
		files:       map[string][]byte{testScriptPathConstant: []byte(testScriptContentConstant)},
		modes:       map[string]fs.FileMode{},
		directories: map[string]bool{},
	}
}

func (fileSystem *memoryFileSystem) ReadFile(path string) ([]byte, error) {
	fileSystem.mutex.Lock()
	defer fileSystem.mutex.Unlock()
	content, exists := fileSystem.files[path]
	if !exists {
		return nil, os.ErrNotExist
	}
	return content, nil
}

func (fileSystem *memoryFileSystem) WriteFile(path string, data []byte, permissions fs.FileMode) error {
	fileSystem.mutex.Lock()
	defer fileSystem.mutex.Unlock()
	fileSystem.files[path] = append([]byte(nil), data...)
	fileSystem.modes[path] = permissions
	return nil
}

func (fileSystem *memoryFileSystem) MkdirAll(path string, _ fs.FileMode) error {
	fileSystem.mutex.Lock()
	defer fileSystem.mutex.Unlock()
	fileSystem.directories[path] = true
	return nil
}

func (fileSystem *memoryFileSystem) RemoveAll(path string) error {
	fileSystem.mutex.Lock()
	defer fileSystem.mutex.Unlock()
	fileSystem.removed = append(fileSystem.removed, path)
	for filePath := range fileSystem.files {
		if filePath == path || strings.HasPrefix(filePath, path+string(filepath.Separator)) {
			delete(fileSystem.files, filePath)
		}
	}
	delete(fileSystem.directories, path)
	return nil
}

func (fileSystem *memoryFileSystem) Chmod(path string, permissions fs.FileMode) error {
	fileSystem.mutex.Lock()
	defer fileSystem.mutex.Unlock()
	if _, exists := fileSystem.files[path]; !exists {
		return os.ErrNotExist
	}
	fileSystem.modes[path] = permissions
	return nil
}

func (fileSystem *memoryFileSystem) Glob(pattern string) ([]string, error) {
	fileSystem.mutex.Lock()
	defer fileSystem.mutex.Unlock()
	var matches []string
	for filePath := range fileSystem.files {
		matched, matchError := filepath.Match(pattern, filePath)
		if matchError != nil {
			return nil, matchError
		}
		if matched {
			matches = append(matches, filePath)
		}
	}
	sort.Strings(matches)
	return matches, nil
}

type recordedCommand struct {
	line             string
	workingDirectory string
	standardInput    string
}

type recordingExecutor struct {
	fileSystem *memoryFileSystem
	commands   []recordedCommand
	failures   map[string]error
}

func newRecordingExecutor(fileSystem *memoryFileSystem) *recordingExecutor {
	return &recordingExecutor{fileSystem: fileSystem, failures: map[string]error{}}
}

func (executor *recordingExecutor) ExecuteTar(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	result, executionError := executor.record(execshell.CommandTar, details)
	if executionError == nil && len(details.Arguments) > 1 {
		archivePath := filepath.Join(details.WorkingDirectory, details.Arguments[1])
		_ = executor.fileSystem.WriteFile(archivePath, []byte(archivePath), 0o644)
	}
	return result, executionError
}

func (executor *recordingExecutor) ExecuteShasum(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	result, executionError := executor.record(execshell.CommandShasum, details)
	if executionError != nil {
		return result, executionError
	}
	result.StandardOutput = testChecksumOutputConstant
	return result, nil
}

func (executor *recordingExecutor) ExecuteDocker(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.record(execshell.CommandDocker, details)
}

func (executor *recordingExecutor) record(name execshell.CommandName, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	line := strings.Join(append([]string{string(name)}, details.Arguments...), " ")
	executor.commands = append(executor.commands, recordedCommand{
		line:             line,
		workingDirectory: details.WorkingDirectory,
		standardInput:    string(details.StandardInput),
	})
	if failure, shouldFail := executor.failures[line]; shouldFail {
		return execshell.ExecutionResult{}, failure
	}
	return execshell.ExecutionResult{}, nil
}

func (executor *recordingExecutor) lines() []string {
	commandLines := make([]string, 0, len(executor.commands))
	for _, command := range executor.commands {
		commandLines = append(commandLines, command.line)
	}
	return commandLines
}

type taggedGitExecutor struct {
	executedCommands []string
}

func (executor *taggedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	commandKey := strings.Join(details.Arguments, " ")
	executor.executedCommands = append(executor.executedCommands, commandKey)
	switch commandKey {
	case testDescribeCommandConstant:
		return execshell.ExecutionResult{StandardOutput: "v1.2.0-0-g1a2b3c4\n"}, nil
	case testBranchCommandConstant:
		return execshell.ExecutionResult{StandardOutput: "master\n"}, nil
	case testShallowCommandConstant:
		return execshell.ExecutionResult{StandardOutput: "false\n"}, nil
	default:
		return execshell.ExecutionResult{}, execshell.CommandFailedError{
			Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: details},
			Result:  execshell.ExecutionResult{ExitCode: 128},
		}
	}
}
