package releasenotes_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/relver/internal/filesystem"
	"github.com/temirov/relver/internal/releasenotes"
)

const (
	testChangelogFileNameConstant = "CHANGELOG.md"
	testChecksumFileNameConstant  = "checksumfile"
	testNotesFileNameConstant     = "RELEASE_NOTES.md"
	testMissingSectionLogConstant = "changelog has no section for version; notes body left empty"
)

type memoryFileSystem struct {
	files map[string][]byte
}

func (fileSystem *memoryFileSystem) ReadFile(path string) ([]byte, error) {
	content, exists := fileSystem.files[path]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return content, nil
}

func (fileSystem *memoryFileSystem) WriteFile(path string, data []byte, _ fs.FileMode) error {
	fileSystem.files[path] = append([]byte{}, data...)
	return nil
}

func (fileSystem *memoryFileSystem) MkdirAll(string, fs.FileMode) error {
	return nil
}

func TestNewServiceRequiresFileSystem(testInstance *testing.T) {
	service, creationError := releasenotes.NewService(releasenotes.ServiceDependencies{})
	require.ErrorIs(testInstance, creationError, releasenotes.ErrFileSystemNotConfigured)
	require.Nil(testInstance, service)
}

func TestServiceGenerate(testInstance *testing.T) {
	testCases := []struct {
		name          string
		options       releasenotes.Options
		expectedNotes string
		expectedError error
		expectFound   bool
	}{
		{
			name:          "notes_with_checksums",
			options:       releasenotes.Options{ChangelogPath: testChangelogFileNameConstant, ChecksumPath: testChecksumFileNameConstant, Version: "v1.2.0"},
			expectedNotes: "Release v1.2.0\n\nNotes for 1.2.0\n\n## Checksums\n\n```\n" + testChecksumConstant + "```\n",
			expectFound:   true,
		},
		{
			name:          "custom_prefix_without_checksums",
			options:       releasenotes.Options{ChangelogPath: testChangelogFileNameConstant, Version: "v1.2.0", Prefix: "relver"},
			expectedNotes: "relver v1.2.0\n\nNotes for 1.2.0\n",
			expectFound:   true,
		},
		{
			name:          "unknown_version_has_empty_body",
			options:       releasenotes.Options{ChangelogPath: testChangelogFileNameConstant, Version: "v3.0.0"},
			expectedNotes: "Release v3.0.0\n\n",
		},
		{
			name:          "missing_changelog_is_fatal",
			options:       releasenotes.Options{ChangelogPath: "absent.md", Version: "v1.2.0"},
			expectedError: fs.ErrNotExist,
		},
		{
			name:          "missing_checksum_file_is_fatal",
			options:       releasenotes.Options{ChangelogPath: testChangelogFileNameConstant, ChecksumPath: "absent", Version: "v1.2.0"},
			expectedError: fs.ErrNotExist,
		},
		{
			name:          "changelog_path_required",
			options:       releasenotes.Options{Version: "v1.2.0"},
			expectedError: releasenotes.ErrChangelogPathMissing,
		},
		{
			name:          "version_required",
			options:       releasenotes.Options{ChangelogPath: testChangelogFileNameConstant},
			expectedError: releasenotes.ErrVersionMissing,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fileSystem := &memoryFileSystem{files: map[string][]byte{
				testChangelogFileNameConstant: []byte(testChangelogConstant),
				testChecksumFileNameConstant:  []byte(testChecksumConstant),
			}}
			service, creationError := releasenotes.NewService(releasenotes.ServiceDependencies{FileSystem: fileSystem})
			require.NoError(testInstance, creationError)

			result, generateError := service.Generate(context.Background(), testCase.options)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, generateError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, generateError)
			require.Equal(testInstance, testCase.expectedNotes, result.Notes)
			require.Equal(testInstance, testCase.expectFound, result.SectionFound)
			require.Empty(testInstance, result.OutputPath)
		})
	}
}

func TestServiceGenerateWritesOutputFile(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()
	changelogPath := filepath.Join(workingDirectory, testChangelogFileNameConstant)
	require.NoError(testInstance, os.WriteFile(changelogPath, []byte(testChangelogConstant), 0o644))
	outputPath := filepath.Join(workingDirectory, "build", "artifacts", testNotesFileNameConstant)

	observerCore, observedLogs := observer.New(zap.InfoLevel)
	service, creationError := releasenotes.NewService(releasenotes.ServiceDependencies{
		FileSystem: filesystem.OSFileSystem{},
		Logger:     zap.New(observerCore),
	})
	require.NoError(testInstance, creationError)

	result, generateError := service.Generate(context.Background(), releasenotes.Options{
		ChangelogPath: changelogPath,
		Version:       "v1.1.0",
		OutputPath:    outputPath,
	})
	require.NoError(testInstance, generateError)
	require.Equal(testInstance, outputPath, result.OutputPath)

	writtenContent, readError := os.ReadFile(outputPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, result.Notes, string(writtenContent))
	require.Equal(testInstance, "Release v1.1.0\n\nOlder notes\n## Details\nMore older notes\n", string(writtenContent))
	require.Equal(testInstance, 0, observedLogs.FilterMessage(testMissingSectionLogConstant).Len())
}

func TestServiceGenerateWarnsAboutMissingSection(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zap.WarnLevel)
	fileSystem := &memoryFileSystem{files: map[string][]byte{testChangelogFileNameConstant: []byte(testChangelogConstant)}}
	service, creationError := releasenotes.NewService(releasenotes.ServiceDependencies{FileSystem: fileSystem, Logger: zap.New(observerCore)})
	require.NoError(testInstance, creationError)

	_, generateError := service.Generate(context.Background(), releasenotes.Options{ChangelogPath: testChangelogFileNameConstant, Version: "v0.0.1"})
	require.NoError(testInstance, generateError)
	require.Equal(testInstance, 1, observedLogs.FilterMessage(testMissingSectionLogConstant).Len())
}
