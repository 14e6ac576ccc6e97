package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplicationRegistersReleaseCommands(testInstance *testing.T) {
	application := NewApplication()

	registeredNames := make([]string, 0)
	for _, command := range application.rootCommand.Commands() {
		registeredNames = append(registeredNames, command.Name())
	}

	for _, expectedName := range []string{"info", "notes", "build", "publish", "clean"} {
		require.Contains(testInstance, registeredNames, expectedName)
	}
}

func TestInitializeConfigurationAppliesLoggingFlags(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		flagValues            map[string]string
		expectedLogLevel      string
		expectedHumanReadable bool
		expectError           bool
	}{
		{
			name:             "defaults",
			expectedLogLevel: "info",
		},
		{
			name: "console_debug",
			flagValues: map[string]string{
				logLevelFlagNameConstant:  "debug",
				logFormatFlagNameConstant: "console",
			},
			expectedLogLevel:      "debug",
			expectedHumanReadable: true,
		},
		{
			name:        "unsupported_level",
			flagValues:  map[string]string{logLevelFlagNameConstant: "verbose"},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			application := NewApplication()
			rootCommand := application.rootCommand
			for flagName, flagValue := range testCase.flagValues {
				require.NoError(testInstance, rootCommand.PersistentFlags().Set(flagName, flagValue))
			}

			initializationError := application.initializeConfiguration(rootCommand)
			if testCase.expectError {
				require.Error(testInstance, initializationError)
				require.Contains(testInstance, initializationError.Error(), "unable to create logger")
				return
			}

			require.NoError(testInstance, initializationError)
			require.Equal(testInstance, testCase.expectedLogLevel, application.configuration.Common.LogLevel)
			require.Equal(testInstance, testCase.expectedHumanReadable, application.humanReadableLoggingEnabled())
			require.NotNil(testInstance, application.logger)
		})
	}
}

func TestRootCommandPrintsHelpWithoutArguments(testInstance *testing.T) {
	application := NewApplication()

	var outputBuffer bytes.Buffer
	application.rootCommand.SetOut(&outputBuffer)
	application.rootCommand.SetArgs([]string{})

	require.NoError(testInstance, application.Execute())
	require.Contains(testInstance, outputBuffer.String(), applicationLongDescriptionConstant)
	require.Contains(testInstance, outputBuffer.String(), "publish")
}
