package registry

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"

	pathutils "github.com/temirov/relver/internal/utils/path"
)

// Environment variable names consumed when publishing images.
const (
	EnvGitHubActor      = "GITHUB_ACTOR"
	EnvGitHubRepository = "GITHUB_REPOSITORY"
	EnvGitHubToken      = "GITHUB_TOKEN"
	EnvDockerUsername   = "DOCKER_USERNAME"
	EnvDockerPushKey    = "DOCKER_PUSH_KEY"
)

const (
	environmentAssignmentSeparatorConstant = "="
	environmentDecodeErrorTemplateConstant = "unable to decode publish environment: %w"
	environmentFileErrorTemplateConstant   = "unable to read environment file %s: %w"
)

var environmentFileExpander = pathutils.NewHomeExpander()

// Environment is the CI context relevant to registry authentication.
type Environment struct {
	GitHubActor      string `mapstructure:"GITHUB_ACTOR"`
	GitHubRepository string `mapstructure:"GITHUB_REPOSITORY"`
	GitHubToken      string `mapstructure:"GITHUB_TOKEN"`
	DockerUsername   string `mapstructure:"DOCKER_USERNAME"`
	DockerPushKey    string `mapstructure:"DOCKER_PUSH_KEY"`
}

// HasGitHubContext reports whether the GitHub Actions identity variables are present.
func (environment Environment) HasGitHubContext() bool {
	return len(environment.GitHubActor) > 0 && len(environment.GitHubRepository) > 0
}

// HasDockerHubCredentials reports whether both Docker Hub credentials are present.
func (environment Environment) HasDockerHubCredentials() bool {
	return len(environment.DockerUsername) > 0 && len(environment.DockerPushKey) > 0
}

// DecodeEnvironment extracts the publish Environment from a variable map. Unrelated variables are ignored.
func DecodeEnvironment(variables map[string]string) (Environment, error) {
	var environment Environment
	if decodeError := mapstructure.Decode(variables, &environment); decodeError != nil {
		return Environment{}, fmt.Errorf(environmentDecodeErrorTemplateConstant, decodeError)
	}

	environment.GitHubActor = strings.TrimSpace(environment.GitHubActor)
	environment.GitHubRepository = strings.TrimSpace(environment.GitHubRepository)
	environment.GitHubToken = strings.TrimSpace(environment.GitHubToken)
	environment.DockerUsername = strings.TrimSpace(environment.DockerUsername)
	environment.DockerPushKey = strings.TrimSpace(environment.DockerPushKey)
	return environment, nil
}

// ProcessVariables snapshots the process environment as a map.
func ProcessVariables() map[string]string {
	variables := make(map[string]string)
	for _, assignment := range os.Environ() {
		name, value, found := strings.Cut(assignment, environmentAssignmentSeparatorConstant)
		if !found {
			continue
		}
		variables[name] = value
	}
	return variables
}

// LoadVariables returns the process environment overlaid with the dotenv file at environmentFilePath.
// Values from the file take precedence. A leading ~ in the path is expanded.
// An empty path yields the process environment alone.
func LoadVariables(environmentFilePath string) (map[string]string, error) {
	variables := ProcessVariables()

	trimmedPath := environmentFileExpander.Expand(strings.TrimSpace(environmentFilePath))
	if len(trimmedPath) == 0 {
		return variables, nil
	}

	fileVariables, readError := godotenv.Read(trimmedPath)
	if readError != nil {
		return nil, fmt.Errorf(environmentFileErrorTemplateConstant, trimmedPath, readError)
	}
	for name, value := range fileVariables {
		variables[name] = value
	}
	return variables, nil
}
