package registry

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/relver/internal/execshell"
)

const (
	dockerLoginSubcommandConstant       = "login"
	dockerUsernameFlagConstant          = "--username"
	dockerPasswordStdinFlagConstant     = "--password-stdin"
	dockerHubDisplayNameConstant        = "docker.com"
	executorMissingMessageConstant      = "docker executor not configured"
	githubContextMissingMessageConstant = "GitHub Actions context not found; image will not be pushed to the GitHub package registry"
	githubTokenMissingMessageConstant   = "Found GitHub Actions context but no GITHUB_TOKEN. Image will not be pushed to the GitHub package registry. To resolve this issue, add the following to your workflow:\n  env:\n    GITHUB_TOKEN: ${{ secrets.GITHUB_TOKEN }}"
	dockerHubCredentialsMissingConstant = "DOCKER_USERNAME or DOCKER_PUSH_KEY not set; skipping docker.com authentication"
	authenticatingMessageConstant       = "Authenticating with registry"
	authenticationFailedMessageConstant = "Failed to authenticate with registry"
	logFieldRegistryConstant            = "registry"
	logFieldUsernameConstant            = "username"
	logFieldRepositoryConstant          = "repository"
)

// ErrDockerExecutorNotConfigured indicates the docker executor dependency was missing.
var ErrDockerExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// DockerExecutor runs docker commands.
type DockerExecutor interface {
	ExecuteDocker(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ResolverDependencies enumerates collaborators required by Resolver.
type ResolverDependencies struct {
	DockerExecutor DockerExecutor
	Logger         *zap.Logger
}

// Resolver derives registry tags from the CI environment and authenticates with those registries.
// Missing credentials never fail a publish; they only skip the affected registry.
type Resolver struct {
	executor DockerExecutor
	logger   *zap.Logger
}

// NewResolver constructs a Resolver from the provided dependencies.
func NewResolver(dependencies ResolverDependencies) (*Resolver, error) {
	if dependencies.DockerExecutor == nil {
		return nil, ErrDockerExecutorNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{executor: dependencies.DockerExecutor, logger: logger}, nil
}

// ResolveTags returns the extra registry tags for baseTag, logging in to each registry it returns.
func (resolver *Resolver) ResolveTags(executionContext context.Context, baseTag string, environment Environment) []Tag {
	if !environment.HasGitHubContext() {
		resolver.logger.Info(githubContextMissingMessageConstant)
		return nil
	}
	if len(environment.GitHubToken) == 0 {
		resolver.logger.Warn(githubTokenMissingMessageConstant, zap.String(logFieldRepositoryConstant, environment.GitHubRepository))
		return nil
	}

	resolver.login(executionContext, GitHubPackagesHost, environment.GitHubActor, environment.GitHubToken)

	return []Tag{{
		Host:       GitHubPackagesHost,
		Repository: environment.GitHubRepository,
		Tag:        strings.TrimSpace(baseTag),
	}}
}

// LoginDockerHub authenticates with the default registry when Docker Hub credentials are present.
// It reports whether a login succeeded.
func (resolver *Resolver) LoginDockerHub(executionContext context.Context, environment Environment) bool {
	if !environment.HasDockerHubCredentials() {
		resolver.logger.Info(dockerHubCredentialsMissingConstant)
		return false
	}
	return resolver.login(executionContext, "", environment.DockerUsername, environment.DockerPushKey)
}

func (resolver *Resolver) login(executionContext context.Context, registryHost string, username string, secret string) bool {
	registryName := registryHost
	arguments := []string{dockerLoginSubcommandConstant}
	if len(registryHost) > 0 {
		arguments = append(arguments, registryHost)
	} else {
		registryName = dockerHubDisplayNameConstant
	}
	arguments = append(arguments, dockerUsernameFlagConstant, username, dockerPasswordStdinFlagConstant)

	resolver.logger.Info(authenticatingMessageConstant, zap.String(logFieldRegistryConstant, registryName), zap.String(logFieldUsernameConstant, username))
	_, loginError := resolver.executor.ExecuteDocker(executionContext, execshell.CommandDetails{
		Arguments:     arguments,
		StandardInput: []byte(secret + "\n"),
	})
	if loginError != nil {
		resolver.logger.Warn(authenticationFailedMessageConstant, zap.String(logFieldRegistryConstant, registryName), zap.Error(loginError))
		return false
	}
	return true
}
