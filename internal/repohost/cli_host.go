package repohost

import (
	"context"
	"errors"
	"fmt"

	"github.com/lynxkit/forge/internal/githubcli"
	"github.com/lynxkit/forge/internal/gitrepo"
)

const (
	githubClientMissingMessageConstant = "github cli client not configured"
	cliCreateErrorTemplateConstant     = "unable to create repository through gh: %w"
	repositoryConflictTemplateConstant = "%w: %s/%s"
	ownerRepositoryTemplateConstant    = "%s/%s"
)

// ErrGitHubClientNotConfigured indicates the CLI host was constructed without a client.
var ErrGitHubClientNotConfigured = errors.New(githubClientMissingMessageConstant)

// CLIHost provisions repositories through the locally installed GitHub CLI.
type CLIHost struct {
	client        *githubcli.Client
	cloneProtocol gitrepo.RemoteProtocol
}

// NewCLIHost constructs a CLIHost around a GitHub CLI client.
func NewCLIHost(client *githubcli.Client, cloneProtocol gitrepo.RemoteProtocol) (*CLIHost, error) {
	if client == nil {
		return nil, ErrGitHubClientNotConfigured
	}
	return &CLIHost{client: client, cloneProtocol: cloneProtocol}, nil
}

// CreateRepository creates the remote repository through gh repo create. The
// name is checked for availability first: a successful gh repo view means the
// repository already exists. gh repo view exits non-zero for an absent
// repository, so any resolution failure falls through to create, where real
// errors (and the name-conflict stderr marker) still surface.
func (host *CLIHost) CreateRepository(executionContext context.Context, specification RepositorySpec) error {
	repositoryIdentifier := fmt.Sprintf(ownerRepositoryTemplateConstant, specification.Owner, specification.Name)
	if _, metadataError := host.client.ResolveRepoMetadata(executionContext, repositoryIdentifier); metadataError == nil {
		return fmt.Errorf(repositoryConflictTemplateConstant, ErrRepositoryExists, specification.Owner, specification.Name)
	}

	createError := host.client.CreateRepository(executionContext, githubcli.RepositorySpec{
		Owner:   specification.Owner,
		Name:    specification.Name,
		Private: specification.Private,
	})
	if createError != nil {
		if errors.Is(createError, githubcli.ErrRepositoryExists) {
			return fmt.Errorf(repositoryConflictTemplateConstant, ErrRepositoryExists, specification.Owner, specification.Name)
		}
		return fmt.Errorf(cliCreateErrorTemplateConstant, createError)
	}
	return nil
}

// CloneURL derives the clone URL for the provisioned repository.
func (host *CLIHost) CloneURL(specification RepositorySpec) (string, error) {
	return formatCloneURL(host.cloneProtocol, specification)
}
