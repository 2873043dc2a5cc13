package repohost

import (
	"context"
	"errors"

	"github.com/lynxkit/forge/internal/gitrepo"
)

const (
	repositoryExistsMessageConstant = "remote repository already exists"
	hostKindCLIStringConstant       = "cli"
	hostKindAPIStringConstant       = "api"
)

// ErrRepositoryExists indicates the target repository name is already taken.
// The conflict is terminal; provisioning never retries under another name.
var ErrRepositoryExists = errors.New(repositoryExistsMessageConstant)

// HostKind selects a RepoHost implementation.
type HostKind string

// Supported host kinds.
const (
	// HostKindCLI provisions through the locally installed GitHub CLI.
	HostKindCLI HostKind = HostKind(hostKindCLIStringConstant)
	// HostKindAPI provisions through the GitHub REST API with a token.
	HostKindAPI HostKind = HostKind(hostKindAPIStringConstant)
)

// RepositorySpec describes the remote repository to create.
type RepositorySpec struct {
	Owner   string
	Name    string
	Private bool
}

// RepoHost is the capability interface for remote repository management used
// by the provisioner, allowing control flow to be tested against fakes.
type RepoHost interface {
	// CreateRepository creates the remote repository, returning a wrapped
	// ErrRepositoryExists when the name is already taken.
	CreateRepository(executionContext context.Context, specification RepositorySpec) error
	// CloneURL derives the URL used to clone the repository locally.
	CloneURL(specification RepositorySpec) (string, error)
}

func formatCloneURL(protocol gitrepo.RemoteProtocol, specification RepositorySpec) (string, error) {
	return gitrepo.FormatRemoteURL(gitrepo.NewGitHubRemoteURL(protocol, specification.Owner, specification.Name))
}
