package gitrepo

import (
	"context"
	"errors"
	"strings"

	"github.com/lynxkit/forge/internal/execshell"
)

const (
	cloneSubcommandConstant           = "clone"
	addSubcommandConstant             = "add"
	commitSubcommandConstant          = "commit"
	pushSubcommandConstant            = "push"
	statusSubcommandConstant          = "status"
	revParseSubcommandConstant        = "rev-parse"
	abbrevRefFlagConstant             = "--abbrev-ref"
	headReferenceConstant             = "HEAD"
	porcelainFlagConstant             = "--porcelain"
	allPathsFlagConstant              = "-A"
	messageFlagConstant               = "-m"
	setUpstreamFlagConstant           = "--set-upstream"
	executorMissingMessageConstant    = "git executor not configured"
	insideWorkTreeFlagConstant        = "--is-inside-work-tree"
	insideWorkTreeAffirmativeConstant = "true"
)

// GitExecutor exposes the subset of shell execution used by the repository manager.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ErrExecutorNotConfigured indicates the manager was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// RepositoryManager performs repository-level git operations through execshell.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// CloneRepository clones the remote into the supplied target path.
func (manager *RepositoryManager) CloneRepository(executionContext context.Context, remoteURL string, targetPath string) error {
	commandDetails := execshell.CommandDetails{
		Arguments: []string{cloneSubcommandConstant, remoteURL, targetPath},
	}
	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	return executionError
}

// StageAll stages every change beneath the repository path.
func (manager *RepositoryManager) StageAll(executionContext context.Context, repositoryPath string) error {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{addSubcommandConstant, allPathsFlagConstant},
		WorkingDirectory: repositoryPath,
	}
	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	return executionError
}

// Commit records staged changes with the supplied message.
func (manager *RepositoryManager) Commit(executionContext context.Context, repositoryPath string, commitMessage string) error {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{commitSubcommandConstant, messageFlagConstant, commitMessage},
		WorkingDirectory: repositoryPath,
	}
	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	return executionError
}

// Push publishes the current branch to the named remote, establishing upstream tracking.
func (manager *RepositoryManager) Push(executionContext context.Context, repositoryPath string, remoteName string) error {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{pushSubcommandConstant, setUpstreamFlagConstant, remoteName, headReferenceConstant},
		WorkingDirectory: repositoryPath,
	}
	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	return executionError
}

// CheckCleanWorktree reports whether the repository has no pending changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{statusSubcommandConstant, porcelainFlagConstant},
		WorkingDirectory: repositoryPath,
	}
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return false, executionError
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) == 0, nil
}

// GetCurrentBranch resolves the branch currently checked out at the repository path.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{revParseSubcommandConstant, abbrevRefFlagConstant, headReferenceConstant},
		WorkingDirectory: repositoryPath,
	}
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// IsInsideWorkTree reports whether the supplied path resides inside a git repository.
func (manager *RepositoryManager) IsInsideWorkTree(executionContext context.Context, repositoryPath string) (bool, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{revParseSubcommandConstant, insideWorkTreeFlagConstant},
		WorkingDirectory: repositoryPath,
	}
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		failedCommand := execshell.CommandFailedError{}
		if errors.As(executionError, &failedCommand) {
			return false, nil
		}
		return false, executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput) == insideWorkTreeAffirmativeConstant, nil
}
