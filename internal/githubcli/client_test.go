package githubcli_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lynxkit/forge/internal/execshell"
	"github.com/lynxkit/forge/internal/githubcli"
)

const (
	testOwnerValueConstant          = "lynxkit"
	testRepositoryNameValueConstant = "acme-shopapp"
	testNameTakenStandardErrorValue = "GraphQL: Name already exists on this account (createRepository)"
	testRepoViewResponseConstant    = `{"nameWithOwner":"lynxkit/acme-shopapp","sshUrl":"git@github.com:lynxkit/acme-shopapp.git","defaultBranchRef":{"name":"master"}}`
)

type stubGitHubExecutor struct {
	recordedDetails []execshell.CommandDetails
	executionResult execshell.ExecutionResult
	executionError  error
}

func (executor *stubGitHubExecutor) ExecuteGitHubCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	return executor.executionResult, executor.executionError
}

func TestNewClientRequiresExecutor(testInstance *testing.T) {
	_, creationError := githubcli.NewClient(nil)
	require.ErrorIs(testInstance, creationError, githubcli.ErrExecutorNotConfigured)
}

func TestCreateRepositoryCommandConstruction(testInstance *testing.T) {
	executor := &stubGitHubExecutor{}
	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	specification := githubcli.RepositorySpec{
		Owner:   testOwnerValueConstant,
		Name:    testRepositoryNameValueConstant,
		Private: true,
	}
	require.NoError(testInstance, client.CreateRepository(context.Background(), specification))

	require.Len(testInstance, executor.recordedDetails, 1)
	require.Equal(testInstance,
		[]string{"repo", "create", "lynxkit/acme-shopapp", "--private"},
		executor.recordedDetails[0].Arguments,
	)
}

func TestCreateRepositoryNameConflict(testInstance *testing.T) {
	conflictCommand := execshell.ShellCommand{Name: execshell.CommandGitHub}
	conflictResult := execshell.ExecutionResult{StandardError: testNameTakenStandardErrorValue, ExitCode: 1}
	executor := &stubGitHubExecutor{
		executionResult: conflictResult,
		executionError:  execshell.CommandFailedError{Command: conflictCommand, Result: conflictResult},
	}

	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	createError := client.CreateRepository(context.Background(), githubcli.RepositorySpec{
		Owner: testOwnerValueConstant,
		Name:  testRepositoryNameValueConstant,
	})
	require.ErrorIs(testInstance, createError, githubcli.ErrRepositoryExists)
}

func TestResolveRepoMetadata(testInstance *testing.T) {
	executor := &stubGitHubExecutor{
		executionResult: execshell.ExecutionResult{StandardOutput: testRepoViewResponseConstant},
	}

	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	metadata, resolveError := client.ResolveRepoMetadata(context.Background(), "lynxkit/acme-shopapp")
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, "lynxkit/acme-shopapp", metadata.NameWithOwner)
	require.Equal(testInstance, "master", metadata.DefaultBranch)
	require.Equal(testInstance, "git@github.com:lynxkit/acme-shopapp.git", metadata.SSHURL)
}

func TestResolveRepoMetadataRequiresRepository(testInstance *testing.T) {
	client, creationError := githubcli.NewClient(&stubGitHubExecutor{})
	require.NoError(testInstance, creationError)

	_, resolveError := client.ResolveRepoMetadata(context.Background(), "  ")
	invalidInput := githubcli.InvalidInputError{}
	require.ErrorAs(testInstance, resolveError, &invalidInput)
}
