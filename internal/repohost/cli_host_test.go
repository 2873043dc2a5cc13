package repohost_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lynxkit/forge/internal/execshell"
	"github.com/lynxkit/forge/internal/githubcli"
	"github.com/lynxkit/forge/internal/gitrepo"
	"github.com/lynxkit/forge/internal/repohost"
)

const (
	testViewSubcommandConstant      = "view"
	testCreateSubcommandConstant    = "create"
	testExistingMetadataJSONValue   = `{"nameWithOwner":"lynxkit/acme-shopapp","sshUrl":"git@github.com:lynxkit/acme-shopapp.git","defaultBranchRef":{"name":"main"}}`
	testAbsentRepositoryStderrValue = "GraphQL: Could not resolve to a Repository"
)

// scriptedGitHubExecutor answers gh repo view from a canned script and records
// every invocation.
type scriptedGitHubExecutor struct {
	repositoryExists bool
	recordedDetails  []execshell.CommandDetails
}

func (executor *scriptedGitHubExecutor) ExecuteGitHubCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)

	if len(details.Arguments) > 1 && details.Arguments[1] == testViewSubcommandConstant {
		if executor.repositoryExists {
			return execshell.ExecutionResult{StandardOutput: testExistingMetadataJSONValue}, nil
		}
		result := execshell.ExecutionResult{StandardError: testAbsentRepositoryStderrValue, ExitCode: 1}
		return result, execshell.CommandFailedError{Result: result}
	}
	return execshell.ExecutionResult{}, nil
}

func newTestCLIHost(testInstance *testing.T, executor *scriptedGitHubExecutor) *repohost.CLIHost {
	testInstance.Helper()

	cliClient, clientError := githubcli.NewClient(executor)
	require.NoError(testInstance, clientError)
	cliHost, hostError := repohost.NewCLIHost(cliClient, gitrepo.RemoteProtocolHTTPS)
	require.NoError(testInstance, hostError)
	return cliHost
}

func TestCLIHostCreateRepositoryChecksAvailabilityFirst(testInstance *testing.T) {
	executor := &scriptedGitHubExecutor{}
	cliHost := newTestCLIHost(testInstance, executor)

	require.NoError(testInstance, cliHost.CreateRepository(context.Background(), testRepositorySpec()))

	require.Len(testInstance, executor.recordedDetails, 2)
	require.Equal(testInstance, testViewSubcommandConstant, executor.recordedDetails[0].Arguments[1])
	require.Equal(testInstance, testCreateSubcommandConstant, executor.recordedDetails[1].Arguments[1])
}

func TestCLIHostCreateRepositoryStopsWhenNameTaken(testInstance *testing.T) {
	executor := &scriptedGitHubExecutor{repositoryExists: true}
	cliHost := newTestCLIHost(testInstance, executor)

	createError := cliHost.CreateRepository(context.Background(), testRepositorySpec())
	require.ErrorIs(testInstance, createError, repohost.ErrRepositoryExists)
	require.Contains(testInstance, createError.Error(), testRepositoryNameValueConstant)

	require.Len(testInstance, executor.recordedDetails, 1)
	require.Equal(testInstance, testViewSubcommandConstant, executor.recordedDetails[0].Arguments[1])
}

func TestCLIHostCloneURL(testInstance *testing.T) {
	cliHost := newTestCLIHost(testInstance, &scriptedGitHubExecutor{})

	cloneURL, cloneURLError := cliHost.CloneURL(testRepositorySpec())
	require.NoError(testInstance, cloneURLError)
	require.Equal(testInstance, "https://github.com/lynxkit/acme-shopapp.git", cloneURL)
}
