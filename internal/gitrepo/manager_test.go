package gitrepo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lynxkit/forge/internal/execshell"
	"github.com/lynxkit/forge/internal/gitrepo"
)

const (
	testRemoteURLValueConstant      = "git@github.com:lynxkit/acme-shopapp.git"
	testClonePathValueConstant      = "/tmp/workspace/acme-shopapp"
	testRepositoryPathValueConstant = "/tmp/workspace/acme-shopapp"
	testCommitMessageValueConstant  = "Initialize ShopApp from template master"
	testOriginRemoteNameConstant    = "origin"
)

type stubGitExecutor struct {
	recordedDetails []execshell.CommandDetails
	executionResult execshell.ExecutionResult
	executionError  error
}

func (executor *stubGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	return executor.executionResult, executor.executionError
}

func TestRepositoryManagerRequiresExecutor(testInstance *testing.T) {
	_, creationError := gitrepo.NewRepositoryManager(nil)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrExecutorNotConfigured)
}

func TestRepositoryManagerCommandConstruction(testInstance *testing.T) {
	testCases := []struct {
		name              string
		invoke            func(*gitrepo.RepositoryManager, *stubGitExecutor) error
		expectedArguments []string
		expectedDirectory string
	}{
		{
			name: "clone",
			invoke: func(manager *gitrepo.RepositoryManager, _ *stubGitExecutor) error {
				return manager.CloneRepository(context.Background(), testRemoteURLValueConstant, testClonePathValueConstant)
			},
			expectedArguments: []string{"clone", testRemoteURLValueConstant, testClonePathValueConstant},
		},
		{
			name: "stage_all",
			invoke: func(manager *gitrepo.RepositoryManager, _ *stubGitExecutor) error {
				return manager.StageAll(context.Background(), testRepositoryPathValueConstant)
			},
			expectedArguments: []string{"add", "-A"},
			expectedDirectory: testRepositoryPathValueConstant,
		},
		{
			name: "commit",
			invoke: func(manager *gitrepo.RepositoryManager, _ *stubGitExecutor) error {
				return manager.Commit(context.Background(), testRepositoryPathValueConstant, testCommitMessageValueConstant)
			},
			expectedArguments: []string{"commit", "-m", testCommitMessageValueConstant},
			expectedDirectory: testRepositoryPathValueConstant,
		},
		{
			name: "push",
			invoke: func(manager *gitrepo.RepositoryManager, _ *stubGitExecutor) error {
				return manager.Push(context.Background(), testRepositoryPathValueConstant, testOriginRemoteNameConstant)
			},
			expectedArguments: []string{"push", "--set-upstream", testOriginRemoteNameConstant, "HEAD"},
			expectedDirectory: testRepositoryPathValueConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			require.NoError(testInstance, testCase.invoke(manager, executor))
			require.Len(testInstance, executor.recordedDetails, 1)
			require.Equal(testInstance, testCase.expectedArguments, executor.recordedDetails[0].Arguments)
			require.Equal(testInstance, testCase.expectedDirectory, executor.recordedDetails[0].WorkingDirectory)
		})
	}
}

func TestCheckCleanWorktree(testInstance *testing.T) {
	testCases := []struct {
		name           string
		statusOutput   string
		expectedResult bool
	}{
		{name: "clean", statusOutput: "\n", expectedResult: true},
		{name: "dirty", statusOutput: " M app/build.gradle\n", expectedResult: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{executionResult: execshell.ExecutionResult{StandardOutput: testCase.statusOutput}}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			cleanWorktree, checkError := manager.CheckCleanWorktree(context.Background(), testRepositoryPathValueConstant)
			require.NoError(testInstance, checkError)
			require.Equal(testInstance, testCase.expectedResult, cleanWorktree)
		})
	}
}
