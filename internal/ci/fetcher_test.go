package ci_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lynxkit/forge/internal/ci"
	"github.com/lynxkit/forge/internal/execshell"
)

type recordingCurlExecutor struct {
	invocations    []execshell.CommandDetails
	executionError error
}

func (executor *recordingCurlExecutor) ExecuteCurl(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.invocations = append(executor.invocations, details)
	if executor.executionError != nil {
		return execshell.ExecutionResult{}, executor.executionError
	}
	return execshell.ExecutionResult{}, nil
}

func TestBundleFetcherDownloadsToFixedPlatformPath(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	executor := &recordingCurlExecutor{}
	fetcher, creationError := ci.NewBundleFetcher(zaptest.NewLogger(testInstance), executor)
	require.NoError(testInstance, creationError)

	destinationPath, fetchError := fetcher.Fetch(context.Background(), repositoryRoot, ci.PlatformAndroid, testBundleURLConstant)
	require.NoError(testInstance, fetchError)
	require.Equal(testInstance, filepath.Join(repositoryRoot, filepath.FromSlash(testAndroidBundlePathConstant)), destinationPath)

	require.Len(testInstance, executor.invocations, 1)
	curlArguments := executor.invocations[0].Arguments
	require.Equal(testInstance, "-f", curlArguments[0])
	require.Equal(testInstance, "-L", curlArguments[1])
	require.Equal(testInstance, "-o", curlArguments[2])
	require.Equal(testInstance, destinationPath, curlArguments[3])
	require.Equal(testInstance, testBundleURLConstant, curlArguments[4])
}

func TestBundleFetcherPropagatesDownloadFailure(testInstance *testing.T) {
	executor := &recordingCurlExecutor{executionError: context.DeadlineExceeded}
	fetcher, creationError := ci.NewBundleFetcher(zaptest.NewLogger(testInstance), executor)
	require.NoError(testInstance, creationError)

	_, fetchError := fetcher.Fetch(context.Background(), testInstance.TempDir(), ci.PlatformIOS, testBundleURLConstant)
	require.Error(testInstance, fetchError)
	require.Contains(testInstance, fetchError.Error(), testBundleURLConstant)
}

func TestNewBundleFetcherRequiresExecutor(testInstance *testing.T) {
	_, creationError := ci.NewBundleFetcher(zaptest.NewLogger(testInstance), nil)
	require.ErrorIs(testInstance, creationError, ci.ErrCurlExecutorNotConfigured)
}
