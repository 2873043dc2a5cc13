package ci_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lynxkit/forge/internal/appconfig"
	"github.com/lynxkit/forge/internal/ci"
)

func executePlanCommand(testInstance *testing.T, arguments []string) (ci.JobPlan, error) {
	testInstance.Helper()

	builder := &ci.CommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs(append([]string{"plan"}, arguments...))

	executionError := command.Execute()
	if executionError != nil {
		return ci.JobPlan{}, executionError
	}

	jobPlan := ci.JobPlan{}
	require.NoError(testInstance, yaml.Unmarshal(outputBuffer.Bytes(), &jobPlan))
	return jobPlan, nil
}

func TestPlanCommandResolvesIdentityFromArtifact(testInstance *testing.T) {
	projectRoot := testInstance.TempDir()
	require.NoError(testInstance, appconfig.Write(projectRoot, appconfig.Artifact{
		AppName:          testAppNameConstant,
		BundleIdentifier: testBundleIdentifierConstant,
	}))

	jobPlan, executionError := executePlanCommand(testInstance, []string{
		"--project", projectRoot,
		"--bundle-url", testBundleURLConstant,
	})
	require.NoError(testInstance, executionError)
	require.Len(testInstance, jobPlan.Jobs, 2)
	require.Len(testInstance, jobPlan.RunnableJobs(), 2)
}

func TestPlanCommandSkipsAndroidWhenToggledOff(testInstance *testing.T) {
	projectRoot := testInstance.TempDir()
	require.NoError(testInstance, appconfig.Write(projectRoot, appconfig.Artifact{
		AppName:          testAppNameConstant,
		BundleIdentifier: testBundleIdentifierConstant,
	}))

	jobPlan, executionError := executePlanCommand(testInstance, []string{
		"--project", projectRoot,
		"--bundle-url", testBundleURLConstant,
		"--build-android=no",
	})
	require.NoError(testInstance, executionError)

	runnableJobs := jobPlan.RunnableJobs()
	require.Len(testInstance, runnableJobs, 1)
	require.Equal(testInstance, ci.PlatformIOS, runnableJobs[0].Platform)
}

func TestPlanCommandReadsPayloadFile(testInstance *testing.T) {
	payloadPath := filepath.Join(testInstance.TempDir(), "trigger.yaml")
	require.NoError(testInstance, os.WriteFile(payloadPath, []byte(testAndroidOffPayloadConstant), 0o644))

	jobPlan, executionError := executePlanCommand(testInstance, []string{
		"--payload", payloadPath,
	})
	require.NoError(testInstance, executionError)

	runnableJobs := jobPlan.RunnableJobs()
	require.Len(testInstance, runnableJobs, 1)
	require.Equal(testInstance, ci.PlatformIOS, runnableJobs[0].Platform)
}

func TestPlanCommandExplainsMissingArtifact(testInstance *testing.T) {
	projectRoot := testInstance.TempDir()

	_, executionError := executePlanCommand(testInstance, []string{
		"--project", projectRoot,
		"--bundle-url", testBundleURLConstant,
	})
	require.Error(testInstance, executionError)
	require.ErrorIs(testInstance, executionError, appconfig.ErrArtifactMissing)
	require.Contains(testInstance, executionError.Error(), "--app-name")
}

func TestPlanCommandRejectsInvalidBundleURL(testInstance *testing.T) {
	_, executionError := executePlanCommand(testInstance, []string{
		"--app-name", testAppNameConstant,
		"--bundle-id", testBundleIdentifierConstant,
		"--bundle-url", testFTPBundleURLConstant,
	})
	require.Error(testInstance, executionError)
}

func executeFetchCommand(testInstance *testing.T, executor ci.CurlExecutor, arguments []string) (string, error) {
	testInstance.Helper()

	builder := &ci.CommandBuilder{Executor: executor}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs(append([]string{"fetch"}, arguments...))

	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func TestFetchCommandDownloadsEveryRunnableBundle(testInstance *testing.T) {
	projectRoot := testInstance.TempDir()
	require.NoError(testInstance, appconfig.Write(projectRoot, appconfig.Artifact{
		AppName:          testAppNameConstant,
		BundleIdentifier: testBundleIdentifierConstant,
	}))

	executor := &recordingCurlExecutor{}
	commandOutput, executionError := executeFetchCommand(testInstance, executor, []string{
		"--project", projectRoot,
		"--bundle-url", testBundleURLConstant,
	})
	require.NoError(testInstance, executionError)
	require.Len(testInstance, executor.invocations, 2)

	androidDestination := filepath.Join(projectRoot, filepath.FromSlash(testAndroidBundlePathConstant))
	iosDestination := filepath.Join(projectRoot, filepath.FromSlash(testIOSBundlePathConstant))
	require.Equal(testInstance, []string{"-f", "-L", "-o", androidDestination, testBundleURLConstant}, executor.invocations[0].Arguments)
	require.Equal(testInstance, []string{"-f", "-L", "-o", iosDestination, testBundleURLConstant}, executor.invocations[1].Arguments)
	require.Contains(testInstance, commandOutput, androidDestination)
	require.Contains(testInstance, commandOutput, iosDestination)
}

func TestFetchCommandSkipsDisabledPlatform(testInstance *testing.T) {
	projectRoot := testInstance.TempDir()
	require.NoError(testInstance, appconfig.Write(projectRoot, appconfig.Artifact{
		AppName:          testAppNameConstant,
		BundleIdentifier: testBundleIdentifierConstant,
	}))

	executor := &recordingCurlExecutor{}
	_, executionError := executeFetchCommand(testInstance, executor, []string{
		"--project", projectRoot,
		"--bundle-url", testBundleURLConstant,
		"--build-ios=no",
	})
	require.NoError(testInstance, executionError)
	require.Len(testInstance, executor.invocations, 1)

	androidDestination := filepath.Join(projectRoot, filepath.FromSlash(testAndroidBundlePathConstant))
	require.Equal(testInstance, androidDestination, executor.invocations[0].Arguments[3])
}

func TestFetchCommandRejectsMissingBundleURL(testInstance *testing.T) {
	projectRoot := testInstance.TempDir()
	require.NoError(testInstance, appconfig.Write(projectRoot, appconfig.Artifact{
		AppName:          testAppNameConstant,
		BundleIdentifier: testBundleIdentifierConstant,
	}))

	executor := &recordingCurlExecutor{}
	_, executionError := executeFetchCommand(testInstance, executor, []string{
		"--project", projectRoot,
	})
	require.Error(testInstance, executionError)
	require.Empty(testInstance, executor.invocations)
}
