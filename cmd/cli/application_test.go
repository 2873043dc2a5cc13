package cli_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lynxkit/forge/cmd/cli"
)

const (
	testProvisionCommandNameConstant = "provision"
	testSetupCommandNameConstant     = "setup"
	testBuildCommandNameConstant     = "build"
	testCICommandNameConstant        = "ci"
	testHelpFlagConstant             = "--help"
	testInvalidLogLevelConstant      = "shout"
)

var expectedSubcommandNames = []string{
	testProvisionCommandNameConstant,
	testSetupCommandNameConstant,
	testBuildCommandNameConstant,
	testCICommandNameConstant,
}

func TestApplicationRegistersSubcommands(testInstance *testing.T) {
	application := cli.NewApplication()

	outputBuffer := &bytes.Buffer{}
	rootCommand := application.RootCommand()
	rootCommand.SetOut(outputBuffer)
	rootCommand.SetErr(outputBuffer)
	rootCommand.SetArgs([]string{testHelpFlagConstant})

	require.NoError(testInstance, application.Execute())
	for _, subcommandName := range expectedSubcommandNames {
		require.Contains(testInstance, outputBuffer.String(), subcommandName)
	}
}

func TestApplicationRejectsUnknownLogLevel(testInstance *testing.T) {
	application := cli.NewApplication()

	outputBuffer := &bytes.Buffer{}
	rootCommand := application.RootCommand()
	rootCommand.SetOut(outputBuffer)
	rootCommand.SetErr(outputBuffer)
	rootCommand.SetArgs([]string{"--log-level", testInvalidLogLevelConstant, testCICommandNameConstant})

	require.Error(testInstance, application.Execute())
}

func TestApplicationRunsRootHelpWithoutArguments(testInstance *testing.T) {
	application := cli.NewApplication()

	outputBuffer := &bytes.Buffer{}
	rootCommand := application.RootCommand()
	rootCommand.SetOut(outputBuffer)
	rootCommand.SetErr(outputBuffer)
	rootCommand.SetArgs([]string{})

	require.NoError(testInstance, application.Execute())
	require.Contains(testInstance, outputBuffer.String(), "forge")
}
