package tests

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lynxkit/forge/internal/appconfig"
	"github.com/lynxkit/forge/internal/descriptor"
	"github.com/lynxkit/forge/internal/execshell"
	"github.com/lynxkit/forge/internal/githubcli"
	"github.com/lynxkit/forge/internal/gitrepo"
	"github.com/lynxkit/forge/internal/provision"
	"github.com/lynxkit/forge/internal/repohost"
	"github.com/lynxkit/forge/internal/substitution"
	"github.com/lynxkit/forge/internal/templates"
)

const (
	integrationOrganizationConstant    = "lynxkit"
	integrationCustomerSlugConstant    = "acme"
	integrationAppNameConstant         = "ShopApp"
	integrationBundleIdentifierValue   = "com.acme.shop"
	integrationTemplateRefConstant     = "v3.0.0"
	integrationRepositoryNameConstant  = "acme-shopapp"
	integrationScaffoldFileConstant    = "android/src/com.lynxtemplate/Main.kt"
	integrationScaffoldContentConstant = "package com.lynxtemplate\n\nclass LynxTemplateMain"
	integrationTemplateFileConstant    = "fastlane/Appfile.tmpl"
	integrationTemplateContentConstant = "app_identifier(\"__BUNDLE_ID__\")\norg(\"__ORG__\")\n"
	integrationCommitMessageConstant   = "Initialize ShopApp from template v3.0.0"
	integrationBranchNameConstant      = "main"
)

// scriptedCommandRunner emulates the external git and gh tools: the
// availability pre-check reports an absent repository, creation succeeds,
// clone materializes the target directory, the branch probe answers main, and
// every other invocation is recorded as a success.
type scriptedCommandRunner struct {
	executedCommands []execshell.ShellCommand
}

func (runner *scriptedCommandRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.executedCommands = append(runner.executedCommands, command)

	if command.Name == execshell.CommandGitHub && len(command.Details.Arguments) > 1 && command.Details.Arguments[1] == "view" {
		return execshell.ExecutionResult{StandardError: "GraphQL: Could not resolve to a Repository", ExitCode: 1}, nil
	}

	if command.Name == execshell.CommandGit && len(command.Details.Arguments) > 0 {
		switch command.Details.Arguments[0] {
		case "clone":
			clonePath := command.Details.Arguments[2]
			if mkdirError := os.MkdirAll(clonePath, 0o755); mkdirError != nil {
				return execshell.ExecutionResult{}, mkdirError
			}
		case "rev-parse":
			return execshell.ExecutionResult{StandardOutput: integrationBranchNameConstant + "\n"}, nil
		}
	}

	return execshell.ExecutionResult{}, nil
}

func (runner *scriptedCommandRunner) commandLines() []string {
	lines := make([]string, 0, len(runner.executedCommands))
	for _, executedCommand := range runner.executedCommands {
		lines = append(lines, string(executedCommand.Name)+" "+strings.Join(executedCommand.Details.Arguments, " "))
	}
	return lines
}

func TestProvisioningFlowAgainstScriptedTools(testInstance *testing.T) {
	scaffoldRoot := testInstance.TempDir()
	scaffoldFilePath := filepath.Join(scaffoldRoot, filepath.FromSlash(integrationScaffoldFileConstant))
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(scaffoldFilePath), 0o755))
	require.NoError(testInstance, os.WriteFile(scaffoldFilePath, []byte(integrationScaffoldContentConstant), 0o644))

	templateStoreRoot := testInstance.TempDir()
	templateFilePath := filepath.Join(templateStoreRoot, filepath.FromSlash(integrationTemplateFileConstant))
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(templateFilePath), 0o755))
	require.NoError(testInstance, os.WriteFile(templateFilePath, []byte(integrationTemplateContentConstant), 0o644))

	workspaceParent := testInstance.TempDir()
	workspacePath := filepath.Join(workspaceParent, "workspace")
	require.NoError(testInstance, os.MkdirAll(workspacePath, 0o755))

	logger := zaptest.NewLogger(testInstance)
	runner := &scriptedCommandRunner{}
	executor, executorError := execshell.NewShellExecutor(logger, runner)
	require.NoError(testInstance, executorError)

	cliClient, clientError := githubcli.NewClient(executor)
	require.NoError(testInstance, clientError)
	repositoryHost, hostError := repohost.NewCLIHost(cliClient, gitrepo.RemoteProtocolHTTPS)
	require.NoError(testInstance, hostError)

	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, managerError)

	repositoryPath := filepath.Join(workspacePath, integrationRepositoryNameConstant)
	var renderedScaffold string
	var renderedTemplate string
	var persistedArtifact appconfig.Artifact

	service, serviceError := provision.NewService(provision.ServiceDependencies{
		Logger:   logger,
		RepoHost: repositoryHost,
		RepositoryManager: &workspaceInspectingGitOperations{
			RepositoryManager: repositoryManager,
			beforePush: func() {
				scaffoldBytes, readError := os.ReadFile(filepath.Join(repositoryPath, "android", "src", integrationBundleIdentifierValue, "Main.kt"))
				require.NoError(testInstance, readError)
				renderedScaffold = string(scaffoldBytes)

				templateBytes, readError := os.ReadFile(filepath.Join(repositoryPath, "fastlane", "Appfile"))
				require.NoError(testInstance, readError)
				renderedTemplate = string(templateBytes)

				artifact, artifactError := appconfig.Read(repositoryPath)
				require.NoError(testInstance, artifactError)
				persistedArtifact = artifact
			},
		},
		Engine:            substitution.NewEngine(logger),
		Renderer:          templates.NewRenderer(logger),
		WorkspaceProvider: func() (string, error) { return workspacePath, nil },
	})
	require.NoError(testInstance, serviceError)

	result, executionError := service.Execute(context.Background(), provision.ProvisionOptions{
		Descriptor: descriptor.CustomerDescriptor{
			Organization:     integrationOrganizationConstant,
			CustomerSlug:     integrationCustomerSlugConstant,
			AppName:          integrationAppNameConstant,
			BundleIdentifier: integrationBundleIdentifierValue,
			TemplateRef:      integrationTemplateRefConstant,
		},
		ScaffoldRoot:      scaffoldRoot,
		TemplateStoreRoot: templateStoreRoot,
		PrivateRepository: true,
	})
	require.NoError(testInstance, executionError)

	require.Equal(testInstance, integrationRepositoryNameConstant, result.RepositoryName)
	require.Equal(testInstance, integrationBranchNameConstant, result.Branch)
	require.Equal(testInstance, integrationCommitMessageConstant, result.CommitMessage)

	require.Equal(testInstance, "package com.acme.shop\n\nclass ShopAppMain", renderedScaffold)
	require.Equal(testInstance, "app_identifier(\"com.acme.shop\")\norg(\"lynxkit\")\n", renderedTemplate)
	require.Equal(testInstance, integrationAppNameConstant, persistedArtifact.AppName)
	require.Equal(testInstance, integrationBundleIdentifierValue, persistedArtifact.BundleIdentifier)

	commandLines := runner.commandLines()
	require.Contains(testInstance, commandLines[0], "gh repo view lynxkit/acme-shopapp")
	require.Contains(testInstance, commandLines[1], "gh repo create lynxkit/acme-shopapp")
	require.Contains(testInstance, commandLines, "git clone https://github.com/lynxkit/acme-shopapp.git "+repositoryPath)
	require.Contains(testInstance, commandLines, "git add -A")
	require.Contains(testInstance, commandLines, "git commit -m "+integrationCommitMessageConstant)
	require.Contains(testInstance, commandLines, "git rev-parse --abbrev-ref HEAD")
	require.Contains(testInstance, commandLines, "git push --set-upstream origin HEAD")

	_, workspaceStatError := os.Stat(workspacePath)
	require.True(testInstance, os.IsNotExist(workspaceStatError))
}

// workspaceInspectingGitOperations lets the test observe the rendered tree
// before the workspace is cleaned up.
type workspaceInspectingGitOperations struct {
	*gitrepo.RepositoryManager
	beforePush func()
}

func (operations *workspaceInspectingGitOperations) Push(executionContext context.Context, repositoryPath string, remoteName string) error {
	if operations.beforePush != nil {
		operations.beforePush()
	}
	return operations.RepositoryManager.Push(executionContext, repositoryPath, remoteName)
}
