package provision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lynxkit/forge/internal/descriptor"
	"github.com/lynxkit/forge/internal/execshell"
	"github.com/lynxkit/forge/internal/githubcli"
	"github.com/lynxkit/forge/internal/gitrepo"
	"github.com/lynxkit/forge/internal/repohost"
	"github.com/lynxkit/forge/internal/substitution"
	"github.com/lynxkit/forge/internal/templates"
)

const (
	commandUseConstant                    = "provision"
	commandShortDescriptionConstant       = "Create and initialize a customer repository from the app template"
	commandLongDescriptionConstant        = "provision creates a private repository for a customer, renders the app template into it, and pushes the initial commit."
	commandExecutionErrorTemplateConstant = "provisioning failed: %w"
	unexpectedArgumentsMessageConstant    = "provision does not accept positional arguments"
	flagOrganizationNameConstant          = "org"
	flagOrganizationDescriptionConstant   = "GitHub organization that owns the new repository"
	flagCustomerNameConstant              = "customer"
	flagCustomerDescriptionConstant       = "Customer slug used in the repository name"
	flagAppNameConstant                   = "app-name"
	flagAppNameDescriptionConstant        = "Application name substituted into the template"
	flagBundleIdentifierNameConstant      = "bundle-id"
	flagBundleIdentifierDescConstant      = "Reverse-domain bundle identifier"
	flagTemplateRefNameConstant           = "template-ref"
	flagTemplateRefDescriptionConstant    = "Template revision recorded in the initial commit"
	flagHostNameConstant                  = "host"
	flagHostDescriptionConstant           = "Repository host backend (cli or api)"
	flagScaffoldNameConstant              = "scaffold"
	flagScaffoldDescriptionConstant       = "Path to the template scaffold tree"
	flagTemplatesNameConstant             = "templates"
	flagTemplatesDescriptionConstant      = "Path to the template store"
	flagPublicNameConstant                = "public"
	flagPublicDescriptionConstant         = "Create the repository as public instead of private"
	flagRemoteNameConstant                = "remote"
	flagRemoteDescriptionConstant         = "Git remote receiving the initial push"
	unknownHostKindTemplateConstant       = "unknown repository host backend %q: expected cli or api"
	missingTokenMessageConstant           = "api host requires a token in " + tokenEnvironmentVariableConstant
	tokenEnvironmentVariableConstant      = "FORGE_GITHUB_TOKEN"
	defaultScaffoldRootConstant           = "template"
	defaultTemplateStoreRootConstant      = "templates"
)

var (
	errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)
	errMissingAPIToken     = errors.New(missingTokenMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandExecutor executes git and GitHub CLI commands.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CommandBuilder assembles the Cobra command for repository provisioning.
type CommandBuilder struct {
	LoggerProvider LoggerProvider
	Executor       CommandExecutor
	RepoHost       repohost.RepoHost
}

// Build constructs the provision command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagOrganizationNameConstant, "", flagOrganizationDescriptionConstant)
	command.Flags().String(flagCustomerNameConstant, "", flagCustomerDescriptionConstant)
	command.Flags().String(flagAppNameConstant, "", flagAppNameDescriptionConstant)
	command.Flags().String(flagBundleIdentifierNameConstant, "", flagBundleIdentifierDescConstant)
	command.Flags().String(flagTemplateRefNameConstant, descriptor.DefaultTemplateRef(), flagTemplateRefDescriptionConstant)
	command.Flags().String(flagHostNameConstant, string(repohost.HostKindCLI), flagHostDescriptionConstant)
	command.Flags().String(flagScaffoldNameConstant, defaultScaffoldRootConstant, flagScaffoldDescriptionConstant)
	command.Flags().String(flagTemplatesNameConstant, defaultTemplateStoreRootConstant, flagTemplatesDescriptionConstant)
	command.Flags().Bool(flagPublicNameConstant, false, flagPublicDescriptionConstant)
	command.Flags().String(flagRemoteNameConstant, defaultRemoteNameConstant, flagRemoteDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	hostKindValue, _ := command.Flags().GetString(flagHostNameConstant)
	repositoryHost, hostError := builder.resolveRepoHost(command.Context(), executor, hostKindValue)
	if hostError != nil {
		return hostError
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	if managerError != nil {
		return managerError
	}

	service, serviceError := NewService(ServiceDependencies{
		Logger:            logger,
		RepoHost:          repositoryHost,
		RepositoryManager: repositoryManager,
		Engine:            substitution.NewEngine(logger),
		Renderer:          templates.NewRenderer(logger),
	})
	if serviceError != nil {
		return serviceError
	}

	_, executionError := service.Execute(command.Context(), options)
	if executionError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, executionError)
	}

	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (ProvisionOptions, error) {
	organizationValue, _ := command.Flags().GetString(flagOrganizationNameConstant)
	customerValue, _ := command.Flags().GetString(flagCustomerNameConstant)
	appNameValue, _ := command.Flags().GetString(flagAppNameConstant)
	bundleIdentifierValue, _ := command.Flags().GetString(flagBundleIdentifierNameConstant)
	templateRefValue, _ := command.Flags().GetString(flagTemplateRefNameConstant)
	scaffoldValue, _ := command.Flags().GetString(flagScaffoldNameConstant)
	templatesValue, _ := command.Flags().GetString(flagTemplatesNameConstant)
	publicValue, _ := command.Flags().GetBool(flagPublicNameConstant)
	remoteValue, _ := command.Flags().GetString(flagRemoteNameConstant)

	provisionOptions := ProvisionOptions{
		Descriptor: descriptor.CustomerDescriptor{
			Organization:     organizationValue,
			CustomerSlug:     customerValue,
			AppName:          appNameValue,
			BundleIdentifier: bundleIdentifierValue,
			TemplateRef:      templateRefValue,
		},
		ScaffoldRoot:      scaffoldValue,
		TemplateStoreRoot: templatesValue,
		PrivateRepository: !publicValue,
		RemoteName:        remoteValue,
	}

	return provisionOptions, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (CommandExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner)
	if creationError != nil {
		return nil, creationError
	}

	return shellExecutor, nil
}

func (builder *CommandBuilder) resolveRepoHost(executionContext context.Context, executor CommandExecutor, hostKindValue string) (repohost.RepoHost, error) {
	if builder.RepoHost != nil {
		return builder.RepoHost, nil
	}

	switch repohost.HostKind(strings.TrimSpace(strings.ToLower(hostKindValue))) {
	case repohost.HostKindCLI:
		cliClient, clientError := githubcli.NewClient(executor)
		if clientError != nil {
			return nil, clientError
		}
		return repohost.NewCLIHost(cliClient, gitrepo.RemoteProtocolHTTPS)
	case repohost.HostKindAPI:
		accessToken := strings.TrimSpace(os.Getenv(tokenEnvironmentVariableConstant))
		if len(accessToken) == 0 {
			return nil, errMissingAPIToken
		}
		return repohost.NewTokenAPIHost(executionContext, accessToken, gitrepo.RemoteProtocolHTTPS)
	default:
		return nil, fmt.Errorf(unknownHostKindTemplateConstant, hostKindValue)
	}
}
