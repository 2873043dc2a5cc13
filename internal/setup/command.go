package setup

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lynxkit/forge/internal/execshell"
	"github.com/lynxkit/forge/internal/gitrepo"
	"github.com/lynxkit/forge/internal/substitution"
)

const (
	commandUseConstant                    = "setup"
	commandShortDescriptionConstant       = "Personalize the current working tree in place"
	commandLongDescriptionConstant        = "setup rewrites the instantiated template in the current directory with the app name and bundle identifier, writes the app configuration artifact, and commits the result."
	commandExecutionErrorTemplateConstant = "setup failed: %w"
	unexpectedArgumentsMessageConstant    = "setup does not accept positional arguments"
	workingDirectoryErrorTemplateConstant = "unable to resolve working directory: %w"
	flagAppNameConstant                   = "name"
	flagAppNameDescriptionConstant        = "Application name substituted into the tree"
	flagBundleIdentifierNameConstant      = "bundle-id"
	flagBundleIdentifierDescConstant      = "Reverse-domain bundle identifier"
	flagTeamIdentifierNameConstant        = "ios-team-id"
	flagTeamIdentifierDescConstant        = "Apple Developer team identifier for code signing"
	flagSkipGitNameConstant               = "skip-git"
	flagSkipGitDescriptionConstant        = "Skip staging and committing the rewritten tree"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// GitExecutor executes git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CommandBuilder assembles the Cobra command for in-place setup.
type CommandBuilder struct {
	LoggerProvider   LoggerProvider
	Executor         GitExecutor
	WorkingDirectory string
}

// Build constructs the setup command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagAppNameConstant, "", flagAppNameDescriptionConstant)
	command.Flags().String(flagBundleIdentifierNameConstant, "", flagBundleIdentifierDescConstant)
	command.Flags().String(flagTeamIdentifierNameConstant, "", flagTeamIdentifierDescConstant)
	command.Flags().Bool(flagSkipGitNameConstant, false, flagSkipGitDescriptionConstant)

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

	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	if managerError != nil {
		return managerError
	}

	service, serviceError := NewService(ServiceDependencies{
		Logger:        logger,
		Engine:        substitution.NewEngine(logger),
		GitOperations: repositoryManager,
	})
	if serviceError != nil {
		return serviceError
	}

	executionError := service.Execute(command.Context(), options)
	if executionError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, executionError)
	}

	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (SetupOptions, error) {
	appNameValue, _ := command.Flags().GetString(flagAppNameConstant)
	bundleIdentifierValue, _ := command.Flags().GetString(flagBundleIdentifierNameConstant)
	teamIdentifierValue, _ := command.Flags().GetString(flagTeamIdentifierNameConstant)
	skipGitValue, _ := command.Flags().GetBool(flagSkipGitNameConstant)

	workingTree := builder.WorkingDirectory
	if len(workingTree) == 0 {
		resolvedDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return SetupOptions{}, fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
		}
		workingTree = resolvedDirectory
	}

	setupOptions := SetupOptions{
		WorkingTree:       workingTree,
		AppName:           appNameValue,
		BundleIdentifier:  bundleIdentifierValue,
		IOSTeamIdentifier: teamIdentifierValue,
		SkipGit:           skipGitValue,
	}

	return setupOptions, nil
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

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (GitExecutor, error) {
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
