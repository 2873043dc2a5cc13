package execshell

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant              = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant       = "shell executor command runner not configured"
	toolingMissingRemediationTemplateConstant       = "%s is not installed or not on PATH; install it and re-run"
	commandNameGitConstant                          = "git"
	commandNameGitHubCLIConstant                    = "gh"
	commandNameGradleWrapperConstant                = "./gradlew"
	commandNameFastlaneConstant                     = "fastlane"
	commandNameCurlConstant                         = "curl"
	standardErrorTrimCutsetConstant                 = "\n\r\t "
	commandExecutionWithRemediationTemplateConstant = "%s (%s)"
)

// CommandName identifies an external tool supported by the executor.
type CommandName string

// Supported tool enumerations.
const (
	CommandGit      CommandName = CommandName(commandNameGitConstant)
	CommandGitHub   CommandName = CommandName(commandNameGitHubCLIConstant)
	CommandGradle   CommandName = CommandName(commandNameGradleWrapperConstant)
	CommandFastlane CommandName = CommandName(commandNameFastlaneConstant)
	CommandCurl     CommandName = CommandName(commandNameCurlConstant)
)

// CommandDetails describes a tool invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand combines a CommandName with specific invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner represents the ability to run shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// Sentinel construction errors.
var (
	// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
)

// CommandFailedError reports a command that completed with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the command failure.
func (failureError CommandFailedError) Error() string {
	formatter := CommandMessageFormatter{}
	return formatter.BuildFailureMessage(failureError.Command, failureError.Result)
}

// CommandExecutionError reports a command that could not be executed at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure, adding a remediation hint when the tool is missing.
func (executionError CommandExecutionError) Error() string {
	formatter := CommandMessageFormatter{}
	baseMessage := formatter.BuildExecutionFailureMessage(executionError.Command, executionError.Cause)
	if errors.Is(executionError.Cause, exec.ErrNotFound) {
		remediation := fmt.Sprintf(toolingMissingRemediationTemplateConstant, executionError.Command.Name)
		return fmt.Sprintf(commandExecutionWithRemediationTemplateConstant, baseMessage, remediation)
	}
	return baseMessage
}

// Unwrap exposes the underlying cause.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// IsToolMissing reports whether the execution failure stems from an absent executable.
func (executionError CommandExecutionError) IsToolMissing() bool {
	return errors.Is(executionError.Cause, exec.ErrNotFound)
}

// ShellExecutor coordinates command execution with structured logging.
type ShellExecutor struct {
	logger    *zap.Logger
	runner    CommandRunner
	formatter CommandMessageFormatter
	observer  CommandEventObserver
}

// NewShellExecutor constructs a ShellExecutor with the provided logger and runner.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	return &ShellExecutor{
		logger:    logger,
		runner:    runner,
		formatter: CommandMessageFormatter{},
		observer:  noopCommandEventObserver{},
	}, nil
}

// SetCommandEventObserver registers an observer for command lifecycle events.
func (executor *ShellExecutor) SetCommandEventObserver(observer CommandEventObserver) {
	if observer == nil {
		executor.observer = noopCommandEventObserver{}
		return
	}
	executor.observer = observer
}

// Execute runs the supplied command, logging lifecycle events and translating failures into typed errors.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.observer.CommandStarted(command)
	if executor.formatter.shouldLogStartMessage(command) {
		executor.logger.Info(executor.formatter.BuildStartedMessage(command))
	}

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executionFailure := CommandExecutionError{Command: command, Cause: runError}
		executor.observer.CommandExecutionFailed(command, runError)
		executor.logger.Error(executor.formatter.BuildExecutionFailureMessage(command, runError))
		return ExecutionResult{}, executionFailure
	}

	executor.observer.CommandCompleted(command, executionResult)

	if executionResult.ExitCode != 0 {
		executor.logger.Error(executor.formatter.BuildFailureMessage(command, executionResult))
		return executionResult, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Info(executor.formatter.BuildSuccessMessage(command))
	return executionResult, nil
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteGitHubCLI runs the GitHub CLI with the provided details.
func (executor *ShellExecutor) ExecuteGitHubCLI(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGitHub, Details: details})
}

// ExecuteGradle runs the Gradle wrapper with the provided details.
func (executor *ShellExecutor) ExecuteGradle(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGradle, Details: details})
}

// ExecuteFastlane runs fastlane with the provided details.
func (executor *ShellExecutor) ExecuteFastlane(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandFastlane, Details: details})
}

// ExecuteCurl runs curl with the provided details.
func (executor *ShellExecutor) ExecuteCurl(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandCurl, Details: details})
}

func trimStandardError(standardError string) string {
	return strings.Trim(standardError, standardErrorTrimCutsetConstant)
}
