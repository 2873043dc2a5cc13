package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitCloneSubcommandNameConstant  = "clone"
	gitAddSubcommandNameConstant    = "add"
	gitCommitSubcommandNameConstant = "commit"
	gitPushSubcommandNameConstant   = "push"
	gitStatusSubcommandNameConstant = "status"
	gitMessageFlagConstant          = "-m"
)

const (
	gitCloneStartTemplateConstant             = "Cloning %s into %s"
	gitCloneSuccessTemplateConstant           = "Cloned %s into %s"
	gitCloneFailureTemplateConstant           = "Failed to clone %s into %s (exit code %d%s)"
	gitCloneExecutionFailureTemplateConstant  = "Unable to clone %s into %s: %s"
	gitAddStartTemplateConstant               = "Staging %s in %s"
	gitAddSuccessTemplateConstant             = "Staged %s in %s"
	gitAddFailureTemplateConstant             = "Failed to stage %s in %s (exit code %d%s)"
	gitAddExecutionFailureTemplateConstant    = "Unable to stage %s in %s: %s"
	gitCommitStartTemplateConstant            = "Creating commit in %s with message %q"
	gitCommitSuccessTemplateConstant          = "Created commit in %s with message %q"
	gitCommitFailureTemplateConstant          = "Failed to create commit in %s with message %q (exit code %d%s)"
	gitCommitExecutionFailureTemplateConstant = "Unable to create commit in %s with message %q: %s"
	gitPushStartTemplateConstant              = "Pushing from %s"
	gitPushSuccessTemplateConstant            = "Pushed from %s"
	gitPushFailureTemplateConstant            = "Failed to push from %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant   = "Unable to push from %s: %s"
	gitStatusStartTemplateConstant            = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant          = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant          = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant = "Unable to review working tree status in %s: %s"
)

const (
	githubRepoSubcommandNameConstant                  = "repo"
	githubRepoCreateSubcommandNameConstant            = "create"
	githubRepoViewSubcommandNameConstant              = "view"
	githubRepoViewIdentificationArgumentCountConstant = 2
)

const (
	githubRepoCreateStartTemplateConstant            = "Creating repository %s"
	githubRepoCreateSuccessTemplateConstant          = "Created repository %s"
	githubRepoCreateFailureTemplateConstant          = "Failed to create repository %s (exit code %d%s)"
	githubRepoCreateExecutionFailureTemplateConstant = "Unable to create repository %s: %s"
	githubRepoViewStartTemplateConstant              = "Retrieving repository details for %s"
	githubRepoViewSuccessTemplateConstant            = "Retrieved repository details for %s"
	githubRepoViewFailureTemplateConstant            = "Failed to retrieve repository details for %s (exit code %d%s)"
	githubRepoViewExecutionFailureTemplateConstant   = "Unable to retrieve repository details for %s: %s"
)

const (
	gradleTaskStartTemplateConstant            = "Running Gradle task %s in %s"
	gradleTaskSuccessTemplateConstant          = "Completed Gradle task %s in %s"
	gradleTaskFailureTemplateConstant          = "Gradle task %s failed in %s (exit code %d%s)"
	gradleTaskExecutionFailureTemplateConstant = "Unable to run Gradle task %s in %s: %s"
)

const (
	fastlaneLaneStartTemplateConstant            = "Running fastlane lane %s in %s"
	fastlaneLaneSuccessTemplateConstant          = "Completed fastlane lane %s in %s"
	fastlaneLaneFailureTemplateConstant          = "Fastlane lane %s failed in %s (exit code %d%s)"
	fastlaneLaneExecutionFailureTemplateConstant = "Unable to run fastlane lane %s in %s: %s"
)

const (
	curlOutputFlagConstant                       = "-o"
	curlDownloadStartTemplateConstant            = "Downloading %s to %s"
	curlDownloadSuccessTemplateConstant          = "Downloaded %s to %s"
	curlDownloadFailureTemplateConstant          = "Failed to download %s to %s (exit code %d%s)"
	curlDownloadExecutionFailureTemplateConstant = "Unable to download %s to %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) shouldLogStartMessage(command ShellCommand) bool {
	if command.Name != CommandGitHub {
		return true
	}
	if formatter.isGitHubRepoViewCommand(command.Details.Arguments) {
		return false
	}
	return true
}

func (formatter CommandMessageFormatter) isGitHubRepoViewCommand(arguments []string) bool {
	if len(arguments) < githubRepoViewIdentificationArgumentCountConstant {
		return false
	}
	primaryArgument := strings.TrimSpace(arguments[0])
	secondaryArgument := strings.TrimSpace(arguments[1])
	return primaryArgument == githubRepoSubcommandNameConstant && secondaryArgument == githubRepoViewSubcommandNameConstant
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandGitHub:
		return formatter.describeGitHubMessage(command, result, failure, stage)
	case CommandGradle:
		return formatter.describeGradleMessage(command, result, failure, stage)
	case CommandFastlane:
		return formatter.describeFastlaneMessage(command, result, failure, stage)
	case CommandCurl:
		return formatter.describeCurlMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch strings.TrimSpace(arguments[0]) {
	case gitCloneSubcommandNameConstant:
		cloneSource := formatter.ensureValue(formatter.argumentAtIndex(arguments, 1))
		cloneTarget := formatter.ensureValue(formatter.argumentAtIndex(arguments, 2))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitCloneStartTemplateConstant, cloneSource, cloneTarget)
		case messageStageSuccess:
			return fmt.Sprintf(gitCloneSuccessTemplateConstant, cloneSource, cloneTarget)
		case messageStageFailure:
			return fmt.Sprintf(gitCloneFailureTemplateConstant, cloneSource, cloneTarget, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitCloneExecutionFailureTemplateConstant, cloneSource, cloneTarget, formatter.describeFailure(failure))
		}
	case gitAddSubcommandNameConstant:
		stagedTarget := formatter.ensureValue(formatter.argumentAtIndex(arguments, 1))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitAddStartTemplateConstant, stagedTarget, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitAddSuccessTemplateConstant, stagedTarget, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitAddFailureTemplateConstant, stagedTarget, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitAddExecutionFailureTemplateConstant, stagedTarget, workingDirectory, formatter.describeFailure(failure))
		}
	case gitCommitSubcommandNameConstant:
		commitMessage := formatter.resolveCommitMessage(arguments)
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitCommitStartTemplateConstant, workingDirectory, commitMessage)
		case messageStageSuccess:
			return fmt.Sprintf(gitCommitSuccessTemplateConstant, workingDirectory, commitMessage)
		case messageStageFailure:
			return fmt.Sprintf(gitCommitFailureTemplateConstant, workingDirectory, commitMessage, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitCommitExecutionFailureTemplateConstant, workingDirectory, commitMessage, formatter.describeFailure(failure))
		}
	case gitPushSubcommandNameConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitPushStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitPushSuccessTemplateConstant, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitPushFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitPushExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
		}
	case gitStatusSubcommandNameConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitStatusStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitStatusSuccessTemplateConstant, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitStatusFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitStatusExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < githubRepoViewIdentificationArgumentCountConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	if strings.TrimSpace(arguments[0]) != githubRepoSubcommandNameConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	repositoryIdentifier := formatter.ensureValue(formatter.argumentAtIndex(arguments, 2))

	switch strings.TrimSpace(arguments[1]) {
	case githubRepoCreateSubcommandNameConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubRepoCreateStartTemplateConstant, repositoryIdentifier)
		case messageStageSuccess:
			return fmt.Sprintf(githubRepoCreateSuccessTemplateConstant, repositoryIdentifier)
		case messageStageFailure:
			return fmt.Sprintf(githubRepoCreateFailureTemplateConstant, repositoryIdentifier, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(githubRepoCreateExecutionFailureTemplateConstant, repositoryIdentifier, formatter.describeFailure(failure))
		}
	case githubRepoViewSubcommandNameConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubRepoViewStartTemplateConstant, repositoryIdentifier)
		case messageStageSuccess:
			return fmt.Sprintf(githubRepoViewSuccessTemplateConstant, repositoryIdentifier)
		case messageStageFailure:
			return fmt.Sprintf(githubRepoViewFailureTemplateConstant, repositoryIdentifier, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(githubRepoViewExecutionFailureTemplateConstant, repositoryIdentifier, formatter.describeFailure(failure))
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGradleMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	gradleTask := formatter.ensureValue(formatter.argumentAtIndex(command.Details.Arguments, 0))
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gradleTaskStartTemplateConstant, gradleTask, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gradleTaskSuccessTemplateConstant, gradleTask, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gradleTaskFailureTemplateConstant, gradleTask, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gradleTaskExecutionFailureTemplateConstant, gradleTask, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeFastlaneMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	fastlaneLane := formatter.ensureValue(formatter.argumentAtIndex(command.Details.Arguments, 0))
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(fastlaneLaneStartTemplateConstant, fastlaneLane, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(fastlaneLaneSuccessTemplateConstant, fastlaneLane, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(fastlaneLaneFailureTemplateConstant, fastlaneLane, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(fastlaneLaneExecutionFailureTemplateConstant, fastlaneLane, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeCurlMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	downloadSource, downloadTarget, resolved := formatter.resolveCurlTransfer(command.Details.Arguments)
	if !resolved {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(curlDownloadStartTemplateConstant, downloadSource, downloadTarget)
	case messageStageSuccess:
		return fmt.Sprintf(curlDownloadSuccessTemplateConstant, downloadSource, downloadTarget)
	case messageStageFailure:
		return fmt.Sprintf(curlDownloadFailureTemplateConstant, downloadSource, downloadTarget, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(curlDownloadExecutionFailureTemplateConstant, downloadSource, downloadTarget, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.describeCommandLabel(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	}
}

func (formatter CommandMessageFormatter) describeCommandLabel(command ShellCommand) string {
	joinedArguments := strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant)
	if len(joinedArguments) > 0 {
		joinedArguments = commandArgumentsJoinSeparatorConstant + joinedArguments
	}
	return fmt.Sprintf(commandLabelTemplateConstant, command.Name, joinedArguments)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := trimStandardError(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) resolveCommitMessage(arguments []string) string {
	for argumentIndex, argument := range arguments {
		if strings.TrimSpace(argument) == gitMessageFlagConstant && argumentIndex+1 < len(arguments) {
			return arguments[argumentIndex+1]
		}
	}
	return fallbackUnknownValueLabelConstant
}

func (formatter CommandMessageFormatter) resolveCurlTransfer(arguments []string) (string, string, bool) {
	downloadTarget := emptyStringConstant
	downloadSource := emptyStringConstant

	for argumentIndex, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if trimmedArgument == curlOutputFlagConstant && argumentIndex+1 < len(arguments) {
			downloadTarget = strings.TrimSpace(arguments[argumentIndex+1])
			continue
		}
		if strings.HasPrefix(trimmedArgument, "http://") || strings.HasPrefix(trimmedArgument, "https://") {
			downloadSource = trimmedArgument
		}
	}

	if len(downloadSource) == 0 || len(downloadTarget) == 0 {
		return emptyStringConstant, emptyStringConstant, false
	}
	return downloadSource, downloadTarget, true
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, argumentIndex int) string {
	if argumentIndex < 0 || argumentIndex >= len(arguments) {
		return emptyStringConstant
	}
	return arguments[argumentIndex]
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmedValue
}
