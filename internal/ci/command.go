package ci

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/lynxkit/forge/internal/appconfig"
	"github.com/lynxkit/forge/internal/execshell"
	"github.com/lynxkit/forge/internal/utils/flags"
)

const (
	ciCommandUseConstant                = "ci"
	ciCommandShortDescriptionConstant   = "Inspect the CI entry point for the current app repository"
	planCommandUseConstant              = "plan"
	planCommandShortDescriptionConstant = "Resolve trigger parameters into a per-platform job plan"
	planCommandLongDescriptionConstant  = "plan merges the trigger payload, the repository's app configuration artifact, and explicit flags into a validated parameter set, then prints the resulting job plan."
	planExecutionErrorTemplateConstant  = "ci plan failed: %w"
	fetchCommandUseConstant             = "fetch"
	fetchCommandShortDescConstant       = "Download the lynx bundle into the per-platform asset paths"
	fetchCommandLongDescriptionConstant = "fetch resolves trigger parameters the same way plan does, then downloads the lynx bundle into the fixed bundle path of every platform the trigger enables."
	fetchExecutionErrorTemplateConstant = "ci fetch failed: %w"
	unexpectedArgumentsMessageConstant  = "ci does not accept positional arguments"
	payloadReadErrorTemplateConstant    = "unable to read trigger payload %s: %w"
	planEncodeErrorTemplateConstant     = "unable to encode job plan: %w"
	artifactMissingExplanationConstant  = "no app configuration artifact at %s; pass --app-name and --bundle-id explicitly: %w"
	flagPayloadNameConstant             = "payload"
	flagPayloadDescriptionConstant      = "Path to a YAML trigger payload"
	flagProjectRootNameConstant         = "project"
	flagProjectRootDescriptionConstant  = "Path to the app repository"
	flagAppNameConstant                 = "app-name"
	flagAppNameDescriptionConstant      = "Application name override"
	flagBundleIdentifierNameConstant    = "bundle-id"
	flagBundleIdentifierDescConstant    = "Bundle identifier override"
	flagBundleURLNameConstant           = "bundle-url"
	flagBundleURLDescriptionConstant    = "URL of the lynx bundle artifact"
	flagTeamIdentifierNameConstant      = "ios-team-id"
	flagTeamIdentifierDescConstant      = "Apple Developer team identifier"
	flagBuildAndroidNameConstant        = "build-android"
	flagBuildAndroidDescriptionConstant = "Include the Android job in the plan"
	flagBuildIOSNameConstant            = "build-ios"
	flagBuildIOSDescriptionConstant     = "Include the iOS job in the plan"
	defaultProjectRootConstant          = "."
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the Cobra ci command group.
type CommandBuilder struct {
	LoggerProvider LoggerProvider
	Executor       CurlExecutor

	buildAndroid bool
	buildIOS     bool
}

// Build constructs the ci command with its plan and fetch subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	ciCommand := &cobra.Command{
		Use:   ciCommandUseConstant,
		Short: ciCommandShortDescriptionConstant,
	}

	planCommand := &cobra.Command{
		Use:   planCommandUseConstant,
		Short: planCommandShortDescriptionConstant,
		Long:  planCommandLongDescriptionConstant,
		RunE:  builder.runPlan,
	}
	builder.registerParameterFlags(planCommand.Flags())

	fetchCommand := &cobra.Command{
		Use:   fetchCommandUseConstant,
		Short: fetchCommandShortDescConstant,
		Long:  fetchCommandLongDescriptionConstant,
		RunE:  builder.runFetch,
	}
	builder.registerParameterFlags(fetchCommand.Flags())

	ciCommand.AddCommand(planCommand)
	ciCommand.AddCommand(fetchCommand)
	return ciCommand, nil
}

// registerParameterFlags installs the shared trigger-parameter flag set. Both
// subcommands resolve parameters identically, so they carry identical flags.
func (builder *CommandBuilder) registerParameterFlags(flagSet *pflag.FlagSet) {
	flagSet.String(flagPayloadNameConstant, "", flagPayloadDescriptionConstant)
	flagSet.String(flagProjectRootNameConstant, defaultProjectRootConstant, flagProjectRootDescriptionConstant)
	flagSet.String(flagAppNameConstant, "", flagAppNameDescriptionConstant)
	flagSet.String(flagBundleIdentifierNameConstant, "", flagBundleIdentifierDescConstant)
	flagSet.String(flagBundleURLNameConstant, "", flagBundleURLDescriptionConstant)
	flagSet.String(flagTeamIdentifierNameConstant, "", flagTeamIdentifierDescConstant)
	flags.AddToggleFlag(flagSet, &builder.buildAndroid, flagBuildAndroidNameConstant, "", true, flagBuildAndroidDescriptionConstant)
	flags.AddToggleFlag(flagSet, &builder.buildIOS, flagBuildIOSNameConstant, "", true, flagBuildIOSDescriptionConstant)
}

func (builder *CommandBuilder) runPlan(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	parameters, resolutionError := builder.resolveParameters(command)
	if resolutionError != nil {
		return fmt.Errorf(planExecutionErrorTemplateConstant, resolutionError)
	}
	if validationError := parameters.Validate(); validationError != nil {
		return fmt.Errorf(planExecutionErrorTemplateConstant, validationError)
	}

	jobPlan := Planner{}.Plan(parameters)
	encodedPlan, encodeError := yaml.Marshal(jobPlan)
	if encodeError != nil {
		return fmt.Errorf(planEncodeErrorTemplateConstant, encodeError)
	}

	if _, writeError := command.OutOrStdout().Write(encodedPlan); writeError != nil {
		return writeError
	}
	return nil
}

func (builder *CommandBuilder) runFetch(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	parameters, resolutionError := builder.resolveParameters(command)
	if resolutionError != nil {
		return fmt.Errorf(fetchExecutionErrorTemplateConstant, resolutionError)
	}
	if validationError := parameters.Validate(); validationError != nil {
		return fmt.Errorf(fetchExecutionErrorTemplateConstant, validationError)
	}

	logger := builder.resolveLogger()
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return fmt.Errorf(fetchExecutionErrorTemplateConstant, executorError)
	}
	bundleFetcher, fetcherError := NewBundleFetcher(logger, executor)
	if fetcherError != nil {
		return fmt.Errorf(fetchExecutionErrorTemplateConstant, fetcherError)
	}

	projectRootValue, _ := command.Flags().GetString(flagProjectRootNameConstant)
	for _, runnableJob := range (Planner{}).Plan(parameters).RunnableJobs() {
		destinationPath, fetchError := bundleFetcher.Fetch(command.Context(), projectRootValue, runnableJob.Platform, parameters.LynxBundleURL)
		if fetchError != nil {
			return fmt.Errorf(fetchExecutionErrorTemplateConstant, fetchError)
		}
		if _, writeError := fmt.Fprintln(command.OutOrStdout(), destinationPath); writeError != nil {
			return writeError
		}
	}
	return nil
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

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (CurlExecutor, error) {
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

// resolveParameters layers the three parameter sources: payload first, then
// the repository's configuration artifact for the app identity, then explicit
// flags as the final override.
func (builder *CommandBuilder) resolveParameters(command *cobra.Command) (TriggerParameters, error) {
	parameters := TriggerParameters{BuildAndroid: true, BuildIOS: true}

	payloadPathValue, _ := command.Flags().GetString(flagPayloadNameConstant)
	if len(strings.TrimSpace(payloadPathValue)) > 0 {
		payloadData, readError := os.ReadFile(payloadPathValue)
		if readError != nil {
			return TriggerParameters{}, fmt.Errorf(payloadReadErrorTemplateConstant, payloadPathValue, readError)
		}
		parsedParameters, parseError := ParsePayload(payloadData)
		if parseError != nil {
			return TriggerParameters{}, parseError
		}
		parameters = parsedParameters
	}

	projectRootValue, _ := command.Flags().GetString(flagProjectRootNameConstant)
	appNameValue, _ := command.Flags().GetString(flagAppNameConstant)
	bundleIdentifierValue, _ := command.Flags().GetString(flagBundleIdentifierNameConstant)
	bundleURLValue, _ := command.Flags().GetString(flagBundleURLNameConstant)
	teamIdentifierValue, _ := command.Flags().GetString(flagTeamIdentifierNameConstant)

	if len(parameters.AppName) == 0 && len(strings.TrimSpace(appNameValue)) == 0 {
		configArtifact, artifactError := appconfig.Read(projectRootValue)
		if artifactError != nil {
			if errors.Is(artifactError, appconfig.ErrArtifactMissing) {
				return TriggerParameters{}, fmt.Errorf(artifactMissingExplanationConstant, appconfig.ArtifactPath(projectRootValue), artifactError)
			}
			return TriggerParameters{}, artifactError
		}
		parameters.AppName = configArtifact.AppName
		parameters.BundleIdentifier = configArtifact.BundleIdentifier
	}

	if len(strings.TrimSpace(appNameValue)) > 0 {
		parameters.AppName = strings.TrimSpace(appNameValue)
	}
	if len(strings.TrimSpace(bundleIdentifierValue)) > 0 {
		parameters.BundleIdentifier = strings.TrimSpace(bundleIdentifierValue)
	}
	if len(strings.TrimSpace(bundleURLValue)) > 0 {
		parameters.LynxBundleURL = strings.TrimSpace(bundleURLValue)
	}
	if len(strings.TrimSpace(teamIdentifierValue)) > 0 {
		parameters.IOSTeamID = strings.TrimSpace(teamIdentifierValue)
	}
	if command.Flags().Changed(flagBuildAndroidNameConstant) {
		parameters.BuildAndroid = builder.buildAndroid
	}
	if command.Flags().Changed(flagBuildIOSNameConstant) {
		parameters.BuildIOS = builder.buildIOS
	}

	return parameters, nil
}
