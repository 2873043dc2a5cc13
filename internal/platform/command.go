package platform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lynxkit/forge/internal/appconfig"
	"github.com/lynxkit/forge/internal/execshell"
	"github.com/lynxkit/forge/internal/utils/flags"
)

const (
	buildCommandUseConstant               = "build"
	buildCommandShortDescriptionConstant  = "Build a platform artifact for the current app repository"
	androidCommandUseConstant             = "android"
	androidCommandShortDescription        = "Build the Android app through the Gradle wrapper"
	iosCommandUseConstant                 = "ios"
	iosCommandShortDescriptionConstant    = "Build the iOS app through fastlane"
	buildExecutionErrorTemplateConstant   = "platform build failed: %w"
	unexpectedArgumentsMessageConstant    = "platform build commands do not accept positional arguments"
	flagBuildTypeNameConstant             = "build-type"
	flagBuildTypeDescriptionConstant      = "Toolchain build variant"
	flagOutputTypeNameConstant            = "output-type"
	flagOutputTypeDescriptionConstant     = "Android packaging format"
	flagOutputDirectoryNameConstant       = "output"
	flagOutputDirectoryDescription        = "Directory receiving the built artifact"
	flagProjectRootNameConstant           = "project"
	flagProjectRootDescriptionConstant    = "Path to the app repository"
	flagKeystorePathNameConstant          = "keystore"
	flagKeystorePathDescriptionConstant   = "Keystore file used to sign the Android build"
	flagKeystorePasswordNameConstant      = "keystore-password"
	flagKeystorePasswordDescription       = "Password for the signing keystore"
	flagKeyAliasNameConstant              = "key-alias"
	flagKeyAliasDescriptionConstant       = "Alias of the signing key inside the keystore"
	flagKeyPasswordNameConstant           = "key-password"
	flagKeyPasswordDescriptionConstant    = "Password for the signing key"
	flagTeamIdentifierNameConstant        = "ios-team-id"
	flagTeamIdentifierDescriptionConstant = "Apple Developer team identifier for code signing"
	defaultOutputDirectoryConstant        = "dist"
	defaultProjectRootConstant            = "."
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ToolchainExecutor executes the platform build toolchains.
type ToolchainExecutor interface {
	GradleExecutor
	FastlaneExecutor
}

// CommandBuilder assembles the Cobra build command and its platform subcommands.
type CommandBuilder struct {
	LoggerProvider LoggerProvider
	Executor       ToolchainExecutor
}

// Build constructs the build command with android and ios subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	buildCommand := &cobra.Command{
		Use:   buildCommandUseConstant,
		Short: buildCommandShortDescriptionConstant,
	}

	androidCommand := &cobra.Command{
		Use:   androidCommandUseConstant,
		Short: androidCommandShortDescription,
		RunE:  builder.runAndroid,
	}
	builder.registerSharedFlags(androidCommand)
	androidCommand.Flags().String(flagOutputTypeNameConstant, string(OutputTypeAPK),
		flags.FormatChoiceUsage(string(OutputTypeAPK), []string{string(OutputTypeAPK), string(OutputTypeBundle)}, flagOutputTypeDescriptionConstant))
	androidCommand.Flags().String(flagKeystorePathNameConstant, "", flagKeystorePathDescriptionConstant)
	androidCommand.Flags().String(flagKeystorePasswordNameConstant, "", flagKeystorePasswordDescription)
	androidCommand.Flags().String(flagKeyAliasNameConstant, "", flagKeyAliasDescriptionConstant)
	androidCommand.Flags().String(flagKeyPasswordNameConstant, "", flagKeyPasswordDescriptionConstant)

	iosCommand := &cobra.Command{
		Use:   iosCommandUseConstant,
		Short: iosCommandShortDescriptionConstant,
		RunE:  builder.runIOS,
	}
	builder.registerSharedFlags(iosCommand)
	iosCommand.Flags().String(flagTeamIdentifierNameConstant, "", flagTeamIdentifierDescriptionConstant)

	buildCommand.AddCommand(androidCommand, iosCommand)
	return buildCommand, nil
}

func (builder *CommandBuilder) registerSharedFlags(command *cobra.Command) {
	command.Flags().String(flagBuildTypeNameConstant, string(BuildTypeDebug),
		flags.FormatChoiceUsage(string(BuildTypeDebug), []string{string(BuildTypeDebug), string(BuildTypeRelease)}, flagBuildTypeDescriptionConstant))
	command.Flags().String(flagOutputDirectoryNameConstant, defaultOutputDirectoryConstant, flagOutputDirectoryDescription)
	command.Flags().String(flagProjectRootNameConstant, defaultProjectRootConstant, flagProjectRootDescriptionConstant)
}

func (builder *CommandBuilder) runAndroid(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	projectRoot, parameters, parseError := builder.parseSharedParameters(command)
	if parseError != nil {
		return parseError
	}

	outputTypeValue, _ := command.Flags().GetString(flagOutputTypeNameConstant)
	parameters.OutputType = OutputType(strings.TrimSpace(strings.ToLower(outputTypeValue)))

	keystorePathValue, _ := command.Flags().GetString(flagKeystorePathNameConstant)
	keystorePasswordValue, _ := command.Flags().GetString(flagKeystorePasswordNameConstant)
	keyAliasValue, _ := command.Flags().GetString(flagKeyAliasNameConstant)
	keyPasswordValue, _ := command.Flags().GetString(flagKeyPasswordNameConstant)
	parameters.Signing.KeystorePath = keystorePathValue
	parameters.Signing.KeystorePassword = keystorePasswordValue
	parameters.Signing.KeyAlias = keyAliasValue
	parameters.Signing.KeyPassword = keyPasswordValue

	logger := builder.resolveLogger()
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	androidBuilder, builderError := NewAndroidBuilder(logger, executor, projectRoot)
	if builderError != nil {
		return builderError
	}

	if _, buildError := androidBuilder.Build(command.Context(), parameters); buildError != nil {
		return fmt.Errorf(buildExecutionErrorTemplateConstant, buildError)
	}
	return nil
}

func (builder *CommandBuilder) runIOS(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	projectRoot, parameters, parseError := builder.parseSharedParameters(command)
	if parseError != nil {
		return parseError
	}
	parameters.OutputType = OutputTypeAPK

	teamIdentifierValue, _ := command.Flags().GetString(flagTeamIdentifierNameConstant)
	parameters.Signing.TeamIdentifier = teamIdentifierValue

	logger := builder.resolveLogger()
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	iosBuilder, builderError := NewIOSBuilder(logger, executor, projectRoot)
	if builderError != nil {
		return builderError
	}

	if _, buildError := iosBuilder.Build(command.Context(), parameters); buildError != nil {
		return fmt.Errorf(buildExecutionErrorTemplateConstant, buildError)
	}
	return nil
}

// parseSharedParameters resolves the flags common to both platforms and seeds
// the app identity from the repository's configuration artifact when present.
func (builder *CommandBuilder) parseSharedParameters(command *cobra.Command) (string, BuildParameters, error) {
	buildTypeValue, _ := command.Flags().GetString(flagBuildTypeNameConstant)
	outputDirectoryValue, _ := command.Flags().GetString(flagOutputDirectoryNameConstant)
	projectRootValue, _ := command.Flags().GetString(flagProjectRootNameConstant)

	parameters := BuildParameters{
		BuildType:       BuildType(strings.TrimSpace(strings.ToLower(buildTypeValue))),
		OutputDirectory: outputDirectoryValue,
	}

	configArtifact, artifactError := appconfig.Read(projectRootValue)
	if artifactError != nil && !errors.Is(artifactError, appconfig.ErrArtifactMissing) {
		return "", BuildParameters{}, artifactError
	}
	parameters.AppName = configArtifact.AppName
	parameters.BundleIdentifier = configArtifact.BundleIdentifier

	return projectRootValue, parameters, nil
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

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (ToolchainExecutor, error) {
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
