package platform

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lynxkit/forge/internal/execshell"
)

const (
	fastlaneBuildLaneConstant               = "build"
	fastlaneBuildTypeOptionPrefixConstant   = "build_type:"
	ipaExtensionConstant                    = ".ipa"
	iosDirectoryNameConstant                = "ios"
	appNameEnvironmentVariableConstant      = "FORGE_APP_NAME"
	bundleIDEnvironmentVariableConstant     = "FORGE_BUNDLE_ID"
	teamIDEnvironmentVariableConstant       = "FORGE_IOS_TEAM_ID"
	fastlaneExecutorMissingMessageConstant  = "fastlane executor not configured"
	fastlaneInvocationErrorTemplateConstant = "fastlane %s failed: %w"
	iosArtifactMissingMessageConstant       = "No iOS artifact was produced"
	fastlaneLaneLogFieldConstant            = "fastlane_lane"
	iosArtifactCopiedMessageConstant        = "iOS artifact copied"
)

// ErrFastlaneExecutorNotConfigured indicates the builder was constructed without an executor.
var ErrFastlaneExecutorNotConfigured = errors.New(fastlaneExecutorMissingMessageConstant)

// FastlaneExecutor runs fastlane.
type FastlaneExecutor interface {
	ExecuteFastlane(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// IOSBuilder builds the iOS app through fastlane.
type IOSBuilder struct {
	logger      *zap.Logger
	executor    FastlaneExecutor
	projectRoot string
}

// NewIOSBuilder constructs an IOSBuilder rooted at the app repository.
func NewIOSBuilder(logger *zap.Logger, executor FastlaneExecutor, projectRoot string) (*IOSBuilder, error) {
	if executor == nil {
		return nil, ErrFastlaneExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IOSBuilder{logger: logger, executor: executor, projectRoot: projectRoot}, nil
}

// Build runs the fastlane build lane inside the ios directory and copies the
// produced .ipa into the output directory. OutputType does not apply to iOS
// and is ignored. A lane that succeeds without producing an .ipa is reported
// as a warning with ArtifactFound false.
func (builder *IOSBuilder) Build(executionContext context.Context, parameters BuildParameters) (BuildResult, error) {
	if validationError := parameters.BuildType.Validate(); validationError != nil {
		return BuildResult{}, validationError
	}

	laneEnvironment := map[string]string{
		appNameEnvironmentVariableConstant:  parameters.AppName,
		bundleIDEnvironmentVariableConstant: parameters.BundleIdentifier,
	}
	if len(parameters.Signing.TeamIdentifier) > 0 {
		laneEnvironment[teamIDEnvironmentVariableConstant] = parameters.Signing.TeamIdentifier
	}

	iosRoot := filepath.Join(builder.projectRoot, iosDirectoryNameConstant)
	commandDetails := execshell.CommandDetails{
		Arguments:            []string{fastlaneBuildLaneConstant, fastlaneBuildTypeOptionPrefixConstant + string(parameters.BuildType)},
		WorkingDirectory:     iosRoot,
		EnvironmentVariables: laneEnvironment,
	}
	if _, executionError := builder.executor.ExecuteFastlane(executionContext, commandDetails); executionError != nil {
		return BuildResult{}, fmt.Errorf(fastlaneInvocationErrorTemplateConstant, fastlaneBuildLaneConstant, executionError)
	}

	artifactPath, searchError := findNewestArtifact(iosRoot, ipaExtensionConstant)
	if searchError != nil {
		return BuildResult{}, searchError
	}
	if len(artifactPath) == 0 {
		builder.logger.Warn(iosArtifactMissingMessageConstant,
			zap.String(fastlaneLaneLogFieldConstant, fastlaneBuildLaneConstant),
			zap.String(searchRootLogFieldConstant, iosRoot),
		)
		return BuildResult{ArtifactFound: false}, nil
	}

	copiedPath, copyError := copyArtifact(artifactPath, parameters.OutputDirectory)
	if copyError != nil {
		return BuildResult{}, copyError
	}

	builder.logger.Info(iosArtifactCopiedMessageConstant,
		zap.String(fastlaneLaneLogFieldConstant, fastlaneBuildLaneConstant),
		zap.String(artifactPathLogFieldConstant, copiedPath),
	)
	return BuildResult{ArtifactPath: copiedPath, ArtifactFound: true}, nil
}
