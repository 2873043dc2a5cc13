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
	assembleTaskPrefixConstant            = "assemble"
	bundleTaskPrefixConstant              = "bundle"
	debugTaskSuffixConstant               = "Debug"
	releaseTaskSuffixConstant             = "Release"
	apkExtensionConstant                  = ".apk"
	bundleExtensionConstant               = ".aab"
	androidOutputsRelativePathConstant    = "app/build/outputs"
	keystoreFilePropertyConstant          = "-Pandroid.injected.signing.store.file="
	keystorePasswordPropertyConstant      = "-Pandroid.injected.signing.store.password="
	keyAliasPropertyConstant              = "-Pandroid.injected.signing.key.alias="
	keyPasswordPropertyConstant           = "-Pandroid.injected.signing.key.password="
	gradleExecutorMissingMessageConstant  = "gradle executor not configured"
	gradleInvocationErrorTemplateConstant = "gradle %s failed: %w"
	androidArtifactMissingMessageConstant = "No Android artifact matched the requested output type"
	androidTaskLogFieldConstant           = "gradle_task"
	outputTypeLogFieldConstant            = "output_type"
	searchRootLogFieldConstant            = "search_root"
	artifactPathLogFieldConstant          = "artifact_path"
	androidArtifactCopiedMessageConstant  = "Android artifact copied"
)

// ErrGradleExecutorNotConfigured indicates the builder was constructed without an executor.
var ErrGradleExecutorNotConfigured = errors.New(gradleExecutorMissingMessageConstant)

// GradleExecutor runs the Gradle wrapper.
type GradleExecutor interface {
	ExecuteGradle(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// AndroidBuilder builds the Android app through the project's Gradle wrapper.
type AndroidBuilder struct {
	logger      *zap.Logger
	executor    GradleExecutor
	projectRoot string
}

// NewAndroidBuilder constructs an AndroidBuilder rooted at the app repository.
func NewAndroidBuilder(logger *zap.Logger, executor GradleExecutor, projectRoot string) (*AndroidBuilder, error) {
	if executor == nil {
		return nil, ErrGradleExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AndroidBuilder{logger: logger, executor: executor, projectRoot: projectRoot}, nil
}

// Build invokes the Gradle task matching the build and output types, then
// copies the produced artifact into the output directory. A successful build
// without a matching artifact is reported as a warning with ArtifactFound
// false, not as an error.
func (builder *AndroidBuilder) Build(executionContext context.Context, parameters BuildParameters) (BuildResult, error) {
	if validationError := parameters.BuildType.Validate(); validationError != nil {
		return BuildResult{}, validationError
	}
	if validationError := parameters.OutputType.Validate(); validationError != nil {
		return BuildResult{}, validationError
	}

	gradleTask := gradleTaskName(parameters.BuildType, parameters.OutputType)
	gradleArguments := append([]string{gradleTask}, signingProperties(parameters.Signing)...)

	commandDetails := execshell.CommandDetails{
		Arguments:        gradleArguments,
		WorkingDirectory: builder.projectRoot,
	}
	if _, executionError := builder.executor.ExecuteGradle(executionContext, commandDetails); executionError != nil {
		return BuildResult{}, fmt.Errorf(gradleInvocationErrorTemplateConstant, gradleTask, executionError)
	}

	searchRoot := filepath.Join(builder.projectRoot, filepath.FromSlash(androidOutputsRelativePathConstant))
	artifactExtension := artifactExtensionFor(parameters.OutputType)
	artifactPath, searchError := findNewestArtifact(searchRoot, artifactExtension)
	if searchError != nil {
		return BuildResult{}, searchError
	}
	if len(artifactPath) == 0 {
		builder.logger.Warn(androidArtifactMissingMessageConstant,
			zap.String(androidTaskLogFieldConstant, gradleTask),
			zap.String(outputTypeLogFieldConstant, string(parameters.OutputType)),
			zap.String(searchRootLogFieldConstant, searchRoot),
		)
		return BuildResult{ArtifactFound: false}, nil
	}

	copiedPath, copyError := copyArtifact(artifactPath, parameters.OutputDirectory)
	if copyError != nil {
		return BuildResult{}, copyError
	}

	builder.logger.Info(androidArtifactCopiedMessageConstant,
		zap.String(androidTaskLogFieldConstant, gradleTask),
		zap.String(artifactPathLogFieldConstant, copiedPath),
	)
	return BuildResult{ArtifactPath: copiedPath, ArtifactFound: true}, nil
}

func gradleTaskName(buildType BuildType, outputType OutputType) string {
	taskPrefix := assembleTaskPrefixConstant
	if outputType == OutputTypeBundle {
		taskPrefix = bundleTaskPrefixConstant
	}
	taskSuffix := debugTaskSuffixConstant
	if buildType == BuildTypeRelease {
		taskSuffix = releaseTaskSuffixConstant
	}
	return taskPrefix + taskSuffix
}

func artifactExtensionFor(outputType OutputType) string {
	if outputType == OutputTypeBundle {
		return bundleExtensionConstant
	}
	return apkExtensionConstant
}

func signingProperties(overrides SigningOverrides) []string {
	properties := make([]string, 0, 4)
	if len(overrides.KeystorePath) > 0 {
		properties = append(properties, keystoreFilePropertyConstant+overrides.KeystorePath)
	}
	if len(overrides.KeystorePassword) > 0 {
		properties = append(properties, keystorePasswordPropertyConstant+overrides.KeystorePassword)
	}
	if len(overrides.KeyAlias) > 0 {
		properties = append(properties, keyAliasPropertyConstant+overrides.KeyAlias)
	}
	if len(overrides.KeyPassword) > 0 {
		properties = append(properties, keyPasswordPropertyConstant+overrides.KeyPassword)
	}
	return properties
}
