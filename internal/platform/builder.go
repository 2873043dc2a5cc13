package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const (
	buildTypeDebugStringConstant         = "debug"
	buildTypeReleaseStringConstant       = "release"
	outputTypeAPKStringConstant          = "apk"
	outputTypeBundleStringConstant       = "bundle"
	unsupportedBuildTypeTemplate         = "unsupported build type: %s"
	unsupportedOutputTypeTemplate        = "unsupported output type: %s"
	artifactCopyErrorTemplateConstant    = "unable to copy artifact %s: %w"
	outputDirectoryErrorTemplateConstant = "unable to create output directory %s: %w"
	artifactSearchErrorTemplateConstant  = "artifact search under %s failed: %w"
)

// BuildType selects the toolchain build variant.
type BuildType string

// Supported build types.
const (
	BuildTypeDebug   BuildType = BuildType(buildTypeDebugStringConstant)
	BuildTypeRelease BuildType = BuildType(buildTypeReleaseStringConstant)
)

// Validate rejects unknown build types.
func (buildType BuildType) Validate() error {
	switch buildType {
	case BuildTypeDebug, BuildTypeRelease:
		return nil
	default:
		return fmt.Errorf(unsupportedBuildTypeTemplate, string(buildType))
	}
}

// OutputType selects the Android packaging format.
type OutputType string

// Supported output types.
const (
	OutputTypeAPK    OutputType = OutputType(outputTypeAPKStringConstant)
	OutputTypeBundle OutputType = OutputType(outputTypeBundleStringConstant)
)

// Validate rejects unknown output types.
func (outputType OutputType) Validate() error {
	switch outputType {
	case OutputTypeAPK, OutputTypeBundle:
		return nil
	default:
		return fmt.Errorf(unsupportedOutputTypeTemplate, string(outputType))
	}
}

// SigningOverrides carries optional credentials injected into the toolchain.
type SigningOverrides struct {
	KeystorePath     string
	KeystorePassword string
	KeyAlias         string
	KeyPassword      string
	TeamIdentifier   string
}

// BuildParameters configures a single platform build invocation.
type BuildParameters struct {
	BuildType        BuildType
	OutputType       OutputType
	OutputDirectory  string
	AppName          string
	BundleIdentifier string
	Signing          SigningOverrides
}

// BuildResult reports the produced artifact. ArtifactFound is false when the
// toolchain succeeded but no artifact matched the requested output type; that
// outcome is a warning, not an error.
type BuildResult struct {
	ArtifactPath  string
	ArtifactFound bool
}

// PlatformBuilder abstracts a per-platform build toolchain.
type PlatformBuilder interface {
	Build(executionContext context.Context, parameters BuildParameters) (BuildResult, error)
}

// findNewestArtifact returns the most recently modified file beneath
// searchRoot carrying the requested extension, or an empty path when none
// matches. A missing search root is treated as no match.
func findNewestArtifact(searchRoot string, extension string) (string, error) {
	newestPath := ""
	newestModTime := time.Time{}

	walkError := filepath.WalkDir(searchRoot, func(candidatePath string, directoryEntry fs.DirEntry, entryError error) error {
		if entryError != nil {
			return entryError
		}
		if directoryEntry.IsDir() {
			return nil
		}
		if filepath.Ext(candidatePath) != extension {
			return nil
		}

		entryInfo, infoError := directoryEntry.Info()
		if infoError != nil {
			return infoError
		}
		if newestPath == "" || entryInfo.ModTime().After(newestModTime) {
			newestPath = candidatePath
			newestModTime = entryInfo.ModTime()
		}
		return nil
	})
	if walkError != nil {
		if errors.Is(walkError, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf(artifactSearchErrorTemplateConstant, searchRoot, walkError)
	}

	return newestPath, nil
}

// copyArtifact copies the artifact into the output directory, creating the
// directory when needed, and returns the destination path.
func copyArtifact(artifactPath string, outputDirectory string) (string, error) {
	if mkdirError := os.MkdirAll(outputDirectory, 0o755); mkdirError != nil {
		return "", fmt.Errorf(outputDirectoryErrorTemplateConstant, outputDirectory, mkdirError)
	}

	destinationPath := filepath.Join(outputDirectory, filepath.Base(artifactPath))

	sourceFile, openError := os.Open(artifactPath)
	if openError != nil {
		return "", fmt.Errorf(artifactCopyErrorTemplateConstant, artifactPath, openError)
	}
	defer sourceFile.Close()

	destinationFile, createError := os.Create(destinationPath)
	if createError != nil {
		return "", fmt.Errorf(artifactCopyErrorTemplateConstant, artifactPath, createError)
	}
	defer destinationFile.Close()

	if _, copyError := io.Copy(destinationFile, sourceFile); copyError != nil {
		return "", fmt.Errorf(artifactCopyErrorTemplateConstant, artifactPath, copyError)
	}

	return destinationPath, nil
}
