package appconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	artifactDirectoryNameConstant       = ".forge"
	artifactFileNameConstant            = "app.yaml"
	artifactMissingMessageConstant      = "app configuration artifact not found"
	artifactEncodeErrorTemplateConstant = "unable to encode app configuration: %w"
	artifactDecodeErrorTemplateConstant = "unable to decode app configuration %s: %w"
	artifactWriteErrorTemplateConstant  = "unable to write app configuration %s: %w"
	artifactReadErrorTemplateConstant   = "unable to read app configuration %s: %w"
	artifactDirErrorTemplateConstant    = "unable to create app configuration directory %s: %w"
	artifactFilePermissionsConstant     = fs.FileMode(0o644)
	artifactDirPermissionsConstant      = fs.FileMode(0o755)
)

// ErrArtifactMissing indicates the repository carries no configuration artifact.
var ErrArtifactMissing = errors.New(artifactMissingMessageConstant)

// Artifact is the two-key mapping persisted in every generated repository so
// CI triggers do not need to re-supply the values.
type Artifact struct {
	AppName          string `yaml:"app_name"`
	BundleIdentifier string `yaml:"bundle_id"`
}

// ArtifactPath returns the fixed artifact location beneath a repository root.
func ArtifactPath(repositoryRoot string) string {
	return filepath.Join(repositoryRoot, artifactDirectoryNameConstant, artifactFileNameConstant)
}

// Write persists the artifact beneath the repository root.
func Write(repositoryRoot string, artifact Artifact) error {
	encodedArtifact, encodeError := yaml.Marshal(artifact)
	if encodeError != nil {
		return fmt.Errorf(artifactEncodeErrorTemplateConstant, encodeError)
	}

	artifactPath := ArtifactPath(repositoryRoot)
	if mkdirError := os.MkdirAll(filepath.Dir(artifactPath), artifactDirPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(artifactDirErrorTemplateConstant, filepath.Dir(artifactPath), mkdirError)
	}
	if writeError := os.WriteFile(artifactPath, encodedArtifact, artifactFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(artifactWriteErrorTemplateConstant, artifactPath, writeError)
	}
	return nil
}

// Read loads the artifact from beneath the repository root. A missing file is
// reported as ErrArtifactMissing so callers can fall back to explicit values.
func Read(repositoryRoot string) (Artifact, error) {
	artifactPath := ArtifactPath(repositoryRoot)

	encodedArtifact, readError := os.ReadFile(artifactPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return Artifact{}, ErrArtifactMissing
		}
		return Artifact{}, fmt.Errorf(artifactReadErrorTemplateConstant, artifactPath, readError)
	}

	artifact := Artifact{}
	if decodeError := yaml.Unmarshal(encodedArtifact, &artifact); decodeError != nil {
		return Artifact{}, fmt.Errorf(artifactDecodeErrorTemplateConstant, artifactPath, decodeError)
	}
	return artifact, nil
}
