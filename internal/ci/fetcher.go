package ci

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lynxkit/forge/internal/execshell"
)

const (
	curlFailSilentlyFlagConstant         = "-f"
	curlFollowRedirectsFlagConstant      = "-L"
	curlOutputFlagConstant               = "-o"
	curlExecutorMissingMessageConstant   = "curl executor not configured"
	bundleDirectoryErrorTemplateConstant = "unable to create bundle directory %s: %w"
	bundleDownloadErrorTemplateConstant  = "bundle download from %s failed: %w"
	bundleDownloadedMessageConstant      = "Lynx bundle downloaded"
	bundleURLLogFieldConstant            = "bundle_url"
	bundleDestinationLogFieldConstant    = "bundle_path"
)

// ErrCurlExecutorNotConfigured indicates the fetcher was constructed without an executor.
var ErrCurlExecutorNotConfigured = errors.New(curlExecutorMissingMessageConstant)

// CurlExecutor runs curl.
type CurlExecutor interface {
	ExecuteCurl(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// BundleFetcher downloads the lynx bundle referenced by a trigger into the
// fixed per-platform path inside the repository.
type BundleFetcher struct {
	logger   *zap.Logger
	executor CurlExecutor
}

// NewBundleFetcher constructs a BundleFetcher.
func NewBundleFetcher(logger *zap.Logger, executor CurlExecutor) (*BundleFetcher, error) {
	if executor == nil {
		return nil, ErrCurlExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BundleFetcher{logger: logger, executor: executor}, nil
}

// Fetch downloads bundleURL into the platform's bundle path beneath the
// repository root. Download failures are terminal; there are no retries.
func (fetcher *BundleFetcher) Fetch(executionContext context.Context, repositoryRoot string, platform Platform, bundleURL string) (string, error) {
	destinationPath := filepath.Join(repositoryRoot, filepath.FromSlash(BundlePathFor(platform)))
	if mkdirError := os.MkdirAll(filepath.Dir(destinationPath), 0o755); mkdirError != nil {
		return "", fmt.Errorf(bundleDirectoryErrorTemplateConstant, filepath.Dir(destinationPath), mkdirError)
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			curlFailSilentlyFlagConstant,
			curlFollowRedirectsFlagConstant,
			curlOutputFlagConstant,
			destinationPath,
			bundleURL,
		},
	}
	if _, executionError := fetcher.executor.ExecuteCurl(executionContext, commandDetails); executionError != nil {
		return "", fmt.Errorf(bundleDownloadErrorTemplateConstant, bundleURL, executionError)
	}

	fetcher.logger.Info(bundleDownloadedMessageConstant,
		zap.String(bundleURLLogFieldConstant, bundleURL),
		zap.String(bundleDestinationLogFieldConstant, destinationPath),
	)
	return destinationPath, nil
}
