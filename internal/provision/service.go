package provision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lynxkit/forge/internal/appconfig"
	"github.com/lynxkit/forge/internal/descriptor"
	"github.com/lynxkit/forge/internal/gitrepo"
	"github.com/lynxkit/forge/internal/repohost"
	"github.com/lynxkit/forge/internal/substitution"
)

const (
	repoHostMissingMessageConstant          = "repository host not configured"
	repositoryManagerMissingMessageConstant = "repository manager not configured"
	engineMissingMessageConstant            = "substitution engine not configured"
	rendererMissingMessageConstant          = "template renderer not configured"
	workspacePatternConstant                = "forge-provision-*"
	defaultRemoteNameConstant               = "origin"
	commitMessageTemplateConstant           = "Initialize %s from template %s"
	workspaceCreationErrorTemplateConstant  = "unable to create ephemeral workspace: %w"
	cloneURLParseErrorTemplateConstant      = "unable to parse clone URL %s: %w"
	cloneURLMismatchTemplateConstant        = "clone URL %s does not reference %s/%s"
	cloneErrorTemplateConstant              = "unable to clone %s: %w"
	branchResolveErrorTemplateConstant      = "unable to resolve the branch to push: %w"
	scaffoldRenderErrorTemplateConstant     = "scaffold rendering failed: %w"
	templateRenderErrorTemplateConstant     = "template rendering failed: %w"
	artifactWriteErrorTemplateConstant      = "unable to persist app configuration: %w"
	stageErrorTemplateConstant              = "unable to stage rendered content: %w"
	commitErrorTemplateConstant             = "unable to commit rendered content: %w"
	pushErrorTemplateConstant               = "push failed and the remote repository %s remains without content; delete it manually before re-running: %w"
	workspaceCleanupWarningMessageConstant  = "Unable to remove ephemeral workspace"
	workspacePathLogFieldConstant           = "workspace_path"
	repositoryNameLogFieldConstant          = "repository_name"
	cloneURLLogFieldConstant                = "clone_url"
	branchLogFieldConstant                  = "branch"
	provisioningCompletedMessageConstant    = "Provisioning completed"
)

// Service construction errors.
var (
	errRepoHostMissing          = errors.New(repoHostMissingMessageConstant)
	errRepositoryManagerMissing = errors.New(repositoryManagerMissingMessageConstant)
	errEngineMissing            = errors.New(engineMissingMessageConstant)
	errRendererMissing          = errors.New(rendererMissingMessageConstant)
)

// GitOperations exposes the git interactions required by provisioning.
type GitOperations interface {
	CloneRepository(executionContext context.Context, remoteURL string, targetPath string) error
	StageAll(executionContext context.Context, repositoryPath string) error
	Commit(executionContext context.Context, repositoryPath string, commitMessage string) error
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	Push(executionContext context.Context, repositoryPath string, remoteName string) error
}

// TreeRenderer renders a source tree into a target tree applying a ruleset.
type TreeRenderer interface {
	RenderTree(executionContext context.Context, sourceRoot string, targetRoot string, ruleset substitution.Ruleset) error
}

// StoreRenderer renders the template store into a target tree.
type StoreRenderer interface {
	RenderStore(executionContext context.Context, storeRoot string, targetRoot string, ruleset substitution.Ruleset) error
}

// WorkspaceProvider supplies an ephemeral directory owned by a single run.
type WorkspaceProvider func() (string, error)

// ServiceDependencies describes required collaborators for provisioning.
type ServiceDependencies struct {
	Logger            *zap.Logger
	RepoHost          repohost.RepoHost
	RepositoryManager GitOperations
	Engine            TreeRenderer
	Renderer          StoreRenderer
	WorkspaceProvider WorkspaceProvider
}

// ProvisionOptions configures a provisioning run.
type ProvisionOptions struct {
	Descriptor        descriptor.CustomerDescriptor
	ScaffoldRoot      string
	TemplateStoreRoot string
	PrivateRepository bool
	RemoteName        string
}

// ProvisionResult captures the observable outcomes of a provisioning run.
type ProvisionResult struct {
	RepositoryName string
	CloneURL       string
	Branch         string
	CommitMessage  string
}

// Service turns a customer descriptor into a fully configured, pushed repository.
type Service struct {
	logger            *zap.Logger
	repoHost          repohost.RepoHost
	repositoryManager GitOperations
	engine            TreeRenderer
	renderer          StoreRenderer
	workspaceProvider WorkspaceProvider
}

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.RepoHost == nil {
		return nil, errRepoHostMissing
	}
	if dependencies.RepositoryManager == nil {
		return nil, errRepositoryManagerMissing
	}
	if dependencies.Engine == nil {
		return nil, errEngineMissing
	}
	if dependencies.Renderer == nil {
		return nil, errRendererMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	workspaceProvider := dependencies.WorkspaceProvider
	if workspaceProvider == nil {
		workspaceProvider = defaultWorkspaceProvider
	}

	return &Service{
		logger:            logger,
		repoHost:          dependencies.RepoHost,
		repositoryManager: dependencies.RepositoryManager,
		engine:            dependencies.Engine,
		renderer:          dependencies.Renderer,
		workspaceProvider: workspaceProvider,
	}, nil
}

// Execute performs the provisioning sequence. Descriptor validation happens
// before any side effect; the ephemeral workspace is removed on every path.
func (service *Service) Execute(executionContext context.Context, options ProvisionOptions) (ProvisionResult, error) {
	normalizedDescriptor := options.Descriptor.Normalize()
	if validationError := normalizedDescriptor.Validate(); validationError != nil {
		return ProvisionResult{}, validationError
	}

	repositorySpec := repohost.RepositorySpec{
		Owner:   normalizedDescriptor.Organization,
		Name:    normalizedDescriptor.RepositoryName(),
		Private: options.PrivateRepository,
	}

	if createError := service.repoHost.CreateRepository(executionContext, repositorySpec); createError != nil {
		return ProvisionResult{}, createError
	}

	cloneURL, cloneURLError := service.repoHost.CloneURL(repositorySpec)
	if cloneURLError != nil {
		return ProvisionResult{}, cloneURLError
	}

	// The host backends derive the URL; make sure it actually addresses the
	// repository that was just created before anything is pushed at it.
	parsedRemote, remoteParseError := gitrepo.ParseRemoteURL(cloneURL)
	if remoteParseError != nil {
		return ProvisionResult{}, fmt.Errorf(cloneURLParseErrorTemplateConstant, cloneURL, remoteParseError)
	}
	if parsedRemote.Owner != repositorySpec.Owner || parsedRemote.Repository != repositorySpec.Name {
		return ProvisionResult{}, fmt.Errorf(cloneURLMismatchTemplateConstant, cloneURL, repositorySpec.Owner, repositorySpec.Name)
	}

	workspacePath, workspaceError := service.workspaceProvider()
	if workspaceError != nil {
		return ProvisionResult{}, fmt.Errorf(workspaceCreationErrorTemplateConstant, workspaceError)
	}
	defer service.cleanupWorkspace(workspacePath)

	repositoryPath := filepath.Join(workspacePath, repositorySpec.Name)
	if cloneError := service.repositoryManager.CloneRepository(executionContext, cloneURL, repositoryPath); cloneError != nil {
		return ProvisionResult{}, fmt.Errorf(cloneErrorTemplateConstant, cloneURL, cloneError)
	}

	legacyRuleset := substitution.LegacyRuleset(normalizedDescriptor.AppName, normalizedDescriptor.BundleIdentifier)
	if renderError := service.engine.RenderTree(executionContext, options.ScaffoldRoot, repositoryPath, legacyRuleset); renderError != nil {
		return ProvisionResult{}, fmt.Errorf(scaffoldRenderErrorTemplateConstant, renderError)
	}

	placeholderRuleset := substitution.PlaceholderRuleset(
		normalizedDescriptor.Organization,
		normalizedDescriptor.AppName,
		normalizedDescriptor.BundleIdentifier,
		normalizedDescriptor.TemplateRef,
	)
	if renderError := service.renderer.RenderStore(executionContext, options.TemplateStoreRoot, repositoryPath, placeholderRuleset); renderError != nil {
		return ProvisionResult{}, fmt.Errorf(templateRenderErrorTemplateConstant, renderError)
	}

	configArtifact := appconfig.Artifact{
		AppName:          normalizedDescriptor.AppName,
		BundleIdentifier: normalizedDescriptor.BundleIdentifier,
	}
	if artifactError := appconfig.Write(repositoryPath, configArtifact); artifactError != nil {
		return ProvisionResult{}, fmt.Errorf(artifactWriteErrorTemplateConstant, artifactError)
	}

	commitMessage := fmt.Sprintf(commitMessageTemplateConstant, normalizedDescriptor.AppName, normalizedDescriptor.TemplateRef)
	if stageError := service.repositoryManager.StageAll(executionContext, repositoryPath); stageError != nil {
		return ProvisionResult{}, fmt.Errorf(stageErrorTemplateConstant, stageError)
	}
	if commitError := service.repositoryManager.Commit(executionContext, repositoryPath, commitMessage); commitError != nil {
		return ProvisionResult{}, fmt.Errorf(commitErrorTemplateConstant, commitError)
	}

	branchName, branchError := service.repositoryManager.GetCurrentBranch(executionContext, repositoryPath)
	if branchError != nil {
		return ProvisionResult{}, fmt.Errorf(branchResolveErrorTemplateConstant, branchError)
	}

	remoteName := options.RemoteName
	if len(remoteName) == 0 {
		remoteName = defaultRemoteNameConstant
	}
	if pushError := service.repositoryManager.Push(executionContext, repositoryPath, remoteName); pushError != nil {
		return ProvisionResult{}, fmt.Errorf(pushErrorTemplateConstant, repositorySpec.Name, pushError)
	}

	service.logger.Info(provisioningCompletedMessageConstant,
		zap.String(repositoryNameLogFieldConstant, repositorySpec.Name),
		zap.String(cloneURLLogFieldConstant, cloneURL),
		zap.String(branchLogFieldConstant, branchName),
	)

	return ProvisionResult{
		RepositoryName: repositorySpec.Name,
		CloneURL:       cloneURL,
		Branch:         branchName,
		CommitMessage:  commitMessage,
	}, nil
}

func (service *Service) cleanupWorkspace(workspacePath string) {
	if removalError := os.RemoveAll(workspacePath); removalError != nil {
		service.logger.Warn(workspaceCleanupWarningMessageConstant,
			zap.String(workspacePathLogFieldConstant, workspacePath),
			zap.Error(removalError),
		)
	}
}

func defaultWorkspaceProvider() (string, error) {
	return os.MkdirTemp("", workspacePatternConstant)
}
