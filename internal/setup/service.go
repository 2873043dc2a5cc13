package setup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lynxkit/forge/internal/appconfig"
	"github.com/lynxkit/forge/internal/descriptor"
	"github.com/lynxkit/forge/internal/substitution"
)

const (
	engineMissingMessageConstant         = "substitution engine not configured"
	gitOperationsMissingMessageConstant  = "git operations not configured"
	workingTreeMissingMessageConstant    = "working tree path not provided"
	renameErrorTemplateConstant          = "in-place rename failed: %w"
	teamRewriteErrorTemplateConstant     = "team identifier rewrite failed: %w"
	artifactWriteErrorTemplateConstant   = "unable to persist app configuration: %w"
	stageErrorTemplateConstant           = "unable to stage setup changes: %w"
	commitErrorTemplateConstant          = "unable to commit setup changes: %w"
	workTreeProbeErrorTemplateConstant   = "unable to probe for a git work tree: %w"
	workTreeStatusErrorTemplateConstant  = "unable to inspect the working tree: %w"
	dirtyWorkTreeMessageConstant         = "working tree has uncommitted changes; commit or stash them before running setup"
	commitMessageTemplateConstant        = "Set up %s (%s)"
	commitSkippedMessageConstant         = "Git commit skipped"
	setupCompletedMessageConstant        = "In-place setup completed"
	workingTreeLogFieldConstant          = "working_tree"
	appNameLogFieldConstant              = "app_name"
	skipReasonLogFieldConstant           = "reason"
	skipReasonFlagValueConstant          = "requested"
	skipReasonNotRepositoryValueConstant = "not a git repository"
)

// Service construction errors.
var (
	errEngineMissing        = errors.New(engineMissingMessageConstant)
	errGitOperationsMissing = errors.New(gitOperationsMissingMessageConstant)
	errWorkingTreeMissing   = errors.New(workingTreeMissingMessageConstant)
)

// ErrDirtyWorkTree indicates the tree has uncommitted changes that an
// in-place rewrite would entangle with the personalization commit.
var ErrDirtyWorkTree = errors.New(dirtyWorkTreeMessageConstant)

// TreeRewriter applies a ruleset to a tree in place.
type TreeRewriter interface {
	RenameTree(executionContext context.Context, root string, ruleset substitution.Ruleset) error
}

// GitOperations exposes the git interactions required by in-place setup.
type GitOperations interface {
	IsInsideWorkTree(executionContext context.Context, repositoryPath string) (bool, error)
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	StageAll(executionContext context.Context, repositoryPath string) error
	Commit(executionContext context.Context, repositoryPath string, commitMessage string) error
}

// ServiceDependencies describes required collaborators for in-place setup.
type ServiceDependencies struct {
	Logger        *zap.Logger
	Engine        TreeRewriter
	GitOperations GitOperations
}

// SetupOptions configures an in-place setup run over an existing tree.
type SetupOptions struct {
	WorkingTree       string
	AppName           string
	BundleIdentifier  string
	IOSTeamIdentifier string
	SkipGit           bool
}

// Service personalizes an instantiated scaffold in place.
type Service struct {
	logger        *zap.Logger
	engine        TreeRewriter
	gitOperations GitOperations
}

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Engine == nil {
		return nil, errEngineMissing
	}
	if dependencies.GitOperations == nil {
		return nil, errGitOperationsMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		logger:        logger,
		engine:        dependencies.Engine,
		gitOperations: dependencies.GitOperations,
	}, nil
}

// Execute validates the supplied identity, rewrites the working tree in place,
// persists the configuration artifact, and commits the result unless git
// integration is skipped or the tree is not a repository. A repository with
// uncommitted changes is refused before any file is touched.
func (service *Service) Execute(executionContext context.Context, options SetupOptions) error {
	if len(strings.TrimSpace(options.WorkingTree)) == 0 {
		return errWorkingTreeMissing
	}
	if validationError := descriptor.ValidateAppNameAndBundle(options.AppName, options.BundleIdentifier); validationError != nil {
		return validationError
	}

	commitEligible, guardError := service.guardWorkingTree(executionContext, options)
	if guardError != nil {
		return guardError
	}

	appName := strings.TrimSpace(options.AppName)
	bundleIdentifier := strings.TrimSpace(options.BundleIdentifier)

	legacyRuleset := substitution.LegacyRuleset(appName, bundleIdentifier)
	if renameError := service.engine.RenameTree(executionContext, options.WorkingTree, legacyRuleset); renameError != nil {
		return fmt.Errorf(renameErrorTemplateConstant, renameError)
	}

	teamIdentifier := strings.TrimSpace(options.IOSTeamIdentifier)
	if len(teamIdentifier) > 0 {
		teamRuleset := substitution.TeamRuleset(teamIdentifier)
		if rewriteError := service.engine.RenameTree(executionContext, options.WorkingTree, teamRuleset); rewriteError != nil {
			return fmt.Errorf(teamRewriteErrorTemplateConstant, rewriteError)
		}
	}

	configArtifact := appconfig.Artifact{AppName: appName, BundleIdentifier: bundleIdentifier}
	if artifactError := appconfig.Write(options.WorkingTree, configArtifact); artifactError != nil {
		return fmt.Errorf(artifactWriteErrorTemplateConstant, artifactError)
	}

	if commitEligible {
		if commitError := service.commitChanges(executionContext, options.WorkingTree, appName, bundleIdentifier); commitError != nil {
			return commitError
		}
	}

	service.logger.Info(setupCompletedMessageConstant,
		zap.String(workingTreeLogFieldConstant, options.WorkingTree),
		zap.String(appNameLogFieldConstant, appName),
	)
	return nil
}

// guardWorkingTree decides whether setup may commit afterwards. The tree is
// inspected before any mutation so a dirty repository is refused intact.
func (service *Service) guardWorkingTree(executionContext context.Context, options SetupOptions) (bool, error) {
	if options.SkipGit {
		service.logger.Info(commitSkippedMessageConstant, zap.String(skipReasonLogFieldConstant, skipReasonFlagValueConstant))
		return false, nil
	}

	insideWorkTree, probeError := service.gitOperations.IsInsideWorkTree(executionContext, options.WorkingTree)
	if probeError != nil {
		return false, fmt.Errorf(workTreeProbeErrorTemplateConstant, probeError)
	}
	if !insideWorkTree {
		service.logger.Info(commitSkippedMessageConstant, zap.String(skipReasonLogFieldConstant, skipReasonNotRepositoryValueConstant))
		return false, nil
	}

	cleanWorktree, statusError := service.gitOperations.CheckCleanWorktree(executionContext, options.WorkingTree)
	if statusError != nil {
		return false, fmt.Errorf(workTreeStatusErrorTemplateConstant, statusError)
	}
	if !cleanWorktree {
		return false, ErrDirtyWorkTree
	}

	return true, nil
}

func (service *Service) commitChanges(executionContext context.Context, workingTree string, appName string, bundleIdentifier string) error {
	if stageError := service.gitOperations.StageAll(executionContext, workingTree); stageError != nil {
		return fmt.Errorf(stageErrorTemplateConstant, stageError)
	}

	commitMessage := fmt.Sprintf(commitMessageTemplateConstant, appName, bundleIdentifier)
	if commitError := service.gitOperations.Commit(executionContext, workingTree, commitMessage); commitError != nil {
		return fmt.Errorf(commitErrorTemplateConstant, commitError)
	}
	return nil
}
