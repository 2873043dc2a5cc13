package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lynxkit/forge/internal/execshell"
)

const (
	repoSubcommandConstant                  = "repo"
	createSubcommandConstant                = "create"
	viewSubcommandConstant                  = "view"
	jsonFlagConstant                        = "--json"
	privateFlagConstant                     = "--private"
	publicFlagConstant                      = "--public"
	ownerRepositoryTemplateConstant         = "%s/%s"
	repositoryFieldNameConstant             = "repository"
	ownerFieldNameConstant                  = "owner"
	requiredValueMessageConstant            = "value required"
	executorNotConfiguredMessageConstant    = "github cli executor not configured"
	repositoryExistsMessageConstant         = "repository name already taken"
	repoViewJSONFieldsConstant              = "defaultBranchRef,nameWithOwner,sshUrl"
	nameAlreadyExistsMarkerConstant         = "Name already exists"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	createRepositoryOperationNameConstant   = OperationName("CreateRepository")
	repositoryMetadataOperationNameConstant = OperationName("ResolveRepoMetadata")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// RepositoryMetadata contains key details resolved from GitHub.
type RepositoryMetadata struct {
	NameWithOwner string
	SSHURL        string
	DefaultBranch string
}

// RepositorySpec describes a repository to create.
type RepositorySpec struct {
	Owner   string
	Name    string
	Private bool
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor GitHubCommandExecutor
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrRepositoryExists indicates the requested repository name is already taken.
	ErrRepositoryExists = errors.New(repositoryExistsMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// CreateRepository creates a remote repository using gh repo create. A name
// conflict on the remote is surfaced as ErrRepositoryExists without retry.
func (client *Client) CreateRepository(executionContext context.Context, specification RepositorySpec) error {
	trimmedOwner := strings.TrimSpace(specification.Owner)
	if len(trimmedOwner) == 0 {
		return InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedName := strings.TrimSpace(specification.Name)
	if len(trimmedName) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	visibilityFlag := publicFlagConstant
	if specification.Private {
		visibilityFlag = privateFlagConstant
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			repoSubcommandConstant,
			createSubcommandConstant,
			fmt.Sprintf(ownerRepositoryTemplateConstant, trimmedOwner, trimmedName),
			visibilityFlag,
		},
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		failedCommand := execshell.CommandFailedError{}
		if errors.As(executionError, &failedCommand) && strings.Contains(failedCommand.Result.StandardError, nameAlreadyExistsMarkerConstant) {
			return fmt.Errorf("%w: %s/%s", ErrRepositoryExists, trimmedOwner, trimmedName)
		}
		return OperationError{Operation: createRepositoryOperationNameConstant, Cause: executionError}
	}
	return nil
}

// ResolveRepoMetadata retrieves canonical metadata for a repository using gh repo view.
func (client *Client) ResolveRepoMetadata(executionContext context.Context, repository string) (RepositoryMetadata, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return RepositoryMetadata{}, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			repoSubcommandConstant,
			viewSubcommandConstant,
			repositoryIdentifier,
			jsonFlagConstant,
			repoViewJSONFieldsConstant,
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return RepositoryMetadata{}, OperationError{Operation: repositoryMetadataOperationNameConstant, Cause: executionError}
	}

	var response struct {
		NameWithOwner    string `json:"nameWithOwner"`
		SSHURL           string `json:"sshUrl"`
		DefaultBranchRef struct {
			Name string `json:"name"`
		} `json:"defaultBranchRef"`
	}
	if decodeError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodeError != nil {
		return RepositoryMetadata{}, ResponseDecodingError{Operation: repositoryMetadataOperationNameConstant, Cause: decodeError}
	}

	return RepositoryMetadata{
		NameWithOwner: response.NameWithOwner,
		SSHURL:        response.SSHURL,
		DefaultBranch: response.DefaultBranchRef.Name,
	}, nil
}
