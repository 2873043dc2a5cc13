package repohost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gogithub "github.com/google/go-github/v82/github"
	"golang.org/x/oauth2"

	"github.com/lynxkit/forge/internal/gitrepo"
)

const (
	apiClientMissingMessageConstant  = "github api client not configured"
	apiTokenMissingMessageConstant   = "github api token not configured"
	apiCreateErrorTemplateConstant   = "unable to create repository through the GitHub API: %w"
	apiLookupErrorTemplateConstant   = "unable to check repository availability: %w"
	nameExistsResponseMarkerConstant = "name already exists"
)

// API host sentinel errors.
var (
	// ErrAPIClientNotConfigured indicates the API host was constructed without a client.
	ErrAPIClientNotConfigured = errors.New(apiClientMissingMessageConstant)
	// ErrAPITokenNotConfigured indicates no token was available for the API host.
	ErrAPITokenNotConfigured = errors.New(apiTokenMissingMessageConstant)
)

// APIHost provisions repositories through the GitHub REST API.
type APIHost struct {
	client        *gogithub.Client
	cloneProtocol gitrepo.RemoteProtocol
}

// NewAPIHost constructs an APIHost around an existing API client.
func NewAPIHost(apiClient *gogithub.Client, cloneProtocol gitrepo.RemoteProtocol) (*APIHost, error) {
	if apiClient == nil {
		return nil, ErrAPIClientNotConfigured
	}
	return &APIHost{client: apiClient, cloneProtocol: cloneProtocol}, nil
}

// NewTokenAPIHost constructs an APIHost authenticated by an OAuth2 token.
func NewTokenAPIHost(executionContext context.Context, accessToken string, cloneProtocol gitrepo.RemoteProtocol) (*APIHost, error) {
	trimmedToken := strings.TrimSpace(accessToken)
	if len(trimmedToken) == 0 {
		return nil, ErrAPITokenNotConfigured
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: trimmedToken})
	authenticatedClient := oauth2.NewClient(executionContext, tokenSource)
	return NewAPIHost(gogithub.NewClient(authenticatedClient), cloneProtocol)
}

// CreateRepository creates the remote repository, first checking whether the
// name is already taken so the conflict surfaces before any creation attempt.
func (host *APIHost) CreateRepository(executionContext context.Context, specification RepositorySpec) error {
	_, lookupResponse, lookupError := host.client.Repositories.Get(executionContext, specification.Owner, specification.Name)
	if lookupError == nil {
		return fmt.Errorf(repositoryConflictTemplateConstant, ErrRepositoryExists, specification.Owner, specification.Name)
	}
	if lookupResponse == nil || lookupResponse.StatusCode != http.StatusNotFound {
		return fmt.Errorf(apiLookupErrorTemplateConstant, lookupError)
	}

	repositoryPayload := &gogithub.Repository{
		Name:    gogithub.Ptr(specification.Name),
		Private: gogithub.Ptr(specification.Private),
	}

	_, _, createError := host.client.Repositories.Create(executionContext, specification.Owner, repositoryPayload)
	if createError != nil {
		if isNameConflictResponse(createError) {
			return fmt.Errorf(repositoryConflictTemplateConstant, ErrRepositoryExists, specification.Owner, specification.Name)
		}
		return fmt.Errorf(apiCreateErrorTemplateConstant, createError)
	}
	return nil
}

// CloneURL derives the clone URL for the provisioned repository.
func (host *APIHost) CloneURL(specification RepositorySpec) (string, error) {
	return formatCloneURL(host.cloneProtocol, specification)
}

func isNameConflictResponse(candidateError error) bool {
	errorResponse := &gogithub.ErrorResponse{}
	if !errors.As(candidateError, &errorResponse) {
		return false
	}
	if errorResponse.Response != nil && errorResponse.Response.StatusCode != http.StatusUnprocessableEntity {
		return false
	}
	for _, responseError := range errorResponse.Errors {
		if strings.Contains(strings.ToLower(responseError.Message), nameExistsResponseMarkerConstant) {
			return true
		}
	}
	return false
}
