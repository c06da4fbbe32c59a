package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

const (
	accessTokenRequiredMessageConstant       = "github access token must be set"
	ownerRequiredMessageConstant             = "github owner must be set"
	operationErrorTemplateConstant           = "%s failed: %s"
	operationErrorWithStatusTemplateConstant = "%s failed with status %d: %s"
	listPageSizeConstant                     = 100

	listRepositoriesOperationNameConstant = OperationName("ListOwnerRepositories")
	getRepositoryOperationNameConstant    = OperationName("GetRepository")
	createRepositoryOperationNameConstant = OperationName("CreateRepository")
)

// OperationName identifies a GitHub API workflow supported by the client.
type OperationName string

// OwnerType distinguishes user-owned from organization-owned destinations.
type OwnerType string

// Supported owner types.
const (
	OwnerTypeUser         OwnerType = OwnerType("user")
	OwnerTypeOrganization OwnerType = OwnerType("org")
)

// Repository carries the repository fields consumed by migration workflows.
type Repository struct {
	Name        string
	FullName    string
	CloneURL    string
	Description string
	OwnerLogin  string
	Archived    bool
}

// CreateRepositorySpec describes a repository to create.
type CreateRepositorySpec struct {
	Name        string
	Description string
}

// OperationError wraps GitHub API failures with the failing operation and HTTP status.
type OperationError struct {
	Operation  OperationName
	StatusCode int
	Cause      error
}

// Error describes the operation failure including the HTTP status when known.
func (operationError OperationError) Error() string {
	if operationError.StatusCode > 0 {
		return fmt.Sprintf(operationErrorWithStatusTemplateConstant, operationError.Operation, operationError.StatusCode, operationError.Cause)
	}
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying API error.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// Client performs typed GitHub REST operations scoped to one owner.
type Client struct {
	restClient *gh.Client
	ownerLogin string
	ownerType  OwnerType
}

// NewClient constructs a Client authenticating with the supplied token.
func NewClient(accessToken string, ownerLogin string, ownerType OwnerType) (*Client, error) {
	if len(strings.TrimSpace(accessToken)) == 0 {
		return nil, errors.New(accessTokenRequiredMessageConstant)
	}
	if len(strings.TrimSpace(ownerLogin)) == 0 {
		return nil, errors.New(ownerRequiredMessageConstant)
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	authenticatedHTTPClient := oauth2.NewClient(context.Background(), tokenSource)

	return &Client{
		restClient: gh.NewClient(authenticatedHTTPClient),
		ownerLogin: ownerLogin,
		ownerType:  ownerType,
	}, nil
}

// Owner returns the configured owner login.
func (client *Client) Owner() string {
	return client.ownerLogin
}

// ListOwnerRepositories enumerates the repositories owned by the configured
// owner, blocking until all pages are retrieved. Repositories merely visible
// to the token but owned elsewhere are filtered out.
func (client *Client) ListOwnerRepositories(executionContext context.Context) ([]Repository, error) {
	var collectedRepositories []Repository
	pageNumber := 1

	for {
		repositoryPage, pageResponse, listError := client.listRepositoriesPage(executionContext, pageNumber)
		if listError != nil {
			return nil, wrapOperationError(listRepositoriesOperationNameConstant, pageResponse, listError)
		}
		for _, repositoryEntry := range repositoryPage {
			if !strings.EqualFold(repositoryEntry.GetOwner().GetLogin(), client.ownerLogin) {
				continue
			}
			collectedRepositories = append(collectedRepositories, convertRepository(repositoryEntry))
		}
		if pageResponse.NextPage == 0 {
			break
		}
		pageNumber = pageResponse.NextPage
	}

	return collectedRepositories, nil
}

func (client *Client) listRepositoriesPage(executionContext context.Context, pageNumber int) ([]*gh.Repository, *gh.Response, error) {
	pagination := gh.ListOptions{Page: pageNumber, PerPage: listPageSizeConstant}
	if client.ownerType == OwnerTypeOrganization {
		listOptions := &gh.RepositoryListByOrgOptions{ListOptions: pagination}
		return client.restClient.Repositories.ListByOrg(executionContext, client.ownerLogin, listOptions)
	}
	listOptions := &gh.RepositoryListByAuthenticatedUserOptions{ListOptions: pagination}
	return client.restClient.Repositories.ListByAuthenticatedUser(executionContext, listOptions)
}

// GetRepository reads the repository with the supplied name beneath the
// configured owner. The boolean result distinguishes a clean 404 from other
// read failures, which are returned as errors.
func (client *Client) GetRepository(executionContext context.Context, repositoryName string) (Repository, bool, error) {
	repositoryEntry, apiResponse, getError := client.restClient.Repositories.Get(executionContext, client.ownerLogin, repositoryName)
	if getError != nil {
		if apiResponse != nil && apiResponse.StatusCode == http.StatusNotFound {
			return Repository{}, false, nil
		}
		return Repository{}, false, wrapOperationError(getRepositoryOperationNameConstant, apiResponse, getError)
	}
	return convertRepository(repositoryEntry), true, nil
}

// CreateRepository creates a private repository with issues, projects, and the
// wiki disabled. Organization owners receive the repository in the
// organization; user owners receive it in the authenticated account.
func (client *Client) CreateRepository(executionContext context.Context, specification CreateRepositorySpec) (Repository, error) {
	organizationTarget := ""
	if client.ownerType == OwnerTypeOrganization {
		organizationTarget = client.ownerLogin
	}

	repositoryDefinition := &gh.Repository{
		Name:        gh.Ptr(specification.Name),
		Description: gh.Ptr(specification.Description),
		Private:     gh.Ptr(true),
		HasIssues:   gh.Ptr(false),
		HasProjects: gh.Ptr(false),
		HasWiki:     gh.Ptr(false),
	}

	createdRepository, apiResponse, createError := client.restClient.Repositories.Create(executionContext, organizationTarget, repositoryDefinition)
	if createError != nil {
		return Repository{}, wrapOperationError(createRepositoryOperationNameConstant, apiResponse, createError)
	}

	return convertRepository(createdRepository), nil
}

func convertRepository(repositoryEntry *gh.Repository) Repository {
	return Repository{
		Name:        repositoryEntry.GetName(),
		FullName:    repositoryEntry.GetFullName(),
		CloneURL:    repositoryEntry.GetCloneURL(),
		Description: repositoryEntry.GetDescription(),
		OwnerLogin:  repositoryEntry.GetOwner().GetLogin(),
		Archived:    repositoryEntry.GetArchived(),
	}
}

func wrapOperationError(operation OperationName, apiResponse *gh.Response, cause error) error {
	statusCode := 0
	if apiResponse != nil {
		statusCode = apiResponse.StatusCode
	}
	return OperationError{Operation: operation, StatusCode: statusCode, Cause: cause}
}
