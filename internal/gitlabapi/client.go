package gitlabapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

const (
	accessTokenRequiredMessageConstant       = "gitlab access token must be set"
	baseURLRequiredMessageConstant           = "gitlab base url must be set"
	clientCreationErrorTemplateConstant      = "unable to create gitlab client: %w"
	operationErrorTemplateConstant           = "%s failed: %s"
	operationErrorWithStatusTemplateConstant = "%s failed with status %d: %s"
	listPageSizeConstant                     = 100
	firstPageNumberConstant                  = 1

	listGroupProjectsOperationNameConstant  = OperationName("ListGroupProjects")
	listMemberProjectsOperationNameConstant = OperationName("ListMemberProjects")
	listSubgroupsOperationNameConstant      = OperationName("ListSubgroups")
	createSubgroupOperationNameConstant     = OperationName("CreateSubgroup")
	findProjectOperationNameConstant        = OperationName("FindProjectByPath")
	createProjectOperationNameConstant      = OperationName("CreateProject")
)

// OperationName identifies a GitLab API workflow supported by the client.
type OperationName string

// Project carries the project fields consumed by migration workflows.
type Project struct {
	ID                int
	Path              string
	PathWithNamespace string
	HTTPURLToRepo     string
	Description       string
	Archived          bool
	NamespaceID       int
}

// Group carries the namespace fields consumed by migration workflows.
type Group struct {
	ID       int
	Name     string
	Path     string
	FullPath string
}

// CreateProjectSpec describes a project to create.
type CreateProjectSpec struct {
	Name        string
	Path        string
	Description string
	NamespaceID int
}

// OperationError wraps GitLab API failures with the failing operation and HTTP status.
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

// IsConflict reports whether the error represents a duplicate-creation outcome.
// GitLab signals "has already been taken" races with 409 or 400 responses.
func IsConflict(candidateError error) bool {
	var operationError OperationError
	if !errors.As(candidateError, &operationError) {
		return false
	}
	return operationError.StatusCode == http.StatusConflict || operationError.StatusCode == http.StatusBadRequest
}

// Client performs typed GitLab REST operations.
type Client struct {
	restClient *gitlab.Client
}

// NewClient constructs a Client for the supplied instance URL and private token.
func NewClient(baseURL string, accessToken string) (*Client, error) {
	if len(strings.TrimSpace(baseURL)) == 0 {
		return nil, errors.New(baseURLRequiredMessageConstant)
	}
	if len(strings.TrimSpace(accessToken)) == 0 {
		return nil, errors.New(accessTokenRequiredMessageConstant)
	}

	restClient, creationError := gitlab.NewClient(accessToken, gitlab.WithBaseURL(baseURL))
	if creationError != nil {
		return nil, fmt.Errorf(clientCreationErrorTemplateConstant, creationError)
	}

	return &Client{restClient: restClient}, nil
}

// ListGroupProjects enumerates every project in the group and its subgroups,
// blocking until all pages are retrieved.
func (client *Client) ListGroupProjects(executionContext context.Context, groupIdentifier string, includeArchived bool) ([]Project, error) {
	listOptions := &gitlab.ListGroupProjectsOptions{
		ListOptions:      gitlab.ListOptions{Page: firstPageNumberConstant, PerPage: listPageSizeConstant},
		IncludeSubGroups: gitlab.Ptr(true),
	}
	if !includeArchived {
		listOptions.Archived = gitlab.Ptr(false)
	}

	var collectedProjects []Project
	for {
		projectPage, pageResponse, listError := client.restClient.Groups.ListGroupProjects(groupIdentifier, listOptions, gitlab.WithContext(executionContext))
		if listError != nil {
			return nil, wrapOperationError(listGroupProjectsOperationNameConstant, pageResponse, listError)
		}
		for _, projectEntry := range projectPage {
			collectedProjects = append(collectedProjects, convertProject(projectEntry))
		}
		if pageResponse.NextPage == 0 {
			break
		}
		listOptions.Page = pageResponse.NextPage
	}

	return collectedProjects, nil
}

// ListMemberProjects enumerates every project the token holder is a member of.
func (client *Client) ListMemberProjects(executionContext context.Context, includeArchived bool) ([]Project, error) {
	listOptions := &gitlab.ListProjectsOptions{
		ListOptions: gitlab.ListOptions{Page: firstPageNumberConstant, PerPage: listPageSizeConstant},
		Membership:  gitlab.Ptr(true),
	}
	if !includeArchived {
		listOptions.Archived = gitlab.Ptr(false)
	}

	var collectedProjects []Project
	for {
		projectPage, pageResponse, listError := client.restClient.Projects.ListProjects(listOptions, gitlab.WithContext(executionContext))
		if listError != nil {
			return nil, wrapOperationError(listMemberProjectsOperationNameConstant, pageResponse, listError)
		}
		for _, projectEntry := range projectPage {
			collectedProjects = append(collectedProjects, convertProject(projectEntry))
		}
		if pageResponse.NextPage == 0 {
			break
		}
		listOptions.Page = pageResponse.NextPage
	}

	return collectedProjects, nil
}

// ListSubgroups enumerates the direct subgroups of the supplied parent group.
func (client *Client) ListSubgroups(executionContext context.Context, parentGroupID int) ([]Group, error) {
	listOptions := &gitlab.ListSubGroupsOptions{
		ListOptions: gitlab.ListOptions{Page: firstPageNumberConstant, PerPage: listPageSizeConstant},
	}

	var collectedGroups []Group
	for {
		groupPage, pageResponse, listError := client.restClient.Groups.ListSubGroups(parentGroupID, listOptions, gitlab.WithContext(executionContext))
		if listError != nil {
			return nil, wrapOperationError(listSubgroupsOperationNameConstant, pageResponse, listError)
		}
		for _, groupEntry := range groupPage {
			collectedGroups = append(collectedGroups, convertGroup(groupEntry))
		}
		if pageResponse.NextPage == 0 {
			break
		}
		listOptions.Page = pageResponse.NextPage
	}

	return collectedGroups, nil
}

// CreateSubgroup creates a private subgroup beneath the supplied parent group.
func (client *Client) CreateSubgroup(executionContext context.Context, parentGroupID int, groupName string, groupPath string) (Group, error) {
	createOptions := &gitlab.CreateGroupOptions{
		Name:       gitlab.Ptr(groupName),
		Path:       gitlab.Ptr(groupPath),
		ParentID:   gitlab.Ptr(parentGroupID),
		Visibility: gitlab.Ptr(gitlab.PrivateVisibility),
	}

	createdGroup, createResponse, createError := client.restClient.Groups.CreateGroup(createOptions, gitlab.WithContext(executionContext))
	if createError != nil {
		return Group{}, wrapOperationError(createSubgroupOperationNameConstant, createResponse, createError)
	}

	return convertGroup(createdGroup), nil
}

// FindProjectByPath searches for a project whose path exactly matches the
// supplied value. When namespaceID is positive the match is further restricted
// to projects in that namespace.
func (client *Client) FindProjectByPath(executionContext context.Context, projectPath string, namespaceID int) (Project, bool, error) {
	listOptions := &gitlab.ListProjectsOptions{
		ListOptions: gitlab.ListOptions{Page: firstPageNumberConstant, PerPage: listPageSizeConstant},
		Search:      gitlab.Ptr(projectPath),
		Membership:  gitlab.Ptr(true),
	}

	for {
		projectPage, pageResponse, listError := client.restClient.Projects.ListProjects(listOptions, gitlab.WithContext(executionContext))
		if listError != nil {
			return Project{}, false, wrapOperationError(findProjectOperationNameConstant, pageResponse, listError)
		}
		for _, projectEntry := range projectPage {
			if projectEntry.Path != projectPath {
				continue
			}
			if namespaceID > 0 && (projectEntry.Namespace == nil || projectEntry.Namespace.ID != namespaceID) {
				continue
			}
			return convertProject(projectEntry), true, nil
		}
		if pageResponse.NextPage == 0 {
			break
		}
		listOptions.Page = pageResponse.NextPage
	}

	return Project{}, false, nil
}

// CreateProject creates a private project with collaboration features disabled.
func (client *Client) CreateProject(executionContext context.Context, specification CreateProjectSpec) (Project, error) {
	createOptions := &gitlab.CreateProjectOptions{
		Name:              gitlab.Ptr(specification.Name),
		Path:              gitlab.Ptr(specification.Path),
		Visibility:        gitlab.Ptr(gitlab.PrivateVisibility),
		IssuesAccessLevel: gitlab.Ptr(gitlab.DisabledAccessControl),
		WikiAccessLevel:   gitlab.Ptr(gitlab.DisabledAccessControl),
	}
	if len(strings.TrimSpace(specification.Description)) > 0 {
		createOptions.Description = gitlab.Ptr(specification.Description)
	}
	if specification.NamespaceID > 0 {
		createOptions.NamespaceID = gitlab.Ptr(specification.NamespaceID)
	}

	createdProject, createResponse, createError := client.restClient.Projects.CreateProject(createOptions, gitlab.WithContext(executionContext))
	if createError != nil {
		return Project{}, wrapOperationError(createProjectOperationNameConstant, createResponse, createError)
	}

	return convertProject(createdProject), nil
}

func convertProject(projectEntry *gitlab.Project) Project {
	convertedProject := Project{
		ID:                projectEntry.ID,
		Path:              projectEntry.Path,
		PathWithNamespace: projectEntry.PathWithNamespace,
		HTTPURLToRepo:     projectEntry.HTTPURLToRepo,
		Description:       projectEntry.Description,
		Archived:          projectEntry.Archived,
	}
	if projectEntry.Namespace != nil {
		convertedProject.NamespaceID = projectEntry.Namespace.ID
	}
	return convertedProject
}

func convertGroup(groupEntry *gitlab.Group) Group {
	return Group{
		ID:       groupEntry.ID,
		Name:     groupEntry.Name,
		Path:     groupEntry.Path,
		FullPath: groupEntry.FullPath,
	}
}

func wrapOperationError(operation OperationName, apiResponse *gitlab.Response, cause error) error {
	statusCode := 0
	if apiResponse != nil {
		statusCode = apiResponse.StatusCode
	}
	return OperationError{Operation: operation, StatusCode: statusCode, Cause: cause}
}
