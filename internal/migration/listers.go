package migration

import (
	"context"
	"errors"
	"strings"

	"github.com/temirov/repomirror/internal/gitlabapi"
)

const (
	gitlabListerMissingMessageConstant = "gitlab project lister not configured"
	githubListerMissingMessageConstant = "github repository lister not configured"
	identifierSeparatorConstant        = "/"
)

var (
	errGitLabListerMissing = errors.New(gitlabListerMissingMessageConstant)
	errGitHubListerMissing = errors.New(githubListerMissingMessageConstant)
)

// GitLabSourceLister adapts the GitLab client into a SourceLister. When a
// group identifier is configured the listing is scoped to that group and its
// subgroups; otherwise it covers every project the token is a member of.
type GitLabSourceLister struct {
	projects        GitLabProjectLister
	groupIdentifier string
	includeArchived bool
}

// NewGitLabSourceLister constructs a GitLabSourceLister.
func NewGitLabSourceLister(projects GitLabProjectLister, groupIdentifier string, includeArchived bool) (*GitLabSourceLister, error) {
	if projects == nil {
		return nil, errGitLabListerMissing
	}
	return &GitLabSourceLister{
		projects:        projects,
		groupIdentifier: strings.TrimSpace(groupIdentifier),
		includeArchived: includeArchived,
	}, nil
}

// ListSourceRepositories enumerates GitLab projects as migration sources.
func (lister *GitLabSourceLister) ListSourceRepositories(executionContext context.Context) ([]SourceRepository, error) {
	var listedProjects []gitlabapi.Project
	var listError error

	if len(lister.groupIdentifier) > 0 {
		listedProjects, listError = lister.projects.ListGroupProjects(executionContext, lister.groupIdentifier, lister.includeArchived)
	} else {
		listedProjects, listError = lister.projects.ListMemberProjects(executionContext, lister.includeArchived)
	}
	if listError != nil {
		return nil, listError
	}

	sourceRepositories := make([]SourceRepository, 0, len(listedProjects))
	for _, projectEntry := range listedProjects {
		if projectEntry.Archived && !lister.includeArchived {
			continue
		}
		sourceRepositories = append(sourceRepositories, SourceRepository{
			Identifier:    projectEntry.PathWithNamespace,
			Name:          projectEntry.Path,
			NamespacePath: namespaceOfIdentifier(projectEntry.PathWithNamespace),
			CloneURL:      projectEntry.HTTPURLToRepo,
			Description:   projectEntry.Description,
		})
	}

	return sourceRepositories, nil
}

// GitHubSourceLister adapts the GitHub client into a SourceLister.
type GitHubSourceLister struct {
	repositories GitHubRepositoryLister
}

// NewGitHubSourceLister constructs a GitHubSourceLister.
func NewGitHubSourceLister(repositories GitHubRepositoryLister) (*GitHubSourceLister, error) {
	if repositories == nil {
		return nil, errGitHubListerMissing
	}
	return &GitHubSourceLister{repositories: repositories}, nil
}

// ListSourceRepositories enumerates GitHub repositories as migration sources.
func (lister *GitHubSourceLister) ListSourceRepositories(executionContext context.Context) ([]SourceRepository, error) {
	listedRepositories, listError := lister.repositories.ListOwnerRepositories(executionContext)
	if listError != nil {
		return nil, listError
	}

	sourceRepositories := make([]SourceRepository, 0, len(listedRepositories))
	for _, repositoryEntry := range listedRepositories {
		sourceRepositories = append(sourceRepositories, SourceRepository{
			Identifier:    repositoryEntry.FullName,
			Name:          repositoryEntry.Name,
			NamespacePath: repositoryEntry.OwnerLogin,
			OwnerLogin:    repositoryEntry.OwnerLogin,
			CloneURL:      repositoryEntry.CloneURL,
			Description:   repositoryEntry.Description,
		})
	}

	return sourceRepositories, nil
}

// namespaceOfIdentifier strips the trailing repository segment from a
// namespace-qualified identifier.
func namespaceOfIdentifier(identifier string) string {
	lastSeparatorIndex := strings.LastIndex(identifier, identifierSeparatorConstant)
	if lastSeparatorIndex <= 0 {
		return ""
	}
	return identifier[:lastSeparatorIndex]
}
