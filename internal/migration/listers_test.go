package migration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repomirror/internal/githubapi"
	"github.com/temirov/repomirror/internal/gitlabapi"
	"github.com/temirov/repomirror/internal/migration"
)

type stubGitLabProjectLister struct {
	groupProjects        []gitlabapi.Project
	memberProjects       []gitlabapi.Project
	groupCallIdentifiers []string
	memberCallCount      int
}

func (lister *stubGitLabProjectLister) ListGroupProjects(_ context.Context, groupIdentifier string, _ bool) ([]gitlabapi.Project, error) {
	lister.groupCallIdentifiers = append(lister.groupCallIdentifiers, groupIdentifier)
	return lister.groupProjects, nil
}

func (lister *stubGitLabProjectLister) ListMemberProjects(_ context.Context, _ bool) ([]gitlabapi.Project, error) {
	lister.memberCallCount++
	return lister.memberProjects, nil
}

type stubGitHubRepositoryLister struct {
	repositories []githubapi.Repository
}

func (lister *stubGitHubRepositoryLister) ListOwnerRepositories(context.Context) ([]githubapi.Repository, error) {
	return lister.repositories, nil
}

func TestGitLabSourceListerScopesToConfiguredGroup(testInstance *testing.T) {
	projectLister := &stubGitLabProjectLister{
		groupProjects: []gitlabapi.Project{
			{Path: "alpha", PathWithNamespace: "platform/team/alpha", HTTPURLToRepo: "https://gitlab.example.com/platform/team/alpha.git", Description: "service"},
		},
	}

	sourceLister, creationError := migration.NewGitLabSourceLister(projectLister, "platform", false)
	require.NoError(testInstance, creationError)

	listedSources, listError := sourceLister.ListSourceRepositories(context.Background())
	require.NoError(testInstance, listError)

	require.Equal(testInstance, []string{"platform"}, projectLister.groupCallIdentifiers)
	require.Zero(testInstance, projectLister.memberCallCount)
	require.Len(testInstance, listedSources, 1)
	require.Equal(testInstance, "platform/team/alpha", listedSources[0].Identifier)
	require.Equal(testInstance, "alpha", listedSources[0].Name)
	require.Equal(testInstance, "platform/team", listedSources[0].NamespacePath)
	require.Equal(testInstance, "service", listedSources[0].Description)
}

func TestGitLabSourceListerFallsBackToMembershipAndFiltersArchived(testInstance *testing.T) {
	projectLister := &stubGitLabProjectLister{
		memberProjects: []gitlabapi.Project{
			{Path: "active", PathWithNamespace: "team/active", HTTPURLToRepo: "https://gitlab.example.com/team/active.git"},
			{Path: "dormant", PathWithNamespace: "team/dormant", HTTPURLToRepo: "https://gitlab.example.com/team/dormant.git", Archived: true},
		},
	}

	sourceLister, creationError := migration.NewGitLabSourceLister(projectLister, "  ", false)
	require.NoError(testInstance, creationError)

	listedSources, listError := sourceLister.ListSourceRepositories(context.Background())
	require.NoError(testInstance, listError)

	require.Equal(testInstance, 1, projectLister.memberCallCount)
	require.Empty(testInstance, projectLister.groupCallIdentifiers)
	require.Len(testInstance, listedSources, 1)
	require.Equal(testInstance, "team/active", listedSources[0].Identifier)
}

func TestGitHubSourceListerMapsRepositoryFields(testInstance *testing.T) {
	repositoryLister := &stubGitHubRepositoryLister{
		repositories: []githubapi.Repository{
			{Name: "widgets", FullName: "acme/widgets", OwnerLogin: "acme", CloneURL: "https://github.com/acme/widgets.git", Description: "parts"},
		},
	}

	sourceLister, creationError := migration.NewGitHubSourceLister(repositoryLister)
	require.NoError(testInstance, creationError)

	listedSources, listError := sourceLister.ListSourceRepositories(context.Background())
	require.NoError(testInstance, listError)

	require.Len(testInstance, listedSources, 1)
	require.Equal(testInstance, "acme/widgets", listedSources[0].Identifier)
	require.Equal(testInstance, "widgets", listedSources[0].Name)
	require.Equal(testInstance, "acme", listedSources[0].NamespacePath)
	require.Equal(testInstance, "acme", listedSources[0].OwnerLogin)
	require.Equal(testInstance, "https://github.com/acme/widgets.git", listedSources[0].CloneURL)
}

func TestSourceListerConstructorsRejectNilClients(testInstance *testing.T) {
	_, gitlabError := migration.NewGitLabSourceLister(nil, "", false)
	require.Error(testInstance, gitlabError)

	_, githubError := migration.NewGitHubSourceLister(nil)
	require.Error(testInstance, githubError)
}
