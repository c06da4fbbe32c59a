package migration

import (
	"context"

	"github.com/temirov/repomirror/internal/githubapi"
	"github.com/temirov/repomirror/internal/gitlabapi"
	"github.com/temirov/repomirror/internal/naming"
	"github.com/temirov/repomirror/internal/namespace"
)

// SourceRepository is the platform-neutral descriptor of one repository to migrate.
type SourceRepository struct {
	// Identifier is the namespace-qualified identity (path_with_namespace or full_name).
	Identifier string
	// Name is the repository's own short name.
	Name string
	// NamespacePath is the source namespace portion of the identifier, empty when none.
	NamespacePath string
	// OwnerLogin is the source owner login (GitHub sources only).
	OwnerLogin string
	// CloneURL is the HTTP(S) clone URL without credentials.
	CloneURL string
	// Description is the source repository description, possibly empty.
	Description string
}

// NamingDescriptor converts the repository into the naming package's input.
func (repository SourceRepository) NamingDescriptor() naming.Descriptor {
	return naming.Descriptor{Name: repository.Name, NamespacePath: repository.NamespacePath}
}

// SourceLister enumerates the repositories a run migrates.
type SourceLister interface {
	ListSourceRepositories(executionContext context.Context) ([]SourceRepository, error)
}

// ProvisionRequest describes the destination repository to ensure.
type ProvisionRequest struct {
	Name             string
	Description      string
	SourceIdentifier string
	Namespace        namespace.Handle
}

// ProvisionOutcome reports whether the destination repository was created and
// where it can be pushed to.
type ProvisionOutcome struct {
	Created  bool
	CloneURL string
}

// RepositoryProvisioner idempotently ensures a destination repository exists.
type RepositoryProvisioner interface {
	EnsureRepository(executionContext context.Context, request ProvisionRequest) (ProvisionOutcome, error)
}

// NamespaceResolver determines the destination namespace for a source owner.
type NamespaceResolver interface {
	ResolveNamespace(executionContext context.Context, ownerLogin string) (namespace.Handle, error)
}

// MirrorStore manages local bare mirror repositories.
type MirrorStore interface {
	EnsureUpToDate(executionContext context.Context, localMirrorPath string, sourceURL string) error
	PushMirror(executionContext context.Context, localMirrorPath string, remoteName string, destinationURL string, transferLFS bool) error
}

// GitLabProjectLister is the listing surface of the GitLab client.
type GitLabProjectLister interface {
	ListGroupProjects(executionContext context.Context, groupIdentifier string, includeArchived bool) ([]gitlabapi.Project, error)
	ListMemberProjects(executionContext context.Context, includeArchived bool) ([]gitlabapi.Project, error)
}

// GitHubRepositoryLister is the listing surface of the GitHub client.
type GitHubRepositoryLister interface {
	ListOwnerRepositories(executionContext context.Context) ([]githubapi.Repository, error)
}
