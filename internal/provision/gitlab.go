package provision

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/repomirror/internal/gitlabapi"
	"github.com/temirov/repomirror/internal/migration"
)

const (
	gitlabServiceMissingMessageConstant      = "gitlab project service not configured"
	projectSearchErrorTemplateConstant       = "unable to search for project %q: %w"
	projectCreationErrorTemplateConstant     = "unable to create project %q: %w"
	logMessageGitLabProjectExistsConstant    = "Destination project already exists"
	logMessageGitLabProjectCreatedConstant   = "Created destination project"
	logMessageGitLabConflictResolvedConstant = "Recovered existing project after creation conflict"
	logFieldProjectPathConstant              = "project_path"
	logFieldDestinationNamespaceIDConstant   = "namespace_id"
	conflictReconciledFieldNameConstant      = "conflict_reconciled"
)

var errGitLabServiceMissing = errors.New(gitlabServiceMissingMessageConstant)

// GitLabProjectService is the narrow GitLab surface the provisioner requires.
type GitLabProjectService interface {
	FindProjectByPath(executionContext context.Context, projectPath string, namespaceID int) (gitlabapi.Project, bool, error)
	CreateProject(executionContext context.Context, specification gitlabapi.CreateProjectSpec) (gitlabapi.Project, error)
}

// GitLabProvisioner ensures GitLab destination projects exist.
type GitLabProvisioner struct {
	logger   *zap.Logger
	projects GitLabProjectService
}

// NewGitLabProvisioner constructs a GitLabProvisioner.
func NewGitLabProvisioner(logger *zap.Logger, projects GitLabProjectService) (*GitLabProvisioner, error) {
	if projects == nil {
		return nil, errGitLabServiceMissing
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GitLabProvisioner{logger: logger, projects: projects}, nil
}

// EnsureRepository searches for the project before creating it. A
// conflict-class creation failure triggers a reconciling re-search so a run
// interrupted after creation remains idempotent; when the re-search also
// misses, the original conflict error surfaces.
func (provisioner *GitLabProvisioner) EnsureRepository(executionContext context.Context, request migration.ProvisionRequest) (migration.ProvisionOutcome, error) {
	namespaceID := request.Namespace.GroupID

	existingProject, found, searchError := provisioner.projects.FindProjectByPath(executionContext, request.Name, namespaceID)
	if searchError != nil {
		return migration.ProvisionOutcome{}, fmt.Errorf(projectSearchErrorTemplateConstant, request.Name, searchError)
	}
	if found {
		provisioner.logger.Debug(logMessageGitLabProjectExistsConstant,
			zap.String(logFieldProjectPathConstant, request.Name),
			zap.Int(logFieldDestinationNamespaceIDConstant, namespaceID),
		)
		return migration.ProvisionOutcome{Created: false, CloneURL: existingProject.HTTPURLToRepo}, nil
	}

	createdProject, creationError := provisioner.projects.CreateProject(executionContext, gitlabapi.CreateProjectSpec{
		Name:        request.Name,
		Path:        request.Name,
		Description: destinationDescription(request),
		NamespaceID: namespaceID,
	})
	if creationError == nil {
		provisioner.logger.Info(logMessageGitLabProjectCreatedConstant,
			zap.String(logFieldProjectPathConstant, request.Name),
			zap.Int(logFieldDestinationNamespaceIDConstant, namespaceID),
		)
		return migration.ProvisionOutcome{Created: true, CloneURL: createdProject.HTTPURLToRepo}, nil
	}

	if !gitlabapi.IsConflict(creationError) {
		return migration.ProvisionOutcome{}, fmt.Errorf(projectCreationErrorTemplateConstant, request.Name, creationError)
	}

	reconciledProject, reconciledFound, reconcileError := provisioner.projects.FindProjectByPath(executionContext, request.Name, namespaceID)
	if reconcileError != nil || !reconciledFound {
		return migration.ProvisionOutcome{}, fmt.Errorf(projectCreationErrorTemplateConstant, request.Name, creationError)
	}

	provisioner.logger.Info(logMessageGitLabConflictResolvedConstant,
		zap.String(logFieldProjectPathConstant, request.Name),
		zap.Bool(conflictReconciledFieldNameConstant, true),
	)
	return migration.ProvisionOutcome{Created: false, CloneURL: reconciledProject.HTTPURLToRepo}, nil
}
