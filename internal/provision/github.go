package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repomirror/internal/githubapi"
	"github.com/temirov/repomirror/internal/migration"
)

const (
	githubServiceMissingMessageConstant       = "github repository service not configured"
	defaultDescriptionTemplateConstant        = "Migrated from %s"
	repositoryLookupErrorTemplateConstant     = "unable to read repository %q: %w"
	repositoryCreationErrorTemplateConstant   = "unable to create repository %q: %w"
	logMessageGitHubRepositoryExistsConstant  = "Destination repository already exists"
	logMessageGitHubRepositoryCreatedConstant = "Created destination repository"
	logFieldRepositoryNameConstant            = "repository_name"
)

var errGitHubServiceMissing = errors.New(githubServiceMissingMessageConstant)

// GitHubRepositoryService is the narrow GitHub surface the provisioner requires.
type GitHubRepositoryService interface {
	GetRepository(executionContext context.Context, repositoryName string) (githubapi.Repository, bool, error)
	CreateRepository(executionContext context.Context, specification githubapi.CreateRepositorySpec) (githubapi.Repository, error)
}

// GitHubProvisioner ensures GitHub destination repositories exist.
type GitHubProvisioner struct {
	logger       *zap.Logger
	repositories GitHubRepositoryService
}

// NewGitHubProvisioner constructs a GitHubProvisioner.
func NewGitHubProvisioner(logger *zap.Logger, repositories GitHubRepositoryService) (*GitHubProvisioner, error) {
	if repositories == nil {
		return nil, errGitHubServiceMissing
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GitHubProvisioner{logger: logger, repositories: repositories}, nil
}

// EnsureRepository reads the repository first and only creates it when the
// read reports a clean not-found. Existing repositories are reused unchanged.
func (provisioner *GitHubProvisioner) EnsureRepository(executionContext context.Context, request migration.ProvisionRequest) (migration.ProvisionOutcome, error) {
	existingRepository, found, lookupError := provisioner.repositories.GetRepository(executionContext, request.Name)
	if lookupError != nil {
		return migration.ProvisionOutcome{}, fmt.Errorf(repositoryLookupErrorTemplateConstant, request.Name, lookupError)
	}
	if found {
		provisioner.logger.Debug(logMessageGitHubRepositoryExistsConstant, zap.String(logFieldRepositoryNameConstant, request.Name))
		return migration.ProvisionOutcome{Created: false, CloneURL: existingRepository.CloneURL}, nil
	}

	createdRepository, creationError := provisioner.repositories.CreateRepository(executionContext, githubapi.CreateRepositorySpec{
		Name:        request.Name,
		Description: destinationDescription(request),
	})
	if creationError != nil {
		return migration.ProvisionOutcome{}, fmt.Errorf(repositoryCreationErrorTemplateConstant, request.Name, creationError)
	}

	provisioner.logger.Info(logMessageGitHubRepositoryCreatedConstant, zap.String(logFieldRepositoryNameConstant, request.Name))
	return migration.ProvisionOutcome{Created: true, CloneURL: createdRepository.CloneURL}, nil
}

// destinationDescription falls back to a provenance note when the source
// repository carries no description.
func destinationDescription(request migration.ProvisionRequest) string {
	if len(strings.TrimSpace(request.Description)) > 0 {
		return request.Description
	}
	return fmt.Sprintf(defaultDescriptionTemplateConstant, request.SourceIdentifier)
}
