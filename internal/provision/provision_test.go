package provision_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/repomirror/internal/githubapi"
	"github.com/temirov/repomirror/internal/gitlabapi"
	"github.com/temirov/repomirror/internal/migration"
	"github.com/temirov/repomirror/internal/namespace"
	"github.com/temirov/repomirror/internal/provision"
)

const (
	testRepositoryNameConstant      = "billing-service"
	testSourceIdentifierConstant    = "acme-corp/billing-Service"
	testExistingCloneURLConstant    = "https://github.com/acme/billing-service.git"
	testCreatedCloneURLConstant     = "https://github.com/acme/billing-service-new.git"
	testGitLabCloneURLConstant      = "https://gitlab.example.com/mirrors/billing-service.git"
	testNamespaceGroupIDConstant    = 55
	testDefaultDescriptionConstant  = "Migrated from acme-corp/billing-Service"
	testExplicitDescriptionConstant = "Payments backend"
)

type recordingGitHubRepositoryService struct {
	existingRepository *githubapi.Repository
	lookupError        error
	createError        error
	getCallCount       int
	createCallCount    int
	createdSpecs       []githubapi.CreateRepositorySpec
}

func (service *recordingGitHubRepositoryService) GetRepository(context.Context, string) (githubapi.Repository, bool, error) {
	service.getCallCount++
	if service.lookupError != nil {
		return githubapi.Repository{}, false, service.lookupError
	}
	if service.existingRepository != nil {
		return *service.existingRepository, true, nil
	}
	return githubapi.Repository{}, false, nil
}

func (service *recordingGitHubRepositoryService) CreateRepository(_ context.Context, specification githubapi.CreateRepositorySpec) (githubapi.Repository, error) {
	service.createCallCount++
	service.createdSpecs = append(service.createdSpecs, specification)
	if service.createError != nil {
		return githubapi.Repository{}, service.createError
	}
	return githubapi.Repository{Name: specification.Name, CloneURL: testCreatedCloneURLConstant}, nil
}

type recordingGitLabProjectService struct {
	foundProjects   []gitlabapi.Project
	findCallCount   int
	createCallCount int
	createError     error
	findError       error
}

func (service *recordingGitLabProjectService) FindProjectByPath(context.Context, string, int) (gitlabapi.Project, bool, error) {
	service.findCallCount++
	if service.findError != nil {
		return gitlabapi.Project{}, false, service.findError
	}
	callIndex := service.findCallCount - 1
	if callIndex < len(service.foundProjects) {
		foundProject := service.foundProjects[callIndex]
		if foundProject.ID > 0 {
			return foundProject, true, nil
		}
	}
	return gitlabapi.Project{}, false, nil
}

func (service *recordingGitLabProjectService) CreateProject(_ context.Context, specification gitlabapi.CreateProjectSpec) (gitlabapi.Project, error) {
	service.createCallCount++
	if service.createError != nil {
		return gitlabapi.Project{}, service.createError
	}
	return gitlabapi.Project{ID: 11, Path: specification.Path, HTTPURLToRepo: testGitLabCloneURLConstant}, nil
}

func provisionRequest() migration.ProvisionRequest {
	return migration.ProvisionRequest{
		Name:             testRepositoryNameConstant,
		SourceIdentifier: testSourceIdentifierConstant,
		Namespace:        namespace.Handle{GroupID: testNamespaceGroupIDConstant},
	}
}

func TestGitHubEnsureRepositoryReusesExistingWithoutCreation(testInstance *testing.T) {
	repositoryService := &recordingGitHubRepositoryService{
		existingRepository: &githubapi.Repository{Name: testRepositoryNameConstant, CloneURL: testExistingCloneURLConstant},
	}
	provisioner, creationError := provision.NewGitHubProvisioner(zap.NewNop(), repositoryService)
	require.NoError(testInstance, creationError)

	outcome, ensureError := provisioner.EnsureRepository(context.Background(), provisionRequest())
	require.NoError(testInstance, ensureError)
	require.False(testInstance, outcome.Created)
	require.Equal(testInstance, testExistingCloneURLConstant, outcome.CloneURL)
	require.Zero(testInstance, repositoryService.createCallCount)
}

func TestGitHubEnsureRepositoryIsIdempotentAcrossRuns(testInstance *testing.T) {
	repositoryService := &recordingGitHubRepositoryService{}
	provisioner, creationError := provision.NewGitHubProvisioner(zap.NewNop(), repositoryService)
	require.NoError(testInstance, creationError)

	firstOutcome, firstError := provisioner.EnsureRepository(context.Background(), provisionRequest())
	require.NoError(testInstance, firstError)
	require.True(testInstance, firstOutcome.Created)
	require.Equal(testInstance, 1, repositoryService.createCallCount)

	repositoryService.existingRepository = &githubapi.Repository{Name: testRepositoryNameConstant, CloneURL: testCreatedCloneURLConstant}

	secondOutcome, secondError := provisioner.EnsureRepository(context.Background(), provisionRequest())
	require.NoError(testInstance, secondError)
	require.False(testInstance, secondOutcome.Created)
	require.Equal(testInstance, 1, repositoryService.createCallCount)
}

func TestGitHubEnsureRepositoryAppliesDefaultDescription(testInstance *testing.T) {
	testCases := []struct {
		name                string
		sourceDescription   string
		expectedDescription string
	}{
		{name: "default_description", sourceDescription: "", expectedDescription: testDefaultDescriptionConstant},
		{name: "explicit_description", sourceDescription: testExplicitDescriptionConstant, expectedDescription: testExplicitDescriptionConstant},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repositoryService := &recordingGitHubRepositoryService{}
			provisioner, creationError := provision.NewGitHubProvisioner(zap.NewNop(), repositoryService)
			require.NoError(testInstance, creationError)

			request := provisionRequest()
			request.Description = testCase.sourceDescription
			_, ensureError := provisioner.EnsureRepository(context.Background(), request)
			require.NoError(testInstance, ensureError)
			require.Len(testInstance, repositoryService.createdSpecs, 1)
			require.Equal(testInstance, testCase.expectedDescription, repositoryService.createdSpecs[0].Description)
		})
	}
}

func TestGitHubEnsureRepositoryPropagatesLookupFailures(testInstance *testing.T) {
	lookupFailure := githubapi.OperationError{Operation: githubapi.OperationName("GetRepository"), StatusCode: http.StatusForbidden, Cause: errors.New("token scope missing")}
	repositoryService := &recordingGitHubRepositoryService{lookupError: lookupFailure}
	provisioner, creationError := provision.NewGitHubProvisioner(zap.NewNop(), repositoryService)
	require.NoError(testInstance, creationError)

	_, ensureError := provisioner.EnsureRepository(context.Background(), provisionRequest())
	require.Error(testInstance, ensureError)
	require.ErrorAs(testInstance, ensureError, &githubapi.OperationError{})
	require.Zero(testInstance, repositoryService.createCallCount)
}

func TestGitLabEnsureRepositoryReusesExistingProject(testInstance *testing.T) {
	projectService := &recordingGitLabProjectService{
		foundProjects: []gitlabapi.Project{{ID: 9, Path: testRepositoryNameConstant, HTTPURLToRepo: testGitLabCloneURLConstant}},
	}
	provisioner, creationError := provision.NewGitLabProvisioner(zap.NewNop(), projectService)
	require.NoError(testInstance, creationError)

	outcome, ensureError := provisioner.EnsureRepository(context.Background(), provisionRequest())
	require.NoError(testInstance, ensureError)
	require.False(testInstance, outcome.Created)
	require.Equal(testInstance, testGitLabCloneURLConstant, outcome.CloneURL)
	require.Zero(testInstance, projectService.createCallCount)
}

func TestGitLabEnsureRepositoryReconcilesCreationConflict(testInstance *testing.T) {
	conflictFailure := gitlabapi.OperationError{Operation: gitlabapi.OperationName("CreateProject"), StatusCode: http.StatusConflict, Cause: errors.New("has already been taken")}
	projectService := &recordingGitLabProjectService{
		foundProjects: []gitlabapi.Project{
			{},
			{ID: 17, Path: testRepositoryNameConstant, HTTPURLToRepo: testGitLabCloneURLConstant},
		},
		createError: conflictFailure,
	}
	provisioner, creationError := provision.NewGitLabProvisioner(zap.NewNop(), projectService)
	require.NoError(testInstance, creationError)

	outcome, ensureError := provisioner.EnsureRepository(context.Background(), provisionRequest())
	require.NoError(testInstance, ensureError)
	require.False(testInstance, outcome.Created)
	require.Equal(testInstance, testGitLabCloneURLConstant, outcome.CloneURL)
	require.Equal(testInstance, 1, projectService.createCallCount)
	require.Equal(testInstance, 2, projectService.findCallCount)
}

func TestGitLabEnsureRepositorySurfacesConflictWhenReconcileMisses(testInstance *testing.T) {
	conflictFailure := gitlabapi.OperationError{Operation: gitlabapi.OperationName("CreateProject"), StatusCode: http.StatusConflict, Cause: errors.New("has already been taken")}
	projectService := &recordingGitLabProjectService{createError: conflictFailure}
	provisioner, creationError := provision.NewGitLabProvisioner(zap.NewNop(), projectService)
	require.NoError(testInstance, creationError)

	_, ensureError := provisioner.EnsureRepository(context.Background(), provisionRequest())
	require.Error(testInstance, ensureError)
	require.ErrorIs(testInstance, ensureError, conflictFailure)
	require.Equal(testInstance, 2, projectService.findCallCount)
}

func TestGitLabEnsureRepositoryPropagatesNonConflictCreationFailures(testInstance *testing.T) {
	creationFailure := gitlabapi.OperationError{Operation: gitlabapi.OperationName("CreateProject"), StatusCode: http.StatusInternalServerError, Cause: errors.New("server error")}
	projectService := &recordingGitLabProjectService{createError: creationFailure}
	provisioner, provisionerError := provision.NewGitLabProvisioner(zap.NewNop(), projectService)
	require.NoError(testInstance, provisionerError)

	_, ensureError := provisioner.EnsureRepository(context.Background(), provisionRequest())
	require.Error(testInstance, ensureError)
	require.ErrorIs(testInstance, ensureError, creationFailure)
	require.Equal(testInstance, 1, projectService.findCallCount)
}
