package migration

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/repomirror/internal/mirror"
	"github.com/temirov/repomirror/internal/naming"
	"github.com/temirov/repomirror/internal/namespace"
)

const (
	sourceListerMissingMessageConstant        = "source lister not configured"
	provisionerMissingMessageConstant         = "repository provisioner not configured"
	mirrorStoreMissingMessageConstant         = "mirror store not configured"
	sourceListingErrorTemplateConstant        = "unable to list source repositories: %w"
	emptyDestinationNameErrorTemplateConstant = "source repository %q resolves to an empty destination name"
	namespaceResolutionErrorTemplateConstant  = "namespace resolution failed: %w"
	provisioningErrorTemplateConstant         = "destination provisioning failed: %w"
	mirrorUpdateErrorTemplateConstant         = "mirror update failed: %w"
	mirrorPushErrorTemplateConstant           = "mirror push failed: %w"
	migrationFailuresErrorTemplateConstant    = "%d of %d repository migrations failed"
	logMessageRunStartedConstant              = "Starting repository migration run"
	logMessageMigratingRepositoryConstant     = "Migrating repository"
	logMessageDryRunSkipConstant              = "Dry run: skipping provisioning and mirror transfer"
	logMessageRepositoryMigratedConstant      = "Repository migrated"
	logMessageRepositoryFailedConstant        = "Repository migration failed"
	logMessageRunSummaryConstant              = "Migration run complete"
	logFieldDirectionConstant                 = "direction"
	logFieldRepositoryConstant                = "repository"
	logFieldDestinationNameConstant           = "destination_name"
	logFieldDestinationCreatedConstant        = "destination_created"
	logFieldRepositoryCountConstant           = "repository_count"
	logFieldSucceededCountConstant            = "succeeded"
	logFieldFailedCountConstant               = "failed"
)

var (
	errSourceListerMissing = errors.New(sourceListerMissingMessageConstant)
	errProvisionerMissing  = errors.New(provisionerMissingMessageConstant)
	errMirrorStoreMissing  = errors.New(mirrorStoreMissingMessageConstant)
)

// MigrationFailuresError signals that one or more repositories failed after
// every item was attempted. It maps to a non-zero process exit.
type MigrationFailuresError struct {
	FailedCount    int
	AttemptedCount int
}

// Error describes the aggregate failure.
func (failuresError MigrationFailuresError) Error() string {
	return fmt.Sprintf(migrationFailuresErrorTemplateConstant, failuresError.FailedCount, failuresError.AttemptedCount)
}

// ServiceDependencies describes the collaborators the orchestrator requires.
// NamespaceResolver may be nil for directions without namespace resolution.
type ServiceDependencies struct {
	Logger            *zap.Logger
	SourceLister      SourceLister
	NamespaceResolver NamespaceResolver
	Provisioner       RepositoryProvisioner
	MirrorStore       MirrorStore
}

// RunOptions configures one migration run.
type RunOptions struct {
	Direction              Direction
	MirrorRootDirectory    string
	NamingPolicy           naming.Policy
	DryRun                 bool
	TransferLFS            bool
	SourceCredentials      Credentials
	DestinationCredentials Credentials
}

// RunSummary aggregates per-repository outcomes for one run.
type RunSummary struct {
	AttemptedCount int
	SucceededCount int
	FailedCount    int
}

// Service sequentially migrates every listed source repository, isolating
// per-repository failures so one broken item never aborts the batch.
type Service struct {
	logger            *zap.Logger
	sourceLister      SourceLister
	namespaceResolver NamespaceResolver
	provisioner       RepositoryProvisioner
	mirrorStore       MirrorStore
}

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.SourceLister == nil {
		return nil, errSourceListerMissing
	}
	if dependencies.Provisioner == nil {
		return nil, errProvisionerMissing
	}
	if dependencies.MirrorStore == nil {
		return nil, errMirrorStoreMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		logger:            logger,
		sourceLister:      dependencies.SourceLister,
		namespaceResolver: dependencies.NamespaceResolver,
		provisioner:       dependencies.Provisioner,
		mirrorStore:       dependencies.MirrorStore,
	}, nil
}

// Execute runs the migration batch. Listing failures abort the run; every
// listed repository is attempted regardless of earlier per-item failures. A
// MigrationFailuresError is returned when the failure tally is non-zero.
func (service *Service) Execute(executionContext context.Context, options RunOptions) (RunSummary, error) {
	sourceRepositories, listError := service.sourceLister.ListSourceRepositories(executionContext)
	if listError != nil {
		return RunSummary{}, fmt.Errorf(sourceListingErrorTemplateConstant, listError)
	}

	service.logger.Info(logMessageRunStartedConstant,
		zap.String(logFieldDirectionConstant, string(options.Direction)),
		zap.Int(logFieldRepositoryCountConstant, len(sourceRepositories)),
	)

	summary := RunSummary{AttemptedCount: len(sourceRepositories)}
	for _, sourceRepository := range sourceRepositories {
		migrationError := service.migrateRepository(executionContext, options, sourceRepository)
		if migrationError != nil {
			summary.FailedCount++
			service.logger.Error(logMessageRepositoryFailedConstant,
				zap.String(logFieldRepositoryConstant, sourceRepository.Identifier),
				zap.Error(migrationError),
			)
			continue
		}
		summary.SucceededCount++
	}

	service.logger.Info(logMessageRunSummaryConstant,
		zap.Int(logFieldSucceededCountConstant, summary.SucceededCount),
		zap.Int(logFieldFailedCountConstant, summary.FailedCount),
	)

	if summary.FailedCount > 0 {
		return summary, MigrationFailuresError{FailedCount: summary.FailedCount, AttemptedCount: summary.AttemptedCount}
	}

	return summary, nil
}

func (service *Service) migrateRepository(executionContext context.Context, options RunOptions, sourceRepository SourceRepository) error {
	destinationName := naming.ResolveDestinationName(sourceRepository.NamingDescriptor(), options.NamingPolicy, options.Direction.DestinationPlatform())
	if len(destinationName) == 0 {
		return fmt.Errorf(emptyDestinationNameErrorTemplateConstant, sourceRepository.Identifier)
	}

	service.logger.Info(logMessageMigratingRepositoryConstant,
		zap.String(logFieldRepositoryConstant, sourceRepository.Identifier),
		zap.String(logFieldDestinationNameConstant, destinationName),
	)

	if options.DryRun {
		service.logger.Info(logMessageDryRunSkipConstant,
			zap.String(logFieldRepositoryConstant, sourceRepository.Identifier),
			zap.String(logFieldDestinationNameConstant, destinationName),
		)
		return nil
	}

	destinationNamespace := namespace.Handle{}
	if options.Direction == DirectionGitHubToGitLab && service.namespaceResolver != nil {
		resolvedNamespace, namespaceError := service.namespaceResolver.ResolveNamespace(executionContext, sourceRepository.OwnerLogin)
		if namespaceError != nil {
			return fmt.Errorf(namespaceResolutionErrorTemplateConstant, namespaceError)
		}
		destinationNamespace = resolvedNamespace
	}

	provisionOutcome, provisionError := service.provisioner.EnsureRepository(executionContext, ProvisionRequest{
		Name:             destinationName,
		Description:      sourceRepository.Description,
		SourceIdentifier: sourceRepository.Identifier,
		Namespace:        destinationNamespace,
	})
	if provisionError != nil {
		return fmt.Errorf(provisioningErrorTemplateConstant, provisionError)
	}

	localMirrorPath := mirror.LocalMirrorPath(options.MirrorRootDirectory, options.Direction.MirrorPathPrefix(), sourceRepository.Identifier)

	authenticatedSourceURL, sourceURLError := authenticatedCloneURL(sourceRepository.CloneURL, options.SourceCredentials)
	if sourceURLError != nil {
		return sourceURLError
	}
	if updateError := service.mirrorStore.EnsureUpToDate(executionContext, localMirrorPath, authenticatedSourceURL); updateError != nil {
		return fmt.Errorf(mirrorUpdateErrorTemplateConstant, updateError)
	}

	authenticatedDestinationURL, destinationURLError := authenticatedCloneURL(provisionOutcome.CloneURL, options.DestinationCredentials)
	if destinationURLError != nil {
		return destinationURLError
	}
	if pushError := service.mirrorStore.PushMirror(executionContext, localMirrorPath, options.Direction.DestinationRemoteName(), authenticatedDestinationURL, options.TransferLFS); pushError != nil {
		return fmt.Errorf(mirrorPushErrorTemplateConstant, pushError)
	}

	service.logger.Info(logMessageRepositoryMigratedConstant,
		zap.String(logFieldRepositoryConstant, sourceRepository.Identifier),
		zap.String(logFieldDestinationNameConstant, destinationName),
		zap.Bool(logFieldDestinationCreatedConstant, provisionOutcome.Created),
	)

	return nil
}
