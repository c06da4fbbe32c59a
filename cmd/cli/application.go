package cli

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repomirror/internal/config"
	"github.com/temirov/repomirror/internal/execshell"
	"github.com/temirov/repomirror/internal/githubapi"
	"github.com/temirov/repomirror/internal/gitlabapi"
	"github.com/temirov/repomirror/internal/migration"
	"github.com/temirov/repomirror/internal/mirror"
	"github.com/temirov/repomirror/internal/namespace"
	"github.com/temirov/repomirror/internal/naming"
	"github.com/temirov/repomirror/internal/provision"
	"github.com/temirov/repomirror/internal/ui"
)

const (
	applicationNameConstant                 = "repomirror"
	applicationShortDescriptionConstant     = "Mirror repositories between GitLab and GitHub"
	applicationLongDescriptionConstant      = "repomirror enumerates repositories on one platform, provisions matching private repositories on the other, and synchronizes full mirrors through a local clone cache."
	consoleLogFormatValueConstant           = "console"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	shellExecutorErrorTemplateConstant      = "unable to create shell executor: %w"
	gitlabClientErrorTemplateConstant       = "unable to create gitlab client: %w"
	githubClientErrorTemplateConstant       = "unable to create github client: %w"
	configurationInitializedMessageConstant = "configuration initialized"
	githubClientReadyMessageConstant        = "github client ready"
	githubOwnerFieldConstant                = "github_owner"
	configurationDirectionFieldConstant     = "migration_direction"
	configurationMirrorRootFieldConstant    = "mirror_root"
	configurationDryRunFieldConstant        = "dry_run"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
)

// Application wires the Cobra root command, configuration, and structured logger.
type Application struct {
	rootCommand       *cobra.Command
	logger            *zap.Logger
	configuration     config.Configuration
	directionPrompter DirectionPrompter
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	application := &Application{logger: zap.NewNop()}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration()
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runMigration(command)
		},
	}
	cobraCommand.SetContext(context.Background())

	application.rootCommand = cobraCommand

	return application
}

// SetDirectionPrompter overrides the interactive direction prompter.
func (application *Application) SetDirectionPrompter(prompter DirectionPrompter) {
	application.directionPrompter = prompter
}

// Execute runs the root command and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration() error {
	loadedConfiguration, loadError := config.Load()
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configuration = loadedConfiguration

	logger, loggerCreationError := config.NewLogger(loadedConfiguration)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}
	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationDirectionFieldConstant, string(loadedConfiguration.MigrationDirection)),
		zap.String(configurationMirrorRootFieldConstant, loadedConfiguration.MirrorRootDirectory),
		zap.Bool(configurationDryRunFieldConstant, loadedConfiguration.DryRun),
		zap.String(configurationLogLevelFieldConstant, loadedConfiguration.LogLevel),
		zap.String(configurationLogFormatFieldConstant, loadedConfiguration.LogFormat),
	)

	return nil
}

func (application *Application) runMigration(command *cobra.Command) error {
	direction, directionError := application.resolveDirection(command)
	if directionError != nil {
		return directionError
	}

	migrationService, runOptions, wiringError := application.buildMigrationRun(direction)
	if wiringError != nil {
		return wiringError
	}

	_, executionError := migrationService.Execute(command.Context(), runOptions)
	return executionError
}

func (application *Application) resolveDirection(command *cobra.Command) (migration.Direction, error) {
	configuredDirection := application.configuration.MigrationDirection
	if len(configuredDirection) > 0 {
		return configuredDirection, nil
	}

	prompter := application.directionPrompter
	if prompter == nil {
		prompter = NewIODirectionPrompter(command.InOrStdin(), command.OutOrStdout())
	}

	return prompter.PromptDirection()
}

func (application *Application) buildMigrationRun(direction migration.Direction) (*migration.Service, migration.RunOptions, error) {
	configuration := application.configuration

	gitlabClient, gitlabClientError := gitlabapi.NewClient(configuration.GitLabBaseURL, configuration.GitLabToken)
	if gitlabClientError != nil {
		return nil, migration.RunOptions{}, fmt.Errorf(gitlabClientErrorTemplateConstant, gitlabClientError)
	}

	githubOwnerType := githubapi.OwnerTypeUser
	if configuration.OrganizationOwner() {
		githubOwnerType = githubapi.OwnerTypeOrganization
	}
	githubClient, githubClientError := githubapi.NewClient(configuration.GitHubToken, configuration.GitHubOwner, githubOwnerType)
	if githubClientError != nil {
		return nil, migration.RunOptions{}, fmt.Errorf(githubClientErrorTemplateConstant, githubClientError)
	}
	application.logger.Debug(githubClientReadyMessageConstant, zap.String(githubOwnerFieldConstant, githubClient.Owner()))

	shellExecutor, shellExecutorError := execshell.NewShellExecutor(application.logger, execshell.NewOSCommandRunner())
	if shellExecutorError != nil {
		return nil, migration.RunOptions{}, fmt.Errorf(shellExecutorErrorTemplateConstant, shellExecutorError)
	}
	if configuration.LogFormat == consoleLogFormatValueConstant {
		shellExecutor.SetCommandEventObserver(ui.NewConsoleCommandEventLogger(application.logger))
	}

	mirrorStore, mirrorStoreError := mirror.NewStore(application.logger, shellExecutor)
	if mirrorStoreError != nil {
		return nil, migration.RunOptions{}, mirrorStoreError
	}

	serviceDependencies := migration.ServiceDependencies{
		Logger:      application.logger,
		MirrorStore: mirrorStore,
	}

	runOptions := migration.RunOptions{
		Direction:           direction,
		MirrorRootDirectory: configuration.MirrorRootDirectory,
		NamingPolicy: naming.Policy{
			UseOriginalName:   configuration.UseOriginalRepositoryName,
			PreserveNamespace: configuration.PreserveNamespaceInName,
		},
		DryRun:      configuration.DryRun,
		TransferLFS: configuration.MigrateLFS,
	}

	switch direction {
	case migration.DirectionGitHubToGitLab:
		sourceLister, listerError := migration.NewGitHubSourceLister(githubClient)
		if listerError != nil {
			return nil, migration.RunOptions{}, listerError
		}
		namespaceResolver, resolverError := namespace.NewResolver(gitlabClient, namespace.ResolverOptions{
			Logger:                  application.logger,
			RootGroupID:             configuration.GitLabTargetNamespaceIdentifier,
			PreserveOwnerAsSubgroup: configuration.PreserveSourceOwnerAsGitLabGroup,
		})
		if resolverError != nil {
			return nil, migration.RunOptions{}, resolverError
		}
		provisioner, provisionerError := provision.NewGitLabProvisioner(application.logger, gitlabClient)
		if provisionerError != nil {
			return nil, migration.RunOptions{}, provisionerError
		}

		serviceDependencies.SourceLister = sourceLister
		serviceDependencies.NamespaceResolver = namespaceResolver
		serviceDependencies.Provisioner = provisioner
		runOptions.SourceCredentials = migration.GitHubCredentials(configuration.GitHubToken)
		runOptions.DestinationCredentials = migration.GitLabCredentials(configuration.GitLabToken)

	default:
		sourceLister, listerError := migration.NewGitLabSourceLister(gitlabClient, configuration.GitLabGroupIdentifier, configuration.IncludeArchived)
		if listerError != nil {
			return nil, migration.RunOptions{}, listerError
		}
		provisioner, provisionerError := provision.NewGitHubProvisioner(application.logger, githubClient)
		if provisionerError != nil {
			return nil, migration.RunOptions{}, provisionerError
		}

		serviceDependencies.SourceLister = sourceLister
		serviceDependencies.Provisioner = provisioner
		runOptions.SourceCredentials = migration.GitLabCredentials(configuration.GitLabToken)
		runOptions.DestinationCredentials = migration.GitHubCredentials(configuration.GitHubToken)
	}

	migrationService, serviceError := migration.NewService(serviceDependencies)
	if serviceError != nil {
		return nil, migration.RunOptions{}, serviceError
	}

	return migrationService, runOptions, nil
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}
