package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/temirov/repomirror/internal/migration"
)

const (
	gitlabBaseURLEnvironmentKeyConstant             = "GITLAB_BASE_URL"
	gitlabTokenEnvironmentKeyConstant               = "GITLAB_TOKEN"
	gitlabGroupIdentifierEnvironmentKeyConstant     = "GITLAB_GROUP_ID"
	gitlabTargetNamespaceEnvironmentKeyConstant     = "GITLAB_TARGET_NAMESPACE_ID"
	githubTokenEnvironmentKeyConstant               = "GITHUB_TOKEN"
	githubOwnerEnvironmentKeyConstant               = "GITHUB_OWNER"
	githubOwnerTypeEnvironmentKeyConstant           = "GITHUB_OWNER_TYPE"
	mirrorRootEnvironmentKeyConstant                = "MIRROR_ROOT"
	includeArchivedEnvironmentKeyConstant           = "INCLUDE_ARCHIVED"
	dryRunEnvironmentKeyConstant                    = "DRY_RUN"
	useOriginalRepositoryNameEnvironmentKeyConstant = "USE_ORIGINAL_REPO_NAME"
	preserveNamespaceEnvironmentKeyConstant         = "PRESERVE_NAMESPACE_IN_NAME"
	preserveSourceOwnerEnvironmentKeyConstant       = "PRESERVE_SOURCE_OWNER_AS_GITLAB_GROUP"
	migrateLFSEnvironmentKeyConstant                = "MIGRATE_LFS"
	migrationDirectionEnvironmentKeyConstant        = "MIGRATION_DIRECTION"
	logLevelEnvironmentKeyConstant                  = "LOG_LEVEL"
	logFormatEnvironmentKeyConstant                 = "LOG_FORMAT"

	gitlabBaseURLSettingKeyConstant         = "gitlab_base_url"
	gitlabTokenSettingKeyConstant           = "gitlab_token"
	gitlabGroupIdentifierSettingKeyConstant = "gitlab_group_id"
	gitlabTargetNamespaceSettingKeyConstant = "gitlab_target_namespace_id"
	githubTokenSettingKeyConstant           = "github_token"
	githubOwnerSettingKeyConstant           = "github_owner"
	githubOwnerTypeSettingKeyConstant       = "github_owner_type"
	mirrorRootSettingKeyConstant            = "mirror_root"
	includeArchivedSettingKeyConstant       = "include_archived"
	dryRunSettingKeyConstant                = "dry_run"
	useOriginalNameSettingKeyConstant       = "use_original_repo_name"
	preserveNamespaceSettingKeyConstant     = "preserve_namespace_in_name"
	preserveSourceOwnerSettingKeyConstant   = "preserve_source_owner_as_gitlab_group"
	migrateLFSSettingKeyConstant            = "migrate_lfs"
	migrationDirectionSettingKeyConstant    = "migration_direction"
	logLevelSettingKeyConstant              = "log_level"
	logFormatSettingKeyConstant             = "log_format"

	ownerTypeUserValueConstant         = "user"
	ownerTypeOrganizationValueConstant = "org"

	defaultMirrorRootDirectoryConstant = "./mirrors"
	defaultLogLevelConstant            = "info"
	defaultLogFormatConstant           = "structured"

	dotEnvDefaultFileNameConstant = ".env"
	dotEnvConfigTypeConstant      = "env"

	missingConfigurationErrorTemplateConstant   = "missing required configuration: %s"
	missingConfigurationKeySeparatorConstant    = ", "
	dotEnvReadErrorTemplateConstant             = "unable to read %s: %w"
	configurationUnmarshalErrorTemplateConstant = "failed to parse configuration: %w"
	unsupportedOwnerTypeErrorTemplateConstant   = "unsupported %s value %q (expected %q or %q)"
)

// MissingConfigurationError lists the required environment keys that were not provided.
type MissingConfigurationError struct {
	MissingKeys []string
}

// Error names every missing required key.
func (missingError MissingConfigurationError) Error() string {
	return fmt.Sprintf(missingConfigurationErrorTemplateConstant, strings.Join(missingError.MissingKeys, missingConfigurationKeySeparatorConstant))
}

// Configuration carries every runtime setting the migration commands consume.
type Configuration struct {
	GitLabBaseURL                    string              `mapstructure:"gitlab_base_url"`
	GitLabToken                      string              `mapstructure:"gitlab_token"`
	GitLabGroupIdentifier            string              `mapstructure:"gitlab_group_id"`
	GitLabTargetNamespaceIdentifier  int                 `mapstructure:"gitlab_target_namespace_id"`
	GitHubToken                      string              `mapstructure:"github_token"`
	GitHubOwner                      string              `mapstructure:"github_owner"`
	GitHubOwnerType                  string              `mapstructure:"github_owner_type"`
	MirrorRootDirectory              string              `mapstructure:"mirror_root"`
	IncludeArchived                  bool                `mapstructure:"include_archived"`
	DryRun                           bool                `mapstructure:"dry_run"`
	UseOriginalRepositoryName        bool                `mapstructure:"use_original_repo_name"`
	PreserveNamespaceInName          bool                `mapstructure:"preserve_namespace_in_name"`
	PreserveSourceOwnerAsGitLabGroup bool                `mapstructure:"preserve_source_owner_as_gitlab_group"`
	MigrateLFS                       bool                `mapstructure:"migrate_lfs"`
	MigrationDirection               migration.Direction `mapstructure:"migration_direction"`
	LogLevel                         string              `mapstructure:"log_level"`
	LogFormat                        string              `mapstructure:"log_format"`
}

// OrganizationOwner reports whether destination repositories belong to a GitHub organization.
func (configuration Configuration) OrganizationOwner() bool {
	return strings.EqualFold(strings.TrimSpace(configuration.GitHubOwnerType), ownerTypeOrganizationValueConstant)
}

var environmentBindings = map[string]string{
	gitlabBaseURLSettingKeyConstant:         gitlabBaseURLEnvironmentKeyConstant,
	gitlabTokenSettingKeyConstant:           gitlabTokenEnvironmentKeyConstant,
	gitlabGroupIdentifierSettingKeyConstant: gitlabGroupIdentifierEnvironmentKeyConstant,
	gitlabTargetNamespaceSettingKeyConstant: gitlabTargetNamespaceEnvironmentKeyConstant,
	githubTokenSettingKeyConstant:           githubTokenEnvironmentKeyConstant,
	githubOwnerSettingKeyConstant:           githubOwnerEnvironmentKeyConstant,
	githubOwnerTypeSettingKeyConstant:       githubOwnerTypeEnvironmentKeyConstant,
	mirrorRootSettingKeyConstant:            mirrorRootEnvironmentKeyConstant,
	includeArchivedSettingKeyConstant:       includeArchivedEnvironmentKeyConstant,
	dryRunSettingKeyConstant:                dryRunEnvironmentKeyConstant,
	useOriginalNameSettingKeyConstant:       useOriginalRepositoryNameEnvironmentKeyConstant,
	preserveNamespaceSettingKeyConstant:     preserveNamespaceEnvironmentKeyConstant,
	preserveSourceOwnerSettingKeyConstant:   preserveSourceOwnerEnvironmentKeyConstant,
	migrateLFSSettingKeyConstant:            migrateLFSEnvironmentKeyConstant,
	migrationDirectionSettingKeyConstant:    migrationDirectionEnvironmentKeyConstant,
	logLevelSettingKeyConstant:              logLevelEnvironmentKeyConstant,
	logFormatSettingKeyConstant:             logFormatEnvironmentKeyConstant,
}

var requiredEnvironmentKeys = []struct {
	settingKey     string
	environmentKey string
}{
	{settingKey: gitlabBaseURLSettingKeyConstant, environmentKey: gitlabBaseURLEnvironmentKeyConstant},
	{settingKey: gitlabTokenSettingKeyConstant, environmentKey: gitlabTokenEnvironmentKeyConstant},
	{settingKey: githubTokenSettingKeyConstant, environmentKey: githubTokenEnvironmentKeyConstant},
	{settingKey: githubOwnerSettingKeyConstant, environmentKey: githubOwnerEnvironmentKeyConstant},
}

// Load resolves the configuration from process environment variables layered
// over the conventional .env file in the working directory, applies defaults,
// and validates required values.
func Load() (Configuration, error) {
	return LoadWithDotEnvFile(dotEnvDefaultFileNameConstant)
}

// LoadWithDotEnvFile resolves the configuration using the supplied dotenv
// file. Bound environment variables rank above config-file values in Viper's
// precedence, so the file only fills gaps and never overrides the process
// environment. A missing file is not an error.
func LoadWithDotEnvFile(dotEnvFilePath string) (Configuration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigFile(dotEnvFilePath)
	viperInstance.SetConfigType(dotEnvConfigTypeConstant)
	if readError := viperInstance.ReadInConfig(); readError != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(readError, &configFileNotFoundError) && !errors.Is(readError, fs.ErrNotExist) {
			return Configuration{}, fmt.Errorf(dotEnvReadErrorTemplateConstant, dotEnvFilePath, readError)
		}
	}

	for settingKey, environmentKey := range environmentBindings {
		_ = viperInstance.BindEnv(settingKey, environmentKey)
	}

	viperInstance.SetDefault(mirrorRootSettingKeyConstant, defaultMirrorRootDirectoryConstant)
	viperInstance.SetDefault(githubOwnerTypeSettingKeyConstant, ownerTypeUserValueConstant)
	viperInstance.SetDefault(useOriginalNameSettingKeyConstant, true)
	viperInstance.SetDefault(preserveNamespaceSettingKeyConstant, true)
	viperInstance.SetDefault(preserveSourceOwnerSettingKeyConstant, true)
	viperInstance.SetDefault(logLevelSettingKeyConstant, defaultLogLevelConstant)
	viperInstance.SetDefault(logFormatSettingKeyConstant, defaultLogFormatConstant)

	var configuration Configuration
	unmarshalError := viperInstance.Unmarshal(&configuration, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(missingConfigurationKeySeparatorConstant),
	)))
	if unmarshalError != nil {
		return Configuration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	var missingKeys []string
	for _, requiredKey := range requiredEnvironmentKeys {
		if len(strings.TrimSpace(viperInstance.GetString(requiredKey.settingKey))) == 0 {
			missingKeys = append(missingKeys, requiredKey.environmentKey)
		}
	}
	if len(missingKeys) > 0 {
		return Configuration{}, MissingConfigurationError{MissingKeys: missingKeys}
	}

	normalizedOwnerType := strings.ToLower(strings.TrimSpace(configuration.GitHubOwnerType))
	if normalizedOwnerType != ownerTypeUserValueConstant && normalizedOwnerType != ownerTypeOrganizationValueConstant {
		return Configuration{}, fmt.Errorf(unsupportedOwnerTypeErrorTemplateConstant,
			githubOwnerTypeEnvironmentKeyConstant, configuration.GitHubOwnerType,
			ownerTypeUserValueConstant, ownerTypeOrganizationValueConstant)
	}
	configuration.GitHubOwnerType = normalizedOwnerType

	return configuration, nil
}
