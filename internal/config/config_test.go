package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repomirror/internal/config"
	"github.com/temirov/repomirror/internal/migration"
)

const (
	testGitLabBaseURLConstant = "https://gitlab.example.com/api/v4"
	testGitLabTokenConstant   = "glpat-test-token"
	testGitHubTokenConstant   = "ghp-test-token"
	testGitHubOwnerConstant   = "acme"
)

func setRequiredEnvironment(testInstance *testing.T) {
	testInstance.Helper()
	testInstance.Setenv("GITLAB_BASE_URL", testGitLabBaseURLConstant)
	testInstance.Setenv("GITLAB_TOKEN", testGitLabTokenConstant)
	testInstance.Setenv("GITHUB_TOKEN", testGitHubTokenConstant)
	testInstance.Setenv("GITHUB_OWNER", testGitHubOwnerConstant)
}

func clearOptionalEnvironment(testInstance *testing.T) {
	testInstance.Helper()
	optionalEnvironmentKeys := []string{
		"GITLAB_GROUP_ID", "GITLAB_TARGET_NAMESPACE_ID", "GITHUB_OWNER_TYPE",
		"MIRROR_ROOT", "INCLUDE_ARCHIVED", "DRY_RUN", "USE_ORIGINAL_REPO_NAME",
		"PRESERVE_NAMESPACE_IN_NAME", "PRESERVE_SOURCE_OWNER_AS_GITLAB_GROUP",
		"MIGRATE_LFS", "MIGRATION_DIRECTION", "LOG_LEVEL", "LOG_FORMAT",
	}
	for _, environmentKey := range optionalEnvironmentKeys {
		testInstance.Setenv(environmentKey, "")
		require.NoError(testInstance, os.Unsetenv(environmentKey))
	}
}

func TestLoadAppliesDefaults(testInstance *testing.T) {
	setRequiredEnvironment(testInstance)
	clearOptionalEnvironment(testInstance)

	configuration, loadError := config.Load()
	require.NoError(testInstance, loadError)

	require.Equal(testInstance, "./mirrors", configuration.MirrorRootDirectory)
	require.Equal(testInstance, "user", configuration.GitHubOwnerType)
	require.True(testInstance, configuration.UseOriginalRepositoryName)
	require.True(testInstance, configuration.PreserveNamespaceInName)
	require.True(testInstance, configuration.PreserveSourceOwnerAsGitLabGroup)
	require.False(testInstance, configuration.IncludeArchived)
	require.False(testInstance, configuration.DryRun)
	require.False(testInstance, configuration.MigrateLFS)
	require.Empty(testInstance, string(configuration.MigrationDirection))
	require.Equal(testInstance, "info", configuration.LogLevel)
	require.Equal(testInstance, "structured", configuration.LogFormat)
}

func TestLoadReportsEveryMissingRequiredKey(testInstance *testing.T) {
	for _, requiredKey := range []string{"GITLAB_BASE_URL", "GITLAB_TOKEN", "GITHUB_TOKEN", "GITHUB_OWNER"} {
		testInstance.Setenv(requiredKey, "")
	}

	_, loadError := config.Load()
	require.Error(testInstance, loadError)

	var missingError config.MissingConfigurationError
	require.ErrorAs(testInstance, loadError, &missingError)
	require.Equal(testInstance, []string{"GITLAB_BASE_URL", "GITLAB_TOKEN", "GITHUB_TOKEN", "GITHUB_OWNER"}, missingError.MissingKeys)
	require.Contains(testInstance, loadError.Error(), "GITHUB_OWNER")
}

func TestLoadParsesOverrides(testInstance *testing.T) {
	setRequiredEnvironment(testInstance)
	clearOptionalEnvironment(testInstance)
	testInstance.Setenv("GITLAB_GROUP_ID", "platform")
	testInstance.Setenv("GITLAB_TARGET_NAMESPACE_ID", "42")
	testInstance.Setenv("GITHUB_OWNER_TYPE", "ORG")
	testInstance.Setenv("MIRROR_ROOT", "/var/lib/mirrors")
	testInstance.Setenv("INCLUDE_ARCHIVED", "true")
	testInstance.Setenv("DRY_RUN", "true")
	testInstance.Setenv("USE_ORIGINAL_REPO_NAME", "false")
	testInstance.Setenv("MIGRATE_LFS", "true")
	testInstance.Setenv("MIGRATION_DIRECTION", "gh2gl")

	configuration, loadError := config.Load()
	require.NoError(testInstance, loadError)

	require.Equal(testInstance, "platform", configuration.GitLabGroupIdentifier)
	require.Equal(testInstance, 42, configuration.GitLabTargetNamespaceIdentifier)
	require.Equal(testInstance, "org", configuration.GitHubOwnerType)
	require.True(testInstance, configuration.OrganizationOwner())
	require.Equal(testInstance, "/var/lib/mirrors", configuration.MirrorRootDirectory)
	require.True(testInstance, configuration.IncludeArchived)
	require.True(testInstance, configuration.DryRun)
	require.False(testInstance, configuration.UseOriginalRepositoryName)
	require.True(testInstance, configuration.MigrateLFS)
	require.Equal(testInstance, migration.DirectionGitHubToGitLab, configuration.MigrationDirection)
}

func TestLoadRejectsUnknownOwnerType(testInstance *testing.T) {
	setRequiredEnvironment(testInstance)
	clearOptionalEnvironment(testInstance)
	testInstance.Setenv("GITHUB_OWNER_TYPE", "committee")

	_, loadError := config.Load()
	require.Error(testInstance, loadError)
	require.Contains(testInstance, loadError.Error(), "GITHUB_OWNER_TYPE")
}

func TestLoadRejectsUnknownDirection(testInstance *testing.T) {
	setRequiredEnvironment(testInstance)
	clearOptionalEnvironment(testInstance)
	testInstance.Setenv("MIGRATION_DIRECTION", "sideways")

	_, loadError := config.Load()
	require.Error(testInstance, loadError)
}

func TestLoadWithDotEnvFileFillsGapsWithoutOverriding(testInstance *testing.T) {
	dotEnvFilePath := filepath.Join(testInstance.TempDir(), ".env")
	dotEnvContent := "# connection settings\n" +
		"GITLAB_BASE_URL=\"https://dotenv.example.com/api/v4\"\n" +
		"export GITLAB_TOKEN='dotenv-token'\n" +
		"\n" +
		"GITHUB_TOKEN=dotenv-github-token\n" +
		"GITHUB_OWNER=dotenv-owner\n" +
		"DRY_RUN=true\n"
	require.NoError(testInstance, os.WriteFile(dotEnvFilePath, []byte(dotEnvContent), 0o600))

	clearOptionalEnvironment(testInstance)
	testInstance.Setenv("GITLAB_BASE_URL", testGitLabBaseURLConstant)
	for _, fileOnlyKey := range []string{"GITLAB_TOKEN", "GITHUB_TOKEN", "GITHUB_OWNER"} {
		testInstance.Setenv(fileOnlyKey, "")
		require.NoError(testInstance, os.Unsetenv(fileOnlyKey))
	}

	configuration, loadError := config.LoadWithDotEnvFile(dotEnvFilePath)
	require.NoError(testInstance, loadError)

	require.Equal(testInstance, testGitLabBaseURLConstant, configuration.GitLabBaseURL)
	require.Equal(testInstance, "dotenv-token", configuration.GitLabToken)
	require.Equal(testInstance, "dotenv-github-token", configuration.GitHubToken)
	require.Equal(testInstance, "dotenv-owner", configuration.GitHubOwner)
	require.True(testInstance, configuration.DryRun)
}

func TestLoadWithDotEnvFileToleratesMissingFile(testInstance *testing.T) {
	setRequiredEnvironment(testInstance)
	clearOptionalEnvironment(testInstance)

	missingFilePath := filepath.Join(testInstance.TempDir(), "absent.env")
	configuration, loadError := config.LoadWithDotEnvFile(missingFilePath)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, testGitHubOwnerConstant, configuration.GitHubOwner)
}

func TestNewLoggerRejectsUnsupportedValues(testInstance *testing.T) {
	_, levelError := config.NewLogger(config.Configuration{LogLevel: "whisper", LogFormat: "structured"})
	require.Error(testInstance, levelError)

	_, formatError := config.NewLogger(config.Configuration{LogLevel: "info", LogFormat: "interpretive"})
	require.Error(testInstance, formatError)

	logger, buildError := config.NewLogger(config.Configuration{LogLevel: "debug", LogFormat: "console"})
	require.NoError(testInstance, buildError)
	require.NotNil(testInstance, logger)
}
