package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repomirror/cmd/cli"
	"github.com/temirov/repomirror/internal/migration"
)

func TestIODirectionPrompterParsesSelections(testInstance *testing.T) {
	testCases := []struct {
		name              string
		inputLine         string
		expectedDirection migration.Direction
		expectError       bool
	}{
		{name: "numeric gitlab to github", inputLine: "1\n", expectedDirection: migration.DirectionGitLabToGitHub},
		{name: "numeric github to gitlab", inputLine: "2\n", expectedDirection: migration.DirectionGitHubToGitLab},
		{name: "short alias", inputLine: "gl2gh\n", expectedDirection: migration.DirectionGitLabToGitHub},
		{name: "final line without newline", inputLine: "2", expectedDirection: migration.DirectionGitHubToGitLab},
		{name: "unknown selection", inputLine: "maybe\n", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			promptOutput := &bytes.Buffer{}
			prompter := cli.NewIODirectionPrompter(strings.NewReader(testCase.inputLine), promptOutput)

			selectedDirection, promptError := prompter.PromptDirection()
			if testCase.expectError {
				require.Error(subtestInstance, promptError)
				return
			}

			require.NoError(subtestInstance, promptError)
			require.Equal(subtestInstance, testCase.expectedDirection, selectedDirection)
			require.Contains(subtestInstance, promptOutput.String(), "Select migration direction")
		})
	}
}

func TestExecuteFailsWithoutRequiredConfiguration(testInstance *testing.T) {
	for _, requiredKey := range []string{"GITLAB_BASE_URL", "GITLAB_TOKEN", "GITHUB_TOKEN", "GITHUB_OWNER"} {
		testInstance.Setenv(requiredKey, "")
	}

	application := cli.NewApplication()
	executionError := application.Execute()
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "missing required configuration")
}
