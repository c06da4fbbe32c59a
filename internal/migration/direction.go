package migration

import (
	"fmt"
	"strings"

	"github.com/temirov/repomirror/internal/naming"
)

const (
	gitlabToGitHubDirectionValueConstant  = "gitlab-to-github"
	githubToGitLabDirectionValueConstant  = "github-to-gitlab"
	gitlabToGitHubNumericAliasConstant    = "1"
	githubToGitLabNumericAliasConstant    = "2"
	gitlabToGitHubShortAliasConstant      = "gl2gh"
	githubToGitLabShortAliasConstant      = "gh2gl"
	unknownDirectionErrorTemplateConstant = "unknown migration direction %q"
	gitlabToGitHubMirrorPrefixConstant    = "gl2gh"
	githubToGitLabMirrorPrefixConstant    = "gh2gl"
	githubDestinationRemoteNameConstant   = "github"
	gitlabDestinationRemoteNameConstant   = "gitlab"
)

// Direction identifies which platform is the source and which the destination.
type Direction string

// Supported migration directions.
const (
	DirectionGitLabToGitHub Direction = Direction(gitlabToGitHubDirectionValueConstant)
	DirectionGitHubToGitLab Direction = Direction(githubToGitLabDirectionValueConstant)
)

// ParseDirection resolves the supplied value, accepting the canonical names,
// the numeric prompt aliases, and the short aliases, case-insensitively.
func ParseDirection(directionValue string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(directionValue)) {
	case gitlabToGitHubDirectionValueConstant, gitlabToGitHubNumericAliasConstant, gitlabToGitHubShortAliasConstant:
		return DirectionGitLabToGitHub, nil
	case githubToGitLabDirectionValueConstant, githubToGitLabNumericAliasConstant, githubToGitLabShortAliasConstant:
		return DirectionGitHubToGitLab, nil
	default:
		return Direction(""), fmt.Errorf(unknownDirectionErrorTemplateConstant, directionValue)
	}
}

// UnmarshalText parses direction aliases during configuration decoding. An
// empty value is preserved so callers can detect an unset direction and prompt.
func (direction *Direction) UnmarshalText(text []byte) error {
	if len(strings.TrimSpace(string(text))) == 0 {
		*direction = Direction("")
		return nil
	}
	parsedDirection, parseError := ParseDirection(string(text))
	if parseError != nil {
		return parseError
	}
	*direction = parsedDirection
	return nil
}

// MirrorPathPrefix returns the deterministic prefix used for local mirror directories.
func (direction Direction) MirrorPathPrefix() string {
	if direction == DirectionGitHubToGitLab {
		return githubToGitLabMirrorPrefixConstant
	}
	return gitlabToGitHubMirrorPrefixConstant
}

// DestinationPlatform returns the naming platform repositories are created on.
func (direction Direction) DestinationPlatform() naming.DestinationPlatform {
	if direction == DirectionGitHubToGitLab {
		return naming.DestinationPlatformGitLab
	}
	return naming.DestinationPlatformGitHub
}

// DestinationRemoteName returns the git remote name used for mirror pushes.
func (direction Direction) DestinationRemoteName() string {
	if direction == DirectionGitHubToGitLab {
		return gitlabDestinationRemoteNameConstant
	}
	return githubDestinationRemoteNameConstant
}
