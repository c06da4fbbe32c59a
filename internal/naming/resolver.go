package naming

import (
	"strings"
)

const (
	pathSeparatorConstant          = "/"
	replacementCharacterConstant   = "-"
	segmentJoinTokenConstant       = "--"
	allowedSpecialCharactersValues = "._-"
)

// DestinationPlatform enumerates repository hosting platforms receiving migrated repositories.
type DestinationPlatform string

// Supported destination platforms.
const (
	DestinationPlatformGitHub DestinationPlatform = DestinationPlatform("github")
	DestinationPlatformGitLab DestinationPlatform = DestinationPlatform("gitlab")
)

// Policy captures the naming flags controlling destination name resolution.
type Policy struct {
	UseOriginalName   bool
	PreserveNamespace bool
}

// Descriptor carries the source-side identity fields naming resolution consumes.
type Descriptor struct {
	Name          string
	NamespacePath string
}

// ResolveDestinationName derives the destination repository name for the supplied
// descriptor. Precedence: original short name, then the namespace-qualified path,
// then the short name. The result may be empty when the input contains no valid
// characters; callers reject empty resolutions.
func ResolveDestinationName(descriptor Descriptor, policy Policy, platform DestinationPlatform) string {
	if policy.UseOriginalName {
		return SanitizeSegment(descriptor.Name, platform)
	}

	if policy.PreserveNamespace {
		qualifiedPath := descriptor.Name
		if len(strings.TrimSpace(descriptor.NamespacePath)) > 0 {
			qualifiedPath = descriptor.NamespacePath + pathSeparatorConstant + descriptor.Name
		}
		return sanitizeQualifiedPath(qualifiedPath, platform)
	}

	return SanitizeSegment(descriptor.Name, platform)
}

// SanitizeSegment collapses a single path segment into the destination platform's
// allowed character set. GitLab segments are additionally lower-cased.
func SanitizeSegment(segment string, platform DestinationPlatform) string {
	candidate := segment
	if platform == DestinationPlatformGitLab {
		candidate = strings.ToLower(candidate)
	}

	var sanitizedBuilder strings.Builder
	previousWasReplacement := false
	for _, character := range candidate {
		if isAllowedCharacter(character, platform) {
			if character == '-' {
				if previousWasReplacement {
					continue
				}
				previousWasReplacement = true
			} else {
				previousWasReplacement = false
			}
			sanitizedBuilder.WriteRune(character)
			continue
		}
		if previousWasReplacement {
			continue
		}
		sanitizedBuilder.WriteString(replacementCharacterConstant)
		previousWasReplacement = true
	}

	return strings.Trim(sanitizedBuilder.String(), replacementCharacterConstant)
}

// sanitizeQualifiedPath sanitizes every path segment independently and joins the
// surviving segments with the platform's joining token, so that separators never
// collapse into adjacent replacement characters.
func sanitizeQualifiedPath(qualifiedPath string, platform DestinationPlatform) string {
	rawSegments := strings.Split(qualifiedPath, pathSeparatorConstant)
	sanitizedSegments := make([]string, 0, len(rawSegments))
	for _, rawSegment := range rawSegments {
		sanitizedSegment := SanitizeSegment(rawSegment, platform)
		if len(sanitizedSegment) == 0 {
			continue
		}
		sanitizedSegments = append(sanitizedSegments, sanitizedSegment)
	}
	return strings.Join(sanitizedSegments, segmentJoinTokenConstant)
}

func isAllowedCharacter(character rune, platform DestinationPlatform) bool {
	if character >= '0' && character <= '9' {
		return true
	}
	if character >= 'a' && character <= 'z' {
		return true
	}
	if platform == DestinationPlatformGitHub && character >= 'A' && character <= 'Z' {
		return true
	}
	return strings.ContainsRune(allowedSpecialCharactersValues, character)
}
