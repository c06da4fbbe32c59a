package mirror

import (
	"path/filepath"
	"strings"
)

const (
	pathSeparatorConstant       = "/"
	pathSegmentJoinerConstant   = "__"
	directoryPrefixJoinConstant = "__"
)

// LocalMirrorPath derives the deterministic on-disk location of the bare
// mirror for one source repository: the direction prefix joined to the
// namespace-qualified identity with path separators replaced by double
// underscores.
func LocalMirrorPath(rootDirectory string, directionPrefix string, sourceIdentifier string) string {
	flattenedIdentifier := strings.ReplaceAll(sourceIdentifier, pathSeparatorConstant, pathSegmentJoinerConstant)
	return filepath.Join(rootDirectory, directionPrefix+directoryPrefixJoinConstant+flattenedIdentifier)
}
