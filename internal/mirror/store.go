package mirror

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/repomirror/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant       = "git executor not configured"
	originRemoteNameConstant                = "origin"
	gitCloneSubcommandConstant              = "clone"
	gitMirrorFlagConstant                   = "--mirror"
	gitFetchSubcommandConstant              = "fetch"
	gitPruneFlagConstant                    = "--prune"
	gitPushSubcommandConstant               = "push"
	gitRemoteSubcommandConstant             = "remote"
	gitRemoteAddSubcommandConstant          = "add"
	gitRemoteSetURLSubcommandConstant       = "set-url"
	gitLFSFetchSubcommandConstant           = "fetch"
	gitLFSPushSubcommandConstant            = "push"
	gitLFSAllFlagConstant                   = "--all"
	gitTerminalPromptEnvironmentKeyConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValueConstant  = "0"
	logMessageMirrorCloneConstant           = "Creating local mirror"
	logMessageMirrorFetchConstant           = "Updating local mirror"
	logFieldMirrorPathConstant              = "mirror_path"
)

// GitExecutor is the subprocess surface the store requires.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteGitLFS(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

var errGitExecutorMissing = errors.New(gitExecutorMissingMessageConstant)

// nonInteractiveEnvironment makes git fail fast when a remote rejects the
// token embedded in its URL instead of prompting for credentials.
func nonInteractiveEnvironment() map[string]string {
	return map[string]string{gitTerminalPromptEnvironmentKeyConstant: gitTerminalPromptDisabledValueConstant}
}

// Store drives local bare mirror repositories through git subprocesses.
type Store struct {
	logger      *zap.Logger
	gitExecutor GitExecutor
}

// NewStore constructs a Store using the supplied executor.
func NewStore(logger *zap.Logger, gitExecutor GitExecutor) (*Store, error) {
	if gitExecutor == nil {
		return nil, errGitExecutorMissing
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{logger: logger, gitExecutor: gitExecutor}, nil
}

// EnsureUpToDate brings the local mirror at localMirrorPath in sync with the
// source. A missing mirror is created with a full mirror clone; an existing
// one has its origin repointed at the (possibly token-refreshed) source URL
// and receives a pruning fetch.
func (store *Store) EnsureUpToDate(executionContext context.Context, localMirrorPath string, sourceURL string) error {
	if !store.mirrorExists(localMirrorPath) {
		store.logger.Info(logMessageMirrorCloneConstant, zap.String(logFieldMirrorPathConstant, localMirrorPath))
		_, cloneError := store.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:            []string{gitCloneSubcommandConstant, gitMirrorFlagConstant, sourceURL, localMirrorPath},
			EnvironmentVariables: nonInteractiveEnvironment(),
		})
		return cloneError
	}

	store.logger.Info(logMessageMirrorFetchConstant, zap.String(logFieldMirrorPathConstant, localMirrorPath))
	if _, repointError := store.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitRemoteSubcommandConstant, gitRemoteSetURLSubcommandConstant, originRemoteNameConstant, sourceURL},
		WorkingDirectory:     localMirrorPath,
		EnvironmentVariables: nonInteractiveEnvironment(),
	}); repointError != nil {
		return repointError
	}

	_, fetchError := store.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitFetchSubcommandConstant, gitPruneFlagConstant, originRemoteNameConstant},
		WorkingDirectory:     localMirrorPath,
		EnvironmentVariables: nonInteractiveEnvironment(),
	})
	return fetchError
}

// PushMirror pushes all refs of the local mirror to the destination, creating
// or repointing the destination remote first. When transferLFS is set, large
// file objects are fetched from origin and pushed to the destination after the
// ref push.
func (store *Store) PushMirror(executionContext context.Context, localMirrorPath string, remoteName string, destinationURL string, transferLFS bool) error {
	if remoteError := store.ensureRemote(executionContext, localMirrorPath, remoteName, destinationURL); remoteError != nil {
		return remoteError
	}

	if _, pushError := store.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitPushSubcommandConstant, gitMirrorFlagConstant, remoteName},
		WorkingDirectory:     localMirrorPath,
		EnvironmentVariables: nonInteractiveEnvironment(),
	}); pushError != nil {
		return pushError
	}

	if !transferLFS {
		return nil
	}
	return store.transferLargeFileObjects(executionContext, localMirrorPath, remoteName)
}

// ensureRemote adds the destination remote, falling back to repointing it when
// a prior run already registered the name.
func (store *Store) ensureRemote(executionContext context.Context, localMirrorPath string, remoteName string, destinationURL string) error {
	_, addError := store.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitRemoteSubcommandConstant, gitRemoteAddSubcommandConstant, remoteName, destinationURL},
		WorkingDirectory:     localMirrorPath,
		EnvironmentVariables: nonInteractiveEnvironment(),
	})
	if addError == nil {
		return nil
	}

	var commandFailure execshell.CommandFailedError
	if !errors.As(addError, &commandFailure) {
		return addError
	}

	_, repointError := store.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitRemoteSubcommandConstant, gitRemoteSetURLSubcommandConstant, remoteName, destinationURL},
		WorkingDirectory:     localMirrorPath,
		EnvironmentVariables: nonInteractiveEnvironment(),
	})
	return repointError
}

func (store *Store) transferLargeFileObjects(executionContext context.Context, localMirrorPath string, remoteName string) error {
	if _, fetchError := store.gitExecutor.ExecuteGitLFS(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitLFSFetchSubcommandConstant, gitLFSAllFlagConstant, originRemoteNameConstant},
		WorkingDirectory:     localMirrorPath,
		EnvironmentVariables: nonInteractiveEnvironment(),
	}); fetchError != nil {
		return fetchError
	}

	_, pushError := store.gitExecutor.ExecuteGitLFS(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitLFSPushSubcommandConstant, gitLFSAllFlagConstant, remoteName},
		WorkingDirectory:     localMirrorPath,
		EnvironmentVariables: nonInteractiveEnvironment(),
	})
	return pushError
}

func (store *Store) mirrorExists(localMirrorPath string) bool {
	pathInfo, statError := os.Stat(localMirrorPath)
	if statError != nil {
		return false
	}
	return pathInfo.IsDir()
}
