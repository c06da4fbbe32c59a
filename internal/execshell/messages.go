package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	unknownFailureMessageConstant           = "unknown error"
)

const (
	gitCloneSubcommandNameConstant     = "clone"
	gitFetchSubcommandNameConstant     = "fetch"
	gitPushSubcommandNameConstant      = "push"
	gitRemoteSubcommandNameConstant    = "remote"
	gitLFSFetchSubcommandNameConstant  = "fetch"
	gitLFSPushSubcommandNameConstant   = "push"
	gitRemoteAddSubcommandNameConstant = "add"
	gitRemoteSetURLSubcommandConstant  = "set-url"
)

const (
	mirrorCloneStartTemplateConstant      = "Mirror cloning into %s"
	mirrorCloneSuccessTemplateConstant    = "Mirror clone into %s complete"
	mirrorCloneFailureTemplateConstant    = "Mirror clone into %s failed"
	mirrorFetchStartTemplateConstant      = "Fetching updates%s"
	mirrorFetchSuccessTemplateConstant    = "Fetched updates%s"
	mirrorFetchFailureTemplateConstant    = "Fetch of updates%s failed"
	mirrorPushStartTemplateConstant       = "Pushing all refs to %s%s"
	mirrorPushSuccessTemplateConstant     = "Pushed all refs to %s%s"
	mirrorPushFailureTemplateConstant     = "Push of all refs to %s%s failed"
	remoteConfigureStartTemplateConstant  = "Configuring remote%s"
	remoteConfigureDoneTemplateConstant   = "Configured remote%s"
	remoteConfigureFailedTemplateConstant = "Remote configuration%s failed"
	lfsTransferStartTemplateConstant      = "Transferring large file objects (%s)%s"
	lfsTransferSuccessTemplateConstant    = "Transferred large file objects (%s)%s"
	lfsTransferFailureTemplateConstant    = "Transfer of large file objects (%s)%s failed"
)

// describeCommand renders a human-readable message for the supplied command and stage.
func describeCommand(command ShellCommand, stage messageStage) string {
	directorySuffix := workingDirectorySuffix(command)
	subcommand := firstArgument(command)

	if command.Name == CommandGitLFS {
		return stageTemplate(stage, lfsTransferStartTemplateConstant, lfsTransferSuccessTemplateConstant, lfsTransferFailureTemplateConstant, subcommand, directorySuffix)
	}

	switch subcommand {
	case gitCloneSubcommandNameConstant:
		targetDirectory := lastArgument(command)
		return stageTemplate(stage, mirrorCloneStartTemplateConstant, mirrorCloneSuccessTemplateConstant, mirrorCloneFailureTemplateConstant, targetDirectory)
	case gitFetchSubcommandNameConstant:
		return stageTemplate(stage, mirrorFetchStartTemplateConstant, mirrorFetchSuccessTemplateConstant, mirrorFetchFailureTemplateConstant, directorySuffix)
	case gitPushSubcommandNameConstant:
		return stageTemplate(stage, mirrorPushStartTemplateConstant, mirrorPushSuccessTemplateConstant, mirrorPushFailureTemplateConstant, pushRemoteName(command), directorySuffix)
	case gitRemoteSubcommandNameConstant:
		return stageTemplate(stage, remoteConfigureStartTemplateConstant, remoteConfigureDoneTemplateConstant, remoteConfigureFailedTemplateConstant, directorySuffix)
	}

	commandLabel := formatCommandLabel(command)
	switch stage {
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel)
	default:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	}
}

// describeCommandFailure renders a message for commands that never produced a result.
func describeCommandFailure(command ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(genericExecutionFailureTemplateConstant, formatCommandLabel(command), failureMessage)
}

func stageTemplate(stage messageStage, startTemplate string, successTemplate string, failureTemplate string, templateArguments ...any) string {
	switch stage {
	case messageStageSuccess:
		return fmt.Sprintf(successTemplate, templateArguments...)
	case messageStageFailure:
		return fmt.Sprintf(failureTemplate, templateArguments...)
	default:
		return fmt.Sprintf(startTemplate, templateArguments...)
	}
}

func workingDirectorySuffix(command ShellCommand) string {
	if len(command.Details.WorkingDirectory) == 0 {
		return ""
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, command.Details.WorkingDirectory)
}

func firstArgument(command ShellCommand) string {
	if len(command.Details.Arguments) == 0 {
		return ""
	}
	return command.Details.Arguments[0]
}

func lastArgument(command ShellCommand) string {
	if len(command.Details.Arguments) == 0 {
		return ""
	}
	return command.Details.Arguments[len(command.Details.Arguments)-1]
}

// pushRemoteName extracts the remote label from a push invocation, skipping flags.
func pushRemoteName(command ShellCommand) string {
	for _, argument := range command.Details.Arguments[1:] {
		if strings.HasPrefix(argument, "-") {
			continue
		}
		return argument
	}
	return ""
}
