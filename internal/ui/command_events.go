package ui

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repomirror/internal/execshell"
)

const (
	transferStartedMessageTemplateConstant   = "Running %s"
	transferCompletedMessageTemplateConstant = "Completed %s"
	transferFailedMessageTemplateConstant    = "%s failed with exit code %d"
	transferErroredMessageTemplateConstant   = "%s failed: %s"
	mirrorDirectorySuffixTemplateConstant    = " (in %s)"
	standardErrorSuffixTemplateConstant      = ": %s"
	commandPartsSeparatorConstant            = " "
	unknownFailureMessageConstant            = "unknown error"
)

// ConsoleCommandEventLogger narrates git and git-lfs invocations on a
// human-readable logger. It implements execshell.CommandEventObserver.
type ConsoleCommandEventLogger struct {
	logger *zap.Logger
}

// NewConsoleCommandEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger}
}

// CommandStarted logs the command about to run.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(fmt.Sprintf(transferStartedMessageTemplateConstant, commandLabel(command)))
}

// CommandCompleted logs the command outcome, downgrading non-zero exits to warnings.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	if result.ExitCode == 0 {
		eventLogger.logger.Info(fmt.Sprintf(transferCompletedMessageTemplateConstant, commandLabel(command)))
		return
	}

	failureMessage := fmt.Sprintf(transferFailedMessageTemplateConstant, commandLabel(command), result.ExitCode)
	trimmedStandardError := strings.TrimSpace(result.StandardError)
	if len(trimmedStandardError) > 0 {
		failureMessage += fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
	}
	eventLogger.logger.Warn(failureMessage)
}

// CommandExecutionFailed logs failures that occurred before an exit code existed.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	eventLogger.logger.Error(fmt.Sprintf(transferErroredMessageTemplateConstant, commandLabel(command), failureMessage))
}

func commandLabel(command execshell.ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandPartsSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandPartsSeparatorConstant)

	trimmedMirrorDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedMirrorDirectory) > 0 {
		commandLabel += fmt.Sprintf(mirrorDirectorySuffixTemplateConstant, trimmedMirrorDirectory)
	}

	return commandLabel
}
