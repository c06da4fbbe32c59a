package cli

import (
	"bufio"
	"fmt"
	"io"

	"github.com/temirov/repomirror/internal/migration"
)

const (
	directionPromptTextConstant = "Select migration direction:\n" +
		"  1) GitLab -> GitHub\n" +
		"  2) GitHub -> GitLab\n" +
		"Enter choice: "
	directionPromptReadErrorTemplateConstant = "unable to read migration direction: %w"
)

// DirectionPrompter obtains the migration direction interactively when the
// configuration leaves it unset.
type DirectionPrompter interface {
	PromptDirection() (migration.Direction, error)
}

// IODirectionPrompter prompts on an output stream and reads the selection from
// an input stream, accepting the same aliases as MIGRATION_DIRECTION.
type IODirectionPrompter struct {
	input  io.Reader
	output io.Writer
}

// NewIODirectionPrompter constructs an IODirectionPrompter bound to the supplied streams.
func NewIODirectionPrompter(input io.Reader, output io.Writer) *IODirectionPrompter {
	return &IODirectionPrompter{input: input, output: output}
}

// PromptDirection writes the selection menu and parses the first input line.
func (prompter *IODirectionPrompter) PromptDirection() (migration.Direction, error) {
	fmt.Fprint(prompter.output, directionPromptTextConstant)

	lineReader := bufio.NewReader(prompter.input)
	selectionLine, readError := lineReader.ReadString('\n')
	if readError != nil && len(selectionLine) == 0 {
		return migration.Direction(""), fmt.Errorf(directionPromptReadErrorTemplateConstant, readError)
	}

	return migration.ParseDirection(selectionLine)
}
