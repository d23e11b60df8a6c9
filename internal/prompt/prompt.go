// Package prompt asks the ordered configuration questions of interactive mode.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/temirov/readmetree/internal/output"
	"github.com/temirov/readmetree/internal/types"
)

const (
	depthQuestionFormat   = "Maximum folder depth to display (enter -1 for unlimited) [%d]: "
	filesQuestionFormat   = "Include files in tree? (Yes/No) [%s]: "
	actionQuestionFormat  = "What would you like to do with the generated tree? (print/copy/file/insert) [%s]: "
	fileNameQuestion      = "Enter file name [%s]: "
	insertQuestionFormat  = "Insert into which file (path:line) [%s]: "
	invalidNumberMessage  = "Please enter a valid number"
	invalidActionMessage  = "Please choose one of print, copy, file, insert"
	invalidDepthMessage   = "Depth must be -1 or greater"
	missingInsertMessage  = "Please enter a file to insert into"
	yesLabel              = "Yes"
	noLabel               = "No"
	errorAskFormat        = "reading answer: %w"
	defaultInsertTargetUI = "README.md:1"
)

var negativeAnswers = map[string]struct{}{
	"no":    {},
	"n":     {},
	"false": {},
	"0":     {},
}

// Defaults are offered as the answer to each question when the reply is empty.
type Defaults struct {
	MaxDepth     int
	IncludeFiles bool
	Action       string
	OutputFile   string
}

// Answers are the collected replies.
type Answers struct {
	MaxDepth     int
	IncludeFiles bool
	Action       string
	OutputFile   string
	Insert       types.InsertTarget
}

// Prompter reads answers line by line from an input stream.
type Prompter struct {
	input    *bufio.Reader
	output   io.Writer
	answered bool
}

// NewPrompter constructs a Prompter.
func NewPrompter(input io.Reader, output io.Writer) *Prompter {
	return &Prompter{input: bufio.NewReader(input), output: output}
}

// IsTerminal reports whether file is attached to an interactive terminal.
func IsTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// Ask runs the question sequence: depth, include files, action, then the action's target.
func (prompter *Prompter) Ask(defaults Defaults) (Answers, error) {
	answers := Answers{OutputFile: defaults.OutputFile}

	maxDepth, depthError := prompter.askDepth(defaults.MaxDepth)
	if depthError != nil {
		return Answers{}, depthError
	}
	answers.MaxDepth = maxDepth

	includeFiles, filesError := prompter.askIncludeFiles(defaults.IncludeFiles)
	if filesError != nil {
		return Answers{}, filesError
	}
	answers.IncludeFiles = includeFiles

	action, actionError := prompter.askAction(defaults.Action)
	if actionError != nil {
		return Answers{}, actionError
	}
	answers.Action = action

	switch action {
	case types.ActionFile:
		fileName, fileNameError := prompter.ask(fmt.Sprintf(fileNameQuestion, defaults.OutputFile))
		if fileNameError != nil {
			return Answers{}, fileNameError
		}
		if fileName != "" {
			answers.OutputFile = fileName
		}
	case types.ActionInsert:
		insertTarget, insertError := prompter.askInsertTarget()
		if insertError != nil {
			return Answers{}, insertError
		}
		answers.Insert = insertTarget
	}
	return answers, nil
}

func (prompter *Prompter) askDepth(defaultDepth int) (int, error) {
	for {
		reply, askError := prompter.ask(fmt.Sprintf(depthQuestionFormat, defaultDepth))
		if askError != nil {
			return 0, askError
		}
		if reply == "" {
			return defaultDepth, nil
		}
		depth, parseError := strconv.Atoi(reply)
		if parseError != nil {
			prompter.say(invalidNumberMessage)
			continue
		}
		if depth < types.UnlimitedDepth {
			prompter.say(invalidDepthMessage)
			continue
		}
		return depth, nil
	}
}

func (prompter *Prompter) askIncludeFiles(defaultInclude bool) (bool, error) {
	defaultLabel := yesLabel
	if !defaultInclude {
		defaultLabel = noLabel
	}
	reply, askError := prompter.ask(fmt.Sprintf(filesQuestionFormat, defaultLabel))
	if askError != nil {
		return false, askError
	}
	if reply == "" {
		return defaultInclude, nil
	}
	_, isNegative := negativeAnswers[strings.ToLower(reply)]
	return !isNegative, nil
}

func (prompter *Prompter) askAction(defaultAction string) (string, error) {
	if defaultAction == "" {
		defaultAction = types.ActionPrint
	}
	for {
		reply, askError := prompter.ask(fmt.Sprintf(actionQuestionFormat, defaultAction))
		if askError != nil {
			return "", askError
		}
		if reply == "" {
			return defaultAction, nil
		}
		action := strings.ToLower(reply)
		switch action {
		case types.ActionPrint, types.ActionCopy, types.ActionFile, types.ActionInsert:
			return action, nil
		}
		prompter.say(invalidActionMessage)
	}
}

func (prompter *Prompter) askInsertTarget() (types.InsertTarget, error) {
	for {
		reply, askError := prompter.ask(fmt.Sprintf(insertQuestionFormat, defaultInsertTargetUI))
		if askError != nil {
			return types.InsertTarget{}, askError
		}
		if reply == "" {
			reply = defaultInsertTargetUI
		}
		target, parseError := output.ParseInsertTarget(reply)
		if parseError != nil {
			prompter.say(missingInsertMessage)
			continue
		}
		return target, nil
	}
}

// ask prints question and returns the trimmed reply. Once any reply has been read, end of
// input yields an empty reply so the remaining questions take their defaults. End of input
// before the first reply is reported as io.ErrUnexpectedEOF.
func (prompter *Prompter) ask(question string) (string, error) {
	fmt.Fprint(prompter.output, question)
	line, readError := prompter.input.ReadString('\n')
	if readError != nil {
		if !errors.Is(readError, io.EOF) {
			return "", fmt.Errorf(errorAskFormat, readError)
		}
		if line == "" && !prompter.answered {
			return "", fmt.Errorf(errorAskFormat, io.ErrUnexpectedEOF)
		}
	}
	prompter.answered = true
	return strings.TrimSpace(line), nil
}

func (prompter *Prompter) say(message string) {
	fmt.Fprintln(prompter.output, message)
}
