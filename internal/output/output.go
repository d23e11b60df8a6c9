// Package output turns rendered trees into the final text and hands it to a sink.
package output

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/readmetree/internal/types"
)

const (
	codeFence      = "```"
	lineTerminator = "\n"

	defaultOutputBaseName   = "folder-structure"
	markdownOutputExtension = ".md"
	textOutputExtension     = ".txt"

	insertLineSeparator           = ":"
	errorInvalidInsertLineFormat  = "invalid insert line %d in %q"
	errorEmptyInsertTargetMessage = "insert target must name a file"
)

// WrapInCodeFence encloses tree in a fenced Markdown code block.
func WrapInCodeFence(tree string) string {
	body := strings.TrimSuffix(tree, lineTerminator)
	return codeFence + lineTerminator + body + lineTerminator + codeFence + lineTerminator
}

// Compose produces the final text for one rendered tree.
func Compose(request types.RenderRequest, tree string) string {
	if request.FencedOutput {
		return WrapInCodeFence(tree)
	}
	return tree
}

// JoinTrees concatenates the texts of several roots separated by a blank line.
func JoinTrees(texts []string) string {
	return strings.Join(texts, lineTerminator)
}

// DefaultOutputFileName returns the file name used when writing output for command.
func DefaultOutputFileName(command string) string {
	if command == types.CommandMarkdown {
		return defaultOutputBaseName + markdownOutputExtension
	}
	return defaultOutputBaseName + textOutputExtension
}

// ParseInsertTarget parses "path[:line]". Without a numeric line suffix the whole
// value is the path and the tree is appended.
func ParseInsertTarget(value string) (types.InsertTarget, error) {
	trimmedValue := strings.TrimSpace(value)
	separatorIndex := strings.LastIndex(trimmedValue, insertLineSeparator)
	if separatorIndex > 0 {
		if line, parseError := strconv.Atoi(trimmedValue[separatorIndex+1:]); parseError == nil {
			if line < 0 {
				return types.InsertTarget{}, fmt.Errorf(errorInvalidInsertLineFormat, line, value)
			}
			return types.InsertTarget{FilePath: trimmedValue[:separatorIndex], Line: line}, nil
		}
	}
	if trimmedValue == "" || trimmedValue == insertLineSeparator {
		return types.InsertTarget{}, errors.New(errorEmptyInsertTargetMessage)
	}
	return types.InsertTarget{FilePath: trimmedValue}, nil
}
