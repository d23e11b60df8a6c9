package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/readmetree/internal/services/clipboard"
	"github.com/temirov/readmetree/internal/types"
)

const (
	outputFilePermissions = 0o644

	errorUnsupportedActionFormat = "unsupported action %q"
	errorWriteOutputFormat       = "write %s: %w"
	errorReadInsertTargetFormat  = "read %s: %w"
	errorWriteInsertTargetFormat = "insert into %s: %w"
	errorMissingCopier           = "no clipboard copier configured"
	errorMissingInsertTarget     = "insert action requires a target file"

	messageCopied   = "tree structure copied to clipboard"
	messageWritten  = "tree structure written"
	messageInserted = "tree structure inserted"
)

// Dispatcher delivers final text to the sink selected by a request's action.
type Dispatcher struct {
	Stdout io.Writer
	Copier clipboard.Copier
	Logger *zap.Logger
}

// NewDispatcher constructs a Dispatcher; a nil logger is replaced by a no-op logger.
func NewDispatcher(stdout io.Writer, copier clipboard.Copier, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{Stdout: stdout, Copier: copier, Logger: logger}
}

// Deliver hands text to the sink named by request.Action. rootDirectory anchors relative output file names.
func (dispatcher *Dispatcher) Deliver(request types.RenderRequest, rootDirectory string, text string) error {
	switch request.Action {
	case types.ActionPrint, "":
		_, printError := io.WriteString(dispatcher.Stdout, text)
		return printError
	case types.ActionCopy:
		if dispatcher.Copier == nil {
			return fmt.Errorf(errorMissingCopier)
		}
		if copyError := dispatcher.Copier.Copy(text); copyError != nil {
			return copyError
		}
		dispatcher.Logger.Info(messageCopied)
		return nil
	case types.ActionFile:
		writtenPath, writeError := WriteFile(rootDirectory, request.OutputFile, text)
		if writeError != nil {
			return writeError
		}
		dispatcher.Logger.Info(messageWritten, zap.String("path", writtenPath))
		return nil
	case types.ActionInsert:
		if insertError := InsertIntoFile(request.Insert, text); insertError != nil {
			return insertError
		}
		dispatcher.Logger.Info(messageInserted, zap.String("path", request.Insert.FilePath), zap.Int("line", request.Insert.Line))
		return nil
	default:
		return fmt.Errorf(errorUnsupportedActionFormat, request.Action)
	}
}

// WriteFile persists text verbatim. A relative fileName is resolved against rootDirectory.
func WriteFile(rootDirectory string, fileName string, text string) (string, error) {
	destinationPath := fileName
	if !filepath.IsAbs(destinationPath) {
		destinationPath = filepath.Join(rootDirectory, fileName)
	}
	if writeError := os.WriteFile(destinationPath, []byte(text), outputFilePermissions); writeError != nil {
		return "", fmt.Errorf(errorWriteOutputFormat, destinationPath, writeError)
	}
	return destinationPath, nil
}

// InsertIntoFile inserts text before the 1-based target.Line of an existing file.
// A line of zero or past the end of the file appends.
//
// #nosec G304
func InsertIntoFile(target types.InsertTarget, text string) error {
	if target.FilePath == "" {
		return fmt.Errorf(errorMissingInsertTarget)
	}
	fileInfo, statError := os.Stat(target.FilePath)
	if statError != nil {
		return fmt.Errorf(errorReadInsertTargetFormat, target.FilePath, statError)
	}
	existingContent, readError := os.ReadFile(target.FilePath)
	if readError != nil {
		return fmt.Errorf(errorReadInsertTargetFormat, target.FilePath, readError)
	}

	if !strings.HasSuffix(text, lineTerminator) {
		text += lineTerminator
	}
	existingLines := strings.SplitAfter(string(existingContent), lineTerminator)
	if len(existingLines) > 0 && existingLines[len(existingLines)-1] == "" {
		existingLines = existingLines[:len(existingLines)-1]
	}

	var updated strings.Builder
	if target.Line >= 1 && target.Line <= len(existingLines) {
		for lineIndex, line := range existingLines {
			if lineIndex == target.Line-1 {
				updated.WriteString(text)
			}
			updated.WriteString(line)
		}
	} else {
		for _, line := range existingLines {
			updated.WriteString(line)
		}
		if len(existingLines) > 0 && !strings.HasSuffix(existingLines[len(existingLines)-1], lineTerminator) {
			updated.WriteString(lineTerminator)
		}
		updated.WriteString(text)
	}

	if writeError := os.WriteFile(target.FilePath, []byte(updated.String()), fileInfo.Mode().Perm()); writeError != nil {
		return fmt.Errorf(errorWriteInsertTargetFormat, target.FilePath, writeError)
	}
	return nil
}
