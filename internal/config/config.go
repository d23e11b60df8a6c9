// Package config loads application defaults and per-root exclusion files.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/readmetree/internal/utils"
)

const commentPrefix = "#"

// LoadExclusionFile reads one pattern per line from ignoreFilePath, skipping blanks and comments.
// A missing file yields no patterns.
//
// #nosec G304
func LoadExclusionFile(ignoreFilePath string, logger *zap.Logger) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer func() {
		if closeError := fileHandle.Close(); closeError != nil && logger != nil {
			logger.Warn("failed to close exclusion file", zap.String("path", ignoreFilePath), zap.Error(closeError))
		}
	}()

	var patterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		patterns = append(patterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return patterns, nil
}

// CombineExclusionPatterns appends the root's exclusion file patterns and the
// command-line patterns to the configured ones, keeping the first occurrence of each.
func CombineExclusionPatterns(rootDirectoryPath string, configuredPatterns []string, exclusionPatterns []string, logger *zap.Logger) ([]string, error) {
	combinedPatterns := append([]string{}, configuredPatterns...)

	ignoreFilePath := filepath.Join(rootDirectoryPath, utils.IgnoreFileName)
	filePatterns, loadError := LoadExclusionFile(ignoreFilePath, logger)
	if loadError != nil {
		return nil, fmt.Errorf("loading %s from %s: %w", utils.IgnoreFileName, rootDirectoryPath, loadError)
	}
	combinedPatterns = append(combinedPatterns, filePatterns...)
	combinedPatterns = append(combinedPatterns, exclusionPatterns...)

	return utils.NormalizePatterns(combinedPatterns), nil
}
