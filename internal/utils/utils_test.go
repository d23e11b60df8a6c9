package utils_test

import (
	"testing"

	"github.com/temirov/readmetree/internal/utils"
)

// TestDeduplicatePatterns verifies that DeduplicatePatterns removes duplicate patterns.
func TestDeduplicatePatterns(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		patterns []string
		expected []string
	}{
		{
			testName: "removes duplicates",
			patterns: []string{"node_modules", ".git", "node_modules"},
			expected: []string{"node_modules", ".git"},
		},
		{
			testName: "keeps unique",
			patterns: []string{"dist", "build*"},
			expected: []string{"dist", "build*"},
		},
	}
	for index, testCase := range testCases {
		actual := utils.DeduplicatePatterns(testCase.patterns)
		assertPatterns(testingInstance, index, testCase.testName, testCase.expected, actual)
	}
}

// TestNormalizePatterns verifies trimming, blank removal and first-occurrence order.
func TestNormalizePatterns(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		patterns []string
		expected []string
	}{
		{
			testName: "trims and drops blanks",
			patterns: []string{"  dist ", "", "   ", "*.log"},
			expected: []string{"dist", "*.log"},
		},
		{
			testName: "deduplicates after trimming",
			patterns: []string{".vscode", " .vscode", "coverage"},
			expected: []string{".vscode", "coverage"},
		},
		{
			testName: "nil input",
			patterns: nil,
			expected: []string{},
		},
	}
	for index, testCase := range testCases {
		actual := utils.NormalizePatterns(testCase.patterns)
		assertPatterns(testingInstance, index, testCase.testName, testCase.expected, actual)
	}
}

func assertPatterns(testingInstance *testing.T, index int, testName string, expected []string, actual []string) {
	testingInstance.Helper()
	if len(actual) != len(expected) {
		testingInstance.Errorf("case %d (%s): expected length %d, got %d", index, testName, len(expected), len(actual))
		return
	}
	for position, value := range actual {
		if value != expected[position] {
			testingInstance.Errorf("case %d (%s): expected %s at position %d, got %s", index, testName, expected[position], position, value)
		}
	}
}

// TestNewApplicationLogger verifies the console logger can be constructed and used.
func TestNewApplicationLogger(testingInstance *testing.T) {
	logger, loggerError := utils.NewApplicationLogger()
	if loggerError != nil {
		testingInstance.Fatalf("NewApplicationLogger: %v", loggerError)
	}
	if logger == nil {
		testingInstance.Fatalf("expected logger instance")
	}
	logger.Info("tree structure written")
}

// TestDefaultExcludePatterns verifies the built-in exclusions.
func TestDefaultExcludePatterns(testingInstance *testing.T) {
	expected := []string{"node_modules", ".git", ".vscode"}
	assertPatterns(testingInstance, 0, "defaults", expected, utils.DefaultExcludePatterns)
}
