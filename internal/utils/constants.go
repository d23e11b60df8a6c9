package utils

// EmptyString represents a reusable empty string constant.
const EmptyString = ""

// GitDirectoryName marks the repository root searched for by version detection.
const GitDirectoryName = ".git"

const (
	// ConfigFileName is the name of the configuration file in both the global and local locations.
	ConfigFileName = "config.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".readmetree"
	// IgnoreFileName lists extra exclusion patterns inside a rendered root.
	IgnoreFileName = ".treeignore"

	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes fatal command failures.
	ApplicationExecutionFailedMessage = "readmetree failed"
)

// DefaultExcludePatterns are applied when no configuration supplies exclusion patterns.
var DefaultExcludePatterns = []string{"node_modules", ".git", ".vscode"}
