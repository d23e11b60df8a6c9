// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/readmetree/internal/config"
	"github.com/temirov/readmetree/internal/prompt"
	"github.com/temirov/readmetree/internal/services/clipboard"
	"github.com/temirov/readmetree/internal/tokenizer"
	"github.com/temirov/readmetree/internal/treegen"
	"github.com/temirov/readmetree/internal/types"
	"github.com/temirov/readmetree/internal/utils"
)

const (
	exclusionFlagName     = "e"
	depthFlagName         = "depth"
	filesFlagName         = "files"
	bulletsFlagName       = "bullets"
	labelFlagName         = "label"
	actionFlagName        = "action"
	copyFlagName          = "copy"
	outputFlagName        = "output"
	insertFlagName        = "insert"
	iconsFlagName         = "icons"
	tokensFlagName        = "tokens"
	modelFlagName         = "model"
	timeoutFlagName       = "timeout"
	interactiveFlagName   = "interactive"
	forcePromptFlagName   = "force-prompt"
	configFlagName        = "config"
	globalFlagName        = "global"
	forceFlagName         = "force"
	versionFlagName       = "version"
	versionTemplate       = "readmetree version: %s\n"
	defaultPath           = "."
	defaultTokenizerModel = "gpt-4o"
	rootUse               = "readmetree"
	rootShortDescription  = "readmetree renders folder structures for documentation"
	rootLongDescription   = `readmetree renders a directory as an ASCII tree or a Markdown list.
Use the ascii command for box-drawing output and the markdown command for README-ready text.
Defaults come from ~/.readmetree/config.yaml and ./config.yaml; flags override both.`
	versionFlagDescription = "display application version"

	asciiUse                 = "ascii [paths...]"
	markdownUse              = "markdown [paths...]"
	initUse                  = "init"
	asciiAlias               = "a"
	markdownAlias            = "md"
	asciiShortDescription    = "render an ASCII tree (" + asciiAlias + ")"
	markdownShortDescription = "render a tree for Markdown documents (" + markdownAlias + ")"
	initShortDescription     = "write a default configuration file"

	// asciiLongDescription provides detailed help for the ascii command.
	asciiLongDescription = `Render one tree per path using box-drawing connectors.
Directories come before files; names are ordered alphabetically within each group.`
	// asciiUsageExample demonstrates ascii command usage.
	asciiUsageExample = `  # Two levels of the current directory
  readmetree ascii --depth 2

  # Directories only, copied to the clipboard
  readmetree ascii --files=false --copy ./src`

	// markdownLongDescription provides detailed help for the markdown command.
	markdownLongDescription = `Render one tree per path for a Markdown document.
By default the ASCII tree is wrapped in a fenced code block; --bullets renders a nested list instead.
The closing fence follows the last tree line directly, with no blank line before it,
and the fenced block ends with a newline.`
	// markdownUsageExample demonstrates markdown command usage.
	markdownUsageExample = `  # Insert the tree into README.md before line 12
  readmetree markdown --insert README.md:12

  # Write folder-structure.md into the project root
  readmetree md --action file -e dist -e "*.log"`

	initLongDescription = `Write the default configuration template to ./config.yaml,
or to ~/.readmetree/config.yaml with --global.`

	exclusionFlagDescription   = "exclude entries named pattern; a trailing * matches by prefix"
	depthFlagDescription       = "maximum depth below the root (-1 for unlimited)"
	filesFlagDescription       = "include files, not only directories"
	bulletsFlagDescription     = "render a Markdown bullet list instead of a fenced ASCII tree"
	labelFlagDescription       = "root line label (defaults to the directory name)"
	actionFlagDescription      = "what to do with the tree: print, copy, file, insert"
	copyFlagDescription        = "copy the tree to the clipboard (same as --action copy)"
	outputFlagDescription      = "file name for --action file, relative to the rendered root"
	insertFlagDescription      = "insert into FILE before LINE (FILE:LINE); implies --action insert"
	iconsFlagDescription       = "prefix entries with file type icons"
	tokensFlagDescription      = "log a token estimate of the output"
	modelFlagDescription       = "tokenizer model to use for token counting"
	timeoutFlagDescription     = "abort rendering after this duration (0 disables)"
	interactiveFlagDescription = "ask for depth, files and action before rendering"
	forcePromptFlagDescription = "ask questions even when stdin is not a terminal"
	configFlagDescription      = "path to a configuration file"
	globalFlagDescription      = "write the configuration under the home directory"
	forceFlagDescription       = "overwrite an existing configuration file"

	messageConfigurationWritten = "configuration written"
	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	// errorAbsolutePathFormat reports failure to resolve an absolute path.
	errorAbsolutePathFormat = "abs failed for '%s': %w"
	// errorPathMissingFormat reports a missing path.
	errorPathMissingFormat = "path '%s' does not exist"
	// errorStatFormat reports failure to retrieve file statistics.
	errorStatFormat = "stat failed for '%s': %w"
	// errorNoValidPaths indicates that all paths are invalid.
	errorNoValidPaths = "no valid paths"
)

// environment carries the process resources commands read from and write to.
type environment struct {
	stdout     io.Writer
	stderr     io.Writer
	stdin      io.Reader
	isTerminal func() bool
	copier     clipboard.Copier
	reader     treegen.Reader
	logger     *zap.Logger
	newCounter func(tokenizer.Config) (tokenizer.Counter, string, error)
	getwd      func() (string, error)
}

func defaultEnvironment(logger *zap.Logger) environment {
	return environment{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		stdin:      os.Stdin,
		isTerminal: func() bool { return prompt.IsTerminal(os.Stdin) },
		copier:     clipboard.NewService(),
		reader:     treegen.NewOSReader(),
		logger:     logger,
		newCounter: tokenizer.NewCounter,
		getwd:      os.Getwd,
	}
}

// Execute runs the readmetree application.
func Execute(logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	rootCommand := createRootCommand(defaultEnvironment(logger))
	arguments := normalizeCopyFlagArguments(os.Args[1:])
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, arguments))
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(env environment) *cobra.Command {
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				return nil
			}
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Fprintf(env.stdout, versionTemplate, utils.GetApplicationVersion())
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.AddCommand(
		createTreeCommand(types.CommandASCII, env, &showVersion),
		createTreeCommand(types.CommandMarkdown, env, &showVersion),
		createInitCommand(env),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// treeOptions stores the flags shared by the ascii and markdown commands.
type treeOptions struct {
	exclusionPatterns []string
	depth             int
	includeFiles      bool
	bullets           bool
	label             string
	action            string
	outputFile        string
	insert            string
	icons             bool
	tokens            bool
	model             string
	timeout           time.Duration
	interactive       bool
	forcePrompt       bool
	configPath        string
}

// createTreeCommand returns the ascii or markdown subcommand.
func createTreeCommand(commandName string, env environment, showVersion *bool) *cobra.Command {
	var options treeOptions

	treeCommand := &cobra.Command{
		Args: cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion != nil && *showVersion {
				return nil
			}
			if len(arguments) == 0 {
				arguments = []string{defaultPath}
			}
			return runTreeCommand(command.Context(), commandName, arguments, options, changedFlags(command), env)
		},
	}
	switch commandName {
	case types.CommandMarkdown:
		treeCommand.Use = markdownUse
		treeCommand.Aliases = []string{markdownAlias}
		treeCommand.Short = markdownShortDescription
		treeCommand.Long = markdownLongDescription
		treeCommand.Example = markdownUsageExample
	default:
		treeCommand.Use = asciiUse
		treeCommand.Aliases = []string{asciiAlias}
		treeCommand.Short = asciiShortDescription
		treeCommand.Long = asciiLongDescription
		treeCommand.Example = asciiUsageExample
	}

	flagSet := treeCommand.Flags()
	flagSet.StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	flagSet.IntVar(&options.depth, depthFlagName, types.UnlimitedDepth, depthFlagDescription)
	flagSet.StringVar(&options.label, labelFlagName, "", labelFlagDescription)
	registerActionFlags(flagSet, &options.action)
	flagSet.StringVar(&options.outputFile, outputFlagName, "", outputFlagDescription)
	flagSet.StringVar(&options.insert, insertFlagName, "", insertFlagDescription)
	flagSet.StringVar(&options.model, modelFlagName, defaultTokenizerModel, modelFlagDescription)
	flagSet.DurationVar(&options.timeout, timeoutFlagName, 0, timeoutFlagDescription)
	flagSet.StringVar(&options.configPath, configFlagName, "", configFlagDescription)

	booleanFlags := []booleanFlagDefinition{
		{target: &options.includeFiles, name: filesFlagName, defaultValue: true, usage: filesFlagDescription},
		{target: &options.icons, name: iconsFlagName, defaultValue: false, usage: iconsFlagDescription},
		{target: &options.tokens, name: tokensFlagName, defaultValue: false, usage: tokensFlagDescription},
		{target: &options.interactive, name: interactiveFlagName, defaultValue: false, usage: interactiveFlagDescription},
		{target: &options.forcePrompt, name: forcePromptFlagName, defaultValue: false, usage: forcePromptFlagDescription},
	}
	if commandName == types.CommandMarkdown {
		booleanFlags = append(booleanFlags, booleanFlagDefinition{target: &options.bullets, name: bulletsFlagName, defaultValue: false, usage: bulletsFlagDescription})
	}
	registerBooleanFlags(flagSet, booleanFlags)
	return treeCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand(env environment) *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			workingDirectory, workingDirectoryError := env.getwd()
			if workingDirectoryError != nil {
				return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
			}
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: workingDirectory,
			})
			if initError != nil {
				return initError
			}
			env.logger.Info(messageConfigurationWritten, zap.String("path", writtenPath))
			return nil
		},
	}
	registerBooleanFlags(initCommand.Flags(), []booleanFlagDefinition{
		{target: &global, name: globalFlagName, defaultValue: false, usage: globalFlagDescription},
		{target: &force, name: forceFlagName, defaultValue: false, usage: forceFlagDescription},
	})
	return initCommand
}

// changedFlags lists the flags explicitly set on the command line.
func changedFlags(command *cobra.Command) map[string]bool {
	changed := map[string]bool{}
	for _, name := range []string{
		depthFlagName, filesFlagName, bulletsFlagName, actionFlagName, copyFlagName,
		outputFlagName, iconsFlagName, tokensFlagName, timeoutFlagName,
	} {
		if flag := command.Flags().Lookup(name); flag != nil && flag.Changed {
			changed[name] = true
		}
	}
	return changed
}

// resolveAndValidatePaths converts input paths to absolute form and validates their existence.
// Repeated paths are rendered once, in the position of their first occurrence.
func resolveAndValidatePaths(inputs []string) ([]types.ValidatedPath, error) {
	seen := make(map[string]struct{})
	var result []types.ValidatedPath
	for _, inputPath := range inputs {
		absolutePath, absolutePathError := filepath.Abs(inputPath)
		if absolutePathError != nil {
			return nil, fmt.Errorf(errorAbsolutePathFormat, inputPath, absolutePathError)
		}
		cleanPath := filepath.Clean(absolutePath)
		if _, ok := seen[cleanPath]; ok {
			continue
		}
		info, fileStatusError := os.Stat(cleanPath)
		if fileStatusError != nil {
			if os.IsNotExist(fileStatusError) {
				return nil, fmt.Errorf(errorPathMissingFormat, inputPath)
			}
			return nil, fmt.Errorf(errorStatFormat, inputPath, fileStatusError)
		}
		seen[cleanPath] = struct{}{}
		result = append(result, types.ValidatedPath{AbsolutePath: cleanPath, IsDir: info.IsDir()})
	}
	if len(result) == 0 {
		return nil, fmt.Errorf(errorNoValidPaths)
	}
	return result, nil
}
