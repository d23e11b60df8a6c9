package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/readmetree/internal/config"
	"github.com/temirov/readmetree/internal/output"
	"github.com/temirov/readmetree/internal/prompt"
	"github.com/temirov/readmetree/internal/tokenizer"
	"github.com/temirov/readmetree/internal/treegen"
	"github.com/temirov/readmetree/internal/types"
)

const (
	errorInvalidDepthFormat     = "invalid depth %d: must be -1 or greater"
	errorInvalidTimeoutFormat   = "invalid timeout %q: %w"
	errorConfiguredActionFormat = "configured action %q is not one of print, copy, file, insert"
	errorInsertWithoutTarget    = "insert action requires --insert FILE:LINE"
	errorNotTerminal            = "interactive mode requires a terminal; use --force-prompt to read answers from stdin"
	errorRenderTimeoutFormat    = "rendering %s: %w"

	messageTokenEstimate = "token estimate"
	warningTokenCount    = "failed to count tokens"
)

// renderSettings are the command options after configuration, flags and prompts are applied.
type renderSettings struct {
	excludePatterns []string
	flagPatterns    []string
	maxDepth        int
	includeFiles    bool
	bullets         bool
	icons           bool
	action          string
	outputFile      string
	insert          types.InsertTarget
	tokens          bool
	timeout         time.Duration
}

// runTreeCommand renders every path and delivers the result to the selected sink.
func runTreeCommand(
	ctx context.Context,
	commandName string,
	paths []string,
	options treeOptions,
	changed map[string]bool,
	env environment,
) error {
	if ctx == nil {
		ctx = context.Background()
	}
	workingDirectory, workingDirectoryError := env.getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}
	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: options.configPath,
	})
	if configurationError != nil {
		return configurationError
	}

	settings, settingsError := resolveSettings(commandName, applicationConfiguration.Tree.Defaults(), options, changed)
	if settingsError != nil {
		return settingsError
	}
	if options.interactive {
		if !options.forcePrompt && (env.isTerminal == nil || !env.isTerminal()) {
			return errors.New(errorNotTerminal)
		}
		prompter := prompt.NewPrompter(env.stdin, env.stderr)
		answers, askError := prompter.Ask(prompt.Defaults{
			MaxDepth:     settings.maxDepth,
			IncludeFiles: settings.includeFiles,
			Action:       settings.action,
			OutputFile:   settings.outputFile,
		})
		if askError != nil {
			return askError
		}
		settings.maxDepth = answers.MaxDepth
		settings.includeFiles = answers.IncludeFiles
		settings.action = answers.Action
		settings.outputFile = answers.OutputFile
		if answers.Action == types.ActionInsert {
			settings.insert = answers.Insert
		}
	}
	if validationError := settings.validate(); validationError != nil {
		return validationError
	}

	validatedPaths, pathValidationError := resolveAndValidatePaths(paths)
	if pathValidationError != nil {
		return pathValidationError
	}
	requests := make([]types.RenderRequest, 0, len(validatedPaths))
	for _, validatedPath := range validatedPaths {
		request, requestError := buildRenderRequest(commandName, validatedPath, options.label, settings, env.logger)
		if requestError != nil {
			return requestError
		}
		requests = append(requests, request)
	}

	if settings.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.timeout)
		defer cancel()
	}
	texts, renderError := renderAll(ctx, treegen.NewTreeBuilder(env.reader), requests)
	if renderError != nil {
		return renderError
	}

	dispatcher := output.NewDispatcher(env.stdout, env.copier, env.logger)
	if settings.action == types.ActionFile {
		for requestIndex, request := range requests {
			if deliverError := dispatcher.Deliver(request, request.Traversal.RootPath, texts[requestIndex]); deliverError != nil {
				return deliverError
			}
		}
	} else {
		joinedText := output.JoinTrees(texts)
		if deliverError := dispatcher.Deliver(requests[0], requests[0].Traversal.RootPath, joinedText); deliverError != nil {
			return deliverError
		}
	}

	if settings.tokens {
		reportTokenEstimate(env, options.model, output.JoinTrees(texts))
	}
	return nil
}

// resolveSettings layers explicitly set flags over configured defaults.
func resolveSettings(commandName string, defaults config.TreeDefaults, options treeOptions, changed map[string]bool) (renderSettings, error) {
	settings := renderSettings{
		excludePatterns: defaults.ExcludePatterns,
		flagPatterns:    options.exclusionPatterns,
		maxDepth:        defaults.MaxDepth,
		includeFiles:    defaults.IncludeFiles,
		bullets:         defaults.UseMarkdownFormat,
		icons:           defaults.Icons,
		action:          strings.ToLower(strings.TrimSpace(defaults.Action)),
		outputFile:      defaults.OutputFile,
		tokens:          defaults.Tokens,
	}
	if strings.TrimSpace(defaults.Timeout) != "" {
		configuredTimeout, parseError := time.ParseDuration(strings.TrimSpace(defaults.Timeout))
		if parseError != nil {
			return renderSettings{}, fmt.Errorf(errorInvalidTimeoutFormat, defaults.Timeout, parseError)
		}
		settings.timeout = configuredTimeout
	}

	if changed[depthFlagName] {
		settings.maxDepth = options.depth
	}
	if changed[filesFlagName] {
		settings.includeFiles = options.includeFiles
	}
	if changed[bulletsFlagName] {
		settings.bullets = options.bullets
	}
	if changed[iconsFlagName] {
		settings.icons = options.icons
	}
	if changed[actionFlagName] || changed[copyFlagName] {
		settings.action = options.action
	}
	if changed[outputFlagName] {
		settings.outputFile = options.outputFile
	}
	if changed[tokensFlagName] {
		settings.tokens = options.tokens
	}
	if changed[timeoutFlagName] {
		settings.timeout = options.timeout
	}
	if commandName != types.CommandMarkdown {
		settings.bullets = false
	}
	if settings.outputFile == "" {
		settings.outputFile = output.DefaultOutputFileName(commandName)
	}

	if options.insert != "" {
		insertTarget, parseError := output.ParseInsertTarget(options.insert)
		if parseError != nil {
			return renderSettings{}, parseError
		}
		settings.insert = insertTarget
		if !changed[actionFlagName] && !changed[copyFlagName] {
			settings.action = types.ActionInsert
		}
	}
	return settings, nil
}

func (settings renderSettings) validate() error {
	if settings.maxDepth < types.UnlimitedDepth {
		return fmt.Errorf(errorInvalidDepthFormat, settings.maxDepth)
	}
	if !isSupportedAction(settings.action) {
		return fmt.Errorf(errorConfiguredActionFormat, settings.action)
	}
	if settings.action == types.ActionInsert && settings.insert.FilePath == "" {
		return errors.New(errorInsertWithoutTarget)
	}
	return nil
}

func buildRenderRequest(commandName string, path types.ValidatedPath, label string, settings renderSettings, logger *zap.Logger) (types.RenderRequest, error) {
	rootLabel := label
	if rootLabel == "" {
		rootLabel = defaultRootLabel(path.AbsolutePath)
	}
	var exclusionPatterns []string
	if path.IsDir {
		combinedPatterns, combineError := config.CombineExclusionPatterns(path.AbsolutePath, settings.excludePatterns, settings.flagPatterns, logger)
		if combineError != nil {
			return types.RenderRequest{}, combineError
		}
		exclusionPatterns = combinedPatterns
	}

	format := types.FormatASCII
	if settings.bullets {
		format = types.FormatMarkdown
	}
	return types.RenderRequest{
		Traversal: types.TraversalConfig{
			RootPath:        path.AbsolutePath,
			RootLabel:       rootLabel,
			ExcludePatterns: exclusionPatterns,
			MaxDepth:        settings.maxDepth,
			IncludeFiles:    settings.includeFiles,
			Format:          format,
			Icons:           settings.icons,
		},
		FencedOutput: commandName == types.CommandMarkdown && !settings.bullets,
		Action:       settings.action,
		OutputFile:   settings.outputFile,
		Insert:       settings.insert,
	}, nil
}

// defaultRootLabel is the base name of absolutePath; a filesystem root has an empty label.
func defaultRootLabel(absolutePath string) string {
	baseName := filepath.Base(absolutePath)
	if strings.Trim(baseName, string(filepath.Separator)) == "" {
		return ""
	}
	return baseName
}

// renderAll renders each request on its own worker and returns the composed texts in request order.
// The first failure cancels the remaining workers.
func renderAll(ctx context.Context, builder *treegen.TreeBuilder, requests []types.RenderRequest) ([]string, error) {
	group, groupContext := errgroup.WithContext(ctx)
	texts := make([]string, len(requests))
	for requestIndex := range requests {
		requestIndex := requestIndex
		group.Go(func() error {
			request := requests[requestIndex]
			tree, renderError := renderWithContext(groupContext, builder, request.Traversal)
			if renderError != nil {
				return renderError
			}
			texts[requestIndex] = output.Compose(request, tree)
			return nil
		})
	}
	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}
	return texts, nil
}

type renderResult struct {
	tree string
	err  error
}

// renderWithContext runs the synchronous engine on a goroutine and stops waiting when ctx ends.
func renderWithContext(ctx context.Context, builder *treegen.TreeBuilder, traversal types.TraversalConfig) (string, error) {
	results := make(chan renderResult, 1)
	go func() {
		tree, renderError := builder.Render(traversal)
		results <- renderResult{tree: tree, err: renderError}
	}()
	select {
	case <-ctx.Done():
		return "", fmt.Errorf(errorRenderTimeoutFormat, traversal.RootPath, ctx.Err())
	case result := <-results:
		return result.tree, result.err
	}
}

func reportTokenEstimate(env environment, model string, text string) {
	if env.newCounter == nil {
		return
	}
	counter, resolvedModel, counterError := env.newCounter(tokenizer.Config{Model: model})
	if counterError != nil {
		env.logger.Warn(warningTokenCount, zap.Error(counterError))
		return
	}
	result, countError := tokenizer.CountText(counter, text)
	if countError != nil {
		env.logger.Warn(warningTokenCount, zap.Error(countError))
		return
	}
	if result.Counted {
		env.logger.Info(messageTokenEstimate, zap.Int("tokens", result.Tokens), zap.String("model", resolvedModel))
	}
}
