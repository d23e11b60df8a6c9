// Package treegen renders a directory as an ASCII or Markdown tree.
package treegen

import (
	"errors"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"github.com/temirov/readmetree/internal/types"
)

var errEmptyRootPath = errors.New("root path is empty")

// TreeBuilder renders directory trees read through Reader.
type TreeBuilder struct {
	Reader Reader
	Locale language.Tag
}

// NewTreeBuilder constructs a TreeBuilder ordering names by the root locale.
func NewTreeBuilder(reader Reader) *TreeBuilder {
	return &TreeBuilder{Reader: reader, Locale: language.Und}
}

// treeWalk holds the state of one render.
type treeWalk struct {
	reader   Reader
	config   types.TraversalConfig
	style    lineStyle
	ordering *entryOrdering
	output   strings.Builder
}

// Render walks config.RootPath and returns the tree in config.Format.
// Any failure to read a visited directory aborts the render with a *TraversalError.
func (treeBuilder *TreeBuilder) Render(config types.TraversalConfig) (string, error) {
	style, styleError := styleForFormat(config.Format, config.Icons)
	if styleError != nil {
		return "", styleError
	}
	if config.RootPath == "" {
		return "", newTraversalError(config.RootPath, errEmptyRootPath)
	}
	isDirectory, statError := treeBuilder.Reader.IsDirectory(config.RootPath)
	if statError != nil {
		return "", newTraversalError(config.RootPath, statError)
	}
	if !isDirectory {
		return "", newTraversalError(config.RootPath, ErrNotDirectory)
	}

	walk := &treeWalk{
		reader:   treeBuilder.Reader,
		config:   config,
		style:    style,
		ordering: newEntryOrdering(treeBuilder.Locale),
	}
	walk.output.WriteString(style.rootLine(config.RootLabel))
	if descendError := walk.descend(config.RootPath, style.initialPrefix(), 0); descendError != nil {
		return "", descendError
	}
	return walk.output.String(), nil
}

// RenderASCII renders the tree with box-drawing connectors regardless of config.Format.
func (treeBuilder *TreeBuilder) RenderASCII(config types.TraversalConfig) (string, error) {
	config.Format = types.FormatASCII
	return treeBuilder.Render(config)
}

// RenderMarkdown renders the tree as a nested bullet list regardless of config.Format.
func (treeBuilder *TreeBuilder) RenderMarkdown(config types.TraversalConfig) (string, error) {
	config.Format = types.FormatMarkdown
	return treeBuilder.Render(config)
}

func (walk *treeWalk) descend(directoryPath string, prefix string, depth int) error {
	if walk.config.MaxDepth != types.UnlimitedDepth && depth >= walk.config.MaxDepth {
		return nil
	}
	entries, listError := walk.reader.ListDirectory(directoryPath)
	if listError != nil {
		return newTraversalError(directoryPath, listError)
	}
	visibleEntries := walk.visible(entries)
	walk.ordering.sortEntries(visibleEntries)

	for entryIndex, entry := range visibleEntries {
		isLast := entryIndex == len(visibleEntries)-1
		walk.output.WriteString(walk.style.childLine(prefix, entry.Name, entry.IsDirectory, isLast))
		if !entry.IsDirectory {
			continue
		}
		childPath := filepath.Join(directoryPath, entry.Name)
		if descendError := walk.descend(childPath, walk.style.nextPrefix(prefix, isLast), depth+1); descendError != nil {
			return descendError
		}
	}
	return nil
}

// visible drops excluded entries and, when files are not wanted, non-directories.
func (walk *treeWalk) visible(entries []types.DirEntry) []types.DirEntry {
	visibleEntries := make([]types.DirEntry, 0, len(entries))
	for _, entry := range entries {
		if ShouldExclude(entry.Name, walk.config.ExcludePatterns) {
			continue
		}
		if !walk.config.IncludeFiles && !entry.IsDirectory {
			continue
		}
		visibleEntries = append(visibleEntries, entry)
	}
	return visibleEntries
}

// Render renders config using the host filesystem.
func Render(config types.TraversalConfig) (string, error) {
	return NewTreeBuilder(NewOSReader()).Render(config)
}

// RenderASCII renders config as an ASCII tree using the host filesystem.
func RenderASCII(config types.TraversalConfig) (string, error) {
	return NewTreeBuilder(NewOSReader()).RenderASCII(config)
}

// RenderMarkdown renders config as a Markdown list using the host filesystem.
func RenderMarkdown(config types.TraversalConfig) (string, error) {
	return NewTreeBuilder(NewOSReader()).RenderMarkdown(config)
}
