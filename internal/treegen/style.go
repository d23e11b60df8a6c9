package treegen

import (
	"fmt"

	"github.com/temirov/readmetree/internal/types"
)

const (
	directorySuffix = "/"
	lineTerminator  = "\n"

	branchConnector     = "├── "
	lastBranchConnector = "└── "
	branchContinuation  = "│   "
	lastBranchPadding   = "    "

	markdownBullet     = "- "
	markdownIndentUnit = "  "

	errorUnsupportedFormat = "unsupported format %q"
)

// lineStyle renders the lines of one output encoding.
type lineStyle interface {
	rootLine(label string) string
	initialPrefix() string
	childLine(prefix string, name string, isDirectory bool, isLast bool) string
	nextPrefix(prefix string, isLast bool) string
}

type asciiStyle struct{}

func (asciiStyle) rootLine(label string) string {
	return label + directorySuffix + lineTerminator
}

func (asciiStyle) initialPrefix() string {
	return ""
}

func (asciiStyle) childLine(prefix string, name string, isDirectory bool, isLast bool) string {
	connector := branchConnector
	if isLast {
		connector = lastBranchConnector
	}
	return prefix + connector + displayName(name, isDirectory) + lineTerminator
}

func (asciiStyle) nextPrefix(prefix string, isLast bool) string {
	if isLast {
		return prefix + lastBranchPadding
	}
	return prefix + branchContinuation
}

type markdownStyle struct{}

func (markdownStyle) rootLine(label string) string {
	return markdownBullet + label + directorySuffix + lineTerminator
}

func (markdownStyle) initialPrefix() string {
	return markdownIndentUnit
}

func (markdownStyle) childLine(indent string, name string, isDirectory bool, _ bool) string {
	return indent + markdownBullet + displayName(name, isDirectory) + lineTerminator
}

func (markdownStyle) nextPrefix(indent string, _ bool) string {
	return indent + markdownIndentUnit
}

// iconStyle prefixes every child name with its file-type icon.
type iconStyle struct {
	lineStyle
}

func (style iconStyle) childLine(prefix string, name string, isDirectory bool, isLast bool) string {
	icon := iconForEntry(name, isDirectory)
	if icon != "" {
		name = icon + " " + name
	}
	return style.lineStyle.childLine(prefix, name, isDirectory, isLast)
}

func displayName(name string, isDirectory bool) string {
	if isDirectory {
		return name + directorySuffix
	}
	return name
}

func styleForFormat(format string, withIcons bool) (lineStyle, error) {
	var style lineStyle
	switch format {
	case types.FormatASCII:
		style = asciiStyle{}
	case types.FormatMarkdown:
		style = markdownStyle{}
	default:
		return nil, fmt.Errorf(errorUnsupportedFormat, format)
	}
	if withIcons {
		return iconStyle{lineStyle: style}, nil
	}
	return style, nil
}
