// Package types defines every cross‑package data structure used by the readmetree CLI.
package types

const (
	FormatASCII    = "ascii"
	FormatMarkdown = "markdown"

	CommandASCII    = "ascii"
	CommandMarkdown = "markdown"

	ActionPrint  = "print"
	ActionCopy   = "copy"
	ActionFile   = "file"
	ActionInsert = "insert"

	// UnlimitedDepth disables depth truncation.
	UnlimitedDepth = -1
)

// TraversalConfig is the fully resolved input of a single render.
type TraversalConfig struct {
	RootPath        string
	RootLabel       string
	ExcludePatterns []string
	MaxDepth        int
	IncludeFiles    bool
	Format          string
	Icons           bool
}

// DirEntry is one child returned by a directory listing.
type DirEntry struct {
	Name        string
	IsDirectory bool
}

// ValidatedPath is an absolute input path that already passed existence checks.
type ValidatedPath struct {
	AbsolutePath string
	IsDir        bool
}

// InsertTarget names a file and the 1-based line before which text is inserted.
type InsertTarget struct {
	FilePath string
	Line     int
}

// RenderRequest couples a traversal configuration with the sink that consumes its output.
type RenderRequest struct {
	Traversal    TraversalConfig
	FencedOutput bool
	Action       string
	OutputFile   string
	Insert       InsertTarget
}
