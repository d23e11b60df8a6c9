package treegen

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/readmetree/internal/types"
)

const (
	projectRoot  = "/proj"
	projectLabel = "proj"
)

// newProjectFilesystem builds proj/{src/a.ts, README.md} in memory.
func newProjectFilesystem(t *testing.T) afero.Fs {
	t.Helper()
	filesystem := afero.NewMemMapFs()
	require.NoError(t, filesystem.MkdirAll(filepath.Join(projectRoot, "src"), 0o755))
	require.NoError(t, afero.WriteFile(filesystem, filepath.Join(projectRoot, "src", "a.ts"), []byte("export {}"), 0o644))
	require.NoError(t, afero.WriteFile(filesystem, filepath.Join(projectRoot, "README.md"), []byte("# proj"), 0o644))
	return filesystem
}

func projectConfig(format string) types.TraversalConfig {
	return types.TraversalConfig{
		RootPath:     projectRoot,
		RootLabel:    projectLabel,
		MaxDepth:     types.UnlimitedDepth,
		IncludeFiles: true,
		Format:       format,
	}
}

func TestRenderProjectScenarios(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(config *types.TraversalConfig)
		expected string
	}{
		{
			name:   "ascii",
			mutate: func(config *types.TraversalConfig) {},
			expected: "proj/\n" +
				"├── src/\n" +
				"│   └── a.ts\n" +
				"└── README.md\n",
		},
		{
			name:   "markdown",
			mutate: func(config *types.TraversalConfig) { config.Format = types.FormatMarkdown },
			expected: "- proj/\n" +
				"  - src/\n" +
				"    - a.ts\n" +
				"  - README.md\n",
		},
		{
			name:   "excluded_readme_makes_src_last",
			mutate: func(config *types.TraversalConfig) { config.ExcludePatterns = []string{"README.md"} },
			expected: "proj/\n" +
				"└── src/\n" +
				"    └── a.ts\n",
		},
		{
			name:   "depth_one_hides_nested_file",
			mutate: func(config *types.TraversalConfig) { config.MaxDepth = 1 },
			expected: "proj/\n" +
				"├── src/\n" +
				"└── README.md\n",
		},
		{
			name:     "depth_zero_renders_root_only",
			mutate:   func(config *types.TraversalConfig) { config.MaxDepth = 0 },
			expected: "proj/\n",
		},
		{
			name:     "markdown_depth_zero_renders_root_only",
			mutate:   func(config *types.TraversalConfig) { config.MaxDepth = 0; config.Format = types.FormatMarkdown },
			expected: "- proj/\n",
		},
		{
			name:   "directories_only",
			mutate: func(config *types.TraversalConfig) { config.IncludeFiles = false },
			expected: "proj/\n" +
				"└── src/\n",
		},
		{
			name:   "wildcard_exclusion",
			mutate: func(config *types.TraversalConfig) { config.ExcludePatterns = []string{"READ*"} },
			expected: "proj/\n" +
				"└── src/\n" +
				"    └── a.ts\n",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			builder := NewTreeBuilder(NewReader(newProjectFilesystem(t)))
			config := projectConfig(types.FormatASCII)
			testCase.mutate(&config)
			rendered, renderError := builder.Render(config)
			require.NoError(t, renderError)
			assert.Equal(t, testCase.expected, rendered)
		})
	}
}

func TestRenderASCIIAndMarkdownOverrideFormat(t *testing.T) {
	builder := NewTreeBuilder(NewReader(newProjectFilesystem(t)))
	config := projectConfig("unused")

	asciiTree, asciiError := builder.RenderASCII(config)
	require.NoError(t, asciiError)
	assert.True(t, strings.HasPrefix(asciiTree, "proj/\n├── "))

	markdownTree, markdownError := builder.RenderMarkdown(config)
	require.NoError(t, markdownError)
	assert.True(t, strings.HasPrefix(markdownTree, "- proj/\n  - "))
}

func TestRenderNestedConnectors(t *testing.T) {
	filesystem := afero.NewMemMapFs()
	for _, directory := range []string{"/root/lib/inner", "/root/pkg"} {
		require.NoError(t, filesystem.MkdirAll(directory, 0o755))
	}
	for _, file := range []string{"/root/lib/inner/deep.go", "/root/lib/lib.go", "/root/pkg/pkg.go", "/root/main.go"} {
		require.NoError(t, afero.WriteFile(filesystem, file, nil, 0o644))
	}
	builder := NewTreeBuilder(NewReader(filesystem))
	config := types.TraversalConfig{RootPath: "/root", RootLabel: "root", MaxDepth: types.UnlimitedDepth, IncludeFiles: true, Format: types.FormatASCII}

	rendered, renderError := builder.Render(config)
	require.NoError(t, renderError)
	expected := "root/\n" +
		"├── lib/\n" +
		"│   ├── inner/\n" +
		"│   │   └── deep.go\n" +
		"│   └── lib.go\n" +
		"├── pkg/\n" +
		"│   └── pkg.go\n" +
		"└── main.go\n"
	assert.Equal(t, expected, rendered)

	config.Format = types.FormatMarkdown
	renderedMarkdown, markdownError := builder.Render(config)
	require.NoError(t, markdownError)
	expectedMarkdown := "- root/\n" +
		"  - lib/\n" +
		"    - inner/\n" +
		"      - deep.go\n" +
		"    - lib.go\n" +
		"  - pkg/\n" +
		"    - pkg.go\n" +
		"  - main.go\n"
	assert.Equal(t, expectedMarkdown, renderedMarkdown)
}

func TestRenderDirectoriesPrecedeFiles(t *testing.T) {
	filesystem := afero.NewMemMapFs()
	require.NoError(t, filesystem.MkdirAll("/mixed/zeta", 0o755))
	require.NoError(t, filesystem.MkdirAll("/mixed/Alpha", 0o755))
	for _, file := range []string{"/mixed/b.txt", "/mixed/A.txt", "/mixed/a.txt"} {
		require.NoError(t, afero.WriteFile(filesystem, file, nil, 0o644))
	}
	builder := NewTreeBuilder(NewReader(filesystem))
	config := types.TraversalConfig{RootPath: "/mixed", RootLabel: "mixed", MaxDepth: types.UnlimitedDepth, IncludeFiles: true, Format: types.FormatMarkdown}

	rendered, renderError := builder.Render(config)
	require.NoError(t, renderError)
	expected := "- mixed/\n" +
		"  - Alpha/\n" +
		"  - zeta/\n" +
		"  - a.txt\n" +
		"  - A.txt\n" +
		"  - b.txt\n"
	assert.Equal(t, expected, rendered)
}

func TestRenderLineCountMatchesSurvivingEntries(t *testing.T) {
	filesystem := newProjectFilesystem(t)
	require.NoError(t, filesystem.MkdirAll(filepath.Join(projectRoot, "node_modules", "dep"), 0o755))
	require.NoError(t, afero.WriteFile(filesystem, filepath.Join(projectRoot, "node_modules", "dep", "index.js"), nil, 0o644))
	builder := NewTreeBuilder(NewReader(filesystem))

	for _, format := range []string{types.FormatASCII, types.FormatMarkdown} {
		t.Run(format, func(t *testing.T) {
			config := projectConfig(format)
			config.ExcludePatterns = []string{"node_*"}
			rendered, renderError := builder.Render(config)
			require.NoError(t, renderError)
			lines := strings.Split(strings.TrimSuffix(rendered, "\n"), "\n")
			assert.Len(t, lines, 4)
			assert.NotContains(t, rendered, "node_modules")
			assert.False(t, strings.HasSuffix(rendered, "\n\n"))
		})
	}
}

func TestRenderMarkdownParsesAsList(t *testing.T) {
	builder := NewTreeBuilder(NewReader(newProjectFilesystem(t)))
	rendered, renderError := builder.Render(projectConfig(types.FormatMarkdown))
	require.NoError(t, renderError)

	document := markdown.Parse([]byte(rendered), parser.NewWithExtensions(parser.CommonExtensions))
	listItemCount := 0
	ast.WalkFunc(document, func(node ast.Node, entering bool) ast.WalkStatus {
		if _, isListItem := node.(*ast.ListItem); isListItem && entering {
			listItemCount++
		}
		return ast.GoToNext
	})
	assert.Equal(t, strings.Count(rendered, "\n"), listItemCount)
}

func TestRenderWithIconsKeepsNames(t *testing.T) {
	builder := NewTreeBuilder(NewReader(newProjectFilesystem(t)))
	config := projectConfig(types.FormatASCII)
	config.Icons = true

	rendered, renderError := builder.Render(config)
	require.NoError(t, renderError)
	lines := strings.Split(strings.TrimSuffix(rendered, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "proj/", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "├── "))
	assert.True(t, strings.HasSuffix(lines[1], " src/"))
	assert.True(t, strings.HasSuffix(lines[3], " README.md"))
}

func TestRenderRootErrors(t *testing.T) {
	filesystem := newProjectFilesystem(t)
	builder := NewTreeBuilder(NewReader(filesystem))

	testCases := []struct {
		name        string
		rootPath    string
		expectCause error
	}{
		{name: "missing_root", rootPath: "/missing", expectCause: fs.ErrNotExist},
		{name: "file_root", rootPath: filepath.Join(projectRoot, "README.md"), expectCause: ErrNotDirectory},
		{name: "empty_root", rootPath: "", expectCause: errEmptyRootPath},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			config := projectConfig(types.FormatASCII)
			config.RootPath = testCase.rootPath
			rendered, renderError := builder.Render(config)
			require.Error(t, renderError)
			assert.Empty(t, rendered)

			var traversalError *TraversalError
			require.True(t, errors.As(renderError, &traversalError))
			assert.Equal(t, testCase.rootPath, traversalError.Path)
			assert.ErrorIs(t, renderError, testCase.expectCause)
		})
	}
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	builder := NewTreeBuilder(NewReader(newProjectFilesystem(t)))
	_, renderError := builder.Render(projectConfig("xml"))
	require.Error(t, renderError)
	var traversalError *TraversalError
	assert.False(t, errors.As(renderError, &traversalError))
}

// vanishingReader fails listing one directory, as when it is removed mid-walk.
type vanishingReader struct {
	Reader
	vanishedPath string
}

func (reader vanishingReader) ListDirectory(path string) ([]types.DirEntry, error) {
	if path == reader.vanishedPath {
		return nil, os.ErrNotExist
	}
	return reader.Reader.ListDirectory(path)
}

func TestRenderAbortsWhenNestedDirectoryFails(t *testing.T) {
	vanishedPath := filepath.Join(projectRoot, "src")
	reader := vanishingReader{Reader: NewReader(newProjectFilesystem(t)), vanishedPath: vanishedPath}
	builder := NewTreeBuilder(reader)

	rendered, renderError := builder.Render(projectConfig(types.FormatASCII))
	require.Error(t, renderError)
	assert.Empty(t, rendered)

	var traversalError *TraversalError
	require.True(t, errors.As(renderError, &traversalError))
	assert.Equal(t, vanishedPath, traversalError.Path)
	assert.ErrorIs(t, renderError, os.ErrNotExist)
	assert.Contains(t, renderError.Error(), vanishedPath)
}

func TestRenderSkipsListingBelowMaxDepth(t *testing.T) {
	vanishedPath := filepath.Join(projectRoot, "src")
	reader := vanishingReader{Reader: NewReader(newProjectFilesystem(t)), vanishedPath: vanishedPath}
	builder := NewTreeBuilder(reader)
	config := projectConfig(types.FormatASCII)
	config.MaxDepth = 1

	rendered, renderError := builder.Render(config)
	require.NoError(t, renderError)
	assert.Equal(t, "proj/\n├── src/\n└── README.md\n", rendered)
}

func TestRenderOnHostFilesystem(t *testing.T) {
	rootDirectory := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(rootDirectory, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(rootDirectory, "src", "a.ts"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(rootDirectory, "README.md"), nil, 0o644))

	config := types.TraversalConfig{RootPath: rootDirectory, RootLabel: "proj", MaxDepth: types.UnlimitedDepth, IncludeFiles: true}
	asciiTree, asciiError := RenderASCII(config)
	require.NoError(t, asciiError)
	assert.Equal(t, "proj/\n├── src/\n│   └── a.ts\n└── README.md\n", asciiTree)

	markdownTree, markdownError := RenderMarkdown(config)
	require.NoError(t, markdownError)
	assert.Equal(t, "- proj/\n  - src/\n    - a.ts\n  - README.md\n", markdownTree)
}

func TestRenderSurfacesPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	rootDirectory := t.TempDir()
	lockedDirectory := filepath.Join(rootDirectory, "locked")
	require.NoError(t, os.MkdirAll(lockedDirectory, 0o755))
	require.NoError(t, os.Chmod(lockedDirectory, 0o000))
	t.Cleanup(func() { _ = os.Chmod(lockedDirectory, 0o755) })

	_, renderError := Render(types.TraversalConfig{RootPath: rootDirectory, RootLabel: "r", MaxDepth: types.UnlimitedDepth, IncludeFiles: true, Format: types.FormatASCII})
	var traversalError *TraversalError
	require.True(t, errors.As(renderError, &traversalError))
	assert.Equal(t, lockedDirectory, traversalError.Path)
	assert.ErrorIs(t, renderError, fs.ErrPermission)
}
