package treegen

import (
	"github.com/spf13/afero"

	"github.com/temirov/readmetree/internal/types"
)

// Reader lists directories for the tree builder.
type Reader interface {
	ListDirectory(path string) ([]types.DirEntry, error)
	IsDirectory(path string) (bool, error)
}

// FilesystemReader implements Reader on top of an afero filesystem.
type FilesystemReader struct {
	filesystem afero.Fs
}

// NewReader constructs a Reader over the provided filesystem.
func NewReader(filesystem afero.Fs) *FilesystemReader {
	return &FilesystemReader{filesystem: filesystem}
}

// NewOSReader constructs a Reader over the host filesystem.
func NewOSReader() *FilesystemReader {
	return NewReader(afero.NewOsFs())
}

// ListDirectory returns the entries of path. Symbolic links are reported as non-directories.
func (reader *FilesystemReader) ListDirectory(path string) ([]types.DirEntry, error) {
	fileInfos, readDirectoryError := afero.ReadDir(reader.filesystem, path)
	if readDirectoryError != nil {
		return nil, readDirectoryError
	}
	entries := make([]types.DirEntry, 0, len(fileInfos))
	for _, fileInfo := range fileInfos {
		entries = append(entries, types.DirEntry{
			Name:        fileInfo.Name(),
			IsDirectory: fileInfo.IsDir(),
		})
	}
	return entries, nil
}

// IsDirectory reports whether path resolves to a directory.
func (reader *FilesystemReader) IsDirectory(path string) (bool, error) {
	fileInfo, statError := reader.filesystem.Stat(path)
	if statError != nil {
		return false, statError
	}
	return fileInfo.IsDir(), nil
}

var _ Reader = (*FilesystemReader)(nil)
