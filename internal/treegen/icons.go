package treegen

import (
	"os"
	"time"

	devicons "github.com/epilande/go-devicons"
)

// entryFileInfo satisfies os.FileInfo for icon lookup; only the name and kind matter.
type entryFileInfo struct {
	name  string
	isDir bool
}

func (info entryFileInfo) Name() string { return info.name }

func (info entryFileInfo) Size() int64 { return 0 }

func (info entryFileInfo) Mode() os.FileMode {
	if info.isDir {
		return os.ModeDir | 0o755
	}
	return 0
}

func (info entryFileInfo) ModTime() time.Time { return time.Time{} }

func (info entryFileInfo) IsDir() bool { return info.isDir }

func (info entryFileInfo) Sys() any { return nil }

func iconForEntry(name string, isDirectory bool) string {
	if name == "" {
		return ""
	}
	return devicons.IconForInfo(entryFileInfo{name: name, isDir: isDirectory}).Icon
}
