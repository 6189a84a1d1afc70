// Package phonebook provides embedded runtime resources (help text)
// and an overlay filesystem that checks local disk first, falling back to embedded.
package phonebook

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
)

// HelpFile is the name of the help text inside Resources.
const HelpFile = "help.txt"

//go:embed help.txt
var rawResources embed.FS

// Resources is the embedded resource filesystem.
var Resources fs.FS = rawResources

// OverlayFS returns a filesystem that checks localDir on disk first,
// falling back to the embedded filesystem for files not found locally.
func OverlayFS(localDir string, embedded fs.FS) fs.FS {
	return overlayFS{localDir: localDir, embedded: embedded}
}

type overlayFS struct {
	localDir string
	embedded fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	f, err := os.Open(filepath.Join(o.localDir, filepath.FromSlash(name)))
	if err == nil {
		return f, nil
	}
	return o.embedded.Open(name)
}

// HelpText returns help.txt from localDir if present, else the embedded copy.
func HelpText(localDir string) (string, error) {
	data, err := fs.ReadFile(OverlayFS(localDir, Resources), HelpFile)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
