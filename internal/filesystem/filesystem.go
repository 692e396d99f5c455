// Package filesystem exposes the filesystem operations the syncer and the
// archiver depend on, backed by go-billy so tests can run in memory.
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
)

const (
	rootDirectoryConstant         = "/"
	statErrorTemplateConstant     = "stat %s: %w"
	mkdirAllErrorTemplateConstant = "create directory %s: %w"
	absErrorTemplateConstant      = "resolve absolute path %s: %w"
	removeErrorTemplateConstant   = "remove %s: %w"
)

// FileSystem exposes filesystem operations required by the mirror services.
type FileSystem interface {
	IsDirectory(path string) (bool, error)
	Exists(path string) (bool, error)
	MkdirAll(path string, permissions fs.FileMode) error
	Remove(path string) error
}

// BillyFileSystem implements FileSystem on top of a billy.Filesystem.
type BillyFileSystem struct {
	backing  billy.Filesystem
	absolute func(string) (string, error)
}

// NewOSFileSystem returns a FileSystem rooted at the operating system root.
// Relative paths are resolved against the process working directory.
func NewOSFileSystem() *BillyFileSystem {
	return &BillyFileSystem{backing: osfs.New(rootDirectoryConstant), absolute: filepath.Abs}
}

// NewMemoryFileSystem returns an in-memory FileSystem.
func NewMemoryFileSystem() *BillyFileSystem {
	return &BillyFileSystem{backing: memfs.New(), absolute: func(path string) (string, error) {
		return filepath.Join(rootDirectoryConstant, path), nil
	}}
}

// Backing exposes the underlying billy filesystem. Test doubles standing in for
// tar and openssl write their output through it.
func (fileSystem *BillyFileSystem) Backing() billy.Filesystem {
	return fileSystem.backing
}

// IsDirectory reports whether path exists and is a directory.
func (fileSystem *BillyFileSystem) IsDirectory(path string) (bool, error) {
	fileInfo, statError := fileSystem.stat(path)
	if statError != nil {
		if errors.Is(statError, os.ErrNotExist) {
			return false, nil
		}
		return false, statError
	}
	return fileInfo.IsDir(), nil
}

// Exists reports whether any entry exists at path.
func (fileSystem *BillyFileSystem) Exists(path string) (bool, error) {
	_, statError := fileSystem.stat(path)
	switch {
	case statError == nil:
		return true, nil
	case errors.Is(statError, os.ErrNotExist):
		return false, nil
	default:
		return false, statError
	}
}

// MkdirAll ensures a directory hierarchy exists with the provided permissions.
func (fileSystem *BillyFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	absolutePath, resolveError := fileSystem.resolve(path)
	if resolveError != nil {
		return resolveError
	}
	if mkdirError := fileSystem.backing.MkdirAll(absolutePath, permissions); mkdirError != nil {
		return fmt.Errorf(mkdirAllErrorTemplateConstant, path, mkdirError)
	}
	return nil
}

// Remove deletes the file at path. A missing file is not an error.
func (fileSystem *BillyFileSystem) Remove(path string) error {
	absolutePath, resolveError := fileSystem.resolve(path)
	if resolveError != nil {
		return resolveError
	}
	removeError := fileSystem.backing.Remove(absolutePath)
	if removeError != nil && !errors.Is(removeError, os.ErrNotExist) {
		return fmt.Errorf(removeErrorTemplateConstant, path, removeError)
	}
	return nil
}

func (fileSystem *BillyFileSystem) stat(path string) (fs.FileInfo, error) {
	absolutePath, resolveError := fileSystem.resolve(path)
	if resolveError != nil {
		return nil, resolveError
	}
	fileInfo, statError := fileSystem.backing.Stat(absolutePath)
	if statError != nil {
		return nil, fmt.Errorf(statErrorTemplateConstant, path, statError)
	}
	return fileInfo, nil
}

func (fileSystem *BillyFileSystem) resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	absolutePath, absError := fileSystem.absolute(path)
	if absError != nil {
		return "", fmt.Errorf(absErrorTemplateConstant, path, absError)
	}
	return absolutePath, nil
}
